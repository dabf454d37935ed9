package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/campaignd/internal/logic"
	"github.com/blues/campaignd/internal/model"
	"github.com/gin-gonic/gin"
)

// CampaignHandler 活动处理器
type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(campaignLogic *logic.CampaignLogic) *CampaignHandler {
	return &CampaignHandler{campaignLogic: campaignLogic}
}

// GetState 获取当前状态快照
func (h *CampaignHandler) GetState(c *gin.Context) {
	st := h.campaignLogic.State()
	SuccessResponse(c, http.StatusOK, "获取状态成功", StateResponse{
		Account:   h.campaignLogic.Address().String(),
		Campaigns: ToCampaignResponseList(st.Campaigns),
		Loading:   st.Loading,
		Error:     st.Error,
	})
}

// Connect 连接钱包
func (h *CampaignHandler) Connect(c *gin.Context) {
	if err := h.campaignLogic.Connect(c.Request.Context()); err != nil {
		ErrorFromLogic(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "钱包连接成功", gin.H{"account": h.campaignLogic.Address().String()})
}

// GetCampaigns 从合约全量获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	campaigns, err := h.campaignLogic.GetCampaigns(c.Request.Context())
	if err != nil {
		ErrorFromLogic(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取活动列表成功", ToCampaignResponseList(campaigns))
}

// GetCampaign 从本地镜像获取单个活动
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}

	campaign, found := h.campaignLogic.Campaign(id)
	if !found {
		ErrorResponse(c, http.StatusNotFound, "Campaign not found")
		return
	}
	SuccessResponse(c, http.StatusOK, "获取活动详情成功", ToCampaignResponse(campaign))
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	form := model.CampaignForm{
		Title:       req.Title,
		Description: req.Description,
		Target:      req.Target,
		Deadline:    req.Deadline,
		Image:       req.Image,
		Owner:       req.Owner,
	}
	if err := h.campaignLogic.CreateCampaign(c.Request.Context(), form); err != nil {
		ErrorFromLogic(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "活动创建成功", ToCampaignResponseList(h.campaignLogic.State().Campaigns))
}

// Donate 捐款
func (h *CampaignHandler) Donate(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}

	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.campaignLogic.Donate(c.Request.Context(), id, req.Amount); err != nil {
		ErrorFromLogic(c, err)
		return
	}
	h.respondCampaign(c, id, "捐款成功")
}

// Withdraw 提取资金
func (h *CampaignHandler) Withdraw(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}

	if err := h.campaignLogic.WithdrawFunds(c.Request.Context(), id); err != nil {
		ErrorFromLogic(c, err)
		return
	}
	h.respondCampaign(c, id, "提现成功")
}

// Delete 删除活动
func (h *CampaignHandler) Delete(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}

	if err := h.campaignLogic.DeleteCampaign(c.Request.Context(), id); err != nil {
		ErrorFromLogic(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "活动删除成功", gin.H{"id": id})
}

func (h *CampaignHandler) respondCampaign(c *gin.Context, id int64, message string) {
	campaign, found := h.campaignLogic.Campaign(id)
	if !found {
		SuccessResponse(c, http.StatusOK, message, nil)
		return
	}
	SuccessResponse(c, http.StatusOK, message, ToCampaignResponse(campaign))
}

// campaignID 解析路径中的活动 id，失败时已写入 400 响应
func campaignID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return 0, false
	}
	return id, true
}
