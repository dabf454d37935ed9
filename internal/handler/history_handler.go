package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/blues/campaignd/internal/model"
	"github.com/gin-gonic/gin"
)

// TransactionLister 交易流水查询，由 repository.CampaignRepository 实现
type TransactionLister interface {
	ListTransactions(ctx context.Context, campaignID int64, limit int) ([]model.TransactionModel, error)
}

// EventLister 事件查询，由 repository.EventRepository 实现
type EventLister interface {
	ListEvents(ctx context.Context, campaignID int64, limit int) ([]model.EventModel, error)
}

// HistoryHandler 交易流水与事件查询处理器，仅在启用数据库时注册
type HistoryHandler struct {
	transactions TransactionLister
	events       EventLister
}

// NewHistoryHandler 创建历史记录处理器
func NewHistoryHandler(transactions TransactionLister, events EventLister) *HistoryHandler {
	return &HistoryHandler{transactions: transactions, events: events}
}

// GetTransactions 查询交易流水，可按 campaign_id 过滤
func (h *HistoryHandler) GetTransactions(c *gin.Context) {
	campaignID, limit, ok := historyQuery(c)
	if !ok {
		return
	}

	rows, err := h.transactions.ListTransactions(c.Request.Context(), campaignID, limit)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取交易流水成功", ToTransactionResponseList(rows))
}

// GetEvents 查询合约事件，可按 campaign_id 过滤
func (h *HistoryHandler) GetEvents(c *gin.Context) {
	campaignID, limit, ok := historyQuery(c)
	if !ok {
		return
	}

	rows, err := h.events.ListEvents(c.Request.Context(), campaignID, limit)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取事件列表成功", ToEventResponseList(rows))
}

func historyQuery(c *gin.Context) (int64, int, bool) {
	campaignID, err := strconv.ParseInt(c.DefaultQuery("campaign_id", "-1"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return 0, 0, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		ErrorResponse(c, http.StatusBadRequest, "无效的limit参数")
		return 0, 0, false
	}
	return campaignID, limit, true
}
