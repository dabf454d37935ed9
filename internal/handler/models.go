package handler

import (
	"time"

	"github.com/blues/campaignd/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// CampaignResponse 活动响应模型，金额以十进制字符串表示
type CampaignResponse struct {
	ID              int64                `json:"id"`
	Owner           string               `json:"owner"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Image           string               `json:"image"`
	Target          string               `json:"target"`
	Deadline        time.Time            `json:"deadline"`
	AmountCollected string               `json:"amountCollected"`
	Donations       []DonationResponse   `json:"donations"`
	Withdrawn       bool                 `json:"withdrawn"`
	Status          model.CampaignStatus `json:"status"`
}

// DonationResponse 单笔捐款
type DonationResponse struct {
	Donator string `json:"donator"`
	Amount  string `json:"amount"`
}

// StateResponse 编排层状态
type StateResponse struct {
	Account   string             `json:"account"`
	Campaigns []CampaignResponse `json:"campaigns"`
	Loading   bool               `json:"loading"`
	Error     string             `json:"error"`
}

// CreateCampaignRequest 创建活动请求；字段校验由编排层完成
type CreateCampaignRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      string `json:"target"`
	Deadline    string `json:"deadline"`
	Image       string `json:"image"`
	Owner       string `json:"owner"`
}

// DonateRequest 捐款请求
type DonateRequest struct {
	Amount string `json:"amount"`
}

// TransactionResponse 交易流水响应模型
type TransactionResponse struct {
	RequestID  string    `json:"requestId"`
	Operation  string    `json:"operation"`
	CampaignID int64     `json:"campaignId"`
	Account    string    `json:"account"`
	TxHash     string    `json:"txHash"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EventResponse 合约事件响应模型
type EventResponse struct {
	Name       string `json:"name"`
	CampaignID int64  `json:"campaignId"`
	TxHash     string `json:"txHash"`
	BlockNum   int64  `json:"blockNum"`
	LogIndex   int64  `json:"logIndex"`
	Data       string `json:"data"`
}

// ToCampaignResponse 转换活动响应
func ToCampaignResponse(c model.Campaign) CampaignResponse {
	donations := make([]DonationResponse, len(c.Donators))
	for i, d := range c.Donators {
		donations[i] = DonationResponse{Donator: d.String(), Amount: c.Donations[i].String()}
	}

	return CampaignResponse{
		ID:              c.ID,
		Owner:           c.Owner.String(),
		Title:           c.Title,
		Description:     c.Description,
		Image:           c.Image,
		Target:          c.Target.String(),
		Deadline:        c.Deadline,
		AmountCollected: c.AmountCollected.String(),
		Donations:       donations,
		Withdrawn:       c.Withdrawn,
		Status:          c.Status(),
	}
}

// ToCampaignResponseList 转换活动响应列表
func ToCampaignResponseList(campaigns []model.Campaign) []CampaignResponse {
	out := make([]CampaignResponse, len(campaigns))
	for i, c := range campaigns {
		out[i] = ToCampaignResponse(c)
	}
	return out
}

// ToTransactionResponseList 转换交易流水响应列表
func ToTransactionResponseList(rows []model.TransactionModel) []TransactionResponse {
	out := make([]TransactionResponse, len(rows))
	for i, r := range rows {
		out[i] = TransactionResponse{
			RequestID:  r.RequestId,
			Operation:  r.Operation,
			CampaignID: r.CampaignId,
			Account:    r.Account,
			TxHash:     r.TxHash,
			Status:     string(r.Status),
			Error:      r.Error,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return out
}

// ToEventResponseList 转换事件响应列表
func ToEventResponseList(rows []model.EventModel) []EventResponse {
	out := make([]EventResponse, len(rows))
	for i, r := range rows {
		out[i] = EventResponse{
			Name:       r.EventName,
			CampaignID: r.CampaignId,
			TxHash:     r.TxHash,
			BlockNum:   r.BlockNum,
			LogIndex:   r.LogIndex,
			Data:       r.Data,
		}
	}
	return out
}
