package model

import "time"

// TransactionModel 交易流水，同一笔交易的状态变化覆盖同一行
type TransactionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RequestId  string   `json:"request_id" gorm:"size:36;not null;index"`
	Operation  string   `json:"operation" gorm:"size:20;not null"`
	CampaignId int64    `json:"campaign_id" gorm:"index"`
	Account    string   `json:"account" gorm:"size:42;not null"`
	TxHash     string   `json:"tx_hash" gorm:"size:66;uniqueIndex"`
	Status     TxStatus `json:"status" gorm:"size:20;default:'pending'"`
	Error      string   `json:"error" gorm:"type:text"`
}

// TableName 自定义表名
func (TransactionModel) TableName() string {
	return "transaction"
}

// NewTransactionModel 由交易记录构造表记录
func NewTransactionModel(rec TxRecord) TransactionModel {
	return TransactionModel{
		UpdatedAt:  rec.UpdatedAt,
		RequestId:  rec.RequestID,
		Operation:  rec.Operation,
		CampaignId: rec.CampaignID,
		Account:    rec.Account.String(),
		TxHash:     rec.TxHash,
		Status:     rec.Status,
		Error:      rec.Error,
	}
}
