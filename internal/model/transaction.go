package model

import "time"

// TxStatus 交易状态
type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"   // 已提交，等待确认
	TxStatusConfirmed TxStatus = "confirmed" // 已确认
	TxStatusFailed    TxStatus = "failed"    // 失败
)

// TxRecord 编排层提交的一笔链上交易
type TxRecord struct {
	RequestID  string
	Operation  string
	CampaignID int64
	Account    Address
	TxHash     string
	Status     TxStatus
	Error      string
	UpdatedAt  time.Time
}

// ContractEvent 监控到的合约事件
type ContractEvent struct {
	Name        string
	CampaignID  int64
	TxHash      string
	BlockNumber uint64
	LogIndex    uint
	Data        map[string]interface{}
}
