package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventModel 链上事件记录
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ContractAddress string `json:"contract_address" gorm:"size:42;not null"`
	EventName       string `json:"event_name" gorm:"size:64;not null;index"`
	CampaignId      int64  `json:"campaign_id" gorm:"index"`
	TxHash          string `json:"tx_hash" gorm:"size:66;not null;uniqueIndex:idx_event_tx_log"`
	BlockNum        int64  `json:"block_num" gorm:"not null"`
	LogIndex        int64  `json:"log_index" gorm:"uniqueIndex:idx_event_tx_log"`
	Data            string `json:"data" gorm:"type:text"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}

// NewEventModel 由解析后的事件构造表记录，事件参数序列化为 JSON
func NewEventModel(contract Address, ev ContractEvent) (EventModel, error) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return EventModel{}, fmt.Errorf("failed to encode event data: %w", err)
	}

	return EventModel{
		ContractAddress: contract.String(),
		EventName:       ev.Name,
		CampaignId:      ev.CampaignID,
		TxHash:          ev.TxHash,
		BlockNum:        int64(ev.BlockNumber),
		LogIndex:        int64(ev.LogIndex),
		Data:            string(data),
	}, nil
}

// SyncCursorModel 事件扫描进度
type SyncCursorModel struct {
	Name      string    `json:"name" gorm:"primaryKey;size:64"`
	BlockNum  int64     `json:"block_num" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 自定义表名
func (SyncCursorModel) TableName() string {
	return "sync_cursor"
}
