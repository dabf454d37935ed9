package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/blues/campaignd/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository 持久化合约事件与扫描进度
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建事件仓储
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// SaveEvents 批量写入事件，(tx_hash, log_index) 重复时忽略
func (r *EventRepository) SaveEvents(ctx context.Context, contract model.Address, events []model.ContractEvent) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]model.EventModel, 0, len(events))
	for _, ev := range events {
		row, err := model.NewEventModel(contract, ev)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}
	return nil
}

// ListEvents 按活动查询事件，campaignID 小于 0 时不过滤
func (r *EventRepository) ListEvents(ctx context.Context, campaignID int64, limit int) ([]model.EventModel, error) {
	query := r.db.WithContext(ctx).Model(&model.EventModel{})
	if campaignID >= 0 {
		query = query.Where("campaign_id = ?", campaignID)
	}
	if limit <= 0 {
		limit = 50
	}

	var rows []model.EventModel
	if err := query.Order("block_num DESC, log_index DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return rows, nil
}

// Cursor 读取扫描进度，不存在时 ok 为 false
func (r *EventRepository) Cursor(ctx context.Context, name string) (int64, bool, error) {
	var row model.SyncCursorModel
	err := r.db.WithContext(ctx).First(&row, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to load cursor %s: %w", name, err)
	}
	return row.BlockNum, true, nil
}

// SaveCursor 保存扫描进度
func (r *EventRepository) SaveCursor(ctx context.Context, name string, block int64) error {
	row := model.SyncCursorModel{Name: name, BlockNum: block}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"block_num", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save cursor %s: %w", name, err)
	}
	return nil
}
