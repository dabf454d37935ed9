package repository

import (
	"context"
	"fmt"

	"github.com/blues/campaignd/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignRepository 持久化活动镜像与交易流水
type CampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建活动仓储
func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// SaveCampaigns 用最新的全量结果覆盖镜像表，链上已删除的活动同步删除
func (r *CampaignRepository) SaveCampaigns(ctx context.Context, campaigns []model.Campaign) error {
	rows := make([]model.CampaignModel, len(campaigns))
	ids := make([]int64, len(campaigns))
	var donations []model.DonationModel
	for i, c := range campaigns {
		rows[i] = model.NewCampaignModel(c)
		ids[i] = c.ID
		donations = append(donations, rows[i].Donations...)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		if err := stale.Delete(&model.CampaignModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete stale campaigns: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		if err := tx.Omit("Donations").Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to upsert campaigns: %w", err)
		}

		// 捐款数组只会追加，但删除重建更简单且与链上顺序一致
		if err := tx.Where("campaign_id IN ?", ids).Delete(&model.DonationModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear donations: %w", err)
		}
		if len(donations) > 0 {
			if err := tx.CreateInBatches(donations, 500).Error; err != nil {
				return fmt.Errorf("failed to insert donations: %w", err)
			}
		}
		return nil
	})
}

// ListCampaigns 读取镜像表中的全部活动
func (r *CampaignRepository) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	var rows []model.CampaignModel
	if err := r.db.WithContext(ctx).
		Preload("Donations", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	campaigns := make([]model.Campaign, len(rows))
	for i, row := range rows {
		campaigns[i] = row.ToCampaign()
	}
	return campaigns, nil
}

// RecordTransaction 写入或更新一笔交易的状态
func (r *CampaignRepository) RecordTransaction(ctx context.Context, rec model.TxRecord) error {
	row := model.NewTransactionModel(rec)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "error", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to record transaction %s: %w", rec.TxHash, err)
	}
	return nil
}

// ListTransactions 按活动查询交易流水，campaignID 小于 0 时不过滤
func (r *CampaignRepository) ListTransactions(ctx context.Context, campaignID int64, limit int) ([]model.TransactionModel, error) {
	query := r.db.WithContext(ctx).Model(&model.TransactionModel{})
	if campaignID >= 0 {
		query = query.Where("campaign_id = ?", campaignID)
	}
	if limit <= 0 {
		limit = 50
	}

	var rows []model.TransactionModel
	if err := query.Order("updated_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return rows, nil
}
