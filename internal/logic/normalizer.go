package logic

import (
	"fmt"
	"time"

	"github.com/blues/campaignd/internal/model"
	"github.com/shopspring/decimal"
)

// Normalizer 将合约原始记录转换为领域对象
type Normalizer struct{}

// Normalize 转换单条记录：金额 wei→十进制，截止时间毫秒→time.Time，地址规范化
func (Normalizer) Normalize(raw model.RawCampaign) (model.Campaign, error) {
	if raw.ID == nil || !raw.ID.IsInt64() {
		return model.Campaign{}, fmt.Errorf("campaign id %v is not a valid int64", raw.ID)
	}
	if len(raw.Donators) != len(raw.Donations) {
		return model.Campaign{}, fmt.Errorf("campaign %s has %d donators but %d donations",
			raw.ID, len(raw.Donators), len(raw.Donations))
	}

	var deadline time.Time
	if raw.Deadline != nil {
		if !raw.Deadline.IsInt64() {
			return model.Campaign{}, fmt.Errorf("campaign %s deadline %s out of range", raw.ID, raw.Deadline)
		}
		deadline = time.UnixMilli(raw.Deadline.Int64()).UTC()
	}

	donators := make([]model.Address, len(raw.Donators))
	for i, d := range raw.Donators {
		donators[i] = model.NewAddress(d)
	}

	donations := make([]decimal.Decimal, len(raw.Donations))
	for i, d := range raw.Donations {
		donations[i] = model.FormatEther(d)
	}

	return model.Campaign{
		ID:              raw.ID.Int64(),
		Owner:           model.NewAddress(raw.Owner),
		Title:           raw.Title,
		Description:     raw.Description,
		Image:           raw.Image,
		Target:          model.FormatEther(raw.Target),
		Deadline:        deadline,
		AmountCollected: model.FormatEther(raw.AmountCollected),
		Donators:        donators,
		Donations:       donations,
		Withdrawn:       raw.Withdrawn,
	}, nil
}

// NormalizeAll 转换全部记录，任意一条失败则整体失败
func (n Normalizer) NormalizeAll(raws []model.RawCampaign) ([]model.Campaign, error) {
	campaigns := make([]model.Campaign, 0, len(raws))
	for _, raw := range raws {
		c, err := n.Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize campaigns: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

// detectRegressions 对比前后两次快照，找出违反单调性的活动
func detectRegressions(previous, next []model.Campaign) []string {
	var issues []string
	for _, after := range next {
		before, ok := model.FindCampaign(previous, after.ID)
		if !ok {
			continue
		}
		if after.AmountCollected.LessThan(before.AmountCollected) {
			issues = append(issues, fmt.Sprintf("campaign %d amountCollected decreased from %s to %s",
				after.ID, before.AmountCollected, after.AmountCollected))
		}
		if before.Withdrawn && !after.Withdrawn {
			issues = append(issues, fmt.Sprintf("campaign %d withdrawn flag reverted", after.ID))
		}
		if before.Owner != after.Owner {
			issues = append(issues, fmt.Sprintf("campaign %d owner changed from %s to %s",
				after.ID, before.Owner, after.Owner))
		}
	}
	return issues
}
