package model

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Campaign 众筹活动（链上记录的本地镜像）
type Campaign struct {
	ID              int64             `json:"id"`
	Owner           Address           `json:"owner"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Image           string            `json:"image"`
	Target          decimal.Decimal   `json:"target"`
	Deadline        time.Time         `json:"deadline"`
	AmountCollected decimal.Decimal   `json:"amountCollected"`
	Donators        []Address         `json:"donators"`
	Donations       []decimal.Decimal `json:"donations"`
	Withdrawn       bool              `json:"withdrawn"`
}

// CampaignStatus 活动状态（由字段推导，不存储）
type CampaignStatus string

const (
	CampaignStatusOpen        CampaignStatus = "open"         // 募集中
	CampaignStatusGoalReached CampaignStatus = "goal_reached" // 已达成目标
	CampaignStatusWithdrawn   CampaignStatus = "withdrawn"    // 已提现
)

// Status 推导活动当前状态
func (c Campaign) Status() CampaignStatus {
	switch {
	case c.Withdrawn:
		return CampaignStatusWithdrawn
	case c.GoalReached():
		return CampaignStatusGoalReached
	default:
		return CampaignStatusOpen
	}
}

// GoalReached 已募集金额是否达到目标
func (c Campaign) GoalReached() bool {
	return c.AmountCollected.GreaterThanOrEqual(c.Target)
}

// CanWithdraw 是否满足提现条件（不含所有者校验）
func (c Campaign) CanWithdraw() bool {
	return !c.Withdrawn && c.GoalReached()
}

// CanDelete 是否满足删除条件（不含所有者校验）
func (c Campaign) CanDelete() bool {
	return !c.Withdrawn && c.AmountCollected.IsZero()
}

// RawCampaign 合约 getCampaigns 返回的原始记录
type RawCampaign struct {
	ID              *big.Int
	Owner           string
	Title           string
	Description     string
	Target          *big.Int
	Deadline        *big.Int
	AmountCollected *big.Int
	Image           string
	Donators        []string
	Donations       []*big.Int
	Withdrawn       bool
}

// CampaignForm 创建活动的表单输入
type CampaignForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      string `json:"target"`
	Deadline    string `json:"deadline"`
	Image       string `json:"image"`

	// Owner 客户端可能提交该字段，但始终会被忽略
	Owner string `json:"owner,omitempty"`
}

// State 活动集合及加载/错误标志的快照
type State struct {
	Campaigns []Campaign `json:"campaigns"`
	Loading   bool       `json:"loading"`
	Error     string     `json:"error"`
}

// FindCampaign 在集合中按 id 查找活动
func FindCampaign(campaigns []Campaign, id int64) (Campaign, bool) {
	for _, c := range campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return Campaign{}, false
}
