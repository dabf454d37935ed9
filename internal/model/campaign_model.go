package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignModel 活动镜像表，每次全量同步后整体覆盖
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner       string `json:"owner" gorm:"size:42;not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Image       string `json:"image"`

	Target          decimal.Decimal `json:"target" gorm:"type:numeric(78,18);not null"`
	AmountCollected decimal.Decimal `json:"amount_collected" gorm:"type:numeric(78,18);not null"`
	Deadline        time.Time       `json:"deadline" gorm:"not null"`
	Withdrawn       bool            `json:"withdrawn" gorm:"default:false"`
	Status          CampaignStatus  `json:"status" gorm:"size:20;index"`

	Donations []DonationModel `json:"donations,omitempty" gorm:"foreignKey:CampaignId;constraint:OnDelete:CASCADE"`
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}

// DonationModel 活动捐款明细，Seq 为链上数组下标
type DonationModel struct {
	CampaignId int64           `json:"campaign_id" gorm:"primaryKey;autoIncrement:false"`
	Seq        int             `json:"seq" gorm:"primaryKey;autoIncrement:false"`
	Donator    string          `json:"donator" gorm:"size:42;not null;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(78,18);not null"`
}

// TableName 自定义表名
func (DonationModel) TableName() string {
	return "campaign_donation"
}

// NewCampaignModel 由领域对象构造表记录
func NewCampaignModel(c Campaign) CampaignModel {
	m := CampaignModel{
		Id:              c.ID,
		Owner:           c.Owner.String(),
		Title:           c.Title,
		Description:     c.Description,
		Image:           c.Image,
		Target:          c.Target,
		AmountCollected: c.AmountCollected,
		Deadline:        c.Deadline,
		Withdrawn:       c.Withdrawn,
		Status:          c.Status(),
		Donations:       make([]DonationModel, len(c.Donators)),
	}
	for i, d := range c.Donators {
		m.Donations[i] = DonationModel{
			CampaignId: c.ID,
			Seq:        i,
			Donator:    d.String(),
			Amount:     c.Donations[i],
		}
	}
	return m
}

// ToCampaign 转换为领域对象
func (m CampaignModel) ToCampaign() Campaign {
	c := Campaign{
		ID:              m.Id,
		Owner:           NewAddress(m.Owner),
		Title:           m.Title,
		Description:     m.Description,
		Image:           m.Image,
		Target:          m.Target,
		AmountCollected: m.AmountCollected,
		Deadline:        m.Deadline.UTC(),
		Withdrawn:       m.Withdrawn,
		Donators:        make([]Address, len(m.Donations)),
		Donations:       make([]decimal.Decimal, len(m.Donations)),
	}
	for i, d := range m.Donations {
		c.Donators[i] = NewAddress(d.Donator)
		c.Donations[i] = d.Amount
	}
	return c
}
