package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignModelConversion(t *testing.T) {
	c := Campaign{
		ID:              3,
		Owner:           NewAddress("0x1111111111111111111111111111111111111111"),
		Title:           "Garden",
		Target:          decimal.NewFromInt(2),
		AmountCollected: decimal.RequireFromString("2.5"),
		Deadline:        time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		Donators:        []Address{"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
		Donations:       []decimal.Decimal{decimal.NewFromInt(2), decimal.RequireFromString("0.5")},
	}

	m := NewCampaignModel(c)
	assert.Equal(t, CampaignStatusGoalReached, m.Status)
	require.Len(t, m.Donations, 2)
	assert.Equal(t, 1, m.Donations[1].Seq)
	assert.Equal(t, int64(3), m.Donations[1].CampaignId)

	back := m.ToCampaign()
	assert.Equal(t, c.Owner, back.Owner)
	assert.Equal(t, c.Donators, back.Donators)
	assert.True(t, back.AmountCollected.Equal(c.AmountCollected))
	assert.True(t, back.Donations[1].Equal(c.Donations[1]))
	assert.True(t, back.Deadline.Equal(c.Deadline))
}

func TestNewEventModel(t *testing.T) {
	ev := ContractEvent{
		Name:        "CampaignDeleted",
		CampaignID:  4,
		TxHash:      "0xabc",
		BlockNumber: 12,
		LogIndex:    1,
		Data:        map[string]interface{}{"id": 4},
	}

	m, err := NewEventModel("0x1111111111111111111111111111111111111111", ev)
	require.NoError(t, err)
	assert.Equal(t, "CampaignDeleted", m.EventName)
	assert.Equal(t, int64(12), m.BlockNum)
	assert.JSONEq(t, `{"id":4}`, m.Data)
}
