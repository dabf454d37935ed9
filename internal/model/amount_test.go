package model

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1000000000000000000"},
		{"0.000000000000000001", "1"},
		{"123.45", "123450000000000000000"},
		{" 2.5 ", "2500000000000000000"},
		{"115792089237316195423570985008687907853269.984665640564039457", "115792089237316195423570985008687907853269984665640564039457"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			wei, err := ParseEther(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, wei.String())
		})
	}
}

func TestParseEtherRejects(t *testing.T) {
	_, err := ParseEther("")
	assert.ErrorIs(t, err, ErrEmptyAmount)

	_, err = ParseEther("-1")
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = ParseEther("0.0000000000000000001")
	assert.ErrorIs(t, err, ErrAmountPrecision)

	_, err = ParseEther("ten")
	assert.Error(t, err)
}

func TestParseEtherBoundsExponent(t *testing.T) {
	wei, err := ParseEther("1.5e2")
	require.NoError(t, err)
	assert.Equal(t, "150000000000000000000", wei.String())

	wei, err = ParseEther("25e-18")
	require.NoError(t, err)
	assert.Equal(t, "25", wei.String())

	tests := []struct {
		in   string
		want error
	}{
		{"1e20000000", ErrAmountTooLarge},
		{"1e2000000000", ErrAmountTooLarge},
		{"1e-2000000000", ErrAmountPrecision},
		{"1e-19", ErrAmountPrecision},
		{"1e60", ErrAmountTooLarge},
		{"115792089237316195423570985008687907853269.984665640564039458", ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseEther(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEtherRoundTrip(t *testing.T) {
	max, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)

	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Mul(big.NewInt(12345), new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)),
		big.NewInt(999999999999999999),
		max,
	}

	for _, wei := range values {
		formatted := FormatEther(wei).String()
		parsed, err := ParseEther(formatted)
		require.NoError(t, err, formatted)
		assert.Zero(t, wei.Cmp(parsed), "round trip of %s via %s", wei, formatted)
	}
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "123.45", FormatEther(big.NewInt(0).Mul(big.NewInt(12345), big.NewInt(1e16))).String())
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)).String())
	assert.True(t, FormatEther(nil).IsZero())
}

func TestCampaignStatus(t *testing.T) {
	c := Campaign{Target: decimal.NewFromInt(10), AmountCollected: decimal.NewFromInt(5)}
	assert.Equal(t, CampaignStatusOpen, c.Status())
	assert.False(t, c.CanWithdraw())
	assert.False(t, c.CanDelete())

	c.AmountCollected = decimal.NewFromInt(10)
	assert.Equal(t, CampaignStatusGoalReached, c.Status())
	assert.True(t, c.CanWithdraw())

	c.Withdrawn = true
	assert.Equal(t, CampaignStatusWithdrawn, c.Status())
	assert.False(t, c.CanWithdraw())

	empty := Campaign{Target: decimal.NewFromInt(1), AmountCollected: decimal.Zero}
	assert.True(t, empty.CanDelete())
}

func TestNewAddress(t *testing.T) {
	a := NewAddress("  0xAbCDEF0000000000000000000000000000000001 ")
	assert.Equal(t, Address("0xabcdef0000000000000000000000000000000001"), a)
	assert.True(t, a.IsValid())
	assert.Equal(t, a, AddressFromCommon(a.Common()))
	assert.True(t, NewAddress("").IsZero())
}
