package chain

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/blues/campaignd/internal/config"
	"github.com/blues/campaignd/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadABIBuiltin(t *testing.T) {
	parsed, err := LoadABI("")
	require.NoError(t, err)

	for _, m := range []string{methodGetCampaigns, methodCreateCampaign, methodDonateToCampaign, methodWithdrawFunds, methodDeleteCampaign} {
		assert.Contains(t, parsed.Methods, m)
	}
	assert.True(t, parsed.Methods[methodDonateToCampaign].IsPayable())
	assert.Len(t, parsed.Events, 4)
}

func TestLoadABICompiledArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CrowdFunding.json")
	body := `{"contractName":"CrowdFunding","abi":` + CrowdFundingABI + `}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	parsed, err := LoadABI(path)
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, methodGetCampaigns)
}

func TestNewContractRejectsBadAddress(t *testing.T) {
	_, err := NewContract(config.ContractConfig{Address: "0x123"})
	assert.Error(t, err)
}

func TestParseDonationEvent(t *testing.T) {
	c, err := NewContract(config.ContractConfig{Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3", BlockNum: 3})
	require.NoError(t, err)

	event := c.GetABI().Events["DonationReceived"]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(250))
	require.NoError(t, err)

	donor := common.HexToAddress("0x0000000000000000000000000000000000000B0B")
	log := types.Log{
		Address: c.GetAddress(),
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(big.NewInt(7)),
			common.BytesToHash(donor.Bytes()),
		},
		Data:        data,
		BlockNumber: 42,
		Index:       1,
	}

	parsed, err := c.ParseEvent(log)
	require.NoError(t, err)
	assert.Equal(t, "DonationReceived", parsed.Name)
	assert.Equal(t, int64(7), parsed.CampaignID)
	assert.Equal(t, uint64(42), parsed.BlockNumber)
	assert.Equal(t, model.Address("0x0000000000000000000000000000000000000b0b"), parsed.Data["donator"])
	amount, ok := parsed.Data["amount"].(*big.Int)
	require.True(t, ok)
	assert.Equal(t, "250", amount.String())
}

func TestParseUnknownEvent(t *testing.T) {
	c, err := NewContract(config.ContractConfig{Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"})
	require.NoError(t, err)

	parsed, err := c.ParseEvent(types.Log{Topics: []common.Hash{common.HexToHash("0x01")}})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", parsed.Name)
	assert.Equal(t, int64(-1), parsed.CampaignID)
}
