package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/blues/campaignd/internal/config"
	"github.com/blues/campaignd/internal/logger"
	"github.com/blues/campaignd/internal/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Contract 众筹合约元数据：地址、ABI、部署区块
type Contract struct {
	address  common.Address
	abi      abi.ABI
	blockNum int64
}

// NewContract 根据配置创建合约实例
func NewContract(cfg config.ContractConfig) (*Contract, error) {
	parsedABI, err := LoadABI(cfg.ABIPath)
	if err != nil {
		return nil, err
	}

	if !common.IsHexAddress(cfg.Address) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.Address)
	}

	return &Contract{
		address:  common.HexToAddress(cfg.Address),
		abi:      parsedABI,
		blockNum: cfg.BlockNum,
	}, nil
}

// LoadABI 加载ABI；path 为空时使用内置ABI
func LoadABI(path string) (abi.ABI, error) {
	if path == "" {
		return abi.JSON(strings.NewReader(CrowdFundingABI))
	}

	abiData, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to load ABI from %s: %w", path, err)
	}

	// 尝试解析为完整的编译输出文件
	var compiledOutput struct {
		ABI json.RawMessage `json:"abi"`
	}

	if err := json.Unmarshal(abiData, &compiledOutput); err == nil && compiledOutput.ABI != nil {
		parsedABI, err := abi.JSON(bytes.NewReader(compiledOutput.ABI))
		if err != nil {
			return abi.ABI{}, fmt.Errorf("failed to parse ABI from compiled output: %w", err)
		}
		return parsedABI, nil
	}

	parsedABI, err := abi.JSON(bytes.NewReader(abiData))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return parsedABI, nil
}

// GetAddress 获取合约地址
func (c *Contract) GetAddress() common.Address {
	return c.address
}

// GetABI 获取合约ABI
func (c *Contract) GetABI() abi.ABI {
	return c.abi
}

// GetBlockNum 获取合约部署区块号
func (c *Contract) GetBlockNum() int64 {
	return c.blockNum
}

// ParseEvent 解析事件日志
func (c *Contract) ParseEvent(log types.Log) (model.ContractEvent, error) {
	if len(log.Topics) == 0 {
		return model.ContractEvent{}, fmt.Errorf("log %s#%d has no topics", log.TxHash.Hex(), log.Index)
	}

	event, err := c.abi.EventByID(log.Topics[0])
	if err != nil {
		logger.Warn("Unknown event signature: %s", log.Topics[0].Hex())
		return model.ContractEvent{
			Name:        "Unknown",
			CampaignID:  -1,
			TxHash:      log.TxHash.Hex(),
			BlockNumber: log.BlockNumber,
			LogIndex:    log.Index,
			Data:        map[string]interface{}{"signature": log.Topics[0].Hex()},
		}, nil
	}

	data := make(map[string]interface{})

	// 解析索引参数
	topicIndex := 1
	for _, input := range event.Inputs {
		if !input.Indexed {
			continue
		}
		if topicIndex >= len(log.Topics) {
			break
		}
		data[input.Name] = parseTopicValue(log.Topics[topicIndex], input.Type)
		topicIndex++
	}

	// 解析非索引参数
	if len(log.Data) > 0 {
		if err := c.abi.UnpackIntoMap(data, event.Name, log.Data); err != nil {
			return model.ContractEvent{}, fmt.Errorf("failed to unpack %s data: %w", event.Name, err)
		}
	}

	campaignID := int64(-1)
	if id, ok := data["id"].(*big.Int); ok && id.IsInt64() {
		campaignID = id.Int64()
	}

	return model.ContractEvent{
		Name:        event.Name,
		CampaignID:  campaignID,
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
		LogIndex:    log.Index,
		Data:        data,
	}, nil
}

// parseTopicValue 解析主题值
func parseTopicValue(topic common.Hash, t abi.Type) interface{} {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return new(big.Int).SetBytes(topic.Bytes())
	case abi.AddressTy:
		return model.AddressFromCommon(common.BytesToAddress(topic.Bytes()))
	case abi.BoolTy:
		return new(big.Int).SetBytes(topic.Bytes()).Sign() > 0
	default:
		return topic.Hex()
	}
}
