package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/blues/campaignd/internal/config"
	"github.com/blues/campaignd/internal/logger"
	"github.com/blues/campaignd/internal/model"
	"github.com/blues/campaignd/internal/wallet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrTxReverted 交易已上链但执行失败
var ErrTxReverted = errors.New("transaction reverted")

// campaignTuple 对应 getCampaigns 返回的结构体
type campaignTuple struct {
	Id              *big.Int
	Owner           common.Address
	Title           string
	Description     string
	Target          *big.Int
	Deadline        *big.Int
	AmountCollected *big.Int
	Image           string
	Donators        []common.Address
	Donations       []*big.Int
	Withdrawn       bool
}

// EthereumGateway 通过 JSON-RPC 访问众筹合约
type EthereumGateway struct {
	client    *ethclient.Client
	contract  *Contract
	bound     *bind.BoundContract
	signer    wallet.Signer
	account   model.Address
	chainID   *big.Int
	txTimeout time.Duration
}

// NewEthereumFactory 返回基于以太坊节点的网关构造函数
func NewEthereumFactory(cfg config.ChainConfig, signer wallet.Signer) Factory {
	return func(ctx context.Context, account model.Address) (Gateway, error) {
		return DialEthereum(ctx, cfg, signer, account)
	}
}

// DialEthereum 连接节点并绑定合约
func DialEthereum(ctx context.Context, cfg config.ChainConfig, signer wallet.Signer, account model.Address) (*EthereumGateway, error) {
	if cfg.RpcUrl == "" {
		return nil, fmt.Errorf("no RPC URL configured")
	}

	contract, err := NewContract(cfg.Contract)
	if err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	logger.Info("Creating %s client connection (RPC: %s)", cfg.ChainType, cfg.RpcUrl)
	client, err := ethclient.DialContext(ctx, cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 测试连接并校验链ID
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("client connection test failed: %w", err)
	}
	if cfg.ChainId != 0 && chainID.Int64() != cfg.ChainId {
		client.Close()
		return nil, fmt.Errorf("chain id mismatch: expected %d, node reports %s", cfg.ChainId, chainID)
	}

	bound := bind.NewBoundContract(contract.GetAddress(), contract.GetABI(), client, client, client)

	logger.Info("Bound crowdfunding contract %s for account %s", contract.GetAddress().Hex(), account)
	return &EthereumGateway{
		client:    client,
		contract:  contract,
		bound:     bound,
		signer:    signer,
		account:   account,
		chainID:   chainID,
		txTimeout: cfg.TxTimeout,
	}, nil
}

// Client 底层客户端
func (g *EthereumGateway) Client() *ethclient.Client {
	return g.client
}

// Contract 合约元数据
func (g *EthereumGateway) Contract() *Contract {
	return g.contract
}

// List 读取全部活动
func (g *EthereumGateway) List(ctx context.Context) ([]model.RawCampaign, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: g.account.Common()}
	if err := g.bound.Call(opts, &out, methodGetCampaigns); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", methodGetCampaigns, err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	tuples := *abi.ConvertType(out[0], new([]campaignTuple)).(*[]campaignTuple)

	campaigns := make([]model.RawCampaign, len(tuples))
	for i, t := range tuples {
		donators := make([]string, len(t.Donators))
		for j, d := range t.Donators {
			donators[j] = d.Hex()
		}
		campaigns[i] = model.RawCampaign{
			ID:              t.Id,
			Owner:           t.Owner.Hex(),
			Title:           t.Title,
			Description:     t.Description,
			Target:          t.Target,
			Deadline:        t.Deadline,
			AmountCollected: t.AmountCollected,
			Image:           t.Image,
			Donators:        donators,
			Donations:       t.Donations,
			Withdrawn:       t.Withdrawn,
		}
	}
	return campaigns, nil
}

// Create 创建活动
func (g *EthereumGateway) Create(ctx context.Context, owner model.Address, title, description string, target *big.Int, deadline int64, image string) (PendingTx, error) {
	return g.transact(ctx, nil, methodCreateCampaign,
		owner.Common(), title, description, target, big.NewInt(deadline), image)
}

// Donate 向活动捐款
func (g *EthereumGateway) Donate(ctx context.Context, id int64, amount *big.Int) (PendingTx, error) {
	return g.transact(ctx, amount, methodDonateToCampaign, big.NewInt(id))
}

// Withdraw 提取活动资金
func (g *EthereumGateway) Withdraw(ctx context.Context, id int64) (PendingTx, error) {
	return g.transact(ctx, nil, methodWithdrawFunds, big.NewInt(id))
}

// Delete 删除活动
func (g *EthereumGateway) Delete(ctx context.Context, id int64) (PendingTx, error) {
	return g.transact(ctx, nil, methodDeleteCampaign, big.NewInt(id))
}

func (g *EthereumGateway) transact(ctx context.Context, value *big.Int, method string, params ...interface{}) (PendingTx, error) {
	if g.signer == nil {
		return nil, wallet.ErrNoSigner
	}

	opts, err := g.signer.TransactOpts(ctx, g.chainID)
	if err != nil {
		return nil, err
	}
	opts.Value = value

	tx, err := g.bound.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}

	logger.Info("Submitted %s transaction %s", method, tx.Hash().Hex())
	return &ethereumTx{client: g.client, tx: tx, timeout: g.txTimeout}, nil
}

// Close 关闭客户端
func (g *EthereumGateway) Close() {
	g.client.Close()
}

// ethereumTx 已广播的交易
type ethereumTx struct {
	client  *ethclient.Client
	tx      *types.Transaction
	timeout time.Duration
}

func (t *ethereumTx) Hash() string {
	return t.tx.Hash().Hex()
}

// Wait 等待交易打包并检查回执状态
func (t *ethereumTx) Wait(ctx context.Context) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, t.client, t.tx)
	if err != nil {
		return fmt.Errorf("failed to wait for transaction %s: %w", t.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: %s (block %d)", ErrTxReverted, t.Hash(), receipt.BlockNumber.Uint64())
	}

	logger.Debug("Transaction %s confirmed in block %d", t.Hash(), receipt.BlockNumber.Uint64())
	return nil
}
