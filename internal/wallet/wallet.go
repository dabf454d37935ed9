package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/blues/campaignd/internal/logger"
	"github.com/blues/campaignd/internal/model"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoSigner 当前钱包无法签名交易
var ErrNoSigner = errors.New("wallet cannot sign transactions")

// Connector 钱包连接器：提供调用者账户地址与连接状态
type Connector interface {
	Address() model.Address
	Err() string
	Connect(ctx context.Context) error
	IsConnecting() bool
}

// Signer 可以为交易签名的钱包
type Signer interface {
	TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

// state 连接状态，由具体连接器共享
type state struct {
	mu         sync.RWMutex
	address    model.Address
	err        string
	connecting bool
}

func (s *state) Address() model.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

func (s *state) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *state) IsConnecting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connecting
}

func (s *state) begin() {
	s.mu.Lock()
	s.connecting = true
	s.err = ""
	s.mu.Unlock()
}

func (s *state) finish(address model.Address, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connecting = false
	if err != nil {
		s.address = ""
		s.err = err.Error()
		return
	}
	s.address = address
}

// KeyedConnector 基于本地私钥的钱包
type KeyedConnector struct {
	state
	rawKey string
	key    *ecdsa.PrivateKey
}

// NewKeyedConnector 创建私钥钱包，私钥在 Connect 时解析
func NewKeyedConnector(privateKey string) *KeyedConnector {
	return &KeyedConnector{rawKey: privateKey}
}

// NewKeyedConnectorFromKey 使用已解析的私钥创建钱包
func NewKeyedConnectorFromKey(key *ecdsa.PrivateKey) *KeyedConnector {
	return &KeyedConnector{key: key}
}

// Connect 解析私钥并推导账户地址
func (k *KeyedConnector) Connect(ctx context.Context) error {
	k.begin()

	key, err := k.privateKey()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		err = fmt.Errorf("failed to connect wallet: %w", err)
		k.finish("", err)
		return err
	}

	address := model.AddressFromCommon(crypto.PubkeyToAddress(key.PublicKey))
	k.finish(address, nil)
	logger.Info("Wallet connected: %s", address)
	return nil
}

// privateKey 解析并缓存私钥，与 TransactOpts 共用 state.mu
func (k *KeyedConnector) privateKey() (*ecdsa.PrivateKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.key != nil {
		return k.key, nil
	}
	if k.rawKey == "" {
		return nil, fmt.Errorf("no private key configured")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(k.rawKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	k.key = key
	return key, nil
}

// TransactOpts 获取交易授权
func (k *KeyedConnector) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	k.mu.RLock()
	key, address := k.key, k.address
	k.mu.RUnlock()

	if address.IsZero() || key == nil {
		return nil, ErrNoSigner
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx
	return auth, nil
}

// StaticConnector 固定地址的钱包，不具备签名能力
type StaticConnector struct {
	state
	configured string
}

// NewStaticConnector 创建固定地址钱包
func NewStaticConnector(address string) *StaticConnector {
	return &StaticConnector{configured: address}
}

// Connect 校验并设置配置的地址
func (s *StaticConnector) Connect(ctx context.Context) error {
	s.begin()

	address := model.NewAddress(s.configured)
	var err error
	switch {
	case address.IsZero():
		err = fmt.Errorf("failed to connect wallet: no address configured")
	case !address.IsValid():
		err = fmt.Errorf("failed to connect wallet: invalid address %q", s.configured)
	default:
		err = ctx.Err()
	}

	s.finish(address, err)
	return err
}
