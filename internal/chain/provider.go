package chain

import (
	"context"
	"errors"
	"sync"

	"github.com/blues/campaignd/internal/logger"
	"github.com/blues/campaignd/internal/model"
)

// ErrNoAccount 未连接钱包时无法初始化网关
var ErrNoAccount = errors.New("wallet not connected")

// Factory 根据连接的账户构造网关
type Factory func(ctx context.Context, account model.Address) (Gateway, error)

// Provider 惰性创建并缓存网关；同一账户只会存在一个活跃的网关
type Provider struct {
	mu      sync.Mutex
	factory Factory
	gateway Gateway
	account model.Address
}

// NewProvider 创建网关提供者
func NewProvider(factory Factory) *Provider {
	return &Provider{factory: factory}
}

// Get 返回账户对应的网关，首次调用时创建；创建失败不会被缓存
func (p *Provider) Get(ctx context.Context, account model.Address) (Gateway, error) {
	if account.IsZero() {
		return nil, ErrNoAccount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gateway != nil && p.account == account {
		return p.gateway, nil
	}

	// 账户切换，关闭旧网关
	if p.gateway != nil {
		logger.Info("Wallet account changed from %s to %s, rebuilding gateway", p.account, account)
		p.closeLocked()
	}

	gateway, err := p.factory(ctx, account)
	if err != nil {
		return nil, err
	}

	p.gateway = gateway
	p.account = account
	logger.Info("Gateway initialized for account %s", account)
	return gateway, nil
}

// Current 返回已初始化的网关（可能为 nil）
func (p *Provider) Current() Gateway {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gateway
}

// Close 关闭当前网关
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Provider) closeLocked() {
	if c, ok := p.gateway.(Closer); ok {
		c.Close()
	}
	p.gateway = nil
	p.account = ""
}
