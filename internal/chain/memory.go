package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/blues/campaignd/internal/model"
)

// 内存账本的执行错误，与合约 require 的语义一致
var (
	ErrCampaignNotFound = errors.New("campaign does not exist")
	ErrNotOwner         = errors.New("caller is not the campaign owner")
	ErrAlreadyWithdrawn = errors.New("funds already withdrawn")
	ErrGoalNotReached   = errors.New("funding goal not reached")
	ErrHasDonations     = errors.New("campaign has donations")
)

// MemoryLedger 进程内账本，实现与合约相同的规则，用于本地开发与测试
type MemoryLedger struct {
	mu        sync.Mutex
	campaigns []model.RawCampaign
	nextID    int64
	nonce     uint64
}

// NewMemoryLedger 创建空账本
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// NewMemoryFactory 返回内存账本的网关构造函数，所有账户共享同一账本
func NewMemoryFactory(ledger *MemoryLedger) Factory {
	return func(ctx context.Context, account model.Address) (Gateway, error) {
		return ledger.As(account), nil
	}
}

// As 以指定账户身份访问账本
func (l *MemoryLedger) As(account model.Address) *MemoryGateway {
	return &MemoryGateway{ledger: l, account: account}
}

// Seed 直接写入一条活动记录（不经过交易），返回分配的 id
func (l *MemoryLedger) Seed(raw model.RawCampaign) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	raw.ID = big.NewInt(id)
	if raw.Target == nil {
		raw.Target = big.NewInt(0)
	}
	if raw.Deadline == nil {
		raw.Deadline = big.NewInt(0)
	}
	if raw.AmountCollected == nil {
		raw.AmountCollected = big.NewInt(0)
	}
	l.campaigns = append(l.campaigns, cloneRaw(raw))
	return id
}

func (l *MemoryLedger) list() []model.RawCampaign {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.RawCampaign, len(l.campaigns))
	for i, c := range l.campaigns {
		out[i] = cloneRaw(c)
	}
	return out
}

// submit 生成一笔待确认交易，执行在 Wait 时发生
func (l *MemoryLedger) submit(apply func() error) *memoryTx {
	l.mu.Lock()
	l.nonce++
	sum := sha256.Sum256(big.NewInt(int64(l.nonce)).Bytes())
	l.mu.Unlock()

	return &memoryTx{hash: "0x" + hex.EncodeToString(sum[:]), apply: apply}
}

func (l *MemoryLedger) find(id int64) (int, error) {
	for i, c := range l.campaigns {
		if c.ID.Int64() == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", ErrCampaignNotFound, id)
}

func (l *MemoryLedger) create(owner model.Address, title, description string, target *big.Int, deadline int64, image string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.campaigns = append(l.campaigns, model.RawCampaign{
		ID:              big.NewInt(l.nextID),
		Owner:           owner.Common().Hex(),
		Title:           title,
		Description:     description,
		Target:          new(big.Int).Set(target),
		Deadline:        big.NewInt(deadline),
		AmountCollected: big.NewInt(0),
		Image:           image,
	})
	l.nextID++
	return nil
}

func (l *MemoryLedger) donate(from model.Address, id int64, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.find(id)
	if err != nil {
		return err
	}
	c := &l.campaigns[i]
	if c.Withdrawn {
		return ErrAlreadyWithdrawn
	}

	c.Donators = append(c.Donators, from.Common().Hex())
	c.Donations = append(c.Donations, new(big.Int).Set(amount))
	c.AmountCollected = new(big.Int).Add(c.AmountCollected, amount)
	return nil
}

func (l *MemoryLedger) withdraw(from model.Address, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.find(id)
	if err != nil {
		return err
	}
	c := &l.campaigns[i]
	switch {
	case model.NewAddress(c.Owner) != from:
		return ErrNotOwner
	case c.Withdrawn:
		return ErrAlreadyWithdrawn
	case c.AmountCollected.Cmp(c.Target) < 0:
		return ErrGoalNotReached
	}

	c.Withdrawn = true
	return nil
}

func (l *MemoryLedger) remove(from model.Address, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.find(id)
	if err != nil {
		return err
	}
	c := l.campaigns[i]
	switch {
	case model.NewAddress(c.Owner) != from:
		return ErrNotOwner
	case c.AmountCollected.Sign() > 0:
		return ErrHasDonations
	case c.Withdrawn:
		return ErrAlreadyWithdrawn
	}

	l.campaigns = append(l.campaigns[:i], l.campaigns[i+1:]...)
	return nil
}

// MemoryGateway 以某个账户身份访问内存账本
type MemoryGateway struct {
	ledger  *MemoryLedger
	account model.Address
}

// List 读取全部活动
func (g *MemoryGateway) List(ctx context.Context) ([]model.RawCampaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.ledger.list(), nil
}

// Create 创建活动
func (g *MemoryGateway) Create(ctx context.Context, owner model.Address, title, description string, target *big.Int, deadline int64, image string) (PendingTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.ledger.submit(func() error {
		return g.ledger.create(owner, title, description, target, deadline, image)
	}), nil
}

// Donate 向活动捐款
func (g *MemoryGateway) Donate(ctx context.Context, id int64, amount *big.Int) (PendingTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s", amount)
	}
	return g.ledger.submit(func() error {
		return g.ledger.donate(g.account, id, amount)
	}), nil
}

// Withdraw 提取活动资金
func (g *MemoryGateway) Withdraw(ctx context.Context, id int64) (PendingTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.ledger.submit(func() error {
		return g.ledger.withdraw(g.account, id)
	}), nil
}

// Delete 删除活动
func (g *MemoryGateway) Delete(ctx context.Context, id int64) (PendingTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.ledger.submit(func() error {
		return g.ledger.remove(g.account, id)
	}), nil
}

// memoryTx 内存账本的待确认交易，Wait 时执行且只执行一次
type memoryTx struct {
	hash  string
	once  sync.Once
	apply func() error
	err   error
}

func (t *memoryTx) Hash() string {
	return t.hash
}

func (t *memoryTx) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.once.Do(func() {
		if err := t.apply(); err != nil {
			t.err = fmt.Errorf("%w: %w", ErrTxReverted, err)
		}
	})
	return t.err
}

func cloneRaw(c model.RawCampaign) model.RawCampaign {
	out := c
	out.ID = cloneInt(c.ID)
	out.Target = cloneInt(c.Target)
	out.Deadline = cloneInt(c.Deadline)
	out.AmountCollected = cloneInt(c.AmountCollected)
	out.Donators = append([]string(nil), c.Donators...)
	out.Donations = make([]*big.Int, len(c.Donations))
	for i, d := range c.Donations {
		out.Donations[i] = cloneInt(d)
	}
	return out
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
