package monitor

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/blues/campaignd/internal/chain"
	"github.com/blues/campaignd/internal/logger"
	"github.com/blues/campaignd/internal/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"
)

// cursorName 扫描进度在事件仓储中的键
const cursorName = "crowdfunding"

// LogSource 链上日志来源，*ethclient.Client 满足该接口
type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// EventStore 事件与扫描进度的持久化
type EventStore interface {
	SaveEvents(ctx context.Context, contract model.Address, events []model.ContractEvent) error
	Cursor(ctx context.Context, name string) (int64, bool, error)
	SaveCursor(ctx context.Context, name string, block int64) error
}

// Refresher 发现活动事件后触发全量同步
type Refresher func(ctx context.Context) error

// Options 监控参数
type Options struct {
	BatchSize int64 // 每批扫描的区块数
	PoolSize  int   // 事件解析协程池大小
}

// EventMonitor 合约事件监控器，由调度器周期性调用 Poll
type EventMonitor struct {
	source     LogSource
	contract   *chain.Contract
	store      EventStore
	refresh    Refresher
	processors map[string]Processor
	pool       *ants.Pool
	batchSize  int64

	mu              sync.Mutex // 串行化 Poll，保护以下字段
	nextBlock       int64
	loaded          bool
	retryCount      int
	lastRetryTime   time.Time
	backoffDuration time.Duration
}

// NewEventMonitor 创建事件监控器；store 为 nil 时只在内存中记录进度
func NewEventMonitor(source LogSource, contract *chain.Contract, store EventStore, refresh Refresher, opts Options) (*EventMonitor, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 4
	}

	pool, err := ants.NewPool(opts.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create decode pool: %w", err)
	}

	return &EventMonitor{
		source:     source,
		contract:   contract,
		store:      store,
		refresh:    refresh,
		processors: defaultProcessors(),
		pool:       pool,
		batchSize:  opts.BatchSize,
	}, nil
}

// Register 注册或替换某类事件的处理器
func (m *EventMonitor) Register(name string, p Processor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processors[name] = p
}

// Close 释放协程池
func (m *EventMonitor) Close() {
	m.pool.Release()
}

// NextBlock 下一次扫描的起始区块
func (m *EventMonitor) NextBlock() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextBlock
}

// Poll 扫描自上次进度以来的新区块
func (m *EventMonitor) Poll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.retryCount > 0 && time.Since(m.lastRetryTime) < m.backoffDuration {
		logger.Debug("Monitor backing off until %s", m.lastRetryTime.Add(m.backoffDuration).Format(time.RFC3339))
		return nil
	}

	if err := m.loadStartBlock(ctx); err != nil {
		return m.handleError(err)
	}

	current, err := m.source.BlockNumber(ctx)
	if err != nil {
		return m.handleError(fmt.Errorf("failed to get current block number: %w", err))
	}
	logger.Debug("Current block number: %d", current)

	changed, err := m.processBlocksInBatches(ctx, m.nextBlock, int64(current))
	if err != nil {
		return m.handleError(err)
	}
	m.retryCount = 0

	if changed && m.refresh != nil {
		if err := m.refresh(ctx); err != nil {
			return fmt.Errorf("failed to refresh campaigns after events: %w", err)
		}
	}
	return nil
}

// loadStartBlock 取部署区块与已保存进度中的较大者
func (m *EventMonitor) loadStartBlock(ctx context.Context) error {
	if m.loaded {
		return nil
	}

	start := m.contract.GetBlockNum()
	if m.store != nil {
		saved, ok, err := m.store.Cursor(ctx, cursorName)
		if err != nil {
			return err
		}
		if ok && saved > start {
			start = saved
		}
	}

	m.nextBlock = start
	m.loaded = true
	logger.Info("Event monitor starting from block %d", start)
	return nil
}

// processBlocksInBatches 分批处理区块，返回是否需要全量同步
func (m *EventMonitor) processBlocksInBatches(ctx context.Context, fromBlock, toBlock int64) (bool, error) {
	changed := false
	for from := fromBlock; from <= toBlock; from += m.batchSize {
		to := from + m.batchSize - 1
		if to > toBlock {
			to = toBlock
		}

		events, err := m.processBatch(ctx, from, to)
		if err != nil {
			if isRateLimitError(err) {
				logger.Error("API rate limit hit while processing blocks %d-%d: %v", from, to, err)
			}
			return changed, err
		}
		for _, ev := range events {
			if m.dispatch(ev) {
				changed = true
			}
		}

		if m.store != nil {
			if err := m.store.SaveCursor(ctx, cursorName, to+1); err != nil {
				return changed, err
			}
		}
		m.nextBlock = to + 1
	}
	return changed, nil
}

// processBatch 拉取一批区块的日志并在协程池中并发解析
func (m *EventMonitor) processBatch(ctx context.Context, from, to int64) ([]model.ContractEvent, error) {
	address := m.contract.GetAddress()
	logs, err := m.source.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(from),
		ToBlock:   big.NewInt(to),
		Addresses: []common.Address{address},
	})
	if err != nil {
		return nil, fmt.Errorf("error getting logs for blocks %d-%d: %w", from, to, err)
	}

	logs = groupLogsByContract(logs)[address]
	if len(logs) == 0 {
		logger.Debug("No logs found for blocks %d-%d", from, to)
		return nil, nil
	}
	logger.Debug("Found %d logs for blocks %d-%d", len(logs), from, to)

	decoded := make([]*model.ContractEvent, len(logs))
	var wg sync.WaitGroup
	for i := range logs {
		i := i
		wg.Add(1)
		if err := m.pool.Submit(func() {
			defer wg.Done()
			decoded[i] = m.decode(logs[i])
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("failed to submit decode task: %w", err)
		}
	}
	wg.Wait()

	events := make([]model.ContractEvent, 0, len(logs))
	for _, ev := range decoded {
		if ev != nil {
			events = append(events, *ev)
		}
	}
	if len(events) == 0 {
		return nil, nil
	}

	if m.store != nil {
		if err := m.store.SaveEvents(ctx, model.AddressFromCommon(address), events); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// dispatch 交给对应处理器，未注册的事件只记录日志
func (m *EventMonitor) dispatch(ev model.ContractEvent) bool {
	p, ok := m.processors[ev.Name]
	if !ok {
		logger.Debug("No processor for event %s in block %d (tx %s)", ev.Name, ev.BlockNumber, ev.TxHash)
		return false
	}
	return p.Process(ev)
}

// decode 解析单条日志，无法识别的事件返回 nil
func (m *EventMonitor) decode(log types.Log) *model.ContractEvent {
	ev, err := m.contract.ParseEvent(log)
	if err != nil {
		logger.Error("Error parsing log %s#%d: %v", log.TxHash.Hex(), log.Index, err)
		return nil
	}
	if ev.CampaignID < 0 {
		return nil
	}
	return &ev
}

// handleError 记录错误并计算退避时间
func (m *EventMonitor) handleError(err error) error {
	m.retryCount++
	m.lastRetryTime = time.Now()

	if m.retryCount > 5 {
		m.backoffDuration = 5 * time.Minute
	} else {
		m.backoffDuration = time.Duration(m.retryCount) * 10 * time.Second
	}

	logger.Error("Monitor encountered error (retry %d): %v", m.retryCount, err)
	return err
}

func isRateLimitError(err error) bool {
	return strings.Contains(err.Error(), "Too Many Requests")
}

// groupLogsByContract 按合约地址分组日志
func groupLogsByContract(logs []types.Log) map[common.Address][]types.Log {
	logsByContract := make(map[common.Address][]types.Log)
	for _, log := range logs {
		logsByContract[log.Address] = append(logsByContract[log.Address], log)
	}
	return logsByContract
}
