package monitor

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/blues/campaignd/internal/chain"
	"github.com/blues/campaignd/internal/config"
	"github.com/blues/campaignd/internal/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

type fakeSource struct {
	head    uint64
	logs    []types.Log
	err     error
	queries []ethereum.FilterQuery
}

func (s *fakeSource) BlockNumber(context.Context) (uint64, error) {
	return s.head, s.err
}

func (s *fakeSource) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	s.queries = append(s.queries, q)
	var out []types.Log
	for _, l := range s.logs {
		if l.BlockNumber >= q.FromBlock.Uint64() && l.BlockNumber <= q.ToBlock.Uint64() {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeStore struct {
	mu      sync.Mutex
	events  []model.ContractEvent
	cursors map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{cursors: make(map[string]int64)}
}

func (s *fakeStore) SaveEvents(_ context.Context, _ model.Address, events []model.ContractEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *fakeStore) Cursor(_ context.Context, name string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cursors[name]
	return v, ok, nil
}

func (s *fakeStore) SaveCursor(_ context.Context, name string, block int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[name] = block
	return nil
}

func newContract(t *testing.T, deployBlock int64) *chain.Contract {
	t.Helper()
	c, err := chain.NewContract(config.ContractConfig{Address: contractAddr, BlockNum: deployBlock})
	require.NoError(t, err)
	return c
}

func deletedLog(c *chain.Contract, id int64, block uint64, index uint) types.Log {
	return types.Log{
		Address:     c.GetAddress(),
		Topics:      []common.Hash{c.GetABI().Events["CampaignDeleted"].ID, common.BigToHash(big.NewInt(id))},
		BlockNumber: block,
		Index:       index,
		TxHash:      common.BigToHash(big.NewInt(int64(block)*100 + int64(index))),
	}
}

func TestPollJournalsEventsAndRefreshes(t *testing.T) {
	c := newContract(t, 10)
	source := &fakeSource{
		head: 25,
		logs: []types.Log{
			deletedLog(c, 1, 12, 0),
			deletedLog(c, 2, 21, 3),
			{Address: c.GetAddress(), Topics: []common.Hash{common.HexToHash("0x01")}, BlockNumber: 22},
			{Address: common.HexToAddress("0x01"), BlockNumber: 23},
		},
	}
	store := newFakeStore()
	refreshes := 0
	m, err := NewEventMonitor(source, c, store, func(context.Context) error {
		refreshes++
		return nil
	}, Options{BatchSize: 10, PoolSize: 2})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Poll(context.Background()))

	require.Len(t, source.queries, 2)
	assert.Equal(t, int64(10), source.queries[0].FromBlock.Int64())
	assert.Equal(t, int64(19), source.queries[0].ToBlock.Int64())
	assert.Equal(t, int64(25), source.queries[1].ToBlock.Int64())

	require.Len(t, store.events, 2)
	assert.Equal(t, "CampaignDeleted", store.events[0].Name)
	assert.Equal(t, int64(1), store.events[0].CampaignID)
	assert.Equal(t, int64(2), store.events[1].CampaignID)
	assert.Equal(t, int64(26), store.cursors[cursorName])
	assert.Equal(t, int64(26), m.NextBlock())
	assert.Equal(t, 1, refreshes)

	// 没有新区块时不再刷新
	require.NoError(t, m.Poll(context.Background()))
	assert.Equal(t, 1, refreshes)
	assert.Len(t, source.queries, 2)
}

func TestPollResumesFromSavedCursor(t *testing.T) {
	c := newContract(t, 5)
	store := newFakeStore()
	store.cursors[cursorName] = 40
	source := &fakeSource{head: 45}

	m, err := NewEventMonitor(source, c, store, nil, Options{})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Poll(context.Background()))
	require.Len(t, source.queries, 1)
	assert.Equal(t, int64(40), source.queries[0].FromBlock.Int64())
	assert.Equal(t, int64(46), m.NextBlock())
}

func TestPollBacksOffAfterError(t *testing.T) {
	c := newContract(t, 0)
	source := &fakeSource{err: errors.New("Too Many Requests")}

	m, err := NewEventMonitor(source, c, nil, nil, Options{})
	require.NoError(t, err)
	defer m.Close()

	assert.Error(t, m.Poll(context.Background()))
	// 退避期间直接返回
	assert.NoError(t, m.Poll(context.Background()))
	assert.Empty(t, source.queries)
}

func TestGroupLogsByContract(t *testing.T) {
	a := common.HexToAddress("0x0a")
	b := common.HexToAddress("0x0b")
	groups := groupLogsByContract([]types.Log{{Address: a}, {Address: b}, {Address: a}})

	assert.Len(t, groups[a], 2)
	assert.Len(t, groups[b], 1)
}

func TestCustomProcessorControlsRefresh(t *testing.T) {
	c := newContract(t, 0)
	source := &fakeSource{head: 3, logs: []types.Log{deletedLog(c, 5, 2, 0)}}
	refreshes := 0
	m, err := NewEventMonitor(source, c, nil, func(context.Context) error {
		refreshes++
		return nil
	}, Options{})
	require.NoError(t, err)
	defer m.Close()

	var seen []int64
	m.Register("CampaignDeleted", ProcessorFunc(func(ev model.ContractEvent) bool {
		seen = append(seen, ev.CampaignID)
		return false
	}))

	require.NoError(t, m.Poll(context.Background()))
	assert.Equal(t, []int64{5}, seen)
	assert.Zero(t, refreshes)
}
