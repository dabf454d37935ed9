package store

import (
	"sync"
	"testing"

	"github.com/blues/campaignd/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBeginEndTracksInflight(t *testing.T) {
	s := New()
	assert.False(t, s.Snapshot().Loading)

	s.Begin()
	s.Begin()
	assert.True(t, s.Snapshot().Loading)

	s.End()
	assert.True(t, s.Snapshot().Loading)

	s.End()
	assert.False(t, s.Snapshot().Loading)

	// 多余的 End 不会使计数变为负数
	s.End()
	s.Begin()
	assert.True(t, s.Snapshot().Loading)
}

func TestBeginClearsError(t *testing.T) {
	s := New()
	s.SetError("boom")
	assert.Equal(t, "boom", s.Snapshot().Error)

	s.Begin()
	assert.Empty(t, s.Snapshot().Error)
}

func TestSnapshotIsStableAcrossReplace(t *testing.T) {
	s := New()
	s.Replace([]model.Campaign{{ID: 1}})
	before := s.Snapshot()

	previous := s.Replace([]model.Campaign{{ID: 2}, {ID: 3}})
	assert.Len(t, previous, 1)
	assert.Len(t, before.Campaigns, 1)
	assert.Equal(t, int64(1), before.Campaigns[0].ID)

	c, ok := s.Find(3)
	assert.True(t, ok)
	assert.Equal(t, int64(3), c.ID)
	_, ok = s.Find(1)
	assert.False(t, ok)
}

func TestReplaceNilYieldsEmpty(t *testing.T) {
	s := New()
	s.Replace(nil)
	assert.NotNil(t, s.Campaigns())
	assert.Empty(t, s.Campaigns())
}

func TestConcurrentReaders(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Begin()
			s.Replace([]model.Campaign{{ID: int64(i)}})
			s.End()
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	assert.False(t, s.Snapshot().Loading)
	assert.Len(t, s.Campaigns(), 1)
}

func TestReplaceFromDropsOlderTicket(t *testing.T) {
	s := New()
	older := s.Ticket()
	newer := s.Ticket()

	_, ok := s.ReplaceFrom(newer, []model.Campaign{{ID: 1, Withdrawn: true}})
	assert.True(t, ok)

	previous, ok := s.ReplaceFrom(older, []model.Campaign{{ID: 1}})
	assert.False(t, ok)
	assert.Nil(t, previous)
	c, _ := s.Find(1)
	assert.True(t, c.Withdrawn)

	_, ok = s.ReplaceFrom(s.Ticket(), []model.Campaign{{ID: 2}})
	assert.True(t, ok)
}

func TestReplaceFromZeroTicketOnlyBeforeFirstResult(t *testing.T) {
	s := New()
	_, ok := s.ReplaceFrom(0, []model.Campaign{{ID: 7}})
	assert.True(t, ok)
	assert.Len(t, s.Campaigns(), 1)

	s.Replace([]model.Campaign{{ID: 8}, {ID: 9}})
	_, ok = s.ReplaceFrom(0, []model.Campaign{{ID: 7}})
	assert.False(t, ok)
	assert.Len(t, s.Campaigns(), 2)
}
