package store

import (
	"sync"
	"sync/atomic"

	"github.com/blues/campaignd/internal/model"
)

// CampaignStore 活动集合与加载/错误标志。
// 读取方通过原子指针拿到不可变快照；写入方整体替换快照。
// 全量替换按票据排序：票据在拉取远端之前领取，较旧的拉取结果不会覆盖较新的结果。
type CampaignStore struct {
	mu       sync.Mutex // 串行化写入
	inflight int
	applied  uint64 // 已生效的最大票据，受 mu 保护
	issued   atomic.Uint64
	snapshot atomic.Pointer[model.State]
}

// New 创建空的存储
func New() *CampaignStore {
	s := &CampaignStore{}
	s.snapshot.Store(&model.State{Campaigns: []model.Campaign{}})
	return s
}

// Snapshot 返回当前快照，调用方不得修改其中的切片
func (s *CampaignStore) Snapshot() model.State {
	return *s.snapshot.Load()
}

// Campaigns 返回当前活动集合
func (s *CampaignStore) Campaigns() []model.Campaign {
	return s.snapshot.Load().Campaigns
}

// Find 按 id 查找本地镜像中的活动
func (s *CampaignStore) Find(id int64) (model.Campaign, bool) {
	return model.FindCampaign(s.Campaigns(), id)
}

// Begin 进入操作：loading=true 并清空错误
func (s *CampaignStore) Begin() {
	s.update(func(st *model.State) {
		s.inflight++
		st.Loading = true
		st.Error = ""
	})
}

// End 退出操作：所有进行中的操作结束后 loading 才为 false
func (s *CampaignStore) End() {
	s.update(func(st *model.State) {
		if s.inflight > 0 {
			s.inflight--
		}
		st.Loading = s.inflight > 0
	})
}

// SetError 记录错误信息
func (s *CampaignStore) SetError(msg string) {
	s.update(func(st *model.State) {
		st.Error = msg
	})
}

// Ticket 领取一张替换票据，须在拉取远端集合之前调用。票据从 1 开始递增。
func (s *CampaignStore) Ticket() uint64 {
	return s.issued.Add(1)
}

// Replace 以最新票据整体替换活动集合，返回替换前的集合
func (s *CampaignStore) Replace(campaigns []model.Campaign) []model.Campaign {
	previous, _ := s.ReplaceFrom(s.Ticket(), campaigns)
	return previous
}

// ReplaceFrom 用 ticket 对应的拉取结果替换集合。
// 若已有更新票据的结果生效则丢弃，返回 false。票据 0 只在尚未有任何结果生效时写入。
func (s *CampaignStore) ReplaceFrom(ticket uint64, campaigns []model.Campaign) ([]model.Campaign, bool) {
	if campaigns == nil {
		campaigns = []model.Campaign{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket < s.applied {
		return nil, false
	}
	s.applied = ticket

	current := s.snapshot.Load()
	next := *current
	next.Campaigns = campaigns
	s.snapshot.Store(&next)
	return current.Campaigns, true
}

func (s *CampaignStore) update(fn func(st *model.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.snapshot.Load()
	fn(&next)
	s.snapshot.Store(&next)
}
