package scheduler

import (
	"context"
	"time"

	"github.com/blues/campaignd/internal/logger"
	"github.com/blues/campaignd/internal/model"
	"github.com/go-co-op/gocron/v2"
)

// Syncer 全量同步活动，由 logic.CampaignLogic 实现
type Syncer interface {
	GetCampaigns(ctx context.Context) ([]model.Campaign, error)
}

// CampaignSyncJob 周期性全量同步任务，兜底事件监控遗漏的变化
type CampaignSyncJob struct {
	syncer   Syncer
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
}

// NewCampaignSyncJob 创建同步任务
func NewCampaignSyncJob(syncer Syncer, interval time.Duration) *CampaignSyncJob {
	return &CampaignSyncJob{
		syncer:   syncer,
		interval: interval,
		timeout:  interval,
		now:      time.Now,
	}
}

// GetName 获取任务名称
func (j *CampaignSyncJob) GetName() string {
	return "campaign_sync"
}

// GetSchedule 获取调度配置
func (j *CampaignSyncJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *CampaignSyncJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	campaigns, err := j.syncer.GetCampaigns(ctx)
	if err != nil {
		logger.Error("Campaign sync failed: %v", err)
		return
	}

	summary := summarize(campaigns, j.now())
	logger.Info("Campaign sync completed: %d campaigns (%d open, %d goal reached, %d withdrawn, %d past deadline)",
		len(campaigns), summary.open, summary.goalReached, summary.withdrawn, summary.expired)
}

type statusSummary struct {
	open        int
	goalReached int
	withdrawn   int
	expired     int // 已过截止时间但仍在募集
}

func summarize(campaigns []model.Campaign, now time.Time) statusSummary {
	var s statusSummary
	for _, c := range campaigns {
		switch c.Status() {
		case model.CampaignStatusWithdrawn:
			s.withdrawn++
		case model.CampaignStatusGoalReached:
			s.goalReached++
		default:
			s.open++
			if now.After(c.Deadline) {
				s.expired++
			}
		}
	}
	return s
}
