package scheduler

import (
	"context"
	"time"

	"github.com/blues/campaignd/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// Poller 事件轮询，由 monitor.EventMonitor 实现
type Poller interface {
	Poll(ctx context.Context) error
}

// EventPollJob 合约事件轮询任务
type EventPollJob struct {
	poller   Poller
	interval time.Duration
}

// NewEventPollJob 创建事件轮询任务
func NewEventPollJob(poller Poller, interval time.Duration) *EventPollJob {
	return &EventPollJob{poller: poller, interval: interval}
}

// GetName 获取任务名称
func (j *EventPollJob) GetName() string {
	return "event_poll"
}

// GetSchedule 获取调度配置
func (j *EventPollJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *EventPollJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	if err := j.poller.Poll(ctx); err != nil {
		logger.Warn("Event poll failed: %v", err)
	}
}
