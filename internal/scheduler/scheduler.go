package scheduler

import (
	"context"
	"time"

	"shortflow/pkg/logger"
)

// Scheduler 计算下一次每日触发时间并阻塞等待
// 每个周期都重新计算，时钟被调整或者流程被拖延后会自动对齐到下一个未来的整点
type Scheduler struct {
	hour int // 每日触发的UTC小时
}

func New(hour int) *Scheduler {
	return &Scheduler{hour: hour}
}

// NextTrigger 返回严格晚于 now 的最近一次触发时间（分秒清零）
// now 恰好等于整点触发时间时返回第二天，避免同一天触发两次
func (s *Scheduler) NextTrigger(now time.Time) time.Time {
	now = now.UTC()
	target := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, time.UTC)
	if !target.After(now) {
		target = target.Add(24 * time.Hour)
	}
	return target
}

// Wait 阻塞到下一次触发时间，context取消时提前返回
func (s *Scheduler) Wait(ctx context.Context) error {
	target := s.NextTrigger(time.Now())
	d := time.Until(target)

	logger.Info("等待下一次开仓时间",
		logger.Pair("target", target.Format(time.RFC3339)),
		logger.Pair("wait", d.String()))

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
