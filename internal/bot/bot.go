package bot

import (
	"context"
	"fmt"
	"time"

	"shortflow/conf"
	"shortflow/internal/exchange"
	"shortflow/internal/executor"
	"shortflow/internal/model"
	"shortflow/internal/position"
	"shortflow/internal/scheduler"
	"shortflow/pkg/logger"
)

// Bot 主循环：有持仓时粗轮询等待平仓，无持仓时等到每日开仓时间尝试开空
type Bot struct {
	cfg     *conf.Config
	ex      exchange.Exchange
	tracker *position.Tracker
	exec    *executor.Executor
	sched   *scheduler.Scheduler
}

func New(cfg *conf.Config, ex exchange.Exchange, tracker *position.Tracker, exec *executor.Executor, sched *scheduler.Scheduler) *Bot {
	return &Bot{
		cfg:     cfg,
		ex:      ex,
		tracker: tracker,
		exec:    exec,
		sched:   sched,
	}
}

// Startup 启动检查，任何一项失败都是致命错误
// 1. 市场元数据必须包含配置的币对
// 2. 设置杠杆必须成功（逐仓、做空方向）
func (b *Bot) Startup(ctx context.Context) error {
	tradeType := model.OrderTradeType(b.cfg.Trade.TradeType)

	if err := b.ex.LoadMarkets(tradeType); err != nil {
		return fmt.Errorf("加载市场元数据失败: %w", err)
	}
	ok, err := b.ex.HasSymbol(b.cfg.Trade.Symbol, tradeType)
	if err != nil {
		return fmt.Errorf("检查币对失败: %w", err)
	}
	if !ok {
		return fmt.Errorf("市场元数据中不存在币对 %s", b.cfg.Trade.Symbol)
	}

	err = b.ex.SetLeverage(b.cfg.Trade.Symbol, b.cfg.Trade.Leverage,
		string(model.OrderMgnModeIsolated), string(model.OrderPosSideShort), tradeType)
	if err != nil {
		return fmt.Errorf("设置杠杆失败: %w", err)
	}

	logger.Info("启动检查通过",
		logger.Pair("symbol", b.cfg.Trade.Symbol),
		logger.Pair("trade_type", b.cfg.Trade.TradeType),
		logger.Pair("leverage", b.cfg.Trade.Leverage),
		logger.Pair("entry_hour", b.cfg.Trade.EntryHour))
	return nil
}

// NextTrigger 下一次开仓时间，状态接口使用
func (b *Bot) NextTrigger() time.Time {
	return b.sched.NextTrigger(time.Now())
}

// Run 无限循环，只有context取消才会退出
// 任何周期内的错误都只记录日志，等待固定间隔后继续
func (b *Bot) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if b.tracker.HasOpenPosition(ctx) {
			// 持仓存在但止损还没挂上：继续补挂，不能让裸空头干等轮询
			if rec, err := b.tracker.Record(); err == nil && rec != nil && !rec.Protected() {
				logger.Warn("持仓缺少止损单，继续补挂",
					logger.Pair("order_id", rec.OrderId),
					logger.Pair("symbol", rec.Symbol))
				if ok := b.exec.OpenShort(ctx); !ok {
					if err := sleep(ctx, b.cfg.Trade.RetryDelay); err != nil {
						return err
					}
				}
				continue
			}

			// 持仓中，粗轮询等待仓位被止损或者手动平掉
			logger.Info("持仓中，等待仓位关闭",
				logger.Pair("poll", b.cfg.Trade.PollInterval.String()))
			if err := sleep(ctx, b.cfg.Trade.PollInterval); err != nil {
				return err
			}
			continue
		}

		if err := b.sched.Wait(ctx); err != nil {
			return err
		}

		// 到点后再确认一次，防止等待期间状态变化
		if b.tracker.HasOpenPosition(ctx) {
			continue
		}

		if ok := b.exec.OpenShort(ctx); !ok {
			logger.Warn("本轮开空失败，等待后重新进入调度",
				logger.Pair("delay", b.cfg.Trade.RetryDelay.String()))
			if err := sleep(ctx, b.cfg.Trade.RetryDelay); err != nil {
				return err
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
