package bot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shortflow/conf"
	"shortflow/internal/exchange"
	"shortflow/internal/executor"
	"shortflow/internal/model"
	"shortflow/internal/position"
	"shortflow/internal/scheduler"
	"shortflow/internal/state"
	"shortflow/pkg/recorder"
)

func newTestBot(t *testing.T, ex *exchange.SimulatedExchange) *Bot {
	t.Helper()
	dir := t.TempDir()
	cfg := &conf.Config{
		AppName: "shortflow-test",
		Okx:     conf.Okx{ApiKey: "k", SecretKey: "s", Password: "p"},
		Trade: conf.TradeConfig{
			Symbol:       "BTC/USDT",
			TradeType:    "swap",
			MarginUSDT:   1000,
			Leverage:     10,
			EntryHour:    0,
			StopLossPct:  5,
			MaxRetries:   1,
			RetryDelay:   time.Millisecond,
			PollInterval: time.Millisecond,
			StateFile:    filepath.Join(dir, "position.json"),
			JournalFile:  filepath.Join(dir, "journal.json"),
		},
	}

	store := state.NewStore(cfg.Trade.StateFile)
	journal := recorder.NewJSONFileRecorder(cfg.Trade.JournalFile)
	tracker := position.NewTracker(ex, store, cfg.Trade.Symbol, model.OrderTradeSwap)
	exec := executor.New(ex, store, journal, cfg.Trade)
	sched := scheduler.New(cfg.Trade.EntryHour)

	return New(cfg, ex, tracker, exec, sched)
}

func TestStartupChecks(t *testing.T) {
	ex := exchange.NewSimulatedExchange()
	b := newTestBot(t, ex)

	if err := b.Startup(context.Background()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if ex.Leverage != 10 {
		t.Fatalf("启动时应该设置杠杆, got %d", ex.Leverage)
	}
}

func TestStartupUnknownSymbol(t *testing.T) {
	ex := exchange.NewSimulatedExchange()
	ex.Symbols = []string{"ETH/USDT"}
	b := newTestBot(t, ex)

	if err := b.Startup(context.Background()); err == nil {
		t.Fatal("币对不存在时Startup应该失败")
	}
}

// 止损挂单一直失败、记录停在entry_placed时，主循环必须持续补挂止损，
// 而不是把带着裸空头的仓位当成正常持仓干等轮询
func TestRunResumesMissingStop(t *testing.T) {
	ex := exchange.NewSimulatedExchange()
	b := newTestBot(t, ex)
	b.cfg.Trade.PollInterval = time.Hour // 如果误入轮询分支，测试会超时暴露

	store := state.NewStore(b.cfg.Trade.StateFile)
	rec := &model.PositionRecord{
		OrderId:    "entry-1",
		Symbol:     "BTC/USDT",
		Amount:     0.2,
		Contracts:  20,
		EntryPrice: 50000,
		State:      model.PositionStateEntryPlaced,
		EntryTime:  time.Now().UTC(),
	}
	if err := store.Save(rec); err != nil {
		t.Fatal(err)
	}
	// 交易所侧空头仓位真实存在
	ex.Short = &model.PositionInfo{
		Symbol: "BTC-USDT-SWAP",
		Dir:    model.OrderPosSideShort,
		Amount: 20,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- b.Run(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := store.Load()
		if err == nil && got.Protected() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Protected() {
		t.Fatalf("主循环应该把记录补到protected, got %+v", got)
	}
	if len(ex.AlgoOrders) != 1 {
		t.Fatalf("应该补挂一笔止损单, got %d", len(ex.AlgoOrders))
	}
	if len(ex.Orders) != 0 {
		t.Fatalf("补挂阶段不能再开仓, got %d笔订单", len(ex.Orders))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ex := exchange.NewSimulatedExchange()
	b := newTestBot(t, ex)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- b.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Run应该返回context错误")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run没有在context取消后退出")
	}
}
