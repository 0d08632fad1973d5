package position

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"shortflow/internal/exchange"
	"shortflow/internal/model"
	"shortflow/internal/state"
)

func newTestTracker(t *testing.T) (*Tracker, *exchange.SimulatedExchange, *state.Store) {
	t.Helper()
	ex := exchange.NewSimulatedExchange()
	store := state.NewStore(filepath.Join(t.TempDir(), "position.json"))
	tr := NewTracker(ex, store, "BTC/USDT", model.OrderTradeSwap)
	return tr, ex, store
}

func TestHasOpenPositionNoRecord(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	if tr.HasOpenPosition(context.Background()) {
		t.Fatal("没有本地记录时应该返回false")
	}
}

func TestHasOpenPositionClosedOnExchange(t *testing.T) {
	tr, ex, store := newTestTracker(t)
	ex.Short = nil // 交易所无仓位

	if err := store.Save(&model.PositionRecord{OrderId: "1", Symbol: "BTC/USDT", Contracts: 20}); err != nil {
		t.Fatal(err)
	}

	if tr.HasOpenPosition(context.Background()) {
		t.Fatal("交易所无仓位时应该返回false")
	}

	// 本地记录应该被清除
	rec, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Fatalf("本地记录应该被删除, got %+v", rec)
	}
}

func TestHasOpenPositionConfirmed(t *testing.T) {
	tr, ex, store := newTestTracker(t)
	ex.Short = &model.PositionInfo{
		Symbol:   "BTC-USDT-SWAP",
		Dir:      model.OrderPosSideShort,
		Amount:   20,
		AvgPrice: 50000,
	}

	if err := store.Save(&model.PositionRecord{OrderId: "1", Symbol: "BTC/USDT", Contracts: 20}); err != nil {
		t.Fatal(err)
	}

	if !tr.HasOpenPosition(context.Background()) {
		t.Fatal("交易所确认有空头仓位时应该返回true")
	}

	// 本地记录保留
	rec, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("本地记录不应该被删除")
	}
}

func TestHasOpenPositionQueryError(t *testing.T) {
	tr, ex, store := newTestTracker(t)
	ex.PosErr = errors.New("exchange unavailable")

	if err := store.Save(&model.PositionRecord{OrderId: "1", Symbol: "BTC/USDT", Contracts: 20}); err != nil {
		t.Fatal(err)
	}

	// 查询失败按无持仓处理（fails open）
	if tr.HasOpenPosition(context.Background()) {
		t.Fatal("查询失败时应该返回false")
	}

	// 但是对账没有完成，本地记录不能删
	rec, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("查询失败时本地记录应该保留")
	}
}

func TestCloseShort(t *testing.T) {
	tr, ex, store := newTestTracker(t)
	ex.Short = &model.PositionInfo{
		Symbol:  "BTC-USDT-SWAP",
		Dir:     model.OrderPosSideShort,
		Amount:  20,
		MgnMode: "isolated",
	}

	if err := store.Save(&model.PositionRecord{
		OrderId:   "1",
		Symbol:    "BTC/USDT",
		Contracts: 20,
		State:     model.PositionStateProtected,
	}); err != nil {
		t.Fatal(err)
	}

	if err := tr.CloseShort(context.Background()); err != nil {
		t.Fatalf("CloseShort: %v", err)
	}
	if ex.Short != nil {
		t.Fatal("交易所侧的空头仓位应该被平掉")
	}
	rec, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Fatalf("本地记录应该被清除, got %+v", rec)
	}
}

func TestCloseShortNoPosition(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	if err := tr.CloseShort(context.Background()); !errors.Is(err, ErrNoPosition) {
		t.Fatalf("无持仓时应该返回ErrNoPosition, got %v", err)
	}
}

func TestHasOpenPositionZeroContracts(t *testing.T) {
	tr, ex, store := newTestTracker(t)
	ex.Short = &model.PositionInfo{
		Symbol: "BTC-USDT-SWAP",
		Dir:    model.OrderPosSideShort,
		Amount: 0,
	}

	if err := store.Save(&model.PositionRecord{OrderId: "1", Symbol: "BTC/USDT"}); err != nil {
		t.Fatal(err)
	}

	if tr.HasOpenPosition(context.Background()) {
		t.Fatal("张数为0的仓位应该按已平处理")
	}
	rec, _ := store.Load()
	if rec != nil {
		t.Fatal("张数为0时本地记录应该被删除")
	}
}
