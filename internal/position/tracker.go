package position

import (
	"context"
	"errors"

	"shortflow/internal/exchange"
	"shortflow/internal/metrics"
	"shortflow/internal/model"
	"shortflow/internal/state"
	"shortflow/pkg/logger"
)

// Tracker 本地持仓记录与交易所真实仓位的对账
// 本地记录只是参考，交易所的仓位才是权威数据
type Tracker struct {
	ex        exchange.Exchange
	store     *state.Store
	symbol    string
	tradeType model.OrderTradeType
}

func NewTracker(ex exchange.Exchange, store *state.Store, symbol string, tradeType model.OrderTradeType) *Tracker {
	return &Tracker{
		ex:        ex,
		store:     store,
		symbol:    symbol,
		tradeType: tradeType,
	}
}

// HasOpenPosition 是否有未平的空头仓位
// 本地有记录时向交易所确认；交易所查不到匹配仓位就删掉本地记录
// 查询失败按无持仓处理（fails open），有重复开仓的风险，记录error日志
func (t *Tracker) HasOpenPosition(ctx context.Context) bool {
	rec, err := t.store.Load()
	if err != nil {
		logger.Error("读取本地持仓记录失败", logger.Pair("err", err.Error()))
		return false
	}
	if rec == nil {
		metrics.OpenPosition.Set(0)
		return false
	}

	_, short, err := t.ex.GetPosition(t.symbol, t.tradeType)
	if err != nil {
		// 对账失败，按无持仓处理
		metrics.ReconcileErrors.Inc()
		logger.Error("查询交易所仓位失败，按无持仓处理",
			logger.Pair("symbol", t.symbol),
			logger.Pair("err", err.Error()))
		return false
	}

	if short == nil || short.Amount <= 0 {
		// 交易所已无空头仓位，清除本地记录
		logger.Info("交易所仓位已平，清除本地持仓记录",
			logger.Pair("symbol", t.symbol),
			logger.Pair("order_id", rec.OrderId))
		if err := t.store.Clear(); err != nil {
			logger.Error("清除本地持仓记录失败", logger.Pair("err", err.Error()))
		}
		metrics.OpenPosition.Set(0)
		return false
	}

	metrics.OpenPosition.Set(1)
	return true
}

// Record 返回本地持仓记录，状态接口使用
func (t *Tracker) Record() (*model.PositionRecord, error) {
	return t.store.Load()
}

// ErrNoPosition 没有可平的持仓
var ErrNoPosition = errors.New("no open position")

// CloseShort 市价平掉当前空头仓位并清除本地记录，手动操作接口使用
// 交易所已无仓位时只做本地清理
func (t *Tracker) CloseShort(ctx context.Context) error {
	rec, err := t.store.Load()
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNoPosition
	}

	_, short, err := t.ex.GetPosition(t.symbol, t.tradeType)
	if err != nil {
		return err
	}
	if short != nil && short.Amount > 0 {
		mgnMode := short.MgnMode
		if mgnMode == "" {
			mgnMode = string(model.OrderMgnModeIsolated)
		}
		if err := t.ex.ClosePosition(t.symbol, string(model.OrderPosSideShort), short.Amount, mgnMode, t.tradeType); err != nil {
			return err
		}
		logger.Info("空头仓位已市价平掉",
			logger.Pair("symbol", t.symbol),
			logger.Pair("contracts", short.Amount))
	}

	if err := t.store.Clear(); err != nil {
		return err
	}
	metrics.OpenPosition.Set(0)
	return nil
}
