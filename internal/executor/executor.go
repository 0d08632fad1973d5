package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"shortflow/conf"
	"shortflow/internal/exchange"
	"shortflow/internal/exchange/okx"
	"shortflow/internal/metrics"
	"shortflow/internal/model"
	"shortflow/internal/state"
	"shortflow/pkg/logger"
	"shortflow/pkg/recorder"
)

// 保证金额外预留10%，防止手续费和价差导致余额不足
const balanceBuffer = 1.1

// Executor 负责完整的开空流程：余额检查 -> 计算数量 -> 市价开空 -> 挂止损
// 空单成交后立即落盘 entry_placed 状态，止损失败重试时只补挂止损，不会重复开仓
type Executor struct {
	ex      exchange.Exchange
	store   *state.Store
	journal *recorder.JSONFileRecorder
	cfg     conf.TradeConfig
}

func New(ex exchange.Exchange, store *state.Store, journal *recorder.JSONFileRecorder, cfg conf.TradeConfig) *Executor {
	return &Executor{
		ex:      ex,
		store:   store,
		journal: journal,
		cfg:     cfg,
	}
}

// OpenShort 尝试开空，失败时固定间隔重试，最多 MaxRetries 次
// 返回是否最终成功，所有尝试的错误会合并记录
func (e *Executor) OpenShort(ctx context.Context) bool {
	tradeType := model.OrderTradeType(e.cfg.TradeType)

	var errs error
	for attempt := 1; attempt <= e.cfg.MaxRetries; attempt++ {
		err := e.attempt(ctx, tradeType)
		if err == nil {
			metrics.EntryAttempts.WithLabelValues("success").Inc()
			return true
		}

		errs = multierr.Append(errs, err)
		metrics.EntryAttempts.WithLabelValues("failure").Inc()
		logger.Error("开空尝试失败",
			logger.Pair("attempt", attempt),
			logger.Pair("max", e.cfg.MaxRetries),
			logger.Pair("err", err.Error()))

		if IsFatal(err) {
			logger.Error("致命错误，停止重试", logger.Pair("err", err.Error()))
			return false
		}
		if attempt == e.cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(e.cfg.RetryDelay):
		}
	}

	metrics.RetriesExhausted.Inc()
	logger.Error("开空重试次数用尽", logger.Pair("errs", errs.Error()))
	return false
}

// 单次完整尝试，任何一步失败都返回错误交给外层重试
func (e *Executor) attempt(ctx context.Context, tradeType model.OrderTradeType) error {
	rec, err := e.store.Load()
	if err != nil {
		return retryable("load_state", err)
	}
	if rec != nil {
		if rec.Protected() {
			// 已有带止损的完整仓位，无需动作
			return nil
		}
		// 空单已成交但止损缺失，只补挂止损，避免重复开仓
		logger.Warn("检测到未挂止损的持仓记录，补挂止损单",
			logger.Pair("order_id", rec.OrderId),
			logger.Pair("symbol", rec.Symbol))
		return e.placeStop(ctx, rec, tradeType)
	}

	// 1. 余额检查
	bal, err := e.ex.GetBalance(ctx, "USDT", tradeType)
	if err != nil {
		return retryable("balance", err)
	}
	required := e.cfg.MarginUSDT * balanceBuffer
	if bal.Available < required {
		return retryable("balance", fmt.Errorf("可用余额不足: available=%.2f required=%.2f", bal.Available, required))
	}

	// 2. 获取最新价格
	price, err := e.ex.GetLastPrice(e.cfg.Symbol, tradeType)
	if err != nil {
		return retryable("last_price", err)
	}
	if price <= 0 {
		return retryable("last_price", errors.New("invalid last price"))
	}

	// 3. 计算下单数量: (保证金 × 杠杆) / 价格，换算成张数
	ctVal, err := e.ex.ContractVal(e.cfg.Symbol, tradeType)
	if err != nil {
		return retryable("contract_val", err)
	}
	sz, qty := okx.CalculateContractOrder(e.cfg.MarginUSDT, e.cfg.Leverage, price, ctVal)
	if sz < 1 {
		return fatal("sizing", fmt.Errorf("保证金不足以开出一张合约: margin=%.2f price=%.2f ctVal=%v", e.cfg.MarginUSDT, price, ctVal))
	}

	// 4. 市价开空（逐仓）
	now := time.Now().UTC()
	order := &model.Order{
		Symbol:    e.cfg.Symbol,
		Side:      model.Sell,
		Price:     price,
		Quantity:  qty,
		Contracts: sz,
		OrderType: model.Market,
		TradeType: tradeType,
		MgnMode:   model.OrderMgnModeIsolated,
		Leverage:  e.cfg.Leverage,
		ClientID:  clientOrderID(),
		Timestamp: now,
	}
	resp, err := e.ex.PlaceOrder(ctx, order)
	if err != nil {
		return retryable("place_order", err)
	}
	metrics.EntriesPlaced.Inc()

	// 市价单一般立即成交，落盘前确认一次订单状态
	// 被交易所撤销的订单没有产生仓位，按可重试失败处理
	if st, stErr := e.ex.GetOrderStatus(resp.OrderId, e.cfg.Symbol, tradeType); stErr != nil {
		logger.Warn("查询入场订单状态失败，按已成交处理",
			logger.Pair("order_id", resp.OrderId),
			logger.Pair("err", stErr.Error()))
	} else if st.Filled == 0 && strings.Contains(strings.ToLower(st.Status), "cancel") {
		return retryable("order_status", fmt.Errorf("入场订单被撤销: %s", st.Status))
	}

	rec = &model.PositionRecord{
		OrderId:    resp.OrderId,
		Symbol:     e.cfg.Symbol,
		Amount:     qty,
		Contracts:  sz,
		EntryPrice: price,
		State:      model.PositionStateEntryPlaced,
		EntryTime:  now,
	}
	// 空单已成交，先落盘中间状态，后续重试才不会重复开仓
	if err := e.store.Save(rec); err != nil {
		logger.Error("持仓记录落盘失败", logger.Pair("err", err.Error()))
	}
	_ = e.journal.Record("entry_placed", rec)
	logger.Info("空单已成交",
		logger.Pair("symbol", rec.Symbol),
		logger.Pair("order_id", rec.OrderId),
		logger.Pair("price", price),
		logger.Pair("qty", qty),
		logger.Pair("contracts", sz))

	// 5. 挂止损
	return e.placeStop(ctx, rec, tradeType)
}

// 挂止损单：入场价上浮 stop-loss-pct，触发后市价买入平空
func (e *Executor) placeStop(ctx context.Context, rec *model.PositionRecord, tradeType model.OrderTradeType) error {
	trigger := okx.FloorFloat(rec.EntryPrice*(1+e.cfg.StopLossPct/100), 2)

	algo := &model.AlgoOrder{
		Symbol:       rec.Symbol,
		Side:         model.Buy,
		PosSide:      model.OrderPosSideShort,
		TriggerPrice: trigger,
		Contracts:    rec.Contracts,
		MgnMode:      model.OrderMgnModeIsolated,
		TradeType:    tradeType,
		ClientID:     clientOrderID(),
	}
	resp, err := e.ex.PlaceAlgoOrder(ctx, algo)
	if err != nil {
		return retryable("place_stop", err)
	}
	metrics.StopsPlaced.Inc()

	rec.StopOrderId = resp.AlgoId
	rec.StopPrice = trigger
	rec.State = model.PositionStateProtected
	if err := e.store.Save(rec); err != nil {
		return retryable("save_state", err)
	}
	_ = e.journal.Record("stop_placed", rec)
	logger.Info("止损单已挂",
		logger.Pair("symbol", rec.Symbol),
		logger.Pair("algo_id", rec.StopOrderId),
		logger.Pair("trigger", trigger))
	return nil
}

// okx clOrdId 只允许字母数字，去掉uuid的连字符
func clientOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
