package exchange

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"shortflow/internal/account"
	"shortflow/internal/model"
)

// 模拟交易所，本地联调和测试使用
// 可注入余额、价格、持仓和失败次数
type SimulatedExchange struct {
	mu sync.Mutex

	Available float64 // 可用余额（USDT）
	Price     float64 // 固定最新价
	CtVal     float64 // 合约面值
	Symbols   []string

	Short  *model.PositionInfo // 交易所侧的空头仓位，nil表示无持仓
	PosErr error               // 仓位查询注入的错误

	// 剩余失败次数，大于0时对应调用直接报错
	FailPlace int
	FailAlgo  int

	EntryCanceled bool // 注入：开仓订单提交后被交易所撤销

	Orders       []model.Order     // 已提交的订单
	AlgoOrders   []model.AlgoOrder // 已提交的止损单
	Leverage     int
	StatusChecks int // GetOrderStatus 被调用的次数
}

func NewSimulatedExchange() *SimulatedExchange {
	return &SimulatedExchange{
		Available: 100000,
		Price:     50000,
		CtVal:     0.01,
		Symbols:   []string{"BTC/USDT"},
	}
}

func (s *SimulatedExchange) LoadMarkets(tradeType model.OrderTradeType) error {
	return nil
}

func (s *SimulatedExchange) HasSymbol(symbol string, tradeType model.OrderTradeType) (bool, error) {
	for _, sym := range s.Symbols {
		if sym == symbol {
			return true, nil
		}
	}
	return false, nil
}

func (s *SimulatedExchange) ContractVal(symbol string, tradeType model.OrderTradeType) (float64, error) {
	return s.CtVal, nil
}

func (s *SimulatedExchange) SetLeverage(symbol string, leverage int, marginMode, posSide string, tradeType model.OrderTradeType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Leverage = leverage
	return nil
}

func (s *SimulatedExchange) GetLastPrice(symbol string, tradeType model.OrderTradeType) (float64, error) {
	return s.Price, nil
}

func (s *SimulatedExchange) GetBalance(ctx context.Context, coin string, tradeType model.OrderTradeType) (*account.Balance, error) {
	return &account.Balance{
		Currency:  coin,
		Total:     s.Available,
		Available: s.Available,
	}, nil
}

func (s *SimulatedExchange) PlaceOrder(ctx context.Context, order *model.Order) (*model.OrderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPlace > 0 {
		s.FailPlace--
		return nil, errors.New("simulated place order failure")
	}

	s.Orders = append(s.Orders, *order)

	// 开空立即成交，交易所侧出现空头仓位
	if order.Side == model.Sell {
		s.Short = &model.PositionInfo{
			Symbol:   order.Symbol,
			Dir:      model.OrderPosSideShort,
			Amount:   order.Contracts,
			AvgPrice: s.Price,
			MgnMode:  string(order.MgnMode),
		}
	}

	return &model.OrderResponse{
		OrderId: uuid.NewString(),
		Status:  1,
		Message: "Simulated order filled",
	}, nil
}

func (s *SimulatedExchange) GetOrderStatus(orderID, symbol string, tradeType model.OrderTradeType) (*model.OrderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.StatusChecks++
	if s.EntryCanceled {
		return &model.OrderStatus{OrderID: orderID, Status: "canceled"}, nil
	}

	var filled float64
	if n := len(s.Orders); n > 0 {
		filled = s.Orders[n-1].Contracts
	}
	return &model.OrderStatus{OrderID: orderID, Status: "filled", Filled: filled}, nil
}

func (s *SimulatedExchange) PlaceAlgoOrder(ctx context.Context, algo *model.AlgoOrder) (*model.AlgoOrderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAlgo > 0 {
		s.FailAlgo--
		return nil, errors.New("simulated algo order failure")
	}

	s.AlgoOrders = append(s.AlgoOrders, *algo)
	return &model.AlgoOrderResponse{AlgoId: uuid.NewString()}, nil
}

func (s *SimulatedExchange) GetPosition(symbol string, tradeType model.OrderTradeType) (long *model.PositionInfo, short *model.PositionInfo, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PosErr != nil {
		return nil, nil, s.PosErr
	}
	return nil, s.Short, nil
}

func (s *SimulatedExchange) ClosePosition(symbol string, side string, quantity float64, tdMode string, tradeType model.OrderTradeType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if side == "short" {
		s.Short = nil
	}
	return nil
}
