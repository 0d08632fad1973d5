package exchange

import (
	"context"

	"shortflow/internal/account"
	"shortflow/internal/model"
)

// Exchange 交易所网关，机器人只依赖这个接口
type Exchange interface {
	// LoadMarkets 加载市场元数据，启动检查用
	LoadMarkets(tradeType model.OrderTradeType) error
	// HasSymbol 配置的币对是否可交易
	HasSymbol(symbol string, tradeType model.OrderTradeType) (bool, error)
	// ContractVal 合约面值（每张多少币）
	ContractVal(symbol string, tradeType model.OrderTradeType) (float64, error)
	// SetLeverage 设置杠杆倍数
	SetLeverage(symbol string, leverage int, marginMode, posSide string, tradeType model.OrderTradeType) error
	// GetLastPrice 获取最新成交价
	GetLastPrice(symbol string, tradeType model.OrderTradeType) (float64, error)
	// GetBalance 获取可用余额
	GetBalance(ctx context.Context, coin string, tradeType model.OrderTradeType) (*account.Balance, error)
	// PlaceOrder 下单
	PlaceOrder(ctx context.Context, order *model.Order) (*model.OrderResponse, error)
	// GetOrderStatus 查询订单状态，下单后确认成交用
	GetOrderStatus(orderID, symbol string, tradeType model.OrderTradeType) (*model.OrderStatus, error)
	// PlaceAlgoOrder 挂条件止损单
	PlaceAlgoOrder(ctx context.Context, algo *model.AlgoOrder) (*model.AlgoOrderResponse, error)
	// GetPosition 查询是否有持仓
	GetPosition(symbol string, tradeType model.OrderTradeType) (long *model.PositionInfo, short *model.PositionInfo, err error)
	// ClosePosition 市价平仓
	ClosePosition(symbol string, side string, quantity float64, tdMode string, tradeType model.OrderTradeType) error
}
