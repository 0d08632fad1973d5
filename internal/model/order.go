package model

import "time"

type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

type OrderType string

const (
	// 市价购买
	Market OrderType = "market"
	// 限价购买
	Limit OrderType = "limit"
)

// 交易类型
type OrderTradeType string

// 保证金模式（cross / isolated）
type OrderMgnMode string

// posSide 持仓方向 做多long或者做空short
type OrderPosSide string

const (
	// 使用合约 API
	OrderTradeSwap OrderTradeType = "swap"
	// 使用交割合约 API
	OrderTradeFutures OrderTradeType = "futures"
	// 全仓模式
	OrderMgnModeCross OrderMgnMode = "cross"
	// 逐仓模式
	OrderMgnModeIsolated OrderMgnMode = "isolated"
	// 做多
	OrderPosSideLong OrderPosSide = "long"
	// 做空
	OrderPosSideShort OrderPosSide = "short"
)

type Order struct {
	Symbol    string // BTC/USDT
	Side      OrderSide
	Price     float64 // 市价单时仅作记录
	Quantity  float64 // 币数量
	Contracts float64 // 张数，合约下单使用
	OrderType OrderType
	TradeType OrderTradeType
	MgnMode   OrderMgnMode
	Leverage  int
	ClientID  string    // 客户端订单id
	Timestamp time.Time // 下单触发时间
}

type OrderResponse struct {
	OrderId string
	Status  int
	Message string
}

type OrderStatus struct {
	OrderID   string
	Status    string
	Filled    float64
	Remaining float64
}

// AlgoOrder 算法单（这里只用条件止损），触发后市价成交
type AlgoOrder struct {
	Symbol       string
	Side         OrderSide // 平空仓时为 buy
	PosSide      OrderPosSide
	TriggerPrice float64
	Contracts    float64 // 张数
	MgnMode      OrderMgnMode
	TradeType    OrderTradeType
	ClientID     string
}

type AlgoOrderResponse struct {
	AlgoId  string
	Message string
}

type PositionInfo struct {
	Symbol   string       // 币对
	Dir      OrderPosSide // 方向
	Amount   float64      // 持有张数
	AvgPrice float64      // 开仓均价
	MgnMode  string       // 保证金模式
	LiqPx    string       // 强平价
	AlgoId   string
}
