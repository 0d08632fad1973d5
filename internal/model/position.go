package model

import "time"

// 持仓记录的状态
// entry_placed: 空单已成交但止损还没挂上，重试时只需要补挂止损
// protected:    止损已挂，仓位完整
type PositionState string

const (
	PositionStateEntryPlaced PositionState = "entry_placed"
	PositionStateProtected   PositionState = "protected"
)

// PositionRecord 本地持仓记录，整个程序最多只存在一条
// 交易所的真实仓位才是权威数据，本地记录只用来防止重复开仓
type PositionRecord struct {
	OrderId     string        `json:"order_id"`
	StopOrderId string        `json:"stop_order_id,omitempty"`
	Symbol      string        `json:"symbol"`
	Amount      float64       `json:"amount"`    // 币数量
	Contracts   float64       `json:"contracts"` // 张数
	EntryPrice  float64       `json:"entry_price"`
	StopPrice   float64       `json:"stop_price,omitempty"`
	State       PositionState `json:"state"`
	EntryTime   time.Time     `json:"entry_time"`
}

// Protected 止损是否已经挂上
func (r *PositionRecord) Protected() bool {
	return r != nil && r.State == PositionStateProtected
}
