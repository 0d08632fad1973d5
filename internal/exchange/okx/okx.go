package okx

import (
	"context"
	"errors"
	"strings"

	goexv2 "github.com/nntaoli-project/goex/v2"
	"github.com/nntaoli-project/goex/v2/model"

	"shortflow/internal/account"
	model2 "shortflow/internal/model"
)

type OkxService interface {
	PlaceOrder(ctx context.Context, order *model2.Order) (*model2.OrderResponse, error)
	PlaceAlgoOrder(ctx context.Context, algo *model2.AlgoOrder) (*model2.AlgoOrderResponse, error)
	GetOrderStatus(orderID string, symbol string) (*model2.OrderStatus, error)
	GetLastPrice(symbol string) (float64, error)
	GetExchangeInfo() (map[string]model.CurrencyPair, []byte, error)
	HasSymbol(symbol string) bool
	ContractVal(symbol string) (float64, error)
	Balance(ctx context.Context, coin string) (*account.Balance, error)
	SetLeverage(symbol string, leverage int, marginMode, posSide string) error
	GetPosition(symbol string) (long *model2.PositionInfo, short *model2.PositionInfo, err error)
	ClosePosition(symbol string, side string, quantity float64, tdMode string) error
}

// OKX 合约交易的基础结构，swap和futures共用
type Okx struct {
	prv     goexv2.IPrvRest
	Account *account.Service
	exInfo  map[string]model.CurrencyPair
	pub     goexv2.IPubRest
}

func (e *Okx) getPub() goexv2.IPubRest {
	return e.pub
}

// symbol 格式转换: "BTC/USDT" -> goex 需要的 CurrencyPair
func (e *Okx) toCurrencyPair(symbol string) (model.CurrencyPair, error) {
	parts := strings.Split(symbol, "/")
	if len(parts) == 1 { // 防止BTC-USDT-SWAP
		parts = strings.Split(symbol, "-")
	}
	if len(parts) > 2 { // 取前两个，防止BTC-USDT-SWAP
		parts = parts[:2]
	}
	if len(parts) < 2 {
		return model.CurrencyPair{}, errors.New("invalid symbol format, expected like BTC/USDT")
	}
	return e.getPub().NewCurrencyPair(parts[0], parts[1])
}

// 获取最新价格
func (e *Okx) GetLastPrice(symbol string) (float64, error) {
	pair, err := e.toCurrencyPair(symbol)
	if err != nil {
		return 0, err
	}
	ticker, _, err := e.getPub().GetTicker(pair)
	if err != nil {
		return 0, err
	}
	if ticker == nil {
		return 0, errors.New("failed to get ticker")
	}
	return ticker.Last, nil
}

// 获取订单状态
func (e *Okx) GetOrderStatus(orderID string, symbol string) (*model2.OrderStatus, error) {
	pair, err := e.toCurrencyPair(symbol)
	if err != nil {
		return nil, err
	}

	info, _, err := e.prv.GetOrderInfo(pair, orderID)
	if err != nil {
		return nil, err
	}
	return &model2.OrderStatus{
		OrderID:   info.Id,
		Status:    info.Status.String(),
		Filled:    info.ExecutedQty,
		Remaining: info.Qty - info.ExecutedQty,
	}, nil
}

// 初始化时加载所有可交易币对
// 测试连接，创建订单时需要调用GetExchangeInfo获取pair
func (e *Okx) GetExchangeInfo() (map[string]model.CurrencyPair, []byte, error) {
	info, data, err := e.getPub().GetExchangeInfo()
	if err == nil {
		e.exInfo = info
	}
	return info, data, err
}

// HasSymbol 市场元数据中是否存在该币对，启动检查使用
func (e *Okx) HasSymbol(symbol string) bool {
	_, err := e.toCurrencyPair(symbol)
	return err == nil
}

// ContractVal 合约面值（每张代表多少币），下单换算张数时使用
func (e *Okx) ContractVal(symbol string) (float64, error) {
	pair, err := e.toCurrencyPair(symbol)
	if err != nil {
		return 0, err
	}
	if pair.ContractVal <= 0 {
		return 0, errors.New("contract value not available for " + symbol)
	}
	return pair.ContractVal, nil
}

func (e *Okx) Balance(ctx context.Context, coin string) (*account.Balance, error) {
	return e.Account.GetBalance(ctx, coin)
}
