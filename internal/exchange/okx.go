package exchange

import (
	"context"
	"fmt"

	"github.com/nntaoli-project/goex/v2/options"

	"shortflow/internal/account"
	"shortflow/internal/exchange/okx"
	model2 "shortflow/internal/model"
)

type OkxExchange struct {
	apiCache map[model2.OrderTradeType]okx.OkxService
	apiConf  []options.ApiOption
}

// 构造函数只存储配置，不初始化接口
func NewOkxExchange(apiKey, apiSecret, passphrase string) *OkxExchange {
	opts := []options.ApiOption{
		options.WithApiKey(apiKey),
		options.WithApiSecretKey(apiSecret),
		options.WithPassphrase(passphrase),
	}

	return &OkxExchange{
		apiCache: make(map[model2.OrderTradeType]okx.OkxService),
		apiConf:  opts,
	}
}

// 懒加载api服务，首次使用时拉取市场元数据验证连接
func (e *OkxExchange) getApi(marketType model2.OrderTradeType) (okx.OkxService, error) {

	if api, ok := e.apiCache[marketType]; ok {
		return api, nil
	}

	var api okx.OkxService
	switch marketType {
	case model2.OrderTradeSwap:
		api = okx.NewOkxSwap(e.apiConf)
	case model2.OrderTradeFutures:
		api = okx.NewOkxFutures(e.apiConf)
	default:
		return nil, fmt.Errorf("unsupported market type: %s", marketType)
	}

	if _, _, err := api.GetExchangeInfo(); err != nil {
		return nil, fmt.Errorf("GetExchangeInfo err: %w", err)
	}
	e.apiCache[marketType] = api
	return api, nil
}

func (e *OkxExchange) LoadMarkets(tradeType model2.OrderTradeType) error {
	_, err := e.getApi(tradeType)
	return err
}

func (e *OkxExchange) HasSymbol(symbol string, tradeType model2.OrderTradeType) (bool, error) {
	api, err := e.getApi(tradeType)
	if err != nil {
		return false, err
	}
	return api.HasSymbol(symbol), nil
}

func (e *OkxExchange) ContractVal(symbol string, tradeType model2.OrderTradeType) (float64, error) {
	api, err := e.getApi(tradeType)
	if err != nil {
		return 0, err
	}
	return api.ContractVal(symbol)
}

func (e *OkxExchange) GetLastPrice(symbol string, tradeType model2.OrderTradeType) (float64, error) {
	api, err := e.getApi(tradeType)
	if err != nil {
		return 0, err
	}
	return api.GetLastPrice(symbol)
}

func (e *OkxExchange) GetBalance(ctx context.Context, coin string, tradeType model2.OrderTradeType) (*account.Balance, error) {
	api, err := e.getApi(tradeType)
	if err != nil {
		return nil, err
	}
	return api.Balance(ctx, coin)
}

func (e *OkxExchange) PlaceOrder(ctx context.Context, order *model2.Order) (*model2.OrderResponse, error) {
	api, err := e.getApi(order.TradeType)
	if err != nil {
		return nil, err
	}
	return api.PlaceOrder(ctx, order)
}

func (e *OkxExchange) GetOrderStatus(orderID, symbol string, tradeType model2.OrderTradeType) (*model2.OrderStatus, error) {
	api, err := e.getApi(tradeType)
	if err != nil {
		return nil, err
	}
	return api.GetOrderStatus(orderID, symbol)
}

func (e *OkxExchange) PlaceAlgoOrder(ctx context.Context, algo *model2.AlgoOrder) (*model2.AlgoOrderResponse, error) {
	api, err := e.getApi(algo.TradeType)
	if err != nil {
		return nil, err
	}
	return api.PlaceAlgoOrder(ctx, algo)
}

// SetLeverage 设置合约杠杆
// marginMode 保证金模式：isolated（逐仓）或 cross（全仓）
// posSide    持仓方向：long（做多）、short（做空）、""（全仓模式下可为空）
func (e *OkxExchange) SetLeverage(symbol string, leverage int, marginMode, posSide string, tradeType model2.OrderTradeType) error {
	api, err := e.getApi(tradeType)
	if err != nil {
		return err
	}
	return api.SetLeverage(symbol, leverage, marginMode, posSide)
}

// 查询是否有持仓
func (e *OkxExchange) GetPosition(symbol string, tradeType model2.OrderTradeType) (long *model2.PositionInfo, short *model2.PositionInfo, err error) {
	api, err := e.getApi(tradeType)
	if err != nil {
		return nil, nil, err
	}
	return api.GetPosition(symbol)
}

// 平仓函数
func (e *OkxExchange) ClosePosition(symbol string, side string, quantity float64, tdMode string, tradeType model2.OrderTradeType) error {
	api, err := e.getApi(tradeType)
	if err != nil {
		return err
	}
	return api.ClosePosition(symbol, side, quantity, tdMode)
}
