package okx

import (
	"context"
	"errors"
	"strings"

	goexv2 "github.com/nntaoli-project/goex/v2"
	"github.com/nntaoli-project/goex/v2/model"
	"github.com/nntaoli-project/goex/v2/options"

	"shortflow/internal/account"
	model2 "shortflow/internal/model"
)

// 永续合约
type OkxSwap struct {
	FuturesCommon
}

func NewOkxSwap(conf []options.ApiOption) *OkxSwap {
	pub := goexv2.OKx.Swap
	return &OkxSwap{
		FuturesCommon: FuturesCommon{Okx{
			prv:     pub.NewPrvApi(conf...),
			Account: account.NewService(pub.NewPrvApi(conf...)),
			pub:     pub,
		}},
	}
}

// 下单
// 合约开仓：buy=开多，sell=开空，数量单位为币
// 杠杆和保证金模式在启动阶段通过SetLeverage设置，这里只带tdMode和posSide
func (e *OkxSwap) PlaceOrder(ctx context.Context, order *model2.Order) (*model2.OrderResponse, error) {

	pair, err := e.toCurrencyPair(order.Symbol)
	if err != nil {
		return nil, err
	}
	var posSide model2.OrderPosSide
	var side model.OrderSide
	switch strings.ToLower(string(order.Side)) {
	case "buy":
		side = model.Futures_OpenBuy
		posSide = model2.OrderPosSideLong
	case "sell":
		side = model.Futures_OpenSell
		posSide = model2.OrderPosSideShort
	default:
		return nil, errors.New("invalid order side")
	}

	var orderType model.OrderType
	switch order.OrderType {
	case model2.Limit:
		orderType = model.OrderType_Limit
	case model2.Market:
		orderType = model.OrderType_Market
	default:
		return nil, errors.New("invalid order type")
	}

	/*
		合约交易需要设置tdMode
		| 值          | 含义   |
		| ---------- | ---- |
		| `cross`    | 全仓模式 |
		| `isolated` | 逐仓模式 |
	*/
	mgnMode := order.MgnMode
	if mgnMode == "" {
		mgnMode = model2.OrderMgnModeIsolated
	}
	order.MgnMode = mgnMode

	opts := []model.OptionParameter{
		{Key: "tdMode", Value: string(mgnMode)},
		{Key: "posSide", Value: string(posSide)},
	}
	if order.ClientID != "" {
		opts = append(opts, model.OptionParameter{Key: "clOrdId", Value: order.ClientID})
	}

	createdOrder, _, err := e.prv.CreateOrder(pair, order.Quantity, order.Price, side, orderType, opts...)
	if err != nil {
		return nil, err
	}

	return &model2.OrderResponse{
		OrderId: createdOrder.Id,
		Status:  int(createdOrder.Status),
	}, nil
}
