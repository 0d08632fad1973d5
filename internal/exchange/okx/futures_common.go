package okx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nntaoli-project/goex/v2/model"
	"github.com/nntaoli-project/goex/v2/okx/futures"

	model2 "shortflow/internal/model"
)

// 合约公共结构体，为实现公共的方法
type FuturesCommon struct {
	Okx
}

// 只有合约才可以获取持仓数据
func (e *FuturesCommon) getPosition(symbol string) ([]model2.PositionInfo, error) {

	pair, err := e.toCurrencyPair(symbol)
	if err != nil {
		return nil, err
	}

	prv, ok := e.prv.(*futures.PrvApi)
	if !ok {
		return nil, errors.New("Prv() 不是合约私有API，无法获取仓位")
	}

	res, data, err := prv.GetPositions(pair)
	if err != nil {
		return nil, err
	}
	type JSONData struct {
		Code string `json:"code"`
		Data []struct {
			MgnMode string `json:"mgnMode"`
			LiqPx   string `json:"liqPx"`
			AlgoId  string `json:"algoId"`
		} `json:"data"`
		Msg string `json:"msg"`
	}
	var jsonData JSONData
	if err := json.Unmarshal(data, &jsonData); err != nil {
		return nil, err
	}

	var items []model2.PositionInfo
	for i, re := range res {
		if re.Qty == 0 {
			// 没有张数的仓位忽略
			continue
		}
		var ps model2.OrderPosSide
		switch re.PosSide {
		case model.Futures_OpenBuy, model.Spot_Buy:
			// 开多仓位
			ps = model2.OrderPosSideLong
		case model.Futures_OpenSell, model.Spot_Sell:
			// 开空仓位
			ps = model2.OrderPosSideShort
		}
		item := model2.PositionInfo{
			Symbol:   pair.Symbol,
			Dir:      ps,
			Amount:   re.Qty,
			AvgPrice: re.AvgPx,
		}
		if i < len(jsonData.Data) {
			item.MgnMode = jsonData.Data[i].MgnMode
			item.LiqPx = jsonData.Data[i].LiqPx
			item.AlgoId = jsonData.Data[i].AlgoId
		}
		items = append(items, item)
	}

	return items, nil
}

// 查询是否有持仓
func (e *FuturesCommon) GetPosition(symbol string) (long *model2.PositionInfo, short *model2.PositionInfo, err error) {
	positions, err := e.getPosition(symbol)
	if err != nil {
		return nil, nil, err
	}

	for i := range positions {
		pos := positions[i]
		// 一般方向字段为 "long" 或 "short"，也可能是 "net"（净持仓模式）
		switch pos.Dir {
		case model2.OrderPosSideLong:
			if pos.Amount > 0 {
				long = &positions[i]
			}
		case model2.OrderPosSideShort:
			if pos.Amount > 0 {
				short = &positions[i]
			}
		}
	}

	return
}

// SetLeverage 设置合约杠杆
// instId     例如 "BTC-USDT-SWAP"，如果传入的是BTC/USDT，会通过CurrencyPair去查找对应的instId
// leverage   杠杆倍数，例如 10、20
// marginMode 保证金模式：isolated（逐仓）或 cross（全仓）
// posSide    持仓方向：long（做多）、short（做空）、""（全仓模式下可为空）
func (e *FuturesCommon) SetLeverage(symbol string, leverage int, marginMode, posSide string) error {

	// 当传入的是BTC/USDT时，通过CurrencyPair匹配正确的instId
	pair, err := e.toCurrencyPair(symbol)
	var instId = symbol
	if err == nil {
		instId = pair.Symbol
	}
	okxPrv, ok := e.prv.(*futures.PrvApi)
	if !ok {
		return errors.New("无法设置杠杆，Prv() 必须是合约")
	}

	// 安全性检查
	if marginMode != string(model2.OrderMgnModeIsolated) && marginMode != string(model2.OrderMgnModeCross) {
		return fmt.Errorf("不支持的保证金模式: %s", marginMode)
	}

	if marginMode == "isolated" && (posSide != "long" && posSide != "short") {
		return fmt.Errorf("逐仓模式下必须指定 posSide（long 或 short）")
	}

	opts := []model.OptionParameter{
		{Key: "mgnMode", Value: marginMode},
		{Key: "posSide", Value: posSide},
	}
	_, err = okxPrv.SetLeverage(instId, strconv.Itoa(leverage), opts...)
	if err != nil {
		return fmt.Errorf("设置杠杆失败: %w", err)
	}
	return nil
}

// PlaceAlgoOrder 挂条件止损单（触发后市价成交）
// okx v5 独立的止损单走 /api/v5/trade/order-algo，goex没有封装，直接签名请求
func (e *FuturesCommon) PlaceAlgoOrder(ctx context.Context, algo *model2.AlgoOrder) (*model2.AlgoOrderResponse, error) {
	pair, err := e.toCurrencyPair(algo.Symbol)
	if err != nil {
		return nil, err
	}
	prv, ok := e.prv.(*futures.PrvApi)
	if !ok {
		return nil, errors.New("PlaceAlgoOrder 需要合约私有API")
	}

	mgnMode := algo.MgnMode
	if mgnMode == "" {
		mgnMode = model2.OrderMgnModeIsolated
	}

	reqUrl := fmt.Sprintf("%s%s", prv.UriOpts.Endpoint, "/api/v5/trade/order-algo")

	params := url.Values{}
	params.Set("instId", pair.Symbol)
	params.Set("tdMode", string(mgnMode))
	params.Set("side", string(algo.Side))
	params.Set("posSide", string(algo.PosSide))
	params.Set("ordType", "conditional")
	params.Set("sz", strconv.FormatFloat(algo.Contracts, 'f', -1, 64))
	params.Set("slTriggerPx", strconv.FormatFloat(algo.TriggerPrice, 'f', -1, 64))
	params.Set("slOrdPx", "-1") // -1 表示触发后市价
	if algo.ClientID != "" {
		params.Set("algoClOrdId", algo.ClientID)
	}

	_, resp, err := prv.DoAuthRequest(http.MethodPost, reqUrl, &params, nil)
	if err != nil {
		return nil, fmt.Errorf("place algo order failed: %w", err)
	}

	var body struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			AlgoId string `json:"algoId"`
			SCode  string `json:"sCode"`
			SMsg   string `json:"sMsg"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp, &body); err != nil {
		return nil, err
	}
	if body.Code != "0" || len(body.Data) == 0 {
		return nil, fmt.Errorf("place algo order failed: code=%s msg=%s", body.Code, body.Msg)
	}
	d := body.Data[0]
	if d.SCode != "" && d.SCode != "0" {
		return nil, fmt.Errorf("place algo order rejected: sCode=%s sMsg=%s", d.SCode, d.SMsg)
	}

	return &model2.AlgoOrderResponse{AlgoId: d.AlgoId, Message: body.Msg}, nil
}

// 平仓函数
func (e *FuturesCommon) ClosePosition(symbol string, side string, quantity float64, tdMode string) error {

	pair, err := e.toCurrencyPair(symbol)
	if err != nil {
		return err
	}
	var orderSide model.OrderSide

	// 如果是多仓 -> 需要做空（卖）来平仓
	// 如果是空仓 -> 需要做多（买）来平仓
	switch side {
	case "long":
		orderSide = model.Futures_CloseBuy
	case "short":
		orderSide = model.Futures_CloseSell
	default:
		return fmt.Errorf("unknown side: %s", side)
	}

	opts := []model.OptionParameter{
		{Key: "tdMode", Value: tdMode},
	}

	// 提交市价平仓订单
	_, _, err = e.prv.CreateOrder(pair, quantity, 0, orderSide, model.OrderType_Market, opts...)
	return err
}

// costUSDT: 保证金（USDT）
// leverage: 杠杆倍数
// marketPrice: 标的价格
// ctVal: 每张合约代表多少币，比如BTC=0.01
// 合约下单计算：返回 sz(张数) 和 qty(币数量)
func CalculateContractOrder(costUSDT float64, leverage int, marketPrice float64, ctVal float64) (sz float64, qty float64) {
	// 名义价值 = 保证金 * 杠杆
	notional := costUSDT * float64(leverage)

	// 实际币数量
	qty = notional / marketPrice

	// 张数
	sz = qty / ctVal

	// 精确的币数量 = 张数 * ctVal
	qty = sz * ctVal

	sz = FloorFloat(sz, 2)
	qty = FloorFloat(qty, 4)
	return
}

// 向下取整保留 n 位小数
func FloorFloat(val float64, n int) float64 {
	factor := math.Pow10(n)
	return math.Floor(val*factor) / factor
}
