package okx

import (
	"context"

	goexv2 "github.com/nntaoli-project/goex/v2"
	"github.com/nntaoli-project/goex/v2/options"

	"shortflow/internal/account"
	model2 "shortflow/internal/model"
)

// 交割合约
type OkxFutures struct {
	OkxSwap
}

func NewOkxFutures(conf []options.ApiOption) *OkxFutures {
	pub := goexv2.OKx.Futures
	return &OkxFutures{
		OkxSwap: OkxSwap{
			FuturesCommon: FuturesCommon{Okx{
				prv:     pub.NewPrvApi(conf...),
				Account: account.NewService(pub.NewPrvApi(conf...)),
				pub:     pub,
			}},
		},
	}
}

// 下单逻辑与永续一致，区别只在于走交割合约的API
func (e *OkxFutures) PlaceOrder(ctx context.Context, order *model2.Order) (*model2.OrderResponse, error) {
	return e.OkxSwap.PlaceOrder(ctx, order)
}
