package account

import (
	"context"
	"errors"
	"time"

	goexv2 "github.com/nntaoli-project/goex/v2"
	"github.com/nntaoli-project/goex/v2/model"
)

type Balance struct {
	Currency  string  // 如 "USDT"
	Total     float64 // 总资产
	Available float64 // 可用资产
	Frozen    float64 // 冻结资产（如挂单锁定的部分）
}

type Service struct {
	prv goexv2.IPrvRest
}

// NewService 创建账户服务，prv是goex私有API客户端
func NewService(prv goexv2.IPrvRest) *Service {
	return &Service{prv: prv}
}

// GetBalance 查询指定币种的账户余额（可用余额）
func (s *Service) GetBalance(ctx context.Context, coin string) (*Balance, error) {
	// goex私有方法没有context，临时用超时控制
	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	type result struct {
		bal map[string]model.Account
		err error
	}
	ch := make(chan result, 1)

	go func() {
		bal, _, err := s.prv.GetAccount(coin)
		ch <- result{bal, err}
	}()

	select {
	case <-timeoutCtx.Done():
		return nil, timeoutCtx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		acc, ok := res.bal[coin]
		if !ok {
			return nil, errors.New("account info not found for coin " + coin)
		}
		return &Balance{
			Currency:  acc.Coin,
			Total:     acc.Balance,
			Available: acc.AvailableBalance,
			Frozen:    acc.FrozenBalance,
		}, nil
	}
}
