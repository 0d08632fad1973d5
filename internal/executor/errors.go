package executor

import (
	"errors"
	"fmt"
)

// 交易错误分两类：可重试（网络、交易所临时错误、余额不足）和致命（配置或参数问题，重试没有意义）
type ErrKind int

const (
	KindRetryable ErrKind = iota
	KindFatal
)

type TradeError struct {
	Kind ErrKind
	Op   string // 出错的步骤，例如 balance / place_order
	Err  error
}

func (e *TradeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TradeError) Unwrap() error {
	return e.Err
}

func retryable(op string, err error) error {
	return &TradeError{Kind: KindRetryable, Op: op, Err: err}
}

func fatal(op string, err error) error {
	return &TradeError{Kind: KindFatal, Op: op, Err: err}
}

// IsFatal 是否是致命错误，致命错误直接结束重试
func IsFatal(err error) bool {
	var te *TradeError
	if errors.As(err, &te) {
		return te.Kind == KindFatal
	}
	return false
}
