package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/primetrades/gofutures/fapi/types"
)

// OrderKind 下单类型
type OrderKind string

const (
	OrderKindMarket    OrderKind = "MARKET"
	OrderKindLimit     OrderKind = "LIMIT"
	OrderKindStopLimit OrderKind = "STOP_LIMIT"
)

// OrderRequest 下单请求领域模型（临时对象，不持久化）
type OrderRequest struct {
	Symbol    string
	Side      types.Side
	Kind      OrderKind
	Quantity  decimal.Decimal
	Price     decimal.Decimal // LIMIT / STOP_LIMIT 必填
	StopPrice decimal.Decimal // STOP_LIMIT 必填
}

// ValidationError 校验错误：请求字段缺失或非法，发现于任何网络调用之前，不重试
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("参数校验失败: %s %s", e.Field, e.Reason)
}

// Validate 按下单类型校验必填字段。
// MARKET 需要 quantity；LIMIT 需要 quantity + price；
// STOP_LIMIT 需要 quantity + price + stopPrice。
func (r *OrderRequest) Validate() error {
	if r.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "不能为空"}
	}
	if r.Side != types.SideBuy && r.Side != types.SideSell {
		return &ValidationError{Field: "side", Reason: "必须为 BUY 或 SELL"}
	}
	if r.Quantity.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "quantity", Reason: "必须大于 0"}
	}

	switch r.Kind {
	case OrderKindMarket:
		// 市价单只需要 quantity
	case OrderKindLimit:
		if r.Price.LessThanOrEqual(decimal.Zero) {
			return &ValidationError{Field: "price", Reason: "限价单必须指定限价"}
		}
	case OrderKindStopLimit:
		if r.Price.LessThanOrEqual(decimal.Zero) {
			return &ValidationError{Field: "price", Reason: "止损限价单必须指定限价"}
		}
		if r.StopPrice.LessThanOrEqual(decimal.Zero) {
			return &ValidationError{Field: "stopPrice", Reason: "止损限价单必须指定触发价"}
		}
	default:
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("未知的订单类型 %s", r.Kind)}
	}
	return nil
}

// Outcome 单次下单流程的结局状态。
// 状态机：SUBMITTED → (一次状态查询) → {FILLED, PENDING, TERMINAL_NO_FILL}，
// 仅存在于一次请求/响应周期内，不持久化。
type Outcome string

const (
	// OutcomeFilled 完全成交，已按原始数量入账
	OutcomeFilled Outcome = "FILLED"
	// OutcomePending 未完成（NEW / PARTIALLY_FILLED），不入账
	OutcomePending Outcome = "PENDING"
	// OutcomeTerminalNoFill 未成交的终态（CANCELED / REJECTED / EXPIRED），不入账
	OutcomeTerminalNoFill Outcome = "TERMINAL_NO_FILL"
)

// OutcomeOf 从交易所状态推导订单结局
func OutcomeOf(status types.OrderStatus) Outcome {
	switch {
	case status == types.OrderStatusFilled:
		return OutcomeFilled
	case status.IsTerminalNoFill():
		return OutcomeTerminalNoFill
	default:
		return OutcomePending
	}
}
