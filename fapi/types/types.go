package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Side 订单方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType 订单类型（Binance USDⓈ-M Futures）
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
	// 交易所侧的 stop-limit 类型名为 STOP（带 price + stopPrice）
	OrderTypeStop OrderType = "STOP"
)

// TimeInForce 订单有效期策略
type TimeInForce string

const (
	// TimeInForceGTC Good-Till-Cancelled，限价/止损限价单使用
	TimeInForceGTC TimeInForce = "GTC"
)

// OrderStatus 交易所返回的订单状态
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusRejected        OrderStatus = "REJECTED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
)

// IsTerminalNoFill 检查状态是否为未成交的终态（取消/拒绝/过期）
func (s OrderStatus) IsTerminalNoFill() bool {
	return s == OrderStatusCanceled || s == OrderStatusRejected || s == OrderStatusExpired
}

// OrderParams 下单请求参数（POST /fapi/v1/order）
type OrderParams struct {
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    decimal.Decimal
	Price       decimal.Decimal // LIMIT / STOP 使用
	StopPrice   decimal.Decimal // STOP 使用
	TimeInForce TimeInForce     // MARKET 不携带
	// ClientOrderID 客户端生成的订单 ID（newClientOrderId），用于幂等提交
	ClientOrderID string
}

// OrderResult 订单记录（下单响应 / 订单查询响应共用同一结构）
type OrderResult struct {
	OrderID       int64           `json:"orderId"`
	ClientOrderID string          `json:"clientOrderId"`
	Symbol        string          `json:"symbol"`
	Status        OrderStatus     `json:"status"`
	Side          Side            `json:"side"`
	Type          OrderType       `json:"type"`
	TimeInForce   TimeInForce     `json:"timeInForce"`
	Price         decimal.Decimal `json:"price"`
	StopPrice     decimal.Decimal `json:"stopPrice"`
	OrigQty       decimal.Decimal `json:"origQty"`
	ExecutedQty   decimal.Decimal `json:"executedQty"`
	UpdateTime    int64           `json:"updateTime"`
}

// CancelResult 撤单确认（DELETE /fapi/v1/order 响应）
type CancelResult struct {
	OrderID       int64       `json:"orderId"`
	ClientOrderID string      `json:"clientOrderId"`
	Symbol        string      `json:"symbol"`
	Status        OrderStatus `json:"status"`
}

// AssetBalance 单一资产余额
type AssetBalance struct {
	Asset              string          `json:"asset"`
	WalletBalance      decimal.Decimal `json:"walletBalance"`
	AvailableBalance   decimal.Decimal `json:"availableBalance"`
	UnrealizedProfit   decimal.Decimal `json:"unrealizedProfit"`
	MarginBalance      decimal.Decimal `json:"marginBalance"`
	CrosswalletBalance decimal.Decimal `json:"crossWalletBalance"`
}

// AccountSnapshot 账户信息快照（GET /fapi/v2/account）
type AccountSnapshot struct {
	TotalWalletBalance    decimal.Decimal `json:"totalWalletBalance"`
	TotalUnrealizedProfit decimal.Decimal `json:"totalUnrealizedProfit"`
	TotalMarginBalance    decimal.Decimal `json:"totalMarginBalance"`
	TotalInitialMargin    decimal.Decimal `json:"totalInitialMargin"`
	TotalMaintMargin      decimal.Decimal `json:"totalMaintMargin"`
	AvailableBalance      decimal.Decimal `json:"availableBalance"`
	Assets                []AssetBalance  `json:"assets"`
}

// SymbolPrice 最新标记价格（GET /fapi/v1/ticker/price）
type SymbolPrice struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Time   int64           `json:"time"`
}

// APIError 交易所 API 层错误响应体 {code, msg}
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance api error %d: %s", e.Code, e.Msg)
}
