package ports

import (
	"context"

	"github.com/primetrades/gofutures/fapi/types"
)

// Gateway 交易所网关合约（外部协作者）。
// 所有调用都要求预先计算好的请求签名（毫秒时间戳 + HMAC），
// 且不携带服务端幂等保证——超时后重试提交可能重复下单。
//
// NOTE: 接口刻意放在中立包里，避免 services 与 fapi 之间产生环依赖，
// 也让 services 层可以用假实现做隔离测试。
type Gateway interface {
	GetAccountInfo(ctx context.Context) (*types.AccountSnapshot, error)
	GetBalance(ctx context.Context, asset string) (types.AssetBalance, error)
	GetPrice(ctx context.Context, symbol string) (*types.SymbolPrice, error)
	SubmitOrder(ctx context.Context, params types.OrderParams) (*types.OrderResult, error)
	GetOrderStatus(ctx context.Context, symbol string, orderID int64) (*types.OrderResult, error)
	ListOpenOrders(ctx context.Context, symbol string) ([]types.OrderResult, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) (*types.CancelResult, error)
}
