package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PlacementRecord 一次下单流程的审计记录（提交参数 + 解析出的结局）
type PlacementRecord struct {
	ClientOrderID string
	OrderID       int64
	Symbol        string
	Side          string
	Kind          string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	StopPrice     decimal.Decimal
	Status        string
	Outcome       string
	ExecutedQty   decimal.Decimal
	CreatedAt     time.Time
}

// Journal 订单流水（仅追加）。写入失败只作告警处理，不影响下单结果。
type Journal interface {
	Record(ctx context.Context, rec PlacementRecord) error
}
