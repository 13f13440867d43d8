package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/primetrades/gofutures/fapi/types"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// TestValidateByKind 各订单类型的必填字段校验
func TestValidateByKind(t *testing.T) {
	cases := []struct {
		name    string
		req     OrderRequest
		wantErr bool
	}{
		{
			name: "合法市价单",
			req:  OrderRequest{Symbol: "BTCUSDT", Side: types.SideBuy, Kind: OrderKindMarket, Quantity: d("0.01")},
		},
		{
			name:    "市价单数量为 0",
			req:     OrderRequest{Symbol: "BTCUSDT", Side: types.SideBuy, Kind: OrderKindMarket},
			wantErr: true,
		},
		{
			name: "合法限价单",
			req:  OrderRequest{Symbol: "BTCUSDT", Side: types.SideSell, Kind: OrderKindLimit, Quantity: d("0.01"), Price: d("50000")},
		},
		{
			name:    "限价单缺少限价",
			req:     OrderRequest{Symbol: "BTCUSDT", Side: types.SideBuy, Kind: OrderKindLimit, Quantity: d("0.01")},
			wantErr: true,
		},
		{
			name: "合法止损限价单",
			req: OrderRequest{Symbol: "BTCUSDT", Side: types.SideSell, Kind: OrderKindStopLimit,
				Quantity: d("0.01"), Price: d("49000"), StopPrice: d("49500")},
		},
		{
			name: "止损限价单缺少触发价",
			req: OrderRequest{Symbol: "BTCUSDT", Side: types.SideSell, Kind: OrderKindStopLimit,
				Quantity: d("0.01"), Price: d("49000")},
			wantErr: true,
		},
		{
			name:    "缺少 symbol",
			req:     OrderRequest{Side: types.SideBuy, Kind: OrderKindMarket, Quantity: d("0.01")},
			wantErr: true,
		},
		{
			name:    "非法方向",
			req:     OrderRequest{Symbol: "BTCUSDT", Side: "HOLD", Kind: OrderKindMarket, Quantity: d("0.01")},
			wantErr: true,
		},
		{
			name:    "未知类型",
			req:     OrderRequest{Symbol: "BTCUSDT", Side: types.SideBuy, Kind: "ICEBERG", Quantity: d("0.01")},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr && err == nil {
				t.Error("应校验失败")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("不应校验失败: %v", err)
			}
			if tc.wantErr {
				if _, ok := err.(*ValidationError); !ok {
					t.Errorf("错误类型应为 *ValidationError，实际为 %T", err)
				}
			}
		})
	}
}

// TestOutcomeOf 状态到结局的映射
func TestOutcomeOf(t *testing.T) {
	cases := map[types.OrderStatus]Outcome{
		types.OrderStatusFilled:          OutcomeFilled,
		types.OrderStatusNew:             OutcomePending,
		types.OrderStatusPartiallyFilled: OutcomePending,
		types.OrderStatusCanceled:        OutcomeTerminalNoFill,
		types.OrderStatusRejected:        OutcomeTerminalNoFill,
		types.OrderStatusExpired:         OutcomeTerminalNoFill,
	}

	for status, want := range cases {
		if got := OutcomeOf(status); got != want {
			t.Errorf("OutcomeOf(%s) 应为 %s，实际为 %s", status, want, got)
		}
	}
}
