package domain

import (
	"github.com/shopspring/decimal"
)

// Position 持仓记录：单个交易对的带符号净数量。
// 正数 = 净多头，负数 = 净空头，零 = 平仓。
// 每个 symbol 至多一条记录；记录缺失等价于净数量为 0。
type Position struct {
	Symbol      string          `json:"symbol"`
	NetQuantity decimal.Decimal `json:"netQuantity"`
}

// IsFlat 检查是否为平仓状态
func (p Position) IsFlat() bool {
	return p.NetQuantity.IsZero()
}

// IsShort 检查是否为净空头
func (p Position) IsShort() bool {
	return p.NetQuantity.IsNegative()
}
