package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/primetrades/gofutures/fapi/types"
	"github.com/primetrades/gofutures/internal/domain"
	"github.com/primetrades/gofutures/internal/ledger"
	"github.com/primetrades/gofutures/internal/ports"
)

var tradingLog = logrus.WithField("component", "trading_service")

// PlacementResult 一次下单流程的最终结果
type PlacementResult struct {
	Order   *types.OrderResult
	Outcome domain.Outcome
	// NetQuantity 成交入账后该 symbol 的净数量；仅 Outcome == FILLED 时非 nil
	NetQuantity *decimal.Decimal
	// LedgerWarning 入账后落盘失败的告警（内存已更新，落盘副本滞后）
	LedgerWarning error
}

// TradingService 订单跟踪器：驱动单笔订单走完
// 提交 → 状态解析 → （条件性）账本入账。
// 本身无状态、可重入，可从多个并发调用方同时调用；
// 唯一的共享可变资源是注入的 Ledger，由 Ledger 自己串行化。
//
// 已知局限：账本只记录完全成交的订单。部分成交的已执行部分
// 不会入账，实际敞口可能被低估。
type TradingService struct {
	gateway ports.Gateway
	ledger  *ledger.Ledger
	journal ports.Journal // 可选，nil 时不记流水
}

// NewTradingService 创建订单跟踪器。ledger 必须已加载；journal 可为 nil。
func NewTradingService(gateway ports.Gateway, l *ledger.Ledger, j ports.Journal) *TradingService {
	return &TradingService{gateway: gateway, ledger: l, journal: j}
}

// PlaceMarket 市价单。不携带 timeInForce（按最优价成交与否完全由交易所决定）。
func (s *TradingService) PlaceMarket(ctx context.Context, symbol string, side types.Side, quantity decimal.Decimal) (*PlacementResult, error) {
	return s.place(ctx, domain.OrderRequest{
		Symbol:   symbol,
		Side:     side,
		Kind:     domain.OrderKindMarket,
		Quantity: quantity,
	})
}

// PlaceLimit 限价单，GTC
func (s *TradingService) PlaceLimit(ctx context.Context, symbol string, side types.Side, quantity, price decimal.Decimal) (*PlacementResult, error) {
	return s.place(ctx, domain.OrderRequest{
		Symbol:   symbol,
		Side:     side,
		Kind:     domain.OrderKindLimit,
		Quantity: quantity,
		Price:    price,
	})
}

// PlaceStopLimit 止损限价单，GTC
func (s *TradingService) PlaceStopLimit(ctx context.Context, symbol string, side types.Side, quantity, price, stopPrice decimal.Decimal) (*PlacementResult, error) {
	return s.place(ctx, domain.OrderRequest{
		Symbol:    symbol,
		Side:      side,
		Kind:      domain.OrderKindStopLimit,
		Quantity:  quantity,
		Price:     price,
		StopPrice: stopPrice,
	})
}

// place 单笔订单的完整流程。校验失败立即返回，不发出任何网络请求；
// 提交成功后恰好做一次状态查询（没有轮询、没有重试直到成交）。
func (s *TradingService) place(ctx context.Context, req domain.OrderRequest) (*PlacementResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := types.OrderParams{
		Symbol:    req.Symbol,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     req.Price,
		StopPrice: req.StopPrice,
		// 客户端生成的幂等 ID，交易所侧去重用
		ClientOrderID: uuid.NewString(),
	}
	switch req.Kind {
	case domain.OrderKindMarket:
		params.Type = types.OrderTypeMarket
	case domain.OrderKindLimit:
		params.Type = types.OrderTypeLimit
		params.TimeInForce = types.TimeInForceGTC
	case domain.OrderKindStopLimit:
		params.Type = types.OrderTypeStop
		params.TimeInForce = types.TimeInForceGTC
	}

	tradingLog.Infof("提交订单: %s %s %s qty=%s", req.Kind, req.Side, req.Symbol, req.Quantity)
	submitted, err := s.gateway.SubmitOrder(ctx, params)
	if err != nil {
		return nil, err
	}

	// 提交后恰好一次状态查询
	order, err := s.gateway.GetOrderStatus(ctx, req.Symbol, submitted.OrderID)
	if err != nil {
		return nil, err
	}

	result := &PlacementResult{
		Order:   order,
		Outcome: domain.OutcomeOf(order.Status),
	}

	if result.Outcome == domain.OutcomeFilled {
		// 完全成交：按原始下单数量入账（而不是 executedQty）
		isBuy := req.Side == types.SideBuy
		net, lerr := s.ledger.ApplyFill(req.Symbol, req.Quantity, isBuy)
		result.NetQuantity = &net
		result.LedgerWarning = lerr
		tradingLog.Infof("%s %s %s 成交，当前净数量: %s",
			req.Side, req.Quantity, req.Symbol, net)
	}

	s.record(ctx, req, order, result.Outcome)
	return result, nil
}

// Cancel 撤单。只委托给网关，绝不触碰账本——
// 一个从未确认成交的订单从未影响过账本。
func (s *TradingService) Cancel(ctx context.Context, symbol string, orderID int64) (*types.CancelResult, error) {
	tradingLog.Infof("撤单: %s #%d", symbol, orderID)
	return s.gateway.CancelOrder(ctx, symbol, orderID)
}

// GetPosition 查询 symbol 的净数量（未知 symbol 为 0）
func (s *TradingService) GetPosition(symbol string) decimal.Decimal {
	return s.ledger.Get(symbol)
}

// ListPositions 返回所有净数量非零的持仓
func (s *TradingService) ListPositions() []domain.Position {
	return s.ledger.Snapshot()
}

// 以下为纯透传查询，不涉及账本状态

// GetAccountInfo 透传账户信息查询
func (s *TradingService) GetAccountInfo(ctx context.Context) (*types.AccountSnapshot, error) {
	return s.gateway.GetAccountInfo(ctx)
}

// GetBalance 透传余额查询
func (s *TradingService) GetBalance(ctx context.Context, asset string) (types.AssetBalance, error) {
	return s.gateway.GetBalance(ctx, asset)
}

// GetPrice 透传价格查询
func (s *TradingService) GetPrice(ctx context.Context, symbol string) (*types.SymbolPrice, error) {
	return s.gateway.GetPrice(ctx, symbol)
}

// ListOpenOrders 透传挂单查询；symbol 为空时查全部
func (s *TradingService) ListOpenOrders(ctx context.Context, symbol string) ([]types.OrderResult, error) {
	return s.gateway.ListOpenOrders(ctx, symbol)
}

// record 写订单流水。失败只记告警，不影响下单结果。
func (s *TradingService) record(ctx context.Context, req domain.OrderRequest, order *types.OrderResult, outcome domain.Outcome) {
	if s.journal == nil {
		return
	}
	rec := ports.PlacementRecord{
		ClientOrderID: order.ClientOrderID,
		OrderID:       order.OrderID,
		Symbol:        req.Symbol,
		Side:          string(req.Side),
		Kind:          string(req.Kind),
		Quantity:      req.Quantity,
		Price:         req.Price,
		StopPrice:     req.StopPrice,
		Status:        string(order.Status),
		Outcome:       string(outcome),
		ExecutedQty:   order.ExecutedQty,
		CreatedAt:     time.Now(),
	}
	if err := s.journal.Record(ctx, rec); err != nil {
		tradingLog.Warnf("订单流水写入失败: %v", err)
	}
}
