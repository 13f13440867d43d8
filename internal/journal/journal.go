package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/primetrades/gofutures/internal/ports"
)

// Journal 基于 SQLite 的订单流水存储（仅追加）。
// 记录每次提交的参数和单次状态查询解析出的结局，用于事后审计。
type Journal struct {
	db *sql.DB
}

// New 打开（必要时创建）流水数据库
func New(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开流水数据库失败: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("设置 pragma %s 失败: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS placements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_order_id TEXT NOT NULL,
			order_id INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			kind TEXT NOT NULL,
			quantity TEXT NOT NULL,
			price TEXT NOT NULL,
			stop_price TEXT NOT NULL,
			status TEXT NOT NULL,
			outcome TEXT NOT NULL,
			executed_qty TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("创建 placements 表失败: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record 追加一条下单记录
func (j *Journal) Record(ctx context.Context, rec ports.PlacementRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO placements
			(client_order_id, order_id, symbol, side, kind,
			 quantity, price, stop_price, status, outcome, executed_qty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ClientOrderID, rec.OrderID, rec.Symbol, rec.Side, rec.Kind,
		rec.Quantity.String(), rec.Price.String(), rec.StopPrice.String(),
		rec.Status, rec.Outcome, rec.ExecutedQty.String(), rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("写入流水失败: %w", err)
	}
	return nil
}

// List 按时间倒序返回指定 symbol 的流水；symbol 为空时返回全部
func (j *Journal) List(ctx context.Context, symbol string, limit int) ([]ports.PlacementRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT client_order_id, order_id, symbol, side, kind,
		       quantity, price, stop_price, status, outcome, executed_qty, created_at
		FROM placements`
	args := []any{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	defer rows.Close()

	var out []ports.PlacementRecord
	for rows.Next() {
		var (
			rec                                  ports.PlacementRecord
			quantity, price, stopPrice, executed string
			createdAt                            int64
		)
		if err := rows.Scan(
			&rec.ClientOrderID, &rec.OrderID, &rec.Symbol, &rec.Side, &rec.Kind,
			&quantity, &price, &stopPrice, &rec.Status, &rec.Outcome, &executed, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("读取流水行失败: %w", err)
		}
		rec.Quantity, _ = decimal.NewFromString(quantity)
		rec.Price, _ = decimal.NewFromString(price)
		rec.StopPrice, _ = decimal.NewFromString(stopPrice)
		rec.ExecutedQty, _ = decimal.NewFromString(executed)
		rec.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close 关闭数据库
func (j *Journal) Close() error {
	return j.db.Close()
}
