package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/primetrades/gofutures/internal/domain"
)

var ledgerLog = logrus.WithField("component", "ledger")

// IOError 账本存储读写错误。
// 读失败会被吞掉并退化为空账本（只记日志）；写失败只作为告警上报，
// 已应用的内存变更不回滚——内存与落盘副本此时可能出现分歧。
type IOError struct {
	Op  string // load / save
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("账本%s失败: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Ledger 持仓账本：symbol → 带符号净数量，落盘于单个 JSON 文件。
// 所有变更在同一把锁下串行执行（整个映射一把锁，而不是按 symbol 分锁）；
// 锁从不跨网络调用持有。显式构造、按引用注入，不使用包级单例。
type Ledger struct {
	mu        sync.Mutex
	path      string
	positions map[string]decimal.Decimal
	// degraded 加载失败退化为空账本时置位，仅用于可观测性
	degraded bool
}

// Load 从存储文件加载账本。文件缺失、不可读或损坏时退化为空账本：
// 记一次告警日志，绝不让进程失败（可用性优先于正确性，属于有意的取舍）。
func Load(path string) *Ledger {
	l := &Ledger{
		path:      path,
		positions: make(map[string]decimal.Decimal),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			ledgerLog.Warnf("账本文件不可读，以空账本启动（降级模式）: %v", err)
			l.degraded = true
		}
		return l
	}

	if err := json.Unmarshal(data, &l.positions); err != nil {
		ledgerLog.Warnf("账本文件损坏，以空账本启动（降级模式）: %v", err)
		l.positions = make(map[string]decimal.Decimal)
		l.degraded = true
		return l
	}

	ledgerLog.Infof("账本加载完成: %s, %d 个 symbol", path, len(l.positions))
	return l
}

// Degraded 返回加载阶段是否发生过退化（静默数据丢失的可观测信号）
func (l *Ledger) Degraded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.degraded
}

// Get 返回 symbol 的净数量，未知 symbol 返回 0。永不失败。
func (l *Ledger) Get(symbol string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.positions[symbol]
}

// ApplyFill 将一笔已确认成交入账并同步落盘，返回新的净数量。
// quantity 先取绝对值再参与运算：买入累加，卖出扣减。
// 落盘失败时内存状态仍然生效，错误作为告警级别返回给调用方——
// 若在变更后、补写成功前崩溃，该笔增量会丢失。
func (l *Ledger) ApplyFill(symbol string, quantity decimal.Decimal, isBuy bool) (decimal.Decimal, error) {
	qty := quantity.Abs()

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.positions[symbol]
	var next decimal.Decimal
	if isBuy {
		next = current.Add(qty)
	} else {
		next = current.Sub(qty)
	}
	// 回到 0 也保留记录（值为 0），保证重载幂等
	l.positions[symbol] = next

	switch {
	case next.IsZero():
		ledgerLog.Infof("%s 仓位已平 (0)", symbol)
	case next.IsNegative():
		ledgerLog.Infof("%s 净空头仓位: %s", symbol, next)
	default:
		ledgerLog.Infof("%s 净多头仓位: %s", symbol, next)
	}

	if err := l.persistLocked(); err != nil {
		ledgerLog.Warnf("账本落盘失败（内存状态已更新）: %v", err)
		return next, &IOError{Op: "save", Err: err}
	}
	return next, nil
}

// Snapshot 返回所有净数量非零的持仓。
// 零值记录内部保留（幂等持久化需要），但不出现在任何“当前持仓”视图里。
func (l *Ledger) Snapshot() []domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Position, 0, len(l.positions))
	for symbol, qty := range l.positions {
		if qty.IsZero() {
			continue
		}
		out = append(out, domain.Position{Symbol: symbol, NetQuantity: qty})
	}
	return out
}

// persistLocked 全量重写存储文件（非追加式）。先写临时文件再 rename，
// 避免写一半留下损坏文件。调用方必须持有 l.mu。
func (l *Ledger) persistLocked() error {
	if dir := filepath.Dir(l.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(l.positions, "", "  ")
	if err != nil {
		return err
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}
