package ledger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func tempLedgerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "positions.json")
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// TestGetUnknownSymbol 未知 symbol 的净数量应为 0
func TestGetUnknownSymbol(t *testing.T) {
	l := Load(tempLedgerPath(t))

	if !l.Get("BTCUSDT").IsZero() {
		t.Errorf("未知 symbol 应返回 0，实际为 %s", l.Get("BTCUSDT"))
	}
}

// TestApplyFillSignedSum 净数量应等于带符号数量之和（买入为正，卖出为负）
func TestApplyFillSignedSum(t *testing.T) {
	l := Load(tempLedgerPath(t))

	if _, err := l.ApplyFill("BTCUSDT", d("0.5"), true); err != nil {
		t.Fatalf("买入入账失败: %v", err)
	}
	if _, err := l.ApplyFill("BTCUSDT", d("0.2"), false); err != nil {
		t.Fatalf("卖出入账失败: %v", err)
	}
	if _, err := l.ApplyFill("BTCUSDT", d("1.0"), false); err != nil {
		t.Fatalf("卖出入账失败: %v", err)
	}

	want := d("-0.7")
	if !l.Get("BTCUSDT").Equal(want) {
		t.Errorf("净数量应为 %s，实际为 %s", want, l.Get("BTCUSDT"))
	}
}

// TestApplyFillUsesAbsoluteQuantity 数量先取绝对值再参与运算
func TestApplyFillUsesAbsoluteQuantity(t *testing.T) {
	l := Load(tempLedgerPath(t))

	net, err := l.ApplyFill("ETHUSDT", d("-2.0"), true)
	if err != nil {
		t.Fatalf("入账失败: %v", err)
	}
	if !net.Equal(d("2.0")) {
		t.Errorf("负数数量应取绝对值，净数量应为 2.0，实际为 %s", net)
	}
}

// TestScenarioETHUSDT 完整场景：2.0 买 → 0.5 卖 → 1.5 卖，
// 快照先包含后排除 ETHUSDT，而 Get 始终可用
func TestScenarioETHUSDT(t *testing.T) {
	l := Load(tempLedgerPath(t))

	if net, _ := l.ApplyFill("ETHUSDT", d("2.0"), true); !net.Equal(d("2.0")) {
		t.Fatalf("第一笔后净数量应为 2.0，实际为 %s", net)
	}
	if net, _ := l.ApplyFill("ETHUSDT", d("0.5"), false); !net.Equal(d("1.5")) {
		t.Fatalf("第二笔后净数量应为 1.5，实际为 %s", net)
	}

	snap := l.Snapshot()
	if len(snap) != 1 || snap[0].Symbol != "ETHUSDT" || !snap[0].NetQuantity.Equal(d("1.5")) {
		t.Fatalf("快照应只包含 ETHUSDT:1.5，实际为 %v", snap)
	}

	if net, _ := l.ApplyFill("ETHUSDT", d("1.5"), false); !net.IsZero() {
		t.Fatalf("平仓后净数量应为 0，实际为 %s", net)
	}
	if len(l.Snapshot()) != 0 {
		t.Errorf("平仓后快照应为空，实际为 %v", l.Snapshot())
	}
	if !l.Get("ETHUSDT").IsZero() {
		t.Errorf("平仓后 Get 应返回 0，实际为 %s", l.Get("ETHUSDT"))
	}
}

// TestZeroEntryRetainedInStore 回到 0 的记录在存储文件里保留（幂等重载）
func TestZeroEntryRetainedInStore(t *testing.T) {
	path := tempLedgerPath(t)
	l := Load(path)

	l.ApplyFill("BTCUSDT", d("1"), true)
	l.ApplyFill("BTCUSDT", d("1"), false)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取存储文件失败: %v", err)
	}
	var stored map[string]decimal.Decimal
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("存储文件应为合法 JSON: %v", err)
	}
	qty, ok := stored["BTCUSDT"]
	if !ok {
		t.Fatal("归零的 symbol 应保留在存储文件中")
	}
	if !qty.IsZero() {
		t.Errorf("归零的 symbol 存储值应为 0，实际为 %s", qty)
	}
}

// TestRoundTripReload 持久化后重新加载应还原同样的映射
func TestRoundTripReload(t *testing.T) {
	path := tempLedgerPath(t)
	l := Load(path)

	l.ApplyFill("BTCUSDT", d("0.003"), true)
	l.ApplyFill("ETHUSDT", d("1.25"), false)

	reloaded := Load(path)
	if !reloaded.Get("BTCUSDT").Equal(d("0.003")) {
		t.Errorf("重载后 BTCUSDT 应为 0.003，实际为 %s", reloaded.Get("BTCUSDT"))
	}
	if !reloaded.Get("ETHUSDT").Equal(d("-1.25")) {
		t.Errorf("重载后 ETHUSDT 应为 -1.25，实际为 %s", reloaded.Get("ETHUSDT"))
	}
	if reloaded.Degraded() {
		t.Error("正常重载不应进入降级模式")
	}
}

// TestLoadMissingFile 文件不存在时以空账本启动，不算降级
func TestLoadMissingFile(t *testing.T) {
	l := Load(filepath.Join(t.TempDir(), "nonexistent.json"))

	if len(l.Snapshot()) != 0 {
		t.Error("缺失文件应得到空账本")
	}
	if l.Degraded() {
		t.Error("文件不存在属于首次启动，不应标记降级")
	}
}

// TestLoadCorruptFile 文件损坏时退化为空账本并标记降级，绝不失败
func TestLoadCorruptFile(t *testing.T) {
	path := tempLedgerPath(t)
	if err := os.WriteFile(path, []byte("{not valid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := Load(path)
	if len(l.Snapshot()) != 0 {
		t.Error("损坏文件应得到空账本")
	}
	if !l.Degraded() {
		t.Error("损坏文件应标记降级模式")
	}
	if !l.Get("BTCUSDT").IsZero() {
		t.Error("降级后的账本仍应正常工作")
	}
}

// TestApplyFillPersistFailure 落盘失败时内存变更生效，错误作为告警返回
func TestApplyFillPersistFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "positions.json")
	// 让目标路径是一个目录，rename 必然失败
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	l := Load(path)
	net, err := l.ApplyFill("BTCUSDT", d("1"), true)
	if err == nil {
		t.Fatal("落盘失败应返回错误")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("错误类型应为 *IOError，实际为 %T", err)
	}
	if !net.Equal(d("1")) {
		t.Errorf("落盘失败不应回滚内存变更，净数量应为 1，实际为 %s", net)
	}
	if !l.Get("BTCUSDT").Equal(d("1")) {
		t.Errorf("内存状态应保持更新，实际为 %s", l.Get("BTCUSDT"))
	}
}

// TestConcurrentApplyFill 并发入账串行化：各 symbol 的净数量互不干扰，
// 结果等于各自带符号数量之和
func TestConcurrentApplyFill(t *testing.T) {
	l := Load(tempLedgerPath(t))

	symbols := []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	const rounds = 50

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		for i := 0; i < rounds; i++ {
			wg.Add(2)
			go func(sym string) {
				defer wg.Done()
				l.ApplyFill(sym, d("2"), true)
			}(symbol)
			go func(sym string) {
				defer wg.Done()
				l.ApplyFill(sym, d("1"), false)
			}(symbol)
		}
	}
	wg.Wait()

	// 每个 symbol：50 * (+2) + 50 * (-1) = +50
	want := decimal.NewFromInt(rounds)
	for _, symbol := range symbols {
		if !l.Get(symbol).Equal(want) {
			t.Errorf("%s 净数量应为 %s，实际为 %s", symbol, want, l.Get(symbol))
		}
	}
}
