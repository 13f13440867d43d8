package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/primetrades/gofutures/fapi/client"
	"github.com/primetrades/gofutures/fapi/signing"
	"github.com/primetrades/gofutures/internal/domain"
	"github.com/primetrades/gofutures/internal/ledger"
	"github.com/primetrades/gofutures/pkg/config"
	"github.com/primetrades/gofutures/pkg/logger"
)

// 持仓看板：周期性读取账本快照并拉取各 symbol 的最新标记价。
// Tkinter 表单的终端版替代——只展示，不改状态。

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	longStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	shortStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type row struct {
	position domain.Position
	price    decimal.Decimal
	priceErr error
}

type snapshot struct {
	rows     []row
	degraded bool
	taken    time.Time
}

type tickMsg time.Time

type refreshMsg snapshot

type model struct {
	book    *ledger.Ledger
	gateway *client.Client
	snap    snapshot
	width   int
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh 在后台收集账本快照和各 symbol 的价格
func (m model) refresh() tea.Cmd {
	book, gateway := m.book, m.gateway
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		positions := book.Snapshot()
		sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })

		snap := snapshot{degraded: book.Degraded(), taken: time.Now()}
		for _, p := range positions {
			r := row{position: p}
			if price, err := gateway.GetPrice(ctx, p.Symbol); err != nil {
				r.priceErr = err
			} else {
				r.price = price.Price
			}
			snap.rows = append(snap.rows, r)
		}
		return refreshMsg(snap)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())
	case refreshMsg:
		m.snap = snapshot(msg)
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("持仓看板 | 更新于 %s | q 退出, r 刷新", m.snap.taken.Format("15:04:05"))
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	if m.snap.degraded {
		b.WriteString(shortStyle.Render("⚠ 账本以降级模式加载（原文件不可读或损坏）"))
		b.WriteString("\n\n")
	}

	if len(m.snap.rows) == 0 {
		b.WriteString(dimStyle.Render("没有持仓"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%-12s %14s %14s\n", "SYMBOL", "净数量", "标记价"))
	for _, r := range m.snap.rows {
		qty := r.position.NetQuantity.String()
		if r.position.IsShort() {
			qty = shortStyle.Render(qty)
		} else {
			qty = longStyle.Render(qty)
		}
		price := "-"
		if r.priceErr == nil {
			price = r.price.String()
		}
		b.WriteString(fmt.Sprintf("%-12s %14s %14s\n", r.position.Symbol, qty, price))
	}
	return b.String()
}

func main() {
	configPath := flag.String("config", "", "配置文件路径（YAML，可选）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		return
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		return
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Testnet {
			baseURL = client.TestnetBaseURL
		} else {
			baseURL = client.ProductionBaseURL
		}
	}
	gateway := client.New(baseURL, signing.NewSigner(cfg.APIKey, cfg.APISecret), time.Duration(cfg.TimeoutSec)*time.Second)

	m := model{
		book:    ledger.Load(cfg.LedgerFile),
		gateway: gateway,
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Printf("看板退出异常: %v\n", err)
	}
}
