package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/primetrades/gofutures/fapi/client"
	"github.com/primetrades/gofutures/fapi/signing"
	"github.com/primetrades/gofutures/fapi/types"
	"github.com/primetrades/gofutures/internal/journal"
	"github.com/primetrades/gofutures/internal/ledger"
	"github.com/primetrades/gofutures/internal/ports"
	"github.com/primetrades/gofutures/internal/services"
	"github.com/primetrades/gofutures/pkg/config"
	"github.com/primetrades/gofutures/pkg/logger"
)

// 终端渲染样式
var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true) // cyan
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // green
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))             // red
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func usage() {
	fmt.Println("用法:")
	fmt.Println("  bot account                                            查询账户信息")
	fmt.Println("  bot balance [-asset USDT]                              查询资产余额")
	fmt.Println("  bot price [-symbol BTCUSDT]                            查询最新价格")
	fmt.Println("  bot market -symbol S -side BUY|SELL -quantity Q        市价单")
	fmt.Println("  bot limit -symbol S -side BUY|SELL -quantity Q -price P  限价单")
	fmt.Println("  bot stop -symbol S -side BUY|SELL -quantity Q -price P -stop-price SP  止损限价单")
	fmt.Println("  bot open_orders [-symbol S]                            查询挂单")
	fmt.Println("  bot cancel -symbol S -order-id ID                      撤单")
	fmt.Println("  bot position -symbol S                                 查询单一持仓")
	fmt.Println("  bot positions                                          查询全部持仓")
	fmt.Println("  bot history [-symbol S] [-limit N]                     查询订单流水")
	fmt.Println()
	fmt.Println("全局参数: -config <file>（YAML，可选）；API_KEY / API_SECRET 从环境变量或 .env 读取")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	command := os.Args[1]
	if command == "-h" || command == "--help" || command == "help" {
		usage()
		return
	}

	// 子命令通用参数
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "配置文件路径（YAML，可选）")
	symbol := fs.String("symbol", "", "交易对（默认取配置）")
	side := fs.String("side", "", "订单方向 BUY / SELL")
	quantity := fs.String("quantity", "", "订单数量")
	price := fs.String("price", "", "限价")
	stopPrice := fs.String("stop-price", "", "止损触发价")
	asset := fs.String("asset", "", "资产（默认取配置）")
	orderID := fs.Int64("order-id", 0, "订单 ID")
	limit := fs.Int("limit", 20, "流水条数上限")
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}
	symbolProvided := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "symbol" {
			symbolProvided = true
		}
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("加载配置失败: %v", err)
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		fail("初始化日志失败: %v", err)
	}

	if *symbol == "" {
		*symbol = cfg.DefaultSymbol
	}
	if *asset == "" {
		*asset = cfg.DefaultAsset
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
	ctx := context.Background()

	// 启动前连通性检查
	if err := gateway.Ping(ctx); err != nil {
		fail("连接 Binance Futures API 失败: %v", err)
	}
	mode := "PRODUCTION"
	if cfg.Testnet {
		mode = "TESTNET"
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("✓ 已连接 Binance Futures (%s)", mode)))

	book := ledger.Load(cfg.LedgerFile)

	var jnl ports.Journal
	var jnlStore *journal.Journal
	if cfg.JournalFile != "" {
		jnlStore, err = journal.New(cfg.JournalFile)
		if err != nil {
			logrus.Warnf("打开订单流水失败，本次不记流水: %v", err)
		} else {
			jnl = jnlStore
			defer jnlStore.Close()
		}
	}

	svc := services.NewTradingService(gateway, book, jnl)

	switch command {
	case "account":
		info, err := svc.GetAccountInfo(ctx)
		if err != nil {
			fail("查询账户信息失败: %v", err)
		}
		printAccount(info)

	case "balance":
		b, err := svc.GetBalance(ctx, *asset)
		if err != nil {
			fail("查询余额失败: %v", err)
		}
		fmt.Println(titleStyle.Render("=== 余额 ==="))
		fmt.Printf("资产: %s\n可用余额: %s\n", b.Asset, b.AvailableBalance)

	case "price":
		p, err := svc.GetPrice(ctx, *symbol)
		if err != nil {
			fail("查询价格失败: %v", err)
		}
		fmt.Println(titleStyle.Render("=== 价格 ==="))
		fmt.Printf("交易对: %s\n最新价: %s\n", p.Symbol, p.Price)

	case "market":
		res, err := svc.PlaceMarket(ctx, *symbol, types.Side(*side), mustDecimal(*quantity, "quantity"))
		if err != nil {
			fail("下单失败: %v", err)
		}
		printPlacement(res)

	case "limit":
		res, err := svc.PlaceLimit(ctx, *symbol, types.Side(*side),
			mustDecimal(*quantity, "quantity"), mustDecimal(*price, "price"))
		if err != nil {
			fail("下单失败: %v", err)
		}
		printPlacement(res)

	case "stop":
		res, err := svc.PlaceStopLimit(ctx, *symbol, types.Side(*side),
			mustDecimal(*quantity, "quantity"), mustDecimal(*price, "price"), mustDecimal(*stopPrice, "stop-price"))
		if err != nil {
			fail("下单失败: %v", err)
		}
		printPlacement(res)

	case "open_orders":
		// 未显式指定 symbol 时查询全部交易对
		querySymbol := ""
		if symbolProvided {
			querySymbol = *symbol
		}
		orders, err := svc.ListOpenOrders(ctx, querySymbol)
		if err != nil {
			fail("查询挂单失败: %v", err)
		}
		fmt.Println(titleStyle.Render("=== 挂单 ==="))
		if len(orders) == 0 {
			fmt.Println("当前没有挂单")
			return
		}
		for i := range orders {
			printOrder(&orders[i])
			fmt.Println()
		}

	case "cancel":
		if *orderID == 0 {
			fail("必须指定 -order-id")
		}
		res, err := svc.Cancel(ctx, *symbol, *orderID)
		if err != nil {
			fail("撤单失败: %v", err)
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("✓ 订单 %d 已撤销 (%s)", res.OrderID, res.Status)))

	case "position":
		qty := svc.GetPosition(*symbol)
		fmt.Println(titleStyle.Render("=== 持仓 ==="))
		fmt.Printf("%s 净数量: %s\n", *symbol, qty)

	case "positions":
		positions := svc.ListPositions()
		fmt.Println(titleStyle.Render("=== 当前持仓 ==="))
		if len(positions) == 0 {
			fmt.Println("没有持仓")
			return
		}
		sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
		for _, p := range positions {
			fmt.Printf("  %s: %s\n", p.Symbol, p.NetQuantity)
		}

	case "history":
		if jnlStore == nil {
			fail("订单流水不可用")
		}
		sym := ""
		if symbolProvided {
			sym = *symbol
		}
		records, err := jnlStore.List(ctx, sym, *limit)
		if err != nil {
			fail("查询流水失败: %v", err)
		}
		fmt.Println(titleStyle.Render("=== 订单流水 ==="))
		for _, r := range records {
			fmt.Printf("%s  %-8s %-4s %-10s qty=%-10s status=%-16s outcome=%s\n",
				dimStyle.Render(r.CreatedAt.Format("2006-01-02 15:04:05")),
				r.Symbol, r.Side, r.Kind, r.Quantity, r.Status, r.Outcome)
		}

	default:
		fmt.Println(errStyle.Render("未知命令: " + command))
		usage()
		os.Exit(2)
	}
}

func fail(format string, args ...any) {
	fmt.Println(errStyle.Render("✗ " + fmt.Sprintf(format, args...)))
	os.Exit(1)
}

func mustDecimal(s, name string) decimal.Decimal {
	if s == "" {
		fail("必须指定 -%s", name)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		fail("-%s 不是合法数字: %v", name, err)
	}
	return d
}

func printAccount(info *types.AccountSnapshot) {
	fmt.Println(titleStyle.Render("=== 账户信息 ==="))
	fmt.Printf("钱包总余额: %s USDT\n", info.TotalWalletBalance)
	fmt.Printf("未实现盈亏: %s USDT\n", info.TotalUnrealizedProfit)
	fmt.Printf("保证金总额: %s USDT\n", info.TotalMarginBalance)
	fmt.Printf("起始保证金: %s USDT\n", info.TotalInitialMargin)
	fmt.Printf("维持保证金: %s USDT\n", info.TotalMaintMargin)
	fmt.Printf("可用余额:   %s USDT\n", info.AvailableBalance)
}

func printOrder(order *types.OrderResult) {
	fmt.Printf("订单 ID: %d\n", order.OrderID)
	fmt.Printf("交易对: %s\n", order.Symbol)
	fmt.Printf("方向: %s  类型: %s\n", order.Side, order.Type)
	fmt.Printf("价格: %s\n", order.Price)
	if !order.StopPrice.IsZero() {
		fmt.Printf("触发价: %s\n", order.StopPrice)
	}
	fmt.Printf("原始数量: %s  已成交: %s\n", order.OrigQty, order.ExecutedQty)
	fmt.Printf("状态: %s\n", order.Status)
	if order.TimeInForce != "" {
		fmt.Printf("有效期: %s\n", order.TimeInForce)
	}
}

func printPlacement(res *services.PlacementResult) {
	fmt.Println(titleStyle.Render("=== 订单详情 ==="))
	printOrder(res.Order)
	fmt.Printf("结局: %s\n", res.Outcome)
	if res.NetQuantity != nil {
		fmt.Println(okStyle.Render(fmt.Sprintf("成交后 %s 净数量: %s", res.Order.Symbol, res.NetQuantity)))
	}
	if res.LedgerWarning != nil {
		fmt.Println(errStyle.Render(fmt.Sprintf("警告: %v（内存已更新，落盘滞后）", res.LedgerWarning)))
	}
}
