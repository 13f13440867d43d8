package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	APIKey        string // Binance API key（仅从环境变量 / .env 加载）
	APISecret     string // Binance API secret（仅从环境变量 / .env 加载）
	Testnet       bool   // 是否使用测试网
	BaseURL       string // 网关地址；为空时按 Testnet 自动选择
	DefaultSymbol string // 默认交易对
	DefaultAsset  string // 默认余额资产
	LedgerFile    string // 持仓账本文件路径
	JournalFile   string // 订单流水数据库路径（为空则不记流水）
	TimeoutSec    int    // 网关请求超时（秒）
	LogLevel      string // 日志级别
	LogFile       string // 日志文件路径（可选）
}

// ConfigFile 配置文件结构（YAML 解析）
type ConfigFile struct {
	Testnet       *bool  `yaml:"testnet"`
	BaseURL       string `yaml:"base_url"`
	DefaultSymbol string `yaml:"default_symbol"`
	DefaultAsset  string `yaml:"default_asset"`
	LedgerFile    string `yaml:"ledger_file"`
	JournalFile   string `yaml:"journal_file"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
}

// Load 加载配置。优先级：环境变量 > 配置文件 > 默认值。
// API 密钥只从环境变量（含 .env）读取，不进配置文件。
func Load(filePath string) (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	config := &Config{
		Testnet:       true,
		DefaultSymbol: "BTCUSDT",
		DefaultAsset:  "USDT",
		LedgerFile:    "positions.json",
		JournalFile:   "orders.db",
		TimeoutSec:    30,
		LogLevel:      "info",
		LogFile:       "logs/trading_bot.log",
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败 %s: %w", filePath, err)
		}
		var file ConfigFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("解析配置文件失败 %s: %w", filePath, err)
		}
		applyFile(config, &file)
	}

	config.APIKey = os.Getenv("API_KEY")
	config.APISecret = os.Getenv("API_SECRET")
	if v := os.Getenv("TESTNET"); v != "" {
		config.Testnet = v == "1" || v == "true"
	}

	if config.APIKey == "" || config.APISecret == "" {
		return nil, fmt.Errorf("缺少 API 凭证：请设置 API_KEY / API_SECRET 环境变量（或写入 .env）")
	}
	return config, nil
}

func applyFile(config *Config, file *ConfigFile) {
	if file.Testnet != nil {
		config.Testnet = *file.Testnet
	}
	if file.BaseURL != "" {
		config.BaseURL = file.BaseURL
	}
	if file.DefaultSymbol != "" {
		config.DefaultSymbol = file.DefaultSymbol
	}
	if file.DefaultAsset != "" {
		config.DefaultAsset = file.DefaultAsset
	}
	if file.LedgerFile != "" {
		config.LedgerFile = file.LedgerFile
	}
	if file.JournalFile != "" {
		config.JournalFile = file.JournalFile
	}
	if file.TimeoutSec > 0 {
		config.TimeoutSec = file.TimeoutSec
	}
	if file.LogLevel != "" {
		config.LogLevel = file.LogLevel
	}
	if file.LogFile != "" {
		config.LogFile = file.LogFile
	}
}
