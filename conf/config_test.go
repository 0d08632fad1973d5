package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const baseConfig = `
app_name: shortflow
okx:
  apiKey: "real-key"
  secretKey: "real-secret"
  password: "real-pass"
  simulated: true
trade:
  symbol: "BTC/USDT"
  margin-usdt: 1000
  leverage: 10
  entry-hour: 8
  stop-loss-pct: 5
log:
  level: info
`

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, baseConfig)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Trade.Symbol != "BTC/USDT" || cfg.Trade.EntryHour != 8 {
		t.Fatalf("trade config mismatch: %+v", cfg.Trade)
	}
	// 默认值
	if cfg.Trade.TradeType != "swap" {
		t.Fatalf("trade-type默认应该是swap, got %s", cfg.Trade.TradeType)
	}
	if cfg.Trade.MaxRetries != 3 {
		t.Fatalf("max-retries默认应该是3, got %d", cfg.Trade.MaxRetries)
	}
	if cfg.Trade.RetryDelay != 5*time.Minute {
		t.Fatalf("retry-delay默认应该是5m, got %s", cfg.Trade.RetryDelay)
	}
	if cfg.Trade.PollInterval != time.Hour {
		t.Fatalf("poll-interval默认应该是1h, got %s", cfg.Trade.PollInterval)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, baseConfig)

	t.Setenv("OKX_API_KEY", "env-key")
	t.Setenv("TRADE_MARGIN_USDT", "2000")
	t.Setenv("TRADE_ENTRY_HOUR", "16")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Okx.ApiKey != "env-key" {
		t.Fatalf("环境变量应该覆盖apiKey, got %s", cfg.Okx.ApiKey)
	}
	if cfg.Trade.MarginUSDT != 2000 {
		t.Fatalf("环境变量应该覆盖保证金, got %v", cfg.Trade.MarginUSDT)
	}
	if cfg.Trade.EntryHour != 16 {
		t.Fatalf("环境变量应该覆盖开仓时间, got %d", cfg.Trade.EntryHour)
	}
}

func TestLoadConfigPlaceholderKey(t *testing.T) {
	path := writeConfig(t, `
okx:
  apiKey: "your-api-key"
  secretKey: "real-secret"
  password: "real-pass"
trade:
  symbol: "BTC/USDT"
  margin-usdt: 1000
  leverage: 10
  entry-hour: 8
  stop-loss-pct: 5
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("apiKey是占位值时应该报错")
	}
}

func TestLoadConfigInvalidTrade(t *testing.T) {
	cases := []struct {
		name  string
		yaml  string
	}{
		{
			name: "缺少symbol",
			yaml: `
okx: {apiKey: k, secretKey: s, password: p}
trade: {margin-usdt: 1000, leverage: 10, entry-hour: 8, stop-loss-pct: 5}
`,
		},
		{
			name: "entry-hour越界",
			yaml: `
okx: {apiKey: k, secretKey: s, password: p}
trade: {symbol: BTC/USDT, margin-usdt: 1000, leverage: 10, entry-hour: 24, stop-loss-pct: 5}
`,
		},
		{
			name: "杠杆为0",
			yaml: `
okx: {apiKey: k, secretKey: s, password: p}
trade: {symbol: BTC/USDT, margin-usdt: 1000, leverage: 0, entry-hour: 8, stop-loss-pct: 5}
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.yaml)
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("非法配置应该报错")
			}
		})
	}
}
