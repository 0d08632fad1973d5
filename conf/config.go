package conf

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// 配置加载（API密钥等）

// 占位值，配置未填写时启动直接失败
const (
	placeholderKey    = "your-api-key"
	placeholderSecret = "your-secret-key"
)

type Okx struct {
	ApiKey    string `yaml:"apiKey"`
	SecretKey string `yaml:"secretKey"`
	Password  string `yaml:"password"`
	Simulated bool   `yaml:"simulated"`
}

// TradeConfig 每日定时做空的交易参数
type TradeConfig struct {
	Symbol      string  `yaml:"symbol" validate:"required"`     // 例如 BTC/USDT
	TradeType   string  `yaml:"trade-type" validate:"oneof=swap futures"`
	MarginUSDT  float64 `yaml:"margin-usdt" validate:"gt=0"`    // 保证金（USDT）
	Leverage    int     `yaml:"leverage" validate:"gte=1,lte=125"`
	EntryHour   int     `yaml:"entry-hour" validate:"gte=0,lte=23"` // 每日开仓时间（UTC 小时）
	StopLossPct float64 `yaml:"stop-loss-pct" validate:"gt=0,lt=100"`

	MaxRetries   int           `yaml:"max-retries" validate:"gte=1"`
	RetryDelay   time.Duration `yaml:"retry-delay"`
	PollInterval time.Duration `yaml:"poll-interval"` // 持仓期间的轮询间隔
	StateFile    string        `yaml:"state-file"`
	JournalFile  string        `yaml:"journal-file"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	FileName   string `yaml:"file-name"`
	TimeFormat string `yaml:"time-format"`
	MaxSize    int    `yaml:"max-size"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAge     int    `yaml:"max-age"`
	Compress   bool   `yaml:"compress"`
	LocalTime  bool   `yaml:"local-time"`
	Console    bool   `yaml:"console"`
}

type Config struct {
	AppName string `yaml:"app_name"`
	Listen  string `yaml:"listen"` // 状态服务监听地址，留空则不启动

	Okx   `yaml:"okx"`
	Trade TradeConfig `yaml:"trade"`
	Log   LogConfig   `yaml:"log"`
}

// LoadConfig 读取yaml配置，环境变量优先于文件
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Read config file error %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("Unmarshal config yaml error: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// 环境变量覆盖，便于容器部署时不落盘密钥
func (c *Config) applyEnv() {
	if v := os.Getenv("OKX_API_KEY"); v != "" {
		c.Okx.ApiKey = v
	}
	if v := os.Getenv("OKX_SECRET_KEY"); v != "" {
		c.Okx.SecretKey = v
	}
	if v := os.Getenv("OKX_PASSPHRASE"); v != "" {
		c.Okx.Password = v
	}
	if v := os.Getenv("TRADE_SYMBOL"); v != "" {
		c.Trade.Symbol = v
	}
	if v := os.Getenv("TRADE_MARGIN_USDT"); v != "" {
		c.Trade.MarginUSDT = cast.ToFloat64(v)
	}
	if v := os.Getenv("TRADE_LEVERAGE"); v != "" {
		c.Trade.Leverage = cast.ToInt(v)
	}
	if v := os.Getenv("TRADE_ENTRY_HOUR"); v != "" {
		c.Trade.EntryHour = cast.ToInt(v)
	}
	if v := os.Getenv("TRADE_STOP_LOSS_PCT"); v != "" {
		c.Trade.StopLossPct = cast.ToFloat64(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Trade.TradeType == "" {
		c.Trade.TradeType = "swap"
	}
	if c.Trade.MaxRetries == 0 {
		c.Trade.MaxRetries = 3
	}
	if c.Trade.RetryDelay == 0 {
		c.Trade.RetryDelay = time.Minute * 5
	}
	if c.Trade.PollInterval == 0 {
		c.Trade.PollInterval = time.Hour
	}
	if c.Trade.StateFile == "" {
		c.Trade.StateFile = "data/position.json"
	}
	if c.Trade.JournalFile == "" {
		c.Trade.JournalFile = "logs/trade-journal.json"
	}
}

// Validate 校验配置，密钥留空或者沿用占位值都视为致命错误
func (c *Config) Validate() error {
	if c.Okx.ApiKey == "" || c.Okx.ApiKey == placeholderKey {
		return fmt.Errorf("okx.apiKey 未配置")
	}
	if c.Okx.SecretKey == "" || c.Okx.SecretKey == placeholderSecret {
		return fmt.Errorf("okx.secretKey 未配置")
	}
	if c.Okx.Password == "" {
		return fmt.Errorf("okx.password 未配置")
	}

	v := validator.New()
	if err := v.Struct(&c.Trade); err != nil {
		return fmt.Errorf("trade config invalid: %w", err)
	}
	return nil
}
