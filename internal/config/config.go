package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider string   `yaml:"provider"`
		BaseURL  string   `yaml:"base_url"`
		APIKey   string   `yaml:"api_key"`
		Symbols  []string `yaml:"symbols"`
	} `yaml:"data_source"`
	Alpaca struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		BaseURL   string `yaml:"base_url"`
		Feed      string `yaml:"feed"`
	} `yaml:"alpaca"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		WarmCron   string `yaml:"warm_cron"`
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Warmup struct {
		Quarters int `yaml:"quarters"`
		Years    int `yaml:"years"`
	} `yaml:"warmup"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PRICE_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.DataSource.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		c.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		c.Alpaca.APISecret = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_WARM"); v != "" {
		c.Schedule.WarmCron = v
	}
	if v := os.Getenv("WARMUP_QUARTERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Warmup.Quarters = n
		}
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if len(c.DataSource.Symbols) == 0 {
		c.DataSource.Symbols = []string{"AAPL", "GOOGL", "AMZN", "MSFT", "TSLA", "META"}
	}
	if c.Alpaca.Feed == "" {
		c.Alpaca.Feed = "iex"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/market_pulse.db"
	}
	if c.Schedule.WarmCron == "" {
		c.Schedule.WarmCron = "0 0 9 1 1,4,7,10 *"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 18 * * 5"
	}
	if c.Warmup.Quarters == 0 {
		c.Warmup.Quarters = 4
	}
	if c.Warmup.Years == 0 {
		c.Warmup.Years = 3
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "data/exports"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks provider settings, counts and cron specs.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "financego", "mock":
	case "alpaca":
		if c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "" {
			return fmt.Errorf("alpaca.api_key and alpaca.api_secret are required for the alpaca provider")
		}
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.Warmup.Quarters < 0 || c.Warmup.Years < 0 {
		return fmt.Errorf("warmup.quarters and warmup.years must not be negative")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	for name, spec := range map[string]string{
		"schedule.warm_cron":   c.Schedule.WarmCron,
		"schedule.report_cron": c.Schedule.ReportCron,
	} {
		if _, err := cronParser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
