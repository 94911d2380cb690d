package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"PredictaTrade/internal/forecast"
	"PredictaTrade/internal/model"
)

// Data providers understood by the dashboard.
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderYahoo        = "yahoo"
	ProviderMock         = "mock"
)

// DefaultRefreshCron drops the memo after the US close on weekdays.
const DefaultRefreshCron = "0 30 22 * * 1-5"

// DemoAPIKey is Alpha Vantage's public key; it only serves a few symbols.
const DemoAPIKey = "demo"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr         string `yaml:"addr"`
		DefaultYears int    `yaml:"default_years"`
	} `yaml:"server"`
	DataSource struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Forecast forecast.Options `yaml:"forecast"`
	Cache    struct {
		RefreshCron string `yaml:"refresh_cron"`
		WarmTicker  string `yaml:"warm_ticker"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		File string `yaml:"file"`
	} `yaml:"logging"`
	Launcher struct {
		Addr          string   `yaml:"addr"`
		Command       []string `yaml:"command"`
		DashboardAddr string   `yaml:"dashboard_addr"`
	} `yaml:"launcher"`
	Proxy string `yaml:"proxy"`
}

// Load reads a .env file if present, then the YAML config, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfg := &Config{}
	// Set before decoding so an explicit empty refresh_cron disables the job.
	cfg.Cache.RefreshCron = DefaultRefreshCron

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v, ok := os.LookupEnv("CRON_REFRESH"); ok {
		cfg.Cache.RefreshCron = v
	}
	if v := os.Getenv("LAUNCHER_ADDR"); v != "" {
		cfg.Launcher.Addr = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.Server.DefaultYears == 0 {
		cfg.Server.DefaultYears = model.MinYears
	}
	cfg.DataSource.Provider = strings.ToLower(strings.TrimSpace(cfg.DataSource.Provider))
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderAlphaVantage
	}
	if cfg.DataSource.APIKey == "" {
		cfg.DataSource.APIKey = DemoAPIKey
	}
	if cfg.Launcher.Addr == "" {
		cfg.Launcher.Addr = ":5000"
	}
	if len(cfg.Launcher.Command) == 0 {
		cfg.Launcher.Command = []string{"./dashboard"}
	}
	if cfg.Launcher.DashboardAddr == "" {
		cfg.Launcher.DashboardAddr = cfg.Server.Addr
	}
	def := forecast.DefaultOptions()
	if cfg.Forecast.WeeklyOrder == 0 && cfg.Forecast.YearlyOrder == 0 {
		cfg.Forecast.WeeklyOrder, cfg.Forecast.YearlyOrder = def.WeeklyOrder, def.YearlyOrder
	}
	if cfg.Forecast.IntervalWidth == 0 {
		cfg.Forecast.IntervalWidth = def.IntervalWidth
	}
	if cfg.Forecast.Ridge == 0 {
		cfg.Forecast.Ridge = def.Ridge
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderAlphaVantage, ProviderYahoo, ProviderMock:
	default:
		return fmt.Errorf("data_source.provider %q is not one of alphavantage, yahoo, mock", c.DataSource.Provider)
	}
	if c.DataSource.Provider == ProviderAlphaVantage && c.DataSource.APIKey == DemoAPIKey {
		log.Println("[WARN] data_source.api_key not set, using the Alpha Vantage demo key")
	}
	if c.Server.DefaultYears < model.MinYears || c.Server.DefaultYears > model.MaxYears {
		return fmt.Errorf("server.default_years must be between %d and %d", model.MinYears, model.MaxYears)
	}
	if c.Forecast.IntervalWidth <= 0 || c.Forecast.IntervalWidth >= 1 {
		return fmt.Errorf("forecast.interval_width must be in (0, 1)")
	}
	if c.Forecast.Ridge < 0 {
		return fmt.Errorf("forecast.ridge must not be negative")
	}
	if c.Forecast.WeeklyOrder < 0 || c.Forecast.YearlyOrder < 0 {
		return fmt.Errorf("forecast seasonal orders must not be negative")
	}
	if c.Cache.WarmTicker != "" && !model.IsKnownTicker(c.Cache.WarmTicker) {
		return fmt.Errorf("cache.warm_ticker %q is not a supported ticker", c.Cache.WarmTicker)
	}
	return nil
}
