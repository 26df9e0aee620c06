package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SymbolConfig pairs a tracked symbol code with its display name. The order
// of the configured list is the canonical display order everywhere.
type SymbolConfig struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Config holds all application configuration.
type Config struct {
	Base    string         `yaml:"base"`
	Symbols []SymbolConfig `yaml:"symbols"`
	Data    struct {
		SeriesFile string `yaml:"series_file"`
		MetaFile   string `yaml:"meta_file"`
	} `yaml:"data"`
	Source struct {
		BaseURL      string            `yaml:"base_url"`
		APIKey       string            `yaml:"api_key"`
		ShapeKey     string            `yaml:"shape_key"`
		StooqTickers map[string]string `yaml:"stooq_tickers"`
	} `yaml:"source"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Backfill struct {
		Years     int `yaml:"years"`
		ChunkDays int `yaml:"chunk_days"`
	} `yaml:"backfill"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		File string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A .env file in the working directory is loaded first when
// present.
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

	// Environment variable overrides
	if v := os.Getenv("METALPRICE_API_KEY"); v != "" {
		cfg.Source.APIKey = v
	}
	if v := os.Getenv("METALPRICE_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("BASE_CURRENCY"); v != "" {
		cfg.Base = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Base == "" {
		cfg.Base = "USD"
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []SymbolConfig{
			{Code: "XAU", Name: "Gold"},
			{Code: "XAG", Name: "Silver"},
			{Code: "XPD", Name: "Palladium"},
			{Code: "XPT", Name: "Platinum"},
			{Code: "XCU", Name: "Copper"},
			{Code: "ALU", Name: "Aluminum"},
		}
	}
	if cfg.Data.SeriesFile == "" {
		cfg.Data.SeriesFile = "data/series.json"
	}
	if cfg.Data.MetaFile == "" {
		cfg.Data.MetaFile = "data/meta.json"
	}
	if cfg.Source.ShapeKey == "" {
		cfg.Source.ShapeKey = "rates"
	}
	if cfg.Source.StooqTickers == nil {
		cfg.Source.StooqTickers = map[string]string{
			"XCU": "HG.F",
			"ALU": "AL.F",
		}
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 6 * * *"
	}
	if cfg.Backfill.Years == 0 {
		cfg.Backfill.Years = 5
	}
	if cfg.Backfill.ChunkDays == 0 {
		cfg.Backfill.ChunkDays = 365
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/metalpulse.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Source.APIKey == "" {
		return fmt.Errorf("source.api_key is required")
	}
	if c.Base == "" {
		return fmt.Errorf("base currency is required")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	for _, s := range c.Symbols {
		if s.Code == "" {
			return fmt.Errorf("symbol code must not be empty")
		}
	}
	if c.Backfill.ChunkDays < 1 {
		return fmt.Errorf("backfill.chunk_days must be at least 1")
	}
	return nil
}

// SymbolCodes returns the configured symbol codes in display order.
func (c *Config) SymbolCodes() []string {
	codes := make([]string, len(c.Symbols))
	for i, s := range c.Symbols {
		codes[i] = s.Code
	}
	return codes
}

// SymbolNames returns the code → display name mapping.
func (c *Config) SymbolNames() map[string]string {
	names := make(map[string]string, len(c.Symbols))
	for _, s := range c.Symbols {
		names[s.Code] = s.Name
	}
	return names
}

// MetalpriceSymbols returns the codes served by the primary REST API: every
// configured symbol without a Stooq ticker.
func (c *Config) MetalpriceSymbols() []string {
	codes := make([]string, 0, len(c.Symbols))
	for _, s := range c.Symbols {
		if _, ok := c.Source.StooqTickers[s.Code]; ok {
			continue
		}
		codes = append(codes, s.Code)
	}
	return codes
}
