// Package config loads the register's settings from TOML files, a .env file
// and DEPREG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mcclellann/depreg/pkg/fiscal"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/rates"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Config is the complete configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
	Defaults DefaultsConfig `toml:"defaults"`
	Rates    RatesConfig    `toml:"rates"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Address is the listen address for the HTTP server.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type StorageConfig struct {
	Driver string `toml:"driver"` // "sqlite" or "memory"
	Path   string `toml:"path"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// DefaultsConfig seeds the register settings until the user saves their own.
type DefaultsConfig struct {
	Method           string `toml:"method"`
	FinancialYear    string `toml:"financial_year"` // e.g. "2024-25"
	TaxRate          string `toml:"tax_rate"`
	AccountingProfit string `toml:"accounting_profit"`
}

// RatesConfig adds to or replaces entries of the built-in rate tables.
type RatesConfig struct {
	Assets []AssetRate `toml:"assets"`
	Blocks []BlockRate `toml:"blocks"`
}

type AssetRate struct {
	Key        string `toml:"key"`
	Label      string `toml:"label"`
	UsefulLife int    `toml:"useful_life"`
	WDVRate    string `toml:"wdv_rate"`
}

type BlockRate struct {
	Key                    string `toml:"key"`
	Label                  string `toml:"label"`
	Rate                   string `toml:"rate"`
	ExcludedFromAdditional bool   `toml:"excluded_from_additional"`
}

// NewDefaultConfig returns the configuration used when no file is present.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "depreg.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Defaults: DefaultsConfig{
			Method:        string(models.MethodSLM),
			FinancialYear: "2024-25",
			TaxRate:       "0.25",
		},
	}
}

// LoadDotEnv loads the given .env files (".env" when none are named) into the
// process environment. Missing files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones and missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if _, err := config.Settings(); err != nil {
		return nil, err
	}
	if _, err := config.Tables(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if host := os.Getenv("DEPREG_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("DEPREG_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if v := os.Getenv("DEPREG_STORAGE_DRIVER"); v != "" {
		config.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("DEPREG_DB_PATH"); v != "" {
		config.Storage.Path = v
	}
	if level := os.Getenv("DEPREG_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if v := os.Getenv("DEPREG_METHOD"); v != "" {
		config.Defaults.Method = strings.ToUpper(v)
	}
	if v := os.Getenv("DEPREG_FINANCIAL_YEAR"); v != "" {
		config.Defaults.FinancialYear = v
	}
	if v := os.Getenv("DEPREG_TAX_RATE"); v != "" {
		config.Defaults.TaxRate = v
	}
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}

// Settings converts the defaults section into register settings.
func (c *Config) Settings() (models.Settings, error) {
	s := models.Settings{Method: models.Method(strings.ToUpper(c.Defaults.Method))}
	if !s.Method.Valid() {
		return models.Settings{}, fmt.Errorf("invalid default method %q", c.Defaults.Method)
	}

	w, err := fiscal.ParseYear(c.Defaults.FinancialYear)
	if err != nil {
		return models.Settings{}, fmt.Errorf("invalid default financial year: %w", err)
	}
	s.FinancialYear = w.Start.Year()

	if s.TaxRate, err = parseDecimal("tax rate", c.Defaults.TaxRate); err != nil {
		return models.Settings{}, err
	}
	if s.AccountingProfit, err = parseDecimal("accounting profit", c.Defaults.AccountingProfit); err != nil {
		return models.Settings{}, err
	}
	return s, nil
}

// Tables returns the built-in rate tables with the configured overrides
// applied. An override that omits a label or useful life keeps the built-in one.
func (c *Config) Tables() (rates.Tables, error) {
	base := rates.Default()

	assets := make([]rates.AssetClass, 0, len(c.Rates.Assets))
	for _, a := range c.Rates.Assets {
		if a.Key == "" {
			return rates.Tables{}, errors.New("asset rate override without a key")
		}
		class, _ := base.AssetClass(a.Key)
		class.Key = a.Key
		if a.Label != "" {
			class.Label = a.Label
		}
		if a.UsefulLife > 0 {
			class.UsefulLife = a.UsefulLife
		}
		if a.WDVRate != "" {
			rate, err := parseDecimal("wdv_rate for "+a.Key, a.WDVRate)
			if err != nil {
				return rates.Tables{}, err
			}
			class.WDVRate = rate
		}
		assets = append(assets, class)
	}

	blocks := make([]rates.BlockClass, 0, len(c.Rates.Blocks))
	for _, b := range c.Rates.Blocks {
		if b.Key == "" {
			return rates.Tables{}, errors.New("block rate override without a key")
		}
		class, _ := base.BlockClass(b.Key)
		class.Key = b.Key
		if b.Label != "" {
			class.Label = b.Label
		}
		if b.Rate != "" {
			rate, err := parseDecimal("rate for "+b.Key, b.Rate)
			if err != nil {
				return rates.Tables{}, err
			}
			class.Rate = rate
		}
		class.ExcludedFromAdditional = class.ExcludedFromAdditional || b.ExcludedFromAdditional
		blocks = append(blocks, class)
	}

	return base.WithOverrides(assets, blocks), nil
}
