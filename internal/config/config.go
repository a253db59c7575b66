package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"asistente/internal/advisory"
	"asistente/internal/logger"
	"asistente/internal/period"
	"asistente/internal/sheets"
	"asistente/internal/store"
)

// Data source backends
const (
	SourceDB     = "db"
	SourceSheets = "sheets"
)

type Config struct {
	// Data source selection
	Source string `mapstructure:"source"`

	// Relational database
	DBDriver    string `mapstructure:"db_driver"`
	DatabaseURL string `mapstructure:"database_url"`
	DBSchema    string `mapstructure:"db_schema"`

	// Google Sheets
	GoogleSheetURL   string `mapstructure:"google_sheet_url"`
	SheetReceivables string `mapstructure:"sheet_cxc"`
	SheetPayables    string `mapstructure:"sheet_cxp"`

	// Reporting
	Timezone    string `mapstructure:"timezone"`
	TopNDefault int    `mapstructure:"top_n_default"`

	// Advisory thresholds, in days
	DSOHigh string `mapstructure:"dso_high"`
	DPOLow  string `mapstructure:"dpo_low"`
	CCCHigh string `mapstructure:"ccc_high"`

	// HTTP server
	ServerHost string `mapstructure:"server_host"`
	ServerPort int    `mapstructure:"server_port"`

	// Logging Configuration
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogTimeFormat string `mapstructure:"log_time_format"`
	LogOutput     string `mapstructure:"log_output"`
}

var defaults = map[string]interface{}{
	"source":           SourceDB,
	"db_driver":        store.DriverPostgres,
	"database_url":     "",
	"db_schema":        store.DefaultSchema,
	"google_sheet_url": "",
	"sheet_cxc":        sheets.DefaultReceivablesSheet,
	"sheet_cxp":        sheets.DefaultPayablesSheet,
	"timezone":         period.DefaultTimezone,
	"top_n_default":    10,
	"dso_high":         "45",
	"dpo_low":          "40",
	"ccc_high":         "20",
	"server_host":      "0.0.0.0",
	"server_port":      8080,
	"log_level":        "info",
	"log_format":       "console",
	"log_time_format":  "2006-01-02T15:04:05Z07:00",
	"log_output":       "stderr",
}

// Load reads configuration from the environment. A non-empty configFile (yaml,
// json, toml or .env) is read first and environment variables override it.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Source = strings.ToLower(strings.TrimSpace(config.Source))
	config.DBDriver = strings.ToLower(strings.TrimSpace(config.DBDriver))

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.Source {
	case SourceDB:
		if c.DBDriver != store.DriverPostgres && c.DBDriver != store.DriverSQLite {
			return fmt.Errorf("DB_DRIVER must be %s or %s, got %q", store.DriverPostgres, store.DriverSQLite, c.DBDriver)
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SOURCE=%s", SourceDB)
		}
	case SourceSheets:
		if c.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL is required when SOURCE=%s", SourceSheets)
		}
	default:
		return fmt.Errorf("SOURCE must be %s or %s, got %q", SourceDB, SourceSheets, c.Source)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.TopNDefault <= 0 {
		return fmt.Errorf("TOP_N_DEFAULT must be positive, got %d", c.TopNDefault)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.ServerPort)
	}
	if _, err := c.AdvisoryRules(); err != nil {
		return err
	}
	return nil
}

// Location returns the reporting time zone
func (c *Config) Location() *time.Location {
	return period.LoadLocation(c.Timezone)
}

// StoreSettings returns the database settings for the relational source
func (c *Config) StoreSettings() store.Settings {
	return store.Settings{
		Driver: c.DBDriver,
		DSN:    c.DatabaseURL,
		Schema: c.DBSchema,
	}
}

// AdvisoryRules returns the default rules with the configured thresholds applied
func (c *Config) AdvisoryRules() (advisory.Rules, error) {
	rules := advisory.DefaultRules()

	for _, t := range []struct {
		env   string
		value string
		dst   *decimal.Decimal
	}{
		{"DSO_HIGH", c.DSOHigh, &rules.DSOHigh},
		{"DPO_LOW", c.DPOLow, &rules.DPOLow},
		{"CCC_HIGH", c.CCCHigh, &rules.CCCHigh},
	} {
		if t.value == "" {
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(t.value))
		if err != nil {
			return advisory.Rules{}, fmt.Errorf("%s is not a number: %q", t.env, t.value)
		}
		*t.dst = d
	}
	return rules, nil
}

// ServerAddr returns host:port for the HTTP server
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}
