// Package config loads pipeline and server configuration from the
// environment with documented defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"vendas/internal/core"
)

type Config struct {
	// HTTP server
	Port string

	// Data locations
	DataDir    string // directory holding the eight Olist CSV extracts
	OutputPath string // where the serialized dashboard document is written

	// Database
	SQLiteDBPath string

	// AMQP (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (optional; empty spreadsheet ID disables it)
	GoogleSpreadsheetID string
	GoogleKPISheetName  string

	// Pipeline semantics
	DeliveredStatus string // order status included in financial aggregation
	WindowStart     string // inclusive, "YYYY-MM"
	WindowEnd       string // inclusive, "YYYY-MM"
	TopCategories   int    // size of the category ranking
	TrendCategories int    // categories that get a monthly series
	MaxDropRate     float64
	MaxJoinMissRate float64
}

// Load reads configuration from the environment, applying defaults. The
// default window 2017-01..2018-08 excludes the dataset's incomplete lead-in
// and tail months.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataDir:    getEnv("DATA_DIR", "./data"),
		OutputPath: getEnv("OUTPUT_PATH", "./output/dashboard_data.json"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/vendas.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "vendas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "summary_refreshed"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleKPISheetName:  getEnv("GOOGLE_KPI_SHEET_NAME", "KPIs"),

		DeliveredStatus: getEnv("DELIVERED_STATUS", core.StatusDelivered),
		WindowStart:     getEnv("WINDOW_START", "2017-01"),
		WindowEnd:       getEnv("WINDOW_END", "2018-08"),
		TopCategories:   getEnvInt("TOP_CATEGORIES", 15),
		TrendCategories: getEnvInt("TREND_CATEGORIES", 5),
		MaxDropRate:     getEnvFloat("MAX_DROP_RATE", 0.01),
		MaxJoinMissRate: getEnvFloat("MAX_JOIN_MISS_RATE", 0.01),
	}
}

// Window parses the configured month range. Call Validate first; Window
// assumes the strings parse.
func (c *Config) Window() (start, end core.Month) {
	start, _ = core.ParseMonth(c.WindowStart)
	end, _ = core.ParseMonth(c.WindowEnd)
	return start, end
}

// Validate checks the configuration and returns a combined error when any
// option is invalid.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty")
	}
	if c.OutputPath == "" {
		errs = append(errs, "output path cannot be empty")
	}
	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	}

	if strings.TrimSpace(c.DeliveredStatus) == "" {
		errs = append(errs, "delivered status filter cannot be empty")
	}

	start, serr := core.ParseMonth(c.WindowStart)
	if serr != nil {
		errs = append(errs, fmt.Sprintf("invalid window start '%s': want YYYY-MM", c.WindowStart))
	}
	end, eerr := core.ParseMonth(c.WindowEnd)
	if eerr != nil {
		errs = append(errs, fmt.Sprintf("invalid window end '%s': want YYYY-MM", c.WindowEnd))
	}
	if serr == nil && eerr == nil && start.After(end) {
		errs = append(errs, fmt.Sprintf("invalid window: start %s is after end %s", c.WindowStart, c.WindowEnd))
	}

	if c.TopCategories < 1 {
		errs = append(errs, fmt.Sprintf("invalid top categories %d: must be at least 1", c.TopCategories))
	}
	if c.TrendCategories < 1 {
		errs = append(errs, fmt.Sprintf("invalid trend categories %d: must be at least 1", c.TrendCategories))
	}
	if c.TrendCategories > c.TopCategories {
		errs = append(errs, fmt.Sprintf("trend categories %d cannot exceed top categories %d", c.TrendCategories, c.TopCategories))
	}

	if c.MaxDropRate <= 0 || c.MaxDropRate > 1 {
		errs = append(errs, fmt.Sprintf("invalid max drop rate %v: must be in (0, 1]", c.MaxDropRate))
	}
	if c.MaxJoinMissRate <= 0 || c.MaxJoinMissRate > 1 {
		errs = append(errs, fmt.Sprintf("invalid max join-miss rate %v: must be in (0, 1]", c.MaxJoinMissRate))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleKPISheetName == "" {
		errs = append(errs, "Google KPI sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
