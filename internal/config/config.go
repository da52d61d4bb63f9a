package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Sheets   SheetsConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	CrawlInterval   time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	ProxyServer   string
	Debug         bool
	DebugDir      string
	RateLimitMin  time.Duration
	RateLimitMax  time.Duration
	NavTimeout    time.Duration
	ScrollSettle  time.Duration
	MaxScrolls    int
	MaxScrollTime time.Duration
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string
	CodeSheet       string
	ListSheet       string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether a listing mirror database was configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	SeenTTL  time.Duration
}

// Enabled reports whether the Redis seen-URL cache was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			CrawlInterval:   getDurationOrDefault("CRAWL_INTERVAL", 1*time.Hour),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			ProxyServer:   getEnvOrDefault("SCRAPER_PROXY", ""),
			Debug:         getBoolOrDefault("SCRAPER_DEBUG", false),
			DebugDir:      getEnvOrDefault("SCRAPER_DEBUG_DIR", "debug"),
			RateLimitMin:  getDurationOrDefault("SCRAPER_RATE_LIMIT_MIN", 3*time.Second),
			RateLimitMax:  getDurationOrDefault("SCRAPER_RATE_LIMIT_MAX", 10*time.Second),
			NavTimeout:    getDurationOrDefault("SCRAPER_NAV_TIMEOUT", 60*time.Second),
			ScrollSettle:  getDurationOrDefault("SCRAPER_SCROLL_SETTLE", 2*time.Second),
			MaxScrolls:    getIntOrDefault("SCRAPER_MAX_SCROLLS", 30),
			MaxScrollTime: getDurationOrDefault("SCRAPER_MAX_SCROLL_TIME", 90*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 60*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "ja,en-US;q=0.9,en;q=0.8"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Asia/Tokyo"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "ja-JP"),
		},
		Sheets: SheetsConfig{
			CredentialsFile: getEnvOrDefault("SHEETS_CREDENTIALS_FILE", "credentials.json"),
			SpreadsheetID:   getEnvOrDefault("SHEETS_SPREADSHEET_ID", ""),
			CodeSheet:       getEnvOrDefault("SHEETS_CODE_SHEET", "code"),
			ListSheet:       getEnvOrDefault("SHEETS_LIST_SHEET", "list"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", ""),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "buyee_scraper"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", ""),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			SeenTTL:  getDurationOrDefault("REDIS_SEEN_TTL", 30*24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("SHEETS_SPREADSHEET_ID is required")
	}

	if c.Scraper.RateLimitMin > c.Scraper.RateLimitMax {
		return fmt.Errorf("SCRAPER_RATE_LIMIT_MIN cannot be greater than SCRAPER_RATE_LIMIT_MAX")
	}

	if c.Scraper.MaxScrolls < 1 {
		return fmt.Errorf("SCRAPER_MAX_SCROLLS must be at least 1")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
