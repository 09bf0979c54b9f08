// Package config loads the runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Mode            string
	LogFormat       string
	ListenAddress   string
	APIURL          *url.URL
	ShutdownTimeout time.Duration
	EnablePprof     bool
	CORSOrigins     []string
	Database        DatabaseConfig
	Session         SessionConfig
	Auth            AuthConfig
	Locale          LocaleConfig
	Bank            BankConfig
}

type DatabaseConfig struct {
	Driver   string
	DataDir  string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type SessionConfig struct {
	Secret     string
	Issuer     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type AuthConfig struct {
	PublicPaths        []string
	RateLimitPerMinute int
	RateLimitBurst     int
}

type LocaleConfig struct {
	Currency string
	Language string
}

type BankConfig struct {
	StartingBalance decimal.Decimal
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// insecureSecret is only accepted outside of release mode.
const insecureSecret = "pocketguard-development-secret"

// Load reads the configuration from the environment and an optional .env file.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Mode = getEnv("GIN_MODE", "release")
	cfg.LogFormat = getEnv("LOG_FORMAT", "")
	cfg.ListenAddress = ":" + getEnv("PORT", "8080")
	cfg.CORSOrigins = strings.Fields(getEnv("CORS_ALLOW_ORIGINS", ""))
	cfg.EnablePprof = getEnv("ENABLE_PPROF", "false") == "true"

	apiURL, err := url.Parse(getEnv("API_URL", "http://localhost:8080"))
	if err != nil {
		return cfg, fmt.Errorf("API_URL must be a valid URL: %w", err)
	}
	if apiURL.Scheme == "" || apiURL.Host == "" {
		return cfg, errors.New("API_URL must be an absolute URL, e.g. https://pocketguard.example.com/api")
	}
	cfg.APIURL = apiURL

	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Database, err = loadDatabase()
	if err != nil {
		return cfg, err
	}

	cfg.Session, err = loadSession(cfg.Mode)
	if err != nil {
		return cfg, err
	}

	perMinute, err := parseIntEnv("AUTH_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	burst, err := parseIntEnv("AUTH_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.Auth = AuthConfig{
		PublicPaths:        parseCSVEnv("AUTH_PUBLIC_PATHS", []string{"*/api/login", "*/api/register"}),
		RateLimitPerMinute: perMinute,
		RateLimitBurst:     burst,
	}

	cfg.Locale = LocaleConfig{
		Currency: strings.ToUpper(getEnv("CURRENCY", "INR")),
		Language: getEnv("LANGUAGE", "en-IN"),
	}

	balance, err := decimal.NewFromString(getEnv("BANK_STARTING_BALANCE", "5000"))
	if err != nil {
		return cfg, fmt.Errorf("BANK_STARTING_BALANCE must be a decimal number: %w", err)
	}
	if balance.IsNegative() {
		return cfg, errors.New("BANK_STARTING_BALANCE must not be negative")
	}
	cfg.Bank = BankConfig{StartingBalance: balance}

	return cfg, nil
}

// DSN returns the data source name for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}

	return filepath.Join(c.DataDir, "gorm.db")
}

func loadDatabase() (DatabaseConfig, error) {
	// DB_HOST implies postgresql unless a driver is set explicitly
	driver := DriverSQLite
	if _, ok := os.LookupEnv("DB_HOST"); ok {
		driver = DriverPostgres
	}
	driver = getEnv("DB_DRIVER", driver)

	if driver != DriverSQLite && driver != DriverPostgres {
		return DatabaseConfig{}, fmt.Errorf("DB_DRIVER must be one of %s, %s", DriverSQLite, DriverPostgres)
	}

	port, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return DatabaseConfig{}, err
	}

	return DatabaseConfig{
		Driver:   driver,
		DataDir:  getEnv("DATA_DIR", "data"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "pocketguard"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "pocketguard"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}, nil
}

func loadSession(mode string) (SessionConfig, error) {
	ttl, err := parseDurationEnv("SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return SessionConfig{}, err
	}

	secret := getEnv("SESSION_SECRET", "")
	if secret == "" {
		if mode == "release" {
			return SessionConfig{}, errors.New("SESSION_SECRET must be set in release mode")
		}
		secret = insecureSecret
	}

	return SessionConfig{
		Secret:     secret,
		Issuer:     "pocketguard",
		TTL:        ttl,
		CookieName: getEnv("SESSION_COOKIE", "session"),
		Secure:     getEnv("SESSION_SECURE", "false") == "true",
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
