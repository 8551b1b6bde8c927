// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Billing  BillingConfig
	Registry RegistryConfig
	Redis    RedisConfig
	Minio    MinioConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string
	DSN        string // DATABASE_DSN, overrides the parts below
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
}

// AuthConfig holds session and sign-up settings.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookie  bool
	AllowedEmails []string
}

// BillingConfig holds the defaults of a fresh supplier profile.
type BillingConfig struct {
	Currency       string
	DefaultVATRate float64
	DueDays        int
}

// RegistryConfig points at the ARES business register.
type RegistryConfig struct {
	AresURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// RedisConfig is optional; an empty URL keeps the registry cache in memory.
type RedisConfig struct {
	URL string
}

// MinioConfig is optional; without an endpoint logos are kept in memory in
// dev mode and disabled otherwise.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
}

// Enabled reports whether an object store is configured.
func (m MinioConfig) Enabled() bool { return m.Endpoint != "" }

// Postgres reports whether the postgres driver is selected.
func (d DatabaseConfig) Postgres() bool { return d.Driver == "postgres" }

// KeyValueDSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) KeyValueDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as
// golang-migrate expects it.
func (d DatabaseConfig) URL() string {
	if strings.HasPrefix(d.DSN, "postgres://") || strings.HasPrefix(d.DSN, "postgresql://") {
		return d.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:        getEnv("DATABASE_DSN", ""),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "faktury"),
			Password:   getEnv("DB_PASSWORD", "faktury"),
			DBName:     getEnv("DB_NAME", "faktury"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "faktury.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", false),
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("SESSION_SECRET", ""),
			SessionTTL:    getEnvDuration("SESSION_TTL", 14*24*time.Hour),
			SecureCookie:  getEnvBool("SECURE_COOKIE", false),
			AllowedEmails: getEnvList("ALLOWED_EMAILS"),
		},
		Billing: BillingConfig{
			Currency:       strings.ToUpper(getEnv("DEFAULT_CURRENCY", "CZK")),
			DefaultVATRate: getEnvFloat("DEFAULT_VAT_RATE", 21),
			DueDays:        getEnvInt("DEFAULT_DUE_DAYS", 14),
		},
		Registry: RegistryConfig{
			AresURL:  getEnv("ARES_URL", "https://ares.gov.cz/ekonomicke-subjekty-v-be/rest"),
			Timeout:  getEnvDuration("ARES_TIMEOUT", 5*time.Second),
			CacheTTL: getEnvDuration("ARES_CACHE_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "faktury"),
			Secure:    getEnvBool("MINIO_SECURE", false),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
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

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(value)
	return value == "1" || value == "true" || value == "yes"
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvDuration accepts Go durations ("90s") or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if s, err := strconv.Atoi(value); err == nil {
		return time.Duration(s) * time.Second
	}
	return defaultValue
}
