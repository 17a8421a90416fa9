// Package config provides configuration for the application
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Razorpay RazorpayConfig
	Admin    AdminConfig

	APIKey              string        `env:"API_KEY"`
	APIBaseURL          string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	FrontendURL         string        `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	UploadsDir          string        `env:"UPLOADS_DIR" envDefault:"uploads"`
	CacheTTL            time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	PasswordResetExpiry time.Duration `env:"PASSWORD_RESET_EXPIRY" envDefault:"1h"`
	CleanupCron         string        `env:"CLEANUP_CRON" envDefault:"@hourly"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `env:"DB_HOST,required,notEmpty"`
	Port     int    `env:"DB_PORT,required,notEmpty"`
	User     string `env:"DB_USER,required,notEmpty"`
	Password string `env:"DB_PASSWORD,required,notEmpty"`
	DBName   string `env:"DB_NAME,required,notEmpty"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Addr returns the host:port pair used by redis and asynq clients
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int `env:"SERVER_PORT" envDefault:"8080"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret             string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenExpiry  time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"5h"`
	RefreshTokenExpiry time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" envDefault:"localhost"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"noreply@mentornest.com"`
}

// RazorpayConfig holds payment gateway credentials
type RazorpayConfig struct {
	KeyID     string `env:"RAZORPAY_KEY_ID"`
	KeySecret string `env:"RAZORPAY_KEY_SECRET"`
	BaseURL   string `env:"RAZORPAY_BASE_URL" envDefault:"https://api.razorpay.com/v1"`
}

// AdminConfig holds credentials of the account seeded on first start
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME" envDefault:"Admin"`
	Email    string `env:"ADMIN_EMAIL" envDefault:"admin@omp.com"`
	Password string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := parse(cfg); err != nil {
		return nil, err
	}

	cfg.CORS.AllowedOrigins = normalizeOrigins(cfg.CORS.AllowedOrigins)

	return cfg, nil
}

// WorkerConfig is the subset of settings the e-mail worker needs
type WorkerConfig struct {
	Logging LoggingConfig
	Redis   RedisConfig
	SMTP    SMTPConfig
}

// SchedulerConfig is the subset of settings the maintenance scheduler needs
type SchedulerConfig struct {
	Logging     LoggingConfig
	APIKey      string `env:"API_KEY,required,notEmpty"`
	APIBaseURL  string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	CleanupCron string `env:"CLEANUP_CRON" envDefault:"@hourly"`
}

// LoadWorker loads the worker configuration without requiring database or JWT settings
func LoadWorker() (*WorkerConfig, error) {
	cfg := &WorkerConfig{}
	if err := parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadScheduler loads the scheduler configuration. API_KEY is required.
func LoadScheduler() (*SchedulerConfig, error) {
	cfg := &SchedulerConfig{}
	if err := parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(cfg any) error {
	// .env is optional
	godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// normalizeOrigins trims origins and falls back to "*" when nothing usable is left
func normalizeOrigins(origins []string) []string {
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			result = append(result, origin)
		}
	}
	if len(result) == 0 {
		return []string{"*"}
	}
	return result
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}
