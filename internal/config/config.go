package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp"`
	Events    EventsConfig    `yaml:"events"`
	Reporting ReportingConfig `yaml:"reporting"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

type DatabaseConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	LogMode bool   `yaml:"log_mode"`
}

type AuthConfig struct {
	AdminUsername     string        `yaml:"admin_username"`
	AdminPasswordHash string        `yaml:"admin_password_hash"`
	JWTSecret         string        `yaml:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
}

type LLMConfig struct {
	Provider        string  `yaml:"provider"`
	Model           string  `yaml:"model"`
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url"`
	AzureEndpoint   string  `yaml:"azure_endpoint"`
	AzureDeployment string  `yaml:"azure_deployment"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
}

type WhatsAppConfig struct {
	Phone        string `yaml:"phone"`
	BusinessName string `yaml:"business_name"`
}

type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

type ReportingConfig struct {
	Timezone            string `yaml:"timezone"`
	MovingAverageWindow int    `yaml:"moving_average_window"`
	TopN                int    `yaml:"top_n"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "catering.db",
		},
		Auth: AuthConfig{
			AdminUsername: "admin",
			TokenTTL:      12 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   1500,
		},
		WhatsApp: WhatsAppConfig{
			BusinessName: "Catering",
		},
		Events: EventsConfig{
			Exchange: "catering_orders",
		},
		Reporting: ReportingConfig{
			Timezone:            "Local",
			MovingAverageWindow: 7,
			TopN:                5,
		},
		Log: LogConfig{
			Level:   "info",
			Service: "catering",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies a
// .env file (when present) and CATERING_* environment overrides. A missing
// config file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Driver, "CATERING_DB_DRIVER")
	setString(&c.Database.DSN, "CATERING_DB_DSN")
	setString(&c.Auth.AdminUsername, "CATERING_ADMIN_USERNAME")
	setString(&c.Auth.AdminPasswordHash, "CATERING_ADMIN_PASSWORD_HASH")
	setString(&c.Auth.JWTSecret, "CATERING_JWT_SECRET")
	setString(&c.LLM.Provider, "CATERING_LLM_PROVIDER")
	setString(&c.LLM.Model, "CATERING_LLM_MODEL")
	setString(&c.LLM.APIKey, "CATERING_LLM_API_KEY")
	setString(&c.LLM.BaseURL, "CATERING_LLM_BASE_URL")
	setString(&c.LLM.AzureEndpoint, "AZURE_OPENAI_ENDPOINT")
	setString(&c.LLM.AzureDeployment, "AZURE_OPENAI_DEPLOYMENT_NAME")
	setString(&c.WhatsApp.Phone, "CATERING_WHATSAPP_PHONE")
	setString(&c.Events.AMQPURL, "CATERING_AMQP_URL")
	setString(&c.Reporting.Timezone, "CATERING_TIMEZONE")
	setString(&c.Log.Level, "CATERING_LOG_LEVEL")

	if c.LLM.APIKey == "" {
		setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	}

	if v := os.Getenv("CATERING_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CATERING_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("CATERING_METRICS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CATERING_METRICS_PORT: %w", err)
		}
		c.Metrics.Port = port
	}
	if v := os.Getenv("CATERING_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks the configuration for values the service cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port %d", c.Metrics.Port)
	}
	if c.Metrics.Enabled && c.Metrics.Port == c.Server.Port {
		return fmt.Errorf("metrics port must differ from server port")
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Auth.AdminPasswordHash != "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required when an admin password is configured")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the reporting timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Reporting.Timezone == "" || c.Reporting.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reporting timezone %q: %w", c.Reporting.Timezone, err)
	}
	return loc, nil
}
