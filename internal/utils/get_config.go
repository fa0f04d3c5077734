package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	// Server configuration
	AppEnv                 string `yaml:"APP_ENV"`
	Port                   string `yaml:"PORT"`
	FrontendURL            string `yaml:"FRONTEND_URL"`
	LogLevel               string `yaml:"LOG_LEVEL"`
	LogDir                 string `yaml:"LOG_DIR"`
	RateLimitMax           int    `yaml:"RATE_LIMIT_MAX"`
	RateLimitWindowSeconds int    `yaml:"RATE_LIMIT_WINDOW_SECONDS"`
	Currency               string `yaml:"CURRENCY"`

	// Database configuration
	DatabaseURL string `yaml:"DATABASE_URL"`
	DBUser      string `yaml:"DB_USER"`
	DBName      string `yaml:"DB_NAME"`
	DBPassword  string `yaml:"DB_PASSWORD"`
	DBPort      string `yaml:"DB_PORT"`
	DBHost      string `yaml:"DB_HOST"`

	// JWT and admin bootstrap
	JWTSecret        string `yaml:"JWT_SECRET"`
	JWTExpiryMinutes int    `yaml:"JWT_EXPIRY_MINUTES"`
	AdminName        string `yaml:"ADMIN_NAME"`
	AdminEmail       string `yaml:"ADMIN_EMAIL"`
	AdminPassword    string `yaml:"ADMIN_PASSWORD"`

	// WhatsApp Cloud API
	WhatsAppVerifyToken          string `yaml:"WHATSAPP_VERIFY_TOKEN"`
	WhatsAppAccessToken          string `yaml:"WHATSAPP_ACCESS_TOKEN"`
	WhatsAppPhoneNumberID        string `yaml:"WHATSAPP_PHONE_NUMBER_ID"`
	WhatsAppAPIURL               string `yaml:"WHATSAPP_API_URL"`
	WebhookProcessTimeoutSeconds int    `yaml:"WEBHOOK_PROCESS_TIMEOUT_SECONDS"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`
	NotifyEmail      string `yaml:"NOTIFY_EMAIL"`

	// Midtrans configuration
	MidtransClientKey string `yaml:"MIDTRANS_CLIENT_KEY"`
	MidtransServerKey string `yaml:"MIDTRANS_SERVER_KEY"`
	MidtransIsProd    bool   `yaml:"MIDTRANS_IS_PROD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`
}

// LoadConfig reads .env, then the yaml file at path (both optional), then the
// process environment. Later sources win; empty variables are ignored.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("error loading .env file")
	}

	cfg := &Config{}
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"APP_ENV":                  &c.AppEnv,
		"PORT":                     &c.Port,
		"FRONTEND_URL":             &c.FrontendURL,
		"LOG_LEVEL":                &c.LogLevel,
		"LOG_DIR":                  &c.LogDir,
		"CURRENCY":                 &c.Currency,
		"DATABASE_URL":             &c.DatabaseURL,
		"DB_USER":                  &c.DBUser,
		"DB_NAME":                  &c.DBName,
		"DB_PASSWORD":              &c.DBPassword,
		"DB_PORT":                  &c.DBPort,
		"DB_HOST":                  &c.DBHost,
		"JWT_SECRET":               &c.JWTSecret,
		"ADMIN_NAME":               &c.AdminName,
		"ADMIN_EMAIL":              &c.AdminEmail,
		"ADMIN_PASSWORD":           &c.AdminPassword,
		"WHATSAPP_VERIFY_TOKEN":    &c.WhatsAppVerifyToken,
		"WHATSAPP_ACCESS_TOKEN":    &c.WhatsAppAccessToken,
		"WHATSAPP_PHONE_NUMBER_ID": &c.WhatsAppPhoneNumberID,
		"WHATSAPP_API_URL":         &c.WhatsAppAPIURL,
		"SMTP_HOST":                &c.SMTPHost,
		"SMTP_PORT":                &c.SMTPPort,
		"SMTP_SENDER_NAME":         &c.SMTPSenderName,
		"SMTP_AUTH_EMAIL":          &c.SMTPAuthEmail,
		"SMTP_AUTH_PASSWORD":       &c.SMTPAuthPassword,
		"NOTIFY_EMAIL":             &c.NotifyEmail,
		"MIDTRANS_CLIENT_KEY":      &c.MidtransClientKey,
		"MIDTRANS_SERVER_KEY":      &c.MidtransServerKey,
		"AWS_S3_BUCKET":            &c.AWSS3Bucket,
		"AWS_S3_REGION":            &c.AWSS3Region,
		"AWS_ACCESS_KEY":           &c.AWSAccessKey,
		"AWS_SECRET_KEY":           &c.AWSSecretKey,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"RATE_LIMIT_MAX":                  &c.RateLimitMax,
		"RATE_LIMIT_WINDOW_SECONDS":       &c.RateLimitWindowSeconds,
		"JWT_EXPIRY_MINUTES":              &c.JWTExpiryMinutes,
		"WEBHOOK_PROCESS_TIMEOUT_SECONDS": &c.WebhookProcessTimeoutSeconds,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*dst = n
	}

	if v := os.Getenv("MIDTRANS_IS_PROD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MIDTRANS_IS_PROD must be a boolean: %w", err)
		}
		c.MidtransIsProd = b
	}

	// NODE_ENV is accepted for deployments migrated from the previous backend.
	if c.AppEnv == "" {
		c.AppEnv = os.Getenv("NODE_ENV")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.AppEnv == "" {
		c.AppEnv = EnvDevelopment
	}
	if c.Port == "" {
		c.Port = "3000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.FrontendURL == "" {
		c.FrontendURL = "*"
	}
	if c.RateLimitMax == 0 {
		c.RateLimitMax = 20
	}
	if c.RateLimitWindowSeconds == 0 {
		c.RateLimitWindowSeconds = 1
	}
	if c.JWTExpiryMinutes == 0 {
		c.JWTExpiryMinutes = 120
	}
	if c.WebhookProcessTimeoutSeconds == 0 {
		c.WebhookProcessTimeoutSeconds = 30
	}
	if c.WhatsAppAPIURL == "" {
		c.WhatsAppAPIURL = "https://graph.facebook.com/v19.0"
	}
	if c.Currency == "" {
		c.Currency = "IDR"
	}
	if c.AdminName == "" {
		c.AdminName = "Administrator"
	}
	if c.SMTPPort == "" {
		c.SMTPPort = "587"
	}
}

func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}
	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction {
		return fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.AppEnv)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AppEnv == EnvProduction && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	if c.DatabaseURL == "" && (c.DBHost == "" || c.DBName == "") {
		return errors.New("DATABASE_URL or DB_HOST and DB_NAME are required")
	}
	if c.RateLimitMax < 0 || c.RateLimitWindowSeconds < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the
// DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	port := c.DBPort
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, port,
	)
}

// MigrationURL returns a postgres:// URL usable by the SQL migration runner.
func (c *Config) MigrationURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	port := c.DBPort
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, port, c.DBName)
}

func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.NotifyEmail != ""
}

func (c *Config) StorageEnabled() bool {
	return c.AWSS3Bucket != "" && c.AWSS3Region != ""
}

func (c *Config) MidtransEnabled() bool {
	return strings.TrimSpace(c.MidtransServerKey) != ""
}
