package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string // sqlite path or postgres:// URL
	AutoMigrate         bool
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string

	SiteURL          string // public invitation site, e.g. https://wedding.example
	InviteQueryParam string // query parameter that carries the guest slug
	BackupDir        string

	RateLimitMax      int
	RateLimitWindow   time.Duration
	RateLimitBackend  string // memory | redis
	RateLimitCapacity int

	TelegramBotToken string
	TelegramChatID   string
	SendGridAPIKey   string
	MailFrom         string
	MailFromName     string
	NotifyEmail      string // couple's inbox for RSVP notifications
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "wedding.db")
	viper.SetDefault("AUTO_MIGRATE", true)
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("SITE_URL", "http://localhost:4321")
	viper.SetDefault("INVITE_QUERY_PARAM", "to")
	viper.SetDefault("BACKUP_DIR", "backups")
	viper.SetDefault("RATE_LIMIT_MAX", 5)
	viper.SetDefault("RATE_LIMIT_WINDOW", "60s")
	viper.SetDefault("RATE_LIMIT_BACKEND", "memory")
	viper.SetDefault("RATE_LIMIT_CAPACITY", 10000)
	viper.SetDefault("MAIL_FROM", "noreply@wedding.local")
	viper.SetDefault("MAIL_FROM_NAME", "Wedding Invitation")

	window := viper.GetDuration("RATE_LIMIT_WINDOW")
	if window <= 0 {
		window = time.Minute
	}

	return &Config{
		Env:                 viper.GetString("APP_ENV"),
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         viper.GetString("DATABASE_URL"),
		AutoMigrate:         viper.GetBool("AUTO_MIGRATE"),
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		SiteURL:             strings.TrimRight(strings.TrimSpace(viper.GetString("SITE_URL")), "/"),
		InviteQueryParam:    viper.GetString("INVITE_QUERY_PARAM"),
		BackupDir:           viper.GetString("BACKUP_DIR"),
		RateLimitMax:        viper.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow:     window,
		RateLimitBackend:    strings.ToLower(viper.GetString("RATE_LIMIT_BACKEND")),
		RateLimitCapacity:   viper.GetInt("RATE_LIMIT_CAPACITY"),
		TelegramBotToken:    viper.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:      viper.GetString("TELEGRAM_CHAT_ID"),
		SendGridAPIKey:      viper.GetString("SENDGRID_API_KEY"),
		MailFrom:            viper.GetString("MAIL_FROM"),
		MailFromName:        viper.GetString("MAIL_FROM_NAME"),
		NotifyEmail:         viper.GetString("NOTIFY_EMAIL"),
	}, nil
}

// SetupLogger configures the global zerolog logger: console output in development, JSON otherwise.
func SetupLogger(cfg *Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
