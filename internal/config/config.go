package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	BotToken    string `env:"BOT_TOKEN,required,notEmpty"`
	DatabaseURL string `env:"DATABASE_URL"` // пусто — сессии в памяти

	PortalURL     string        `env:"PORTAL_API_URL" envDefault:"https://api.chandus7.in/vvit"`
	PortalTimeout time.Duration `env:"PORTAL_TIMEOUT" envDefault:"30s"`
	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"3m"`
	AcademicYear  string        `env:"ACADEMIC_YEAR" envDefault:"2024-25"`

	OTPResendAfter     time.Duration `env:"OTP_RESEND_AFTER" envDefault:"30s"`
	NotifyPollInterval time.Duration `env:"NOTIFY_POLL_INTERVAL" envDefault:"2m"`

	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Env       string `env:"ENV" envDefault:"dev"` // dev|prod
	SentryDSN string `env:"SENTRY_DSN"`
	TZ        string `env:"TZ" envDefault:"Asia/Kolkata"`

	Location *time.Location `env:"-"`
}

// Load читает .env (если есть), затем переменные окружения.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.PortalURL = strings.TrimRight(cfg.PortalURL, "/")
	if cfg.PortalTimeout <= 0 || cfg.UploadTimeout <= 0 {
		return nil, errors.New("PORTAL_TIMEOUT and UPLOAD_TIMEOUT must be positive")
	}

	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		loc = time.Local
	}
	cfg.Location = loc
	return cfg, nil
}

func (c *Config) IsProd() bool { return c.Env == "prod" }
