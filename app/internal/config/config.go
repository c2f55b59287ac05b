// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port string `env:"APP_PORT" envDefault:"8080"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN"    envDefault:"storefront.db"`

	// Empty RedisURL keeps sessions in process memory.
	RedisURL      string        `env:"REDIS_URL"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"cart_session"`
	SessionTTL    time.Duration `env:"SESSION_TTL"    envDefault:"336h"`
	SecureCookie  bool          `env:"SESSION_SECURE" envDefault:"false"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me"`
	JWTTTL    time.Duration `env:"JWT_TTL"    envDefault:"24h"`
	LoginURL  string        `env:"LOGIN_URL"  envDefault:"/login"`

	SMTPAddr     string        `env:"SMTP_ADDR"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`
	FromEmail    string        `env:"DEFAULT_FROM_EMAIL"`
	NotifyTo     []string      `env:"NOTIFY_TO" envSeparator:","`
	StoreName    string        `env:"STORE_NAME" envDefault:"Storefront"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	c.Port = strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if c.Port == "" {
		return Config{}, fmt.Errorf("APP_PORT is required")
	}
	if c.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	if strings.TrimSpace(c.SessionCookie) == "" {
		return Config{}, fmt.Errorf("SESSION_COOKIE is required")
	}
	if len(c.NotifyTo) == 0 && c.FromEmail != "" {
		c.NotifyTo = []string{c.FromEmail}
	}
	return c, nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}
