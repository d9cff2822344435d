package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Attendee AttendeeConfig
	Session  SessionConfig
	Redis    RedisConfig
	Breaker  BreakerConfig
	I18n     I18nConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// AttendeeConfig points at the remote attendee API.
type AttendeeConfig struct {
	BaseURL string        `env:"BASE_API_URL"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
}

type SessionConfig struct {
	Store        string        `env:"SESSION_STORE" envDefault:"memory"` // memory|redis
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"attendee_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type BreakerConfig struct {
	FailureThreshold int           `env:"BREAKER_FAILURE_THRESHOLD" envDefault:"5"` // N회 연속 실패 시 Circuit OPEN, 0 이면 비활성
	ResetTimeout     time.Duration `env:"BREAKER_RESET_TIMEOUT" envDefault:"30s"`   // 재시도 허용까지 대기 시간
}

type I18nConfig struct {
	DefaultLang string `env:"DEFAULT_LANG" envDefault:"es"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"` // console|json
	File   string `env:"LOG_FILE"`
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Attendee.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Attendee.BaseURL), "/")
	cfg.Session.Store = strings.ToLower(strings.TrimSpace(cfg.Session.Store))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Attendee.BaseURL == "" {
		return fmt.Errorf("BASE_API_URL is required")
	}
	u, err := url.Parse(c.Attendee.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BASE_API_URL must be an absolute URL, got %q", c.Attendee.BaseURL)
	}
	if c.Attendee.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Server.Port)
	}
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
