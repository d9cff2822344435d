package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kapu/attendee-profile-web/internal/adapter"
	"github.com/kapu/attendee-profile-web/internal/attendee"
	"github.com/kapu/attendee-profile-web/internal/config"
	"github.com/kapu/attendee-profile-web/internal/i18n"
	"github.com/kapu/attendee-profile-web/internal/server"
	"github.com/kapu/attendee-profile-web/internal/service/profile"
	"github.com/kapu/attendee-profile-web/internal/service/session"
	"github.com/kapu/attendee-profile-web/internal/util"
	"go.uber.org/zap"
)

// Container bundles assembled services for constructing the HTTP server.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Handler http.Handler

	closers []func()
}

// NewServer instantiates the HTTP server using the pre-built handler.
func (c *Container) NewServer() (*server.Server, error) {
	if c == nil || c.Handler == nil {
		return nil, fmt.Errorf("http handler not initialized")
	}
	return server.New(c.Logger, c.Config.Server, c.Handler), nil
}

// Close releases infrastructure in reverse construction order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles all infrastructure services and returns a container capable
// of creating a fully-wired server. Connecting to the session store is done
// here so that a misconfigured Redis fails at startup.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Session store
	store, err := newSessionStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	closers = append(closers, func() {
		_ = store.Close()
	})

	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("session store not ready: %w", err)
	}

	// Attendee API
	breaker := util.NewCircuitBreaker(cfg.Breaker.FailureThreshold, cfg.Breaker.ResetTimeout, logger)
	client := attendee.NewClient(cfg.Attendee.BaseURL, cfg.Attendee.Timeout, breaker, logger)

	loader := profile.NewLoader(client, store, cfg.Attendee.Timeout, logger)

	defaultLang, ok := i18n.ParseTag(cfg.I18n.DefaultLang)
	if !ok {
		logger.Warn("Unsupported DEFAULT_LANG, falling back", zap.String("lang", cfg.I18n.DefaultLang))
		defaultLang = i18n.Default()
	}

	pages := server.NewPageHandlers(
		loader,
		adapter.NewProfileFormatter(server.PathSubmitPin, server.PathContactCard),
		server.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			TTL:    cfg.Session.TTL,
		},
		defaultLang,
		logger,
	)

	health := server.NewHealthChecker(map[string]server.HealthProbe{
		"session_store": server.ProbeFunc(store.Ping),
		"attendee_api":  server.ProbeFunc(client.Ping),
	})

	handler := server.NewRouter(logger, server.RouterDependencies{
		Pages:  pages,
		Health: health,
		Status: func() map[string]any {
			status := client.BreakerStatus()
			return map[string]any{
				"session_store": cfg.Session.Store,
				"circuit":       status.State.String(),
			}
		},
	})

	logger.Info("Application services assembled",
		zap.String("session_store", cfg.Session.Store),
		zap.String("api_base_url", cfg.Attendee.BaseURL),
		zap.String("default_lang", defaultLang.String()),
	)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Handler: handler,
		closers: closers,
	}, nil
}

func newSessionStore(cfg *config.Config, logger *zap.Logger) (session.Store, error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		return session.NewRedisStore(session.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Session.TTL,
		}, logger)
	default:
		return session.NewMemoryStore(cfg.Session.TTL), nil
	}
}
