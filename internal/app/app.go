package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/koinonia-app/rooms-gateway/internal/auth"
	"github.com/koinonia-app/rooms-gateway/internal/config"
	"github.com/koinonia-app/rooms-gateway/internal/core"
	"github.com/koinonia-app/rooms-gateway/internal/media"
	"github.com/koinonia-app/rooms-gateway/internal/ratelimit"
	"github.com/koinonia-app/rooms-gateway/internal/store/sqlite"
	transporthttp "github.com/koinonia-app/rooms-gateway/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           *sqlite.SQLiteStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration. Optional
// subsystems come up only when configured: the store needs a database
// path, token verification needs a JWT secret, media needs LiveKit
// credentials. The gateway serves anonymous traffic without any of them.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	var st *sqlite.SQLiteStore
	if cfg.DatabasePath != "" {
		var err error
		st, err = sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")
	}

	var verifier auth.Verifier
	var authService *auth.Service
	if cfg.JWTSecret != "" {
		jwtConfig := &auth.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			TTL:      cfg.JWTTTL,
		}
		verifier = auth.NewJWTVerifier(jwtConfig)
		if st != nil {
			authService = auth.NewService(st, jwtConfig)
		}
	} else {
		logger.Warn().Msg("jwt secret not set; all connections are anonymous")
	}

	var engine core.MediaEngine
	if cfg.LiveKit.APIKey != "" && cfg.LiveKit.APISecret != "" {
		engine = media.New(cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, cfg.LiveKit.URL)
		logger.Info().Str("url", cfg.LiveKit.URL).Msg("media engine enabled")
	}

	limiter := ratelimit.New(
		ratelimit.PoolConfig{
			Points: cfg.RateLimit.AnonPoints,
			Window: cfg.RateLimit.AnonWindow,
			Block:  cfg.RateLimit.AnonBlock,
		},
		ratelimit.PoolConfig{
			Points: cfg.RateLimit.AuthPoints,
			Window: cfg.RateLimit.AuthWindow,
			Block:  cfg.RateLimit.AuthBlock,
		},
	)

	opts := core.HubOptions{
		Media:        engine,
		HistoryLimit: cfg.HistoryLimit,
	}
	if st != nil {
		opts.Store = &historyStore{messages: st}
	}
	hub := core.NewHub(logger, opts)

	server := transporthttp.NewServer(hub, verifier, authService, limiter, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("gateway listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
