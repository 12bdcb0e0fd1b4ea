package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/koinonia-app/rooms-gateway/internal/auth"
	"github.com/koinonia-app/rooms-gateway/internal/config"
	"github.com/koinonia-app/rooms-gateway/internal/core"
	"github.com/koinonia-app/rooms-gateway/internal/ratelimit"
)

// NewServer builds the HTTP server hosting the websocket gateway and the
// token-issuing API. authService may be nil when token minting is handled
// by an external identity provider.
func NewServer(hub *core.Hub, verifier auth.Verifier, authService *auth.Service, limiter *ratelimit.Limiter, cfg config.Config, logger *zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub, verifier, authService, limiter, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter assembles the gin engine. Split out of NewServer for tests.
func NewRouter(hub *core.Hub, verifier auth.Verifier, authService *auth.Service, limiter *ratelimit.Limiter, cfg config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	ws := NewWSHandler(hub, verifier, limiter, cfg.VerifyTimeout, logger)
	router.GET("/ws", ws.Handle)

	api := router.Group("/api")
	api.GET("/stats", StatsHandler(hub))

	if authService != nil {
		handlers := NewAPIHandlers(authService, logger)
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
		api.POST("/guest", handlers.GuestToken)
	}

	return router
}
