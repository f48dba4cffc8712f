package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/diagramhub/internal/auth"
	"github.com/vovakirdan/diagramhub/internal/config"
	"github.com/vovakirdan/diagramhub/internal/core"
	"github.com/vovakirdan/diagramhub/internal/metrics"
)

// NewServer builds an HTTP server with the WebSocket endpoint and the
// supporting gin routes. collector may be nil.
func NewServer(registry *core.Registry, collector *metrics.Collector, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	var obs core.Observer
	if collector != nil {
		obs = collector
		if cfg.MetricsEnabled {
			router.GET("/metrics", gin.WrapH(collector.Handler()))
		}
	}

	rooms := NewRoomHandlers(registry, logger)
	api := router.Group("/api")
	api.GET("/rooms", rooms.ListRooms)
	api.GET("/rooms/:room/document", rooms.GetDocument)

	var ws stdhttp.Handler = NewWSHandler(registry, obs, cfg, logger)
	if cfg.JWTSecret != "" {
		ws = AuthMiddleware(&auth.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}, logger, ws)
	}

	// The upgrade hijacks the connection, which gin's writer does not allow
	// once headers are out, so WebSocket traffic bypasses the router.
	mux := stdhttp.NewServeMux()
	mux.Handle(wsPathPrefix, ws)
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
