package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/config"
	"github.com/vovakirdan/roomrelay/internal/metrics"
)

// NewServer builds an HTTP server with the health, WebSocket, rooms and
// metrics routes. gatherer may be nil, in which case /metrics is not served.
func NewServer(hub Hub, cfg *config.Config, logger *zerolog.Logger, gatherer prometheus.Gatherer) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	rooms := NewRoomHandlers(hub, logger)
	api := router.Group("/api")
	api.GET("/rooms", rooms.ListRooms)

	if cfg.MetricsEnabled && gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
