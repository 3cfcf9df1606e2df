package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"mahjong-realm/metrics"
	"mahjong-realm/persistence"
	"mahjong-realm/services"
)

// RouterConfig wires the HTTP surface
type RouterConfig struct {
	Deps
	Layouts        *services.LayoutCache
	Storage        persistence.Storage
	HTTPMetrics    *metrics.HTTPMetrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter builds the gin engine serving /ws, the REST API and /metrics
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(cfg.Logger))
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Handler())
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	r.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			cfg.Logger.Warn("failed to upgrade connection", "error", err)
			return
		}
		defer conn.Close()
		HandleClientConnection(conn, cfg.Deps)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": cfg.Games.ActiveSessions(),
			"clients":  cfg.Clients.Count(),
		})
	})

	api := r.Group("/api")
	api.GET("/templates", func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Layouts.List())
	})
	api.GET("/sessions/:id", func(c *gin.Context) {
		snap, err := cfg.Games.Snapshot(c.Param("id"))
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
	})
	api.GET("/players/:username", func(c *gin.Context) {
		player, err := cfg.Players.GetPlayerByUsername(c.Param("username"))
		if errors.Is(err, persistence.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		games, err := cfg.Storage.ListGames(player.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"player": player, "games": games})
	})

	if cfg.Gatherer != nil {
		metrics.RegisterMetricsEndpoint(r, cfg.Gatherer)
	}
	return r
}

// originChecker allows any origin when allowed is empty
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// requestLogger tags each request with a trace id and logs it on completion
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Request-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)
		c.Header("X-Request-ID", traceID)

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logger.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
			"trace", traceID,
		)
	}
}
