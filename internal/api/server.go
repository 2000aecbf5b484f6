package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/riftlabs/decisioncore/internal/indicators"
	"github.com/riftlabs/decisioncore/internal/market"
	"github.com/riftlabs/decisioncore/internal/metrics"
	"github.com/riftlabs/decisioncore/internal/recommend"
	"github.com/riftlabs/decisioncore/internal/strategy"
)

// Dependencies wires the handlers to the decision pipeline. None of these
// are owned by the Server: callers build and shut them down independently.
type Dependencies struct {
	Engine      *recommend.Engine
	Cache       *recommend.RecommendationCache
	Registry    *strategy.Registry
	Scheduler   *recommend.DailyScheduler
	Provider    market.CandleProvider
	Indicators  *indicators.Service
	Instruments []market.Instrument
	Timeframe   string
}

// Server represents the REST API server.
type Server struct {
	router *gin.Engine
	deps   Dependencies
	addr   string
	server *http.Server
}

// Config contains server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigins []string
	Deps        Dependencies
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware())
	router.Use(metrics.GinMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	server := &Server{
		router: router,
		deps:   cfg.Deps,
		addr:   addr,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("starting API server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info().Msg("stopping API server")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
	}

	return nil
}

// LoggerMiddleware is a custom logging middleware for Gin.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		logEvent := log.Info().
			Str("method", method).
			Str("path", path).
			Str("query", query).
			Int("status", statusCode).
			Dur("latency", latency).
			Str("client_ip", clientIP)

		if len(c.Errors) > 0 {
			logEvent.Str("errors", c.Errors.String())
		}

		logEvent.Msg("API request")
	}
}
