// Package server exposes the leaderboard gate over HTTP: per-game leaderboard
// reads, session registration and score submission, behind CORS and a
// browser-only request gate.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"

	"github.com/vovakirdan/minigames/internal/config"
	"github.com/vovakirdan/minigames/internal/leaderboard"
)

// Purger is implemented by stores that need expired rows removed
// periodically. Redis expires keys itself and does not implement it.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Server is the HTTP leaderboard API.
type Server struct {
	cfg    config.ServerConfig
	router *gin.Engine
	http   *http.Server
	sched  gocron.Scheduler
	logger *log.Logger
}

// New builds the server and its routes.
func New(cfg config.ServerConfig, gate *leaderboard.Gate, logger *log.Logger) (*Server, error) {
	router, err := NewRouter(cfg, gate, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Listen,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// NewRouter creates the gin engine with middleware and routes.
func NewRouter(cfg config.ServerConfig, gate *leaderboard.Gate, logger *log.Logger) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("server: trusted proxies: %w", err)
	}

	router.Use(gin.Recovery(), RequestLogger(logger))
	origins := newOriginSet(cfg.AllowedOrigins)
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  origins.allows,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{gate: gate, logger: logger}
	api := router.Group("/api/:game", RequestGate(cfg.AllowedOrigins))
	api.GET("/leaderboard", h.getLeaderboard)
	api.POST("/session", h.createSession)
	api.POST("/score", h.submitScore)

	return router, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// StartMaintenance schedules p.PurgeExpired every interval.
func (s *Server) StartMaintenance(p Purger, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("server: create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			n, err := p.PurgeExpired(ctx)
			if err != nil {
				s.logger.Error("purge expired rows", "error", err)
				return
			}
			if n > 0 {
				s.logger.Debug("purged expired rows", "count", n)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("server: schedule purge: %w", err)
	}

	sched.Start()
	s.sched = sched
	return nil
}

// ListenAndServe starts the HTTP server and blocks until SIGINT/SIGTERM.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting HTTP server", "address", s.cfg.Listen)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		s.stopScheduler()
		return fmt.Errorf("server: %w", err)
	case <-done:
	}

	s.logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the scheduler and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopScheduler()
	return s.http.Shutdown(ctx)
}

func (s *Server) stopScheduler() {
	if s.sched == nil {
		return
	}
	if err := s.sched.Shutdown(); err != nil {
		s.logger.Warn("scheduler shutdown", "error", err)
	}
	s.sched = nil
}
