// Package server exposes the tutor over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
	"github.com/trigtutor/tutor/graph"
	"github.com/trigtutor/tutor/knowledge"
	"github.com/trigtutor/tutor/orchestrator"
)

// Solver is the part of orchestrator.Solver the handlers use.
type Solver interface {
	Solve(ctx context.Context, question, sessionID string) orchestrator.AnswerResponse
	Reset(ctx context.Context, sessionID string) error
	Renderer() *graph.Renderer
}

// Server owns the router and the listening http.Server.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, solver Solver, holder *knowledge.Holder) *Server {
	h := NewHandlers(solver, holder, time.Duration(cfg.Server.SolveTimeoutMs)*time.Millisecond)
	router := NewRouter(cfg, h)
	return &Server{
		cfg:    cfg,
		router: router,
		http: &http.Server{
			Addr:        cfg.Server.Addr,
			Handler:     router,
			ReadTimeout: time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		},
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server: listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	timeout := time.Duration(s.cfg.Server.ShutdownTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logger.Infof("server: shutting down")
	return s.http.Shutdown(shutdownCtx)
}

// NewRouter registers the API routes:
//
//	POST   /api/v1/solve         answer a question
//	POST   /api/v1/graph         render an equation
//	DELETE /api/v1/sessions/:id  forget a conversation
//	GET    /healthz              liveness and knowledge base size
//	GET    <metrics.path>        Prometheus metrics when enabled
func NewRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	v1 := router.Group("/api/v1")
	v1.POST("/solve", h.Solve)
	v1.POST("/graph", h.Graph)
	v1.DELETE("/sessions/:id", h.ResetSession)

	router.GET("/healthz", h.Health)
	if cfg.Metrics.Enable {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("server: %s %s %d %s", c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
