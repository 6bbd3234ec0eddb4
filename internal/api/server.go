// Package api exposes the scraper over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/project-tktt/bayt-crawler/internal/logger"
)

// Server wraps the gin router and its http.Server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	handler    *JobsHandler
	log        logger.Logger
}

// NewServer creates the router and registers the routes
func NewServer(addr string, handler *JobsHandler, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	s := &Server{
		router:  router,
		handler: handler,
		log:     log,
		httpServer: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}
	s.setUpRoutes()
	return s, nil
}

func (s *Server) setUpRoutes() {
	s.router.GET("/health", s.handler.Health)

	v1 := s.router.Group("/api/v1")
	v1.GET("/jobs", s.handler.Search)
}

// Handler returns the routed http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens until Shutdown is called
func (s *Server) Run() error {
	s.log.Info("API server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.log.Info("API server shutdown completed")
	return nil
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug("HTTP request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status())
	}
}
