// Package server exposes classification and the highlight store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/crimson-sun/gatekeeper/internal/model"
	"github.com/crimson-sun/gatekeeper/internal/output"
	"github.com/crimson-sun/gatekeeper/internal/store"
)

const defaultShutdownTimeout = 10 * time.Second

// Classifier is the classification boundary the handlers call.
type Classifier interface {
	Classify(text string) (model.Result, error)
	ClassifyPassage(text string) ([]model.Result, error)
	Mode() string
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables persistence of analyzed highlights and the
// /highlights routes.
func WithStore(st *store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithForwarder sends every analysis result to out. Failures are logged
// and never affect the response.
func WithForwarder(out output.Output) Option {
	return func(s *Server) { s.forward = out }
}

// WithLogger sets the request and error logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithShutdownTimeout bounds graceful shutdown in Run. Default: 10s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// Server is the HTTP front end.
type Server struct {
	cls             Classifier
	store           *store.Store
	forward         output.Output
	logger          *slog.Logger
	shutdownTimeout time.Duration
	router          *gin.Engine
	now             func() time.Time
}

// New builds the router. Gin's mode is left to the caller.
func New(cls Classifier, opts ...Option) *Server {
	s := &Server{
		cls:             cls,
		logger:          slog.Default(),
		shutdownTimeout: defaultShutdownTimeout,
		now:             time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), allowExtension())
	r.GET("/health", s.health)
	r.POST("/analyze", s.analyze)
	r.POST("/batch-analyze", s.batchAnalyze)
	r.POST("/analyze-passage", s.analyzePassage)
	if s.store != nil {
		h := r.Group("/highlights")
		h.POST("", s.createHighlight)
		h.GET("", s.listHighlights)
		h.GET("/:id", s.getHighlight)
		h.DELETE("/:id", s.deleteHighlight)
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String(), "mode", s.cls.Mode())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func requestLogger(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// allowExtension lets the browser extension call the API from any page.
func allowExtension() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type", "X-Page-URL"},
		MaxAge:          12 * time.Hour,
	})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"ok": false, "error": msg})
}
