// Package server bundles the process's HTTP server, its database pool, and
// its graceful lifecycle, following the teacher's own server composition
// root rather than leaving that wiring inline in main.
package server

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/claremont-dine/menu-api/internal/pkg/config"
)

// Server holds the dependencies shared across the process's lifetime.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	dbPool *pgxpool.Pool
	router http.Handler
}

// New builds a Server around an already-open database pool; the caller
// owns setting up that pool (config load, migrations) since those steps
// need to fail fast before anything else starts.
func New(cfg *config.Config, logger *zap.Logger, dbPool *pgxpool.Pool) *Server {
	return &Server{cfg: cfg, logger: logger, dbPool: dbPool}
}

// SetRouter attaches the gin.Engine (or any http.Handler) that serves
// requests.
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// HTTPServer builds the *http.Server with the teacher's timeout profile.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// DBPool returns the shared connection pool.
func (s *Server) DBPool() *pgxpool.Pool { return s.dbPool }

// Logger returns the shared logger.
func (s *Server) Logger() *zap.Logger { return s.logger }

// Config returns the loaded configuration.
func (s *Server) Config() *config.Config { return s.cfg }

// Close releases the database pool.
func (s *Server) Close() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
}
