package server

import (
	"context"
	"fmt"
	"net/http"

	"MiniBase/internal/platform/config"
	"MiniBase/internal/platform/server/handler/health"
	"MiniBase/internal/platform/server/handler/index"
	"MiniBase/internal/platform/server/handler/table"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phuslu/log"
)

type Server struct {
	httpAddr string
	engine   *chi.Mux
	http     *http.Server
	logger   log.Logger
	health   *health.HealthHandler
	tables   *table.TableHandler
	indexes  *index.IndexHandler
}

func NewServer(cfg config.Config,
	logger log.Logger,
	healthHandler *health.HealthHandler,
	tableHandler *table.TableHandler,
	indexHandler *index.IndexHandler) *Server {
	srv := &Server{
		engine:   chi.NewRouter(),
		httpAddr: fmt.Sprintf(":%d", cfg.ServerPort),
		logger:   logger,
		health:   healthHandler,
		tables:   tableHandler,
		indexes:  indexHandler,
	}
	srv.engine.Use(middleware.RequestID)
	srv.engine.Use(middleware.Logger)
	srv.engine.Use(middleware.Recoverer)
	srv.registerRoutes()
	srv.http = &http.Server{Addr: srv.httpAddr, Handler: srv.engine}
	return srv
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info().Str("addr", s.httpAddr).Msg("server running")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.engine.Get("/health", s.health.Check)
	s.engine.Route("/tables", func(r chi.Router) {
		r.Get("/", s.tables.ListTables)
		r.Post("/", s.tables.CreateTable)
		r.Delete("/", s.tables.DropAllTables)
		r.Route("/{table}", func(r chi.Router) {
			r.Delete("/", s.tables.DropTable)
			r.Get("/fields", s.tables.GetFields)
			r.Get("/records", s.tables.GetRecords)
			r.Post("/records", s.tables.InsertRecord)
			r.Patch("/records", s.tables.UpdateRecords)
			r.Delete("/records", s.tables.DeleteRecords)
			r.Post("/transactions", s.tables.BeginTransaction)
			r.Post("/transactions/commit", s.tables.CommitTransaction)
			r.Post("/transactions/abort", s.tables.AbortTransaction)
			r.Post("/index", s.indexes.CreateIndex)
			r.Get("/index", s.indexes.Search)
		})
	})
}
