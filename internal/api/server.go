// Package api exposes the HTTP surface: statement upload plus the
// pass-through transaction and import-log endpoints.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

// ImportService runs statement imports.
type ImportService interface {
	Import(ctx context.Context, content []byte, filename string) (*importer.Summary, error)
}

// TransactionStore is the read/delete surface behind the CRUD endpoints.
type TransactionStore interface {
	ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]model.Transaction, int64, error)
	DeleteTransaction(ctx context.Context, id uint) error
	ListImportLogs(ctx context.Context) ([]model.ImportLog, error)
	Stats(ctx context.Context) (*store.Stats, error)
}

// Server wires the HTTP routes to the import service and store.
type Server struct {
	router  *mux.Router
	imports ImportService
	store   TransactionStore
	log     zerolog.Logger
}

// NewServer creates a Server with all routes and middleware registered.
func NewServer(imports ImportService, st TransactionStore, log zerolog.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		imports: imports,
		store:   st,
		log:     log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/imports", s.handleCreateImport).Methods(http.MethodPost)
	api.HandleFunc("/imports", s.handleListImports).Methods(http.MethodGet)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	s.router.Use(requestID)
	s.router.Use(requestLogger(s.log))
	s.router.Use(recovery(s.log))
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP listener and blocks.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, s.router)
}
