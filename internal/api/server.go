package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MikeSquared-Agency/convnorm/internal/hermes"
	"github.com/MikeSquared-Agency/convnorm/internal/normalize"
)

// Options configures the HTTP server.
type Options struct {
	Port           int
	MaxUploadBytes int64
	// SeenFiles bounds how many accepted file names are remembered for duplicate checks.
	SeenFiles int
}

type Server struct {
	router    *chi.Mux
	httpSrv   *http.Server
	port      int
	maxUpload int64
	svc       *normalize.Service
	events    hermes.Publisher
	seen      *lru.Cache[string, struct{}]
	logger    *slog.Logger
}

func NewServer(opts Options, svc *normalize.Service, events hermes.Publisher, logger *slog.Logger) (*Server, error) {
	seen, err := lru.New[string, struct{}](opts.SeenFiles)
	if err != nil {
		return nil, fmt.Errorf("create seen-file cache: %w", err)
	}
	if events == nil {
		events = hermes.Nop{}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      opts.Port,
		maxUpload: opts.MaxUploadBytes,
		svc:       svc,
		events:    events,
		seen:      seen,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/formats", s.formats)
		r.Post("/conversations/{format}", s.uploadConversations)
		r.Delete("/files/{fileName}", s.forgetFile)
	})

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) formats(w http.ResponseWriter, r *http.Request) {
	formats := normalize.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"formats": names})
}

// forgetFile drops a file name from the duplicate check, e.g. after the user removed the
// file from their list.
func (s *Server) forgetFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")
	if !s.seen.Remove(name) {
		writeError(w, http.StatusNotFound, "not_found", "File has not been added.", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind, msg, detail string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
