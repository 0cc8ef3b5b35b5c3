// Package server exposes the needs report over HTTP.
//
// # Routes
//
//	GET  /healthz                 liveness and build info
//	GET  /v1/needs                needs report for the current player
//	GET  /v1/catalog              summary of the active catalog session
//	POST /v1/catalog/invalidate   drop the session; the next request rebuilds
//	GET  /v1/tree/{id}            recipe subtree as DOT or SVG
//	GET  /v1/voyage/ships         owned ships ranked for the next voyage
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with the error code from pkg/errors and a matching status.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/player"
	"github.com/matzehuels/equipneeds/pkg/session"
)

const (
	requestTimeout  = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// StoreLoader fills faction store contents. The game API client implements it.
type StoreLoader interface {
	LoadFactionStores(ctx context.Context, factions []player.Faction) error
}

// Options configures a [Server].
type Options struct {
	Logger     *log.Logger
	Stores     StoreLoader // optional
	TraitBonus int         // voyage ship ranking bonus; 0 selects the default
}

// Server serves the HTTP API.
type Server struct {
	players  player.Source
	sessions *session.Manager
	opts     Options
	logger   *log.Logger
}

// New creates a server reading player data from players.
func New(players player.Source, sessions *session.Manager, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{players: players, sessions: sessions, opts: opts, logger: logger}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/needs", s.handleNeeds)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/catalog/invalidate", s.handleInvalidate)
		r.Get("/tree/{id}", s.handleTree)
		r.Get("/voyage/ships", s.handleShips)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info("HTTP API shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// loadPlayer fetches the player snapshot and fills faction stores when a
// loader is configured. Store failures only degrade faction sources.
func (s *Server) loadPlayer(ctx context.Context) (*player.Snapshot, error) {
	snap, err := s.players.Player(ctx)
	if err != nil {
		return nil, err
	}
	if s.opts.Stores != nil {
		if err := s.opts.Stores.LoadFactionStores(ctx, snap.Character.Factions); err != nil {
			s.logger.Warn("faction stores incomplete", "err", err)
		}
	}
	return snap, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error     string      `json:"error"`
	Code      errors.Code `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if stderrors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      errors.GetCode(err),
		RequestID: requestIDFrom(r.Context()),
	})
}
