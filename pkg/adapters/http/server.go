// Package http exposes a small debug/driver API over the engine: list
// and inspect persisted sessions, and advance a session by one tree
// pass. It is an external driver of the engine, intended for local
// debugging and simple host integrations.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server drives one initialized tree against persisted sessions.
type Server struct {
	tree     *canopy.Tree
	sessions *session.Manager
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the HTTP handler.
//
// Routes:
//
//	GET    /healthz
//	GET    /sessions
//	GET    /sessions/{uid}
//	POST   /sessions/{uid}/tick
//	DELETE /sessions/{uid}
func NewHandler(tree *canopy.Tree, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{tree: tree, sessions: sessions, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Get("/sessions", s.list)
	r.Get("/sessions/{uid}", s.get)
	r.Post("/sessions/{uid}/tick", s.tick)
	r.Delete("/sessions/{uid}", s.delete)
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	uids, err := s.sessions.List(r.Context())
	if err != nil {
		s.logger.Error("list sessions failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": uids})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	state, err := s.sessions.Load(r.Context(), uid)
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("load session failed", "uid", uid, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// tickResponse is the result of one tree pass.
type tickResponse struct {
	Status string        `json:"status"`
	Code   int           `json:"code"`
	State  *domain.State `json:"state"`
}

// tick loads the session (creating a blank one on first touch), runs a
// single pass and persists the result. The whole read-execute-write is
// performed under the session lock.
func (s *Server) tick(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var resp tickResponse
	err := s.sessions.WithLock(r.Context(), uid, func(ctx context.Context) error {
		store := s.sessions.Store()
		state, err := store.Load(ctx, uid)
		if errors.Is(err, domain.ErrSessionNotFound) {
			state = domain.NewStateWithUID(uid)
		} else if err != nil {
			return err
		}

		status, err := s.tree.ExecuteContext(ctx, state)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, uid, state); err != nil {
			return err
		}

		resp = tickResponse{Status: status.String(), Code: int(status), State: state}
		return nil
	})
	if err != nil {
		s.logger.Error("tick failed", "uid", uid, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Info("tick", "uid", uid, "status", resp.Status)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if err := s.sessions.Delete(r.Context(), uid); err != nil {
		s.logger.Error("delete session failed", "uid", uid, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
