// Package server exposes the session snapshot over HTTP for the
// visualizer and other external consumers. Every request rebuilds the
// snapshot from git state; nothing is cached.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/usevibe/vibe-cli/internal/snapshot"
)

// SnapshotSource builds session snapshots on demand.
type SnapshotSource interface {
	Build(ctx context.Context) (*snapshot.SessionSnapshot, error)
}

// Server serves the snapshot JSON endpoints.
type Server struct {
	source SnapshotSource
	log    *zap.Logger
}

// New returns a Server reading from the given source.
func New(source SnapshotSource, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{source: source, log: log}
}

// Router wires the endpoint table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/git-data", s.handleGitData).Methods(http.MethodGet)
	r.HandleFunc("/branches", s.handleBranches).Methods(http.MethodGet)
	r.HandleFunc("/current-branch", s.handleCurrentBranch).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.Use(s.logRequests)
	return r
}

// ListenAndServe blocks serving the endpoints until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.log.Info("serving snapshot endpoints", zap.String("addr", addr))
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Build(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, map[string]any{
		"status":        "ok",
		"repository":    snap.Repository.Name,
		"currentBranch": snap.CurrentBranch,
	})
}

func (s *Server) handleGitData(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Build(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, snap)
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Build(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, map[string]any{
		"currentBranch": snap.CurrentBranch,
		"totalBranches": snap.TotalBranches,
		"branches":      snap.Branches,
	})
}

func (s *Server) handleCurrentBranch(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Build(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, map[string]any{"currentBranch": snap.CurrentBranch})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Build(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, map[string]any{
		"sessionId":         snap.SessionID,
		"totalBranches":     snap.TotalBranches,
		"totalCommits":      snap.TotalCommits,
		"totalFilesChanged": snap.TotalFilesChanged,
	})
}

func (s *Server) respond(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("writing response", zap.Error(err))
	}
}

// fail reports a failed snapshot pass. The pass aborts entirely on
// inspection errors, so there is never a partial body to send.
func (s *Server) fail(w http.ResponseWriter, err error) {
	s.log.Error("snapshot pass failed", zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}
