// Package server implements the serving engine: a control plane exposing
// the resolved model, a mock plane synthesizing responses from schemas, a
// CORS proxy plane, a Socket.IO relay, and a hot-reload notification
// channel, all fed by a single reader-preferring ApiModel guard.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	"reqcraft/internal/model"
)

// Server owns the current ApiModel and the HTTP mux serving it. The model
// is replaced whole on every successful rebuild; in-flight requests keep
// reading whichever snapshot they started with.
type Server struct {
	log     *slog.Logger
	name    string
	version string

	mu    sync.RWMutex
	model *model.ApiModel

	notify *notifier
}

// Config selects the serving engine's fixed identity fields, reported by
// the control plane's /api/info.
type Config struct {
	Name    string
	Version string
}

func New(log *slog.Logger, cfg Config, initial *model.ApiModel) *Server {
	return &Server{
		log:     log,
		name:    cfg.Name,
		version: cfg.Version,
		model:   initial,
		notify:  newNotifier(log),
	}
}

func (s *Server) currentModel() *model.ApiModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Swap installs m as the current model and broadcasts a reload to every
// connected notification-channel client. Called by the watcher/build glue
// after a successful rebuild; never partially applied.
func (s *Server) Swap(m *model.ApiModel) {
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
	s.notify.broadcastReload()
}

// ReportBuildError broadcasts a failed-rebuild notification without
// touching the currently served model.
func (s *Server) ReportBuildError(message string) {
	s.notify.broadcastError(message)
}

// Handler builds the full route table. Routes are registered once; Server
// itself only ever swaps the model pointer, not the mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/info", s.handleInfo)
	mux.HandleFunc("GET /api/endpoints", s.handleEndpoints)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/variables", s.handleVariables)
	mux.HandleFunc("GET /api/headers", s.handleHeaders)
	mux.HandleFunc("GET /api/config", s.handleConfigSummary)

	mux.HandleFunc("/mock/", s.handleMock)
	mux.HandleFunc("/proxy/", s.handleProxy)

	mux.HandleFunc("GET /sio-relay", s.handleSocketioRelay)
	mux.HandleFunc("GET /ws", s.handleNotify)

	return withCORS(withRequestLog(s.log, mux))
}

func withRequestLog(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// withCORS applies a permissive development-mode CORS policy to every
// route; the proxy plane additionally sets its own header per response
// since it also forwards upstream headers.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
