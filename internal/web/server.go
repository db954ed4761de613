package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"dhcpconsole/internal/config"
	"dhcpconsole/internal/controller"
	"dhcpconsole/internal/events"
	"dhcpconsole/internal/notify"
)

// Server serves the operator JSON API and the live event stream
type Server struct {
	cfg        *config.Config
	ctrl       *controller.Controller
	center     *notify.Center
	hub        *events.Hub
	router     *mux.Router
	httpServer *http.Server
}

// NewServer creates a new web server. hub may be nil, in which case the
// event stream is not offered.
func NewServer(cfg *config.Config, ctrl *controller.Controller, center *notify.Center, hub *events.Hub) *Server {
	server := &Server{
		cfg:    cfg,
		ctrl:   ctrl,
		center: center,
		hub:    hub,
		router: mux.NewRouter(),
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:              cfg.HTTPListen,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return server
}

// Handler returns the routed handler, used directly by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.cfg.HTTPListen)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(Logging)
	s.router.Use(ErrorRecovery)

	api := s.router.PathPrefix("/api").Subrouter()

	// Reconciled data
	api.HandleFunc("/view", s.handleView).Methods("GET")
	api.HandleFunc("/devices", s.handleDevices).Methods("GET")
	api.HandleFunc("/tags", s.handleTags).Methods("GET")
	api.HandleFunc("/leases", s.handleLeases).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/notifications", s.handleNotifications).Methods("GET")

	// Refreshes
	api.HandleFunc("/refresh", s.handleRefresh).Methods("POST")
	api.HandleFunc("/refresh/devices", s.handleRefreshDevices).Methods("POST")
	api.HandleFunc("/discover", s.handleDiscover).Methods("POST")
	api.HandleFunc("/overview", s.handleOverview).Methods("POST")

	// Mutations
	api.HandleFunc("/tags", s.handleCreateTag).Methods("POST")
	api.HandleFunc("/tags/{name}", s.handleDeleteTag).Methods("DELETE")
	api.HandleFunc("/devices/{mac}/tag", s.handleApplyTag).Methods("POST")

	api.HandleFunc("/visibility", s.handleVisibility).Methods("POST")

	if s.hub != nil {
		api.HandleFunc("/ws", s.handleWebSocket).Methods("GET")
	}
}
