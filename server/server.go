package server

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"longshot/config"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP front of the prediction market
type Server struct {
	httpServer *http.Server
	db         Pinger
}

// Handlers bundles everything the router mounts
type Handlers struct {
	Markets *MarketHandler
	Bets    *BetHandler
	Points  *PointsHandler
	Admin   *AdminHandler
}

// New builds the server with its full route table and middleware chain
func New(cfg *config.Config, h Handlers, db Pinger) *Server {
	s := &Server{db: db}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/markets", h.Markets.List)
	mux.HandleFunc("GET /api/markets/{id}", h.Markets.Get)

	mux.HandleFunc("POST /api/bets", requireUser(h.Bets.Place))
	mux.HandleFunc("GET /api/bets", requireUser(h.Bets.List))

	mux.HandleFunc("GET /api/points", requireUser(h.Points.GetAccount))
	mux.HandleFunc("POST /api/points/claim", requireUser(h.Points.Claim))
	mux.HandleFunc("GET /api/points/history", requireUser(h.Points.History))

	token := cfg.ServiceToken
	mux.HandleFunc("GET /api/admin/markets", requireAdmin(token, h.Admin.SearchMarkets))
	mux.HandleFunc("GET /api/admin/markets/{id}/bets", requireAdmin(token, h.Admin.ListMarketBets))
	mux.HandleFunc("POST /api/admin/cycles/generation", requireAdmin(token, h.Admin.RunGeneration))
	mux.HandleFunc("POST /api/admin/cycles/resolution", requireAdmin(token, h.Admin.RunResolution))
	mux.HandleFunc("POST /api/admin/cycles/retag", requireAdmin(token, h.Admin.RunRetag))

	var handler http.Handler = mux
	handler = authMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Start runs the HTTP listener until it fails or is shut down
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"reason": "database unreachable",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
