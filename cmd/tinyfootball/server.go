package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vladimirvolkov/tinyfootball/internal/config"
	"github.com/vladimirvolkov/tinyfootball/internal/middleware"
	"github.com/vladimirvolkov/tinyfootball/internal/ws"
)

// securityHeaders wraps a handler with common security response headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:; img-src 'self' data:")
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	MatchID string `json:"matchId"`
	ws.HubStats
}

// spectatorServer serves /ws, /health and optionally a static client.
type spectatorServer struct {
	hub     *ws.Hub
	limiter *middleware.IPRateLimiter
	srv     *http.Server
	matchID string
	log     zerolog.Logger
}

func newSpectatorServer(cfg config.SpectatorConfig, matchID string, obs ws.Observer, log zerolog.Logger) *spectatorServer {
	limiter := middleware.NewIPRateLimiter(cfg.MaxConnsPerIP, cfg.MsgRate, time.Second)
	hub := ws.NewHub(ws.HubOptions{
		MaxSpectators:  cfg.MaxSpectators,
		OriginPatterns: cfg.AllowedOrigins,
		Limiter:        limiter,
		Observer:       obs,
		Log:            log,
	})
	s := &spectatorServer{
		hub:     hub,
		limiter: limiter,
		matchID: matchID,
		log:     log,
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           securityHeaders(s.routes(cfg.StaticDir)),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}
	return s
}

func (s *spectatorServer) routes(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.HandleWS)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(healthResponse{MatchID: s.matchID, HubStats: s.hub.Stats()}); err != nil {
			s.log.Debug().Err(err).Msg("health encode error")
		}
	})

	if staticDir != "" {
		// Static files with no-cache headers (prevents stale JS in browser)
		fs := http.FileServer(http.Dir(staticDir))
		mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
			fs.ServeHTTP(w, r)
		}))
	}
	return mux
}

// Start binds the listener synchronously so address errors surface at
// startup, then serves in the background.
func (s *spectatorServer) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("spectator listen %s: %w", s.srv.Addr, err)
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("spectator server starting")
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("spectator server error")
		}
	}()
	return nil
}

func (s *spectatorServer) Shutdown() {
	s.hub.CloseAll("match over")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn().Err(err).Msg("spectator server shutdown")
	}
	s.limiter.Stop()
	s.log.Info().Msg("spectator server stopped")
}
