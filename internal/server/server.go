package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/Sculptor-AI/kanban/internal/api/ws"
	"github.com/Sculptor-AI/kanban/internal/auth"
	"github.com/Sculptor-AI/kanban/internal/config"
	"github.com/Sculptor-AI/kanban/internal/server/middleware"
	"github.com/Sculptor-AI/kanban/internal/store/postgres"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *postgres.Store
	auth       *auth.Service
	wsHandler  *ws.Handler
	cfg        *config.Config
}

// wsSessionAdapter bridges the auth service to the hub's identity contract,
// which deals in plain string user IDs.
type wsSessionAdapter struct {
	sessions middleware.SessionAuthenticator
}

func (a wsSessionAdapter) ResolveSession(ctx context.Context, token string) (ws.Identity, error) {
	principal, err := a.sessions.ResolveSession(ctx, token)
	if err != nil {
		return ws.Identity{}, err
	}
	return ws.Identity{
		UserID:   principal.UserID.String(),
		Username: principal.Username,
	}, nil
}

// New creates a Server with all routes wired.
func New(ctx context.Context, cfg *config.Config, store *postgres.Store, authSvc *auth.Service) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	wsHandler := ws.NewHandler(
		ws.NewLocator(),
		wsSessionAdapter{sessions: authSvc},
		store.Boards(),
	)

	s := &Server{
		router:    router,
		store:     store,
		auth:      authSvc,
		wsHandler: wsHandler,
		cfg:       cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for register/login, rate limited per IP.
	// 2. Authenticated group for everything else, rate limited per user.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, 5, 10))

			authConfig := huma.DefaultConfig("Kanban Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			authAPI := humachi.New(r, authConfig)
			registerAuthRoutes(authAPI, authSvc)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authSvc))
			r.Use(middleware.RateLimit(ctx, 100, 200))

			apiConfig := huma.DefaultConfig("Kanban API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, store, authSvc, wsHandler.Locator())

			// Relay boundary for external mutation sources; plain chi handler
			// since the body is an opaque event, not an OpenAPI shape.
			r.Post("/boards/{boardID}/relay", wsHandler.ServeRelay)
		})
	})

	// WebSocket upgrade; the token rides in the query string because
	// browsers cannot set headers on WebSocket dials.
	router.Route("/ws", func(r chi.Router) {
		registerWSRoutes(r, wsHandler)
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
