package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/Sculptor-AI/kanban/internal/api/v1"
	"github.com/Sculptor-AI/kanban/internal/api/ws"
	"github.com/Sculptor-AI/kanban/internal/auth"
	"github.com/Sculptor-AI/kanban/internal/store/postgres"
)

// registerAuthRoutes mounts the unauthenticated register/login endpoints.
func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

// registerAPIRoutes mounts the authenticated REST surface: logout,
// boards, members, and cards. Board and card mutations push a matching
// event through the relay so connected clients see them live.
func registerAPIRoutes(api huma.API, store *postgres.Store, authSvc *auth.Service, relay *ws.Locator) {
	v1.RegisterSessionRoutes(api, authSvc)
	v1.RegisterBoardRoutes(api, store, relay)
	v1.RegisterCardRoutes(api, store, relay)
}

// registerWSRoutes mounts the board WebSocket endpoint. Authentication
// happens inside the handler, before the upgrade, so no Auth middleware
// wraps this route.
func registerWSRoutes(r chi.Router, h *ws.Handler) {
	r.Get("/boards/{boardID}", h.ServeBoard)
}
