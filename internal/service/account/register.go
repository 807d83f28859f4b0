package account

import (
	"github.com/go-chi/chi/v5"

	"github.com/udinder/udinder/internal/app"
)

// Registrar ties the Account service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Account service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Account service routes to the router. Paths
// are absolute so registrars can share the /v1 prefix on one router.
func (r *Registrar) Register(router chi.Router) {
	service := NewAccountService(r.appCtx)
	router.Post("/v1/users", service.handleCreateUser)
	router.Get("/v1/users/{userID}", service.handleGetUser)
	router.Put("/v1/users/{userID}/profile", service.handleUpsertProfile)
	router.Post("/v1/users/{userID}/admin", service.handleGrantAdmin)
	router.Post("/v1/admins/{userID}/block", service.handleSetBlocked)
}
