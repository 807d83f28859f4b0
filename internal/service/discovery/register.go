package discovery

import (
	"github.com/go-chi/chi/v5"

	"github.com/udinder/udinder/internal/app"
)

// Registrar ties the Discovery service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Discovery service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Discovery service routes to the router. Paths
// are absolute so registrars can share the /v1 prefix on one router.
func (r *Registrar) Register(router chi.Router) {
	service := NewDiscoveryService(r.appCtx)
	router.Put("/v1/likes", service.handlePutLike)
	router.Get("/v1/users/{userID}/liked-by", service.handleListLikedBy)
	router.Get("/v1/users/{userID}/liked-by/count", service.handleCountLikedBy)
	router.Get("/v1/users/{userID}/matches", service.handleListMatches)
	router.Get("/v1/users/{userID}/matches/count", service.handleCountMatches)
}
