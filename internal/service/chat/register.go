package chat

import (
	"github.com/go-chi/chi/v5"

	"github.com/udinder/udinder/internal/app"
)

// Registrar ties the Chat service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Chat service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Chat service routes to the router. Paths are
// absolute so registrars can share the /v1 prefix on one router.
func (r *Registrar) Register(router chi.Router) {
	service := NewChatService(r.appCtx)
	router.Post("/v1/messages", service.handleSendMessage)
	router.Get("/v1/conversations", service.handleListConversation)
}
