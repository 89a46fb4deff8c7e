// internal/app/features/requests/routes.go
package requests

import (
	"net/http"

	"github.com/nibrashq/nibras/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the internal-requests subrouter. Every route requires
// sign-in; per-request authority (who may act on a request) is checked in
// the handlers because it depends on the request's current assignee.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Get("/", h.Mine)
	r.Get("/inbox", h.Inbox)
	r.Get("/new", h.ShowNew)
	r.Post("/new", h.Create)
	r.Get("/{id}", h.Show)
	r.Post("/{id}/action", h.Act)

	return r
}
