// internal/app/features/announcements/routes.go
package announcements

import (
	"net/http"

	"github.com/nibrashq/nibras/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the announcements subrouter. Reading and read-toggling
// require sign-in; authoring, pinning, and deleting are gated per-handler
// on hr-and-above since the role threshold is a rank, not a role list.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Get("/", h.List)
	r.Get("/new", h.ShowNew)
	r.Post("/new", h.Create)
	r.Post("/{id}/read", h.ToggleRead)
	r.Post("/{id}/pin", h.TogglePin)
	r.Post("/{id}/delete", h.Delete)

	return r
}
