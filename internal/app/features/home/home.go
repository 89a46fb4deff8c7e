// internal/app/features/home/home.go

// Package home serves the public landing page.
package home

import (
	"net/http"

	"github.com/nibrashq/nibras/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	return r
}

// ServeRoot renders the landing page, or sends signed-in users straight
// to their dashboard.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	vm := viewdata.NewBaseVM(r, "Welcome", "/")
	if vm.IsLoggedIn {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "home", vm)
}
