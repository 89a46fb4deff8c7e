// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	Role       string
	UserName   string
	Message    string
	BackURL    string
}

// Handler is the errors feature handler. No DB needed; it just renders
// templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/")
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	RenderUnauthorized(w, r, "/login")
}

// RenderForbidden shows an access-denied page with a message.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_forbidden", newPageData(r, "Access denied", msg, backURL))
}

// RenderUnauthorized shows a sign-in-required page.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	w.WriteHeader(http.StatusUnauthorized)
	templates.Render(w, r, "error_forbidden", newPageData(r, "Sign in required", "Please sign in to continue.", backURL))
}

// RenderNotFound shows a not-found page with a message.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_notfound", newPageData(r, "Not found", msg, backURL))
}

// RenderServerError shows a generic server-error page.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_server", newPageData(r, "Something went wrong", msg, backURL))
}

func newPageData(r *http.Request, title, msg, backURL string) pageData {
	role, name, _, signedIn := authz.UserCtx(r)
	if backURL == "" {
		backURL = "/"
	}
	return pageData{
		Title:      title,
		IsLoggedIn: signedIn,
		Role:       string(role),
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}
}
