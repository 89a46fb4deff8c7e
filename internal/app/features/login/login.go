// internal/app/features/login/login.go

// Package login serves the password sign-in and sign-out pages.
package login

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/nibrashq/nibras/internal/app/features/errors"
	userstore "github.com/nibrashq/nibras/internal/app/store/users"
	"github.com/nibrashq/nibras/internal/app/system/auth"
	"github.com/nibrashq/nibras/internal/app/system/timeouts"
	"github.com/nibrashq/nibras/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler owns the sign-in handlers.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

// NewHandler constructs a Login Handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Log:        logger,
		ErrLog:     errLog,
	}
}

// Routes returns the sign-in subrouter, mounted at /login. Logout is a
// single POST the caller registers at the root so it keeps its own path.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Show)
	r.Post("/", h.Submit)
	return r
}

// VM is the view model for the sign-in page.
type VM struct {
	viewdata.BaseVM
	ReturnTo string
	Error    string
}

// Show displays the sign-in form.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	vm := VM{
		BaseVM:   viewdata.NewBaseVM(r, "Sign In", "/"),
		ReturnTo: safeReturnTo(r.URL.Query().Get("return_to")),
	}
	if r.URL.Query().Get("error") == "credentials" {
		vm.Error = "Email or password is incorrect"
	}
	templates.Render(w, r, "login", vm)
}

// Submit checks the password and starts a session. Lookup failures and
// wrong passwords get the same error so the form does not reveal which
// emails exist.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse login form failed", err, "The submitted form could not be read.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	returnTo := safeReturnTo(r.FormValue("return_to"))

	retry := "/login?error=credentials"
	if returnTo != "" {
		retry += "&return_to=" + url.QueryEscape(returnTo)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Redirect(w, r, retry, http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "login lookup failed", err, "A database error occurred.", "/login")
		return
	}
	if u.Status != "active" || u.PasswordHash == "" {
		http.Redirect(w, r, retry, http.StatusSeeOther)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		http.Redirect(w, r, retry, http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "start session failed", err, "An internal error occurred.", "/login")
		return
	}

	h.Log.Info("user signed in", zap.String("uid", u.UID))

	dest := returnTo
	if dest == "" {
		dest = "/dashboard"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// Logout ends the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("sign out failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeReturnTo accepts only local paths, so the login form cannot be
// turned into an open redirect.
func safeReturnTo(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}
