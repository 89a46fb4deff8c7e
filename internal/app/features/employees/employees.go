// internal/app/features/employees/employees.go
package employees

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/nibrashq/nibras/internal/app/features/errors"
	userstore "github.com/nibrashq/nibras/internal/app/store/users"
	"github.com/nibrashq/nibras/internal/app/system/audience"
	"github.com/nibrashq/nibras/internal/app/system/auth"
	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/nibrashq/nibras/internal/app/system/orgdir"
	"github.com/nibrashq/nibras/internal/app/system/timeouts"
	"github.com/nibrashq/nibras/internal/app/system/viewdata"
	"github.com/nibrashq/nibras/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Routes returns the employees subrouter. The directory is staff-facing;
// account mutations sit behind the admin role gate.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireRole(string(authz.RoleAdmin), string(authz.RoleSuperAdmin)))
		r.Get("/new", h.ShowNew)
		r.Post("/new", h.Create)
		r.Post("/{id}/status", h.SetStatus)
		r.Post("/{id}/password", h.SetPassword)
	})

	return r
}

// employeeRow is one directory entry.
type employeeRow struct {
	ID     string
	UID    string
	Name   string
	Email  string
	Role   string
	Dept   string
	School string
	Unit   string
	Tags   string
	Active bool
}

// ListVM is the view model for the directory page.
type ListVM struct {
	viewdata.BaseVM
	Items    []employeeRow
	Query    string
	CanAdmin bool
	Success  string
	Error    string
}

// List shows the employee directory with an optional name filter. The
// filter matches on the folded name so diacritics and case differences
// do not hide people.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !authz.IsHROrAbove(r) {
		uierrors.RenderForbidden(w, r, "The employee directory is limited to HR staff.", "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list employees failed", err, "A database error occurred.", "/dashboard")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	folded := text.Fold(query)

	vm := ListVM{
		BaseVM:   viewdata.NewBaseVM(r, "Employees", "/dashboard"),
		Query:    query,
		CanAdmin: authz.IsAdmin(r),
	}
	for _, u := range users {
		if folded != "" && !strings.Contains(u.FullNameCI, folded) {
			continue
		}
		vm.Items = append(vm.Items, employeeRow{
			ID:     u.ID.Hex(),
			UID:    u.UID,
			Name:   u.FullName,
			Email:  u.Email,
			Role:   u.Role,
			Dept:   u.Dept,
			School: orgdir.SchoolLabel(u.SchoolKey),
			Unit:   orgdir.UnitLabel(u.Unit),
			Tags:   strings.Join(u.Tags, ", "),
			Active: u.Status == "active",
		})
	}

	switch r.URL.Query().Get("success") {
	case "created":
		vm.Success = "Employee added"
	case "status":
		vm.Success = "Status updated"
	case "password":
		vm.Success = "Password reset"
	}
	switch r.URL.Query().Get("error") {
	case "duplicate":
		vm.Error = "An employee with that uid or email already exists"
	case "invalid":
		vm.Error = "Fill in uid, name, email, and a password of at least 8 characters"
	}

	templates.Render(w, r, "employees/list", vm)
}

// NewVM is the view model for the add-employee form.
type NewVM struct {
	viewdata.BaseVM
	Roles   []authz.Role
	Schools []orgdir.SchoolOption
	Units   []orgdir.UnitOption
}

// ShowNew displays the add-employee form.
func (h *Handler) ShowNew(w http.ResponseWriter, r *http.Request) {
	vm := NewVM{
		BaseVM:  viewdata.NewBaseVM(r, "Add Employee", "/employees"),
		Roles:   authz.AllRoles,
		Schools: orgdir.SchoolOptions,
		Units:   orgdir.UnitOptions,
	}
	templates.Render(w, r, "employees/new", vm)
}

// Create adds an employee. The audience profile fields (school, unit,
// tags) drive announcement targeting, so they are captured here rather
// than in a separate profile step.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse employee form failed", err, "The submitted form could not be read.", "/employees/new")
		return
	}

	uid := strings.TrimSpace(r.FormValue("uid"))
	name := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if uid == "" || name == "" || email == "" || len(password) < 8 {
		http.Redirect(w, r, "/employees?error=invalid", http.StatusSeeOther)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "An internal error occurred.", "/employees/new")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		UID:          uid,
		Email:        email,
		FullName:     name,
		Role:         r.FormValue("role"),
		Dept:         strings.TrimSpace(r.FormValue("dept")),
		Unit:         r.FormValue("unit"),
		SchoolKey:    r.FormValue("school_key"),
		SchoolType:   r.FormValue("school_type"),
		Tags:         audience.ParseTags(r.FormValue("tags")),
		Status:       "active",
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicate) {
			http.Redirect(w, r, "/employees?error=duplicate", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "create employee failed", err, "A database error occurred.", "/employees/new")
		return
	}

	h.Log.Info("employee created", zap.String("uid", u.UID), zap.String("role", u.Role))
	http.Redirect(w, r, "/employees?success=created", http.StatusSeeOther)
}

// SetStatus toggles an employee between active and disabled. Disabled
// employees cannot sign in and drop out of audience resolution.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "invalid employee id", err, "That employee does not exist.", "/employees")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetStatus(ctx, id, r.FormValue("status")); err != nil {
		h.ErrLog.LogServerError(w, r, "set employee status failed", err, "A database error occurred.", "/employees")
		return
	}
	http.Redirect(w, r, "/employees?success=status", http.StatusSeeOther)
}

// SetPassword resets an employee's password.
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "invalid employee id", err, "That employee does not exist.", "/employees")
		return
	}
	password := r.FormValue("password")
	if len(password) < 8 {
		http.Redirect(w, r, "/employees?error=invalid", http.StatusSeeOther)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "An internal error occurred.", "/employees")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetPasswordHash(ctx, id, string(hash)); err != nil {
		h.ErrLog.LogServerError(w, r, "set password failed", err, "A database error occurred.", "/employees")
		return
	}
	http.Redirect(w, r, "/employees?success=password", http.StatusSeeOther)
}
