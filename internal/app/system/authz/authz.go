package authz

import (
	"net/http"

	"github.com/nibrashq/nibras/internal/app/system/auth"
)

// UserCtx returns the current user's role, name, uid, and a found flag.
// If no user is present in context it returns employee, "", "", false so
// callers can trust that ok=true means an authenticated user.
func UserCtx(r *http.Request) (role Role, name string, uid string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return RoleEmployee, "", "", false
	}
	return ParseRole(u.Role), u.Name, u.UID, true
}

// ActorCtx builds the explicit Actor passed into workflow and
// notification calls from the request's session user.
func ActorCtx(r *http.Request) (Actor, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return Actor{}, false
	}
	return Actor{UID: u.UID, Role: ParseRole(u.Role)}, true
}

// IsHROrAbove reports whether the current user can author announcements
// and manage requests they do not own.
func IsHROrAbove(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && AtLeast(role, RoleHR)
}

// IsAdmin reports whether the current request's user is an admin.
// Superadmins count as admins for permission purposes.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && AtLeast(role, RoleAdmin)
}
