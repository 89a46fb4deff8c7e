package viewdata

import (
	"context"
	"net/http"

	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// DefaultSiteName is the portal's display name.
const DefaultSiteName = "Nibras"

// BaseVM contains common fields for all view models. Embed it in
// feature-specific view models:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// Unread notifications for the header badge
	UnreadNotifications int64
}

// UnreadCounter loads the unread notification count for the header.
// Set by bootstrap to avoid a store dependency here.
type UnreadCounter func(ctx context.Context, uid string) int64

var unreadCounter UnreadCounter

// SetUnreadCounter installs the header badge loader. Call once at startup.
func SetUnreadCounter(fn UnreadCounter) {
	unreadCounter = fn
}

// NewBaseVM creates a populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, uid, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    DefaultSiteName,
		IsLoggedIn:  signedIn,
		Role:        string(role),
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
	}

	if signedIn && unreadCounter != nil {
		vm.UnreadNotifications = unreadCounter(r.Context(), uid)
	}

	return vm
}
