// internal/app/features/dashboard/dashboard.go

// Package dashboard serves the signed-in landing page: the user's recent
// announcements, request counters, and unread notifications at a glance.
package dashboard

import (
	"context"
	"net/http"

	uierrors "github.com/nibrashq/nibras/internal/app/features/errors"
	announcementstore "github.com/nibrashq/nibras/internal/app/store/announcements"
	notificationstore "github.com/nibrashq/nibras/internal/app/store/notifications"
	requeststore "github.com/nibrashq/nibras/internal/app/store/requests"
	userstore "github.com/nibrashq/nibras/internal/app/store/users"
	"github.com/nibrashq/nibras/internal/app/system/audience"
	"github.com/nibrashq/nibras/internal/app/system/auth"
	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/nibrashq/nibras/internal/app/system/timeouts"
	"github.com/nibrashq/nibras/internal/app/system/viewdata"
	"github.com/nibrashq/nibras/internal/app/system/workflow"
	"github.com/nibrashq/nibras/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the dashboard page.
type Handler struct {
	Users         *userstore.Store
	Announcements *announcementstore.Store
	Requests      *requeststore.Store
	Notifications *notificationstore.Store
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
}

// NewHandler constructs a Dashboard Handler.
func NewHandler(db *mongo.Database, policy workflow.Policy, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         userstore.New(db),
		Announcements: announcementstore.New(db),
		Requests:      requeststore.New(db, policy),
		Notifications: notificationstore.New(db),
		Log:           logger,
		ErrLog:        errLog,
	}
}

// Routes returns the dashboard subrouter.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.Show)
	return r
}

// announcementCard is one recent broadcast on the dashboard.
type announcementCard struct {
	ID        string
	Title     string
	CreatedAt string
	Pinned    bool
}

// VM is the dashboard view model.
type VM struct {
	viewdata.BaseVM
	Recent []announcementCard

	MyOpenRequests int
	InboxRequests  int
	Unread         int64

	CanAuthor bool
	IsHR      bool
}

// Show renders the dashboard. Each panel degrades independently: a
// failing counter logs and renders as zero instead of failing the page.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	role, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := VM{
		BaseVM:    viewdata.NewBaseVM(r, "Dashboard", "/"),
		CanAuthor: authz.IsHROrAbove(r),
		IsHR:      authz.IsHROrAbove(r),
	}

	reader, err := h.Users.GetByUID(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "A database error occurred.", "/")
		return
	}

	tokens := audience.SubjectTokens(audience.Profile{
		Unit:       reader.Unit,
		SchoolKey:  reader.SchoolKey,
		SchoolType: reader.SchoolType,
		Tags:       reader.Tags,
	})
	if anns, err := h.Announcements.ListVisibleTo(ctx, tokens); err != nil {
		h.Log.Warn("dashboard announcements failed", zap.Error(err), zap.String("uid", uid))
	} else {
		for i, ann := range anns {
			if i == 5 {
				break
			}
			vm.Recent = append(vm.Recent, announcementCard{
				ID:        ann.ID.Hex(),
				Title:     ann.Title,
				CreatedAt: ann.CreatedAt.Format("Jan 2"),
				Pinned:    ann.Pinned,
			})
		}
	}

	if mine, err := h.Requests.ListByCreator(ctx, uid); err != nil {
		h.Log.Warn("dashboard my-requests failed", zap.Error(err), zap.String("uid", uid))
	} else {
		for _, req := range mine {
			if req.Status == models.StatusOpen || req.Status == models.StatusInProgress {
				vm.MyOpenRequests++
			}
		}
	}

	// A request addressed to a uid and that uid's own role shows up in
	// both queries; count it once.
	inbox := make(map[string]bool)
	if byUID, err := h.Requests.ListAssignedToUID(ctx, uid); err != nil {
		h.Log.Warn("dashboard inbox failed", zap.Error(err), zap.String("uid", uid))
	} else {
		for _, req := range byUID {
			inbox[req.ID.Hex()] = true
		}
	}
	if byRole, err := h.Requests.ListAssignedToRole(ctx, string(role)); err != nil {
		h.Log.Warn("dashboard inbox by role failed", zap.Error(err), zap.String("uid", uid))
	} else {
		for _, req := range byRole {
			inbox[req.ID.Hex()] = true
		}
	}
	vm.InboxRequests = len(inbox)

	if unread, err := h.Notifications.CountUnread(ctx, uid); err != nil {
		h.Log.Warn("dashboard unread count failed", zap.Error(err), zap.String("uid", uid))
	} else {
		vm.Unread = unread
	}

	templates.Render(w, r, "dashboard", vm)
}
