// internal/app/features/notifications/notifications.go
package notifications

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/nibrashq/nibras/internal/app/features/errors"
	notificationstore "github.com/nibrashq/nibras/internal/app/store/notifications"
	"github.com/nibrashq/nibras/internal/app/system/auth"
	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/nibrashq/nibras/internal/app/system/timeouts"
	"github.com/nibrashq/nibras/internal/app/system/viewdata"
	"github.com/nibrashq/nibras/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the notifications inbox.
type Handler struct {
	Store  *notificationstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs a Notifications Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  notificationstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}

// GetStore returns the underlying notification store for use by other
// components.
func (h *Handler) GetStore() *notificationstore.Store {
	return h.Store
}

// Routes returns the notifications subrouter.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Get("/", h.List)
	r.Post("/{id}/read", h.MarkRead)
	r.Post("/read-all", h.MarkAllRead)

	return r
}

// notificationRow is one inbox entry.
type notificationRow struct {
	ID        string
	Title     string
	Body      string
	Link      string
	CreatedAt string
	Read      bool
}

// ListVM is the view model for the inbox page.
type ListVM struct {
	viewdata.BaseVM
	Items  []notificationRow
	Unread int
}

// List displays the signed-in user's notifications, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Store.ListForUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications failed", err, "A database error occurred.", "/dashboard")
		return
	}

	vm := ListVM{
		BaseVM: viewdata.NewBaseVM(r, "Notifications", "/dashboard"),
		Items:  make([]notificationRow, 0, len(items)),
	}
	for _, n := range items {
		if !n.Read {
			vm.Unread++
		}
		vm.Items = append(vm.Items, notificationRow{
			ID:        n.ID.Hex(),
			Title:     n.Title,
			Body:      n.Body,
			Link:      linkFor(n),
			CreatedAt: n.CreatedAt.Format("Jan 2, 2006 3:04 PM"),
			Read:      n.Read,
		})
	}

	templates.Render(w, r, "notifications/list", vm)
}

// linkFor derives the click-through target for a notification. Stored
// links win; otherwise the referenced announcement or request decides.
func linkFor(n models.Notification) string {
	if n.Link != "" {
		return n.Link
	}
	switch n.Type {
	case models.NotificationAnnouncement:
		if n.AnnID != "" {
			return "/announcements"
		}
	case models.NotificationInternalRequest:
		if n.RequestID != "" {
			return "/requests/" + n.RequestID
		}
	}
	return ""
}

// MarkRead marks one notification read. The store scopes the update to
// the signed-in user, so a guessed id belonging to someone else is a
// silent no-op.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "invalid notification id", err, "That notification does not exist.", "/notifications")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.MarkRead(ctx, id, uid); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogServerError(w, r, "mark notification read failed", err, "A database error occurred.", "/notifications")
		return
	}
	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}

// MarkAllRead marks every unread notification of the signed-in user read.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Store.MarkAllRead(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mark all notifications read failed", err, "A database error occurred.", "/notifications")
		return
	}
	h.Log.Debug("notifications marked read", zap.String("uid", uid), zap.Int64("count", n))
	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}
