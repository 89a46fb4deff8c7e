// internal/app/features/announcements/announcements.go
package announcements

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/nibrashq/nibras/internal/app/features/errors"
	announcementstore "github.com/nibrashq/nibras/internal/app/store/announcements"
	"github.com/nibrashq/nibras/internal/app/system/audience"
	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/nibrashq/nibras/internal/app/system/htmlsanitize"
	"github.com/nibrashq/nibras/internal/app/system/orgdir"
	"github.com/nibrashq/nibras/internal/app/system/timeouts"
	"github.com/nibrashq/nibras/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// announcementRow represents one broadcast in the reader's list.
type announcementRow struct {
	ID           string
	Title        string
	Content      string
	AudienceHint string
	CreatedAt    string
	Pinned       bool
	Read         bool
}

// ListVM is the view model for the announcements list.
type ListVM struct {
	viewdata.BaseVM
	Items     []announcementRow
	CanAuthor bool
	Success   string
	Error     string
}

// List displays the broadcasts visible to the signed-in reader: those
// whose audience tokens overlap the reader's subject tokens.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reader, err := h.Users.GetByUID(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load reader profile failed", err, "A database error occurred.", "/")
		return
	}

	tokens := audience.SubjectTokens(audience.Profile{
		Unit:       reader.Unit,
		SchoolKey:  reader.SchoolKey,
		SchoolType: reader.SchoolType,
		Tags:       reader.Tags,
	})

	anns, err := h.Store.ListVisibleTo(ctx, tokens)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list announcements failed", err, "A database error occurred.", "/")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(anns))
	for _, ann := range anns {
		ids = append(ids, ann.ID)
	}
	readSet, err := h.Store.ReadSet(ctx, uid, ids)
	if err != nil {
		h.Log.Warn("load read marks failed", zap.Error(err), zap.String("uid", uid))
		readSet = map[primitive.ObjectID]bool{}
	}

	rows := make([]announcementRow, 0, len(anns))
	for _, ann := range anns {
		rows = append(rows, announcementRow{
			ID:           ann.ID.Hex(),
			Title:        ann.Title,
			Content:      ann.Content,
			AudienceHint: audience.Describe(ann.AudTokens),
			CreatedAt:    ann.CreatedAt.Format("Jan 2, 2006 3:04 PM"),
			Pinned:       ann.Pinned,
			Read:         readSet[ann.ID],
		})
	}

	vm := ListVM{
		BaseVM:    viewdata.NewBaseVM(r, "Announcements", "/dashboard"),
		Items:     rows,
		CanAuthor: authz.IsHROrAbove(r),
	}

	switch r.URL.Query().Get("success") {
	case "created":
		vm.Success = "Announcement published"
	case "deleted":
		vm.Success = "Announcement deleted"
	}
	switch r.URL.Query().Get("error") {
	case "empty_audience":
		vm.Error = "Choose an audience for the announcement, or pick Everyone"
	}

	templates.Render(w, r, "announcements/list", vm)
}

// NewVM is the view model for the authoring form.
type NewVM struct {
	viewdata.BaseVM
	Schools []orgdir.SchoolOption
	Units   []orgdir.UnitOption
	Roles   []authz.Role
	Error   string
}

// ShowNew displays the authoring form. HR and above only.
func (h *Handler) ShowNew(w http.ResponseWriter, r *http.Request) {
	if !authz.IsHROrAbove(r) {
		uierrors.RenderForbidden(w, r, "Only HR and above can publish announcements.", "/announcements")
		return
	}

	vm := NewVM{
		BaseVM:  viewdata.NewBaseVM(r, "New Announcement", "/announcements"),
		Schools: orgdir.SchoolOptions,
		Units:   orgdir.UnitOptions,
		Roles:   authz.AllRoles,
	}
	templates.Render(w, r, "announcements/new", vm)
}

// Create publishes a broadcast from the author's audience selection and
// fans notifications out to the resolved recipients. Fan-out is
// best-effort: the broadcast is committed regardless of how delivery
// goes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !authz.IsHROrAbove(r) {
		uierrors.RenderForbidden(w, r, "Only HR and above can publish announcements.", "/announcements")
		return
	}
	_, _, uid, _ := authz.UserCtx(r)

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/announcements")
		return
	}

	title := htmlsanitize.Plain(strings.TrimSpace(r.FormValue("title")))
	content := htmlsanitize.Content(r.FormValue("content"))
	if title == "" {
		vm := NewVM{
			BaseVM:  viewdata.NewBaseVM(r, "New Announcement", "/announcements"),
			Schools: orgdir.SchoolOptions,
			Units:   orgdir.UnitOptions,
			Roles:   authz.AllRoles,
			Error:   "Title is required",
		}
		templates.Render(w, r, "announcements/new", vm)
		return
	}

	sel := audience.Selector{
		Everyone: r.FormValue("aud_all") == "on",
		Schools:  r.Form["aud_school"],
		Units:    r.Form["aud_unit"],
		Roles:    r.Form["aud_role"],
		Tags:     audience.ParseTags(r.FormValue("aud_tags")),
	}
	tokens, err := audience.SelectorTokens(sel)
	if err != nil {
		http.Redirect(w, r, "/announcements?error=empty_audience", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ann, err := h.Store.Create(ctx, announcementstore.CreateInput{
		Title:     title,
		Content:   content,
		AudTokens: tokens,
		CreatedBy: uid,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create announcement failed", err, "Unable to publish the announcement.", "/announcements")
		return
	}

	// Fire-and-forget fan-out; failures are logged inside the dispatcher.
	go h.Dispatcher.FanOutBroadcast(r.Context(), ann)

	http.Redirect(w, r, "/announcements?success=created", http.StatusSeeOther)
}

// ToggleRead flips the signed-in reader's read mark for one broadcast.
func (h *Handler) ToggleRead(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	annID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Store.ToggleRead(ctx, annID, uid); err != nil {
		h.ErrLog.LogServerError(w, r, "toggle read failed", err, "Unable to update read status.", "/announcements")
		return
	}

	http.Redirect(w, r, "/announcements", http.StatusSeeOther)
}

// TogglePin pins or unpins a broadcast. HR and above only.
func (h *Handler) TogglePin(w http.ResponseWriter, r *http.Request) {
	if !authz.IsHROrAbove(r) {
		uierrors.RenderForbidden(w, r, "Only HR and above can pin announcements.", "/announcements")
		return
	}

	annID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ann, err := h.Store.GetByID(ctx, annID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.Store.SetPinned(ctx, annID, !ann.Pinned); err != nil {
		h.ErrLog.LogServerError(w, r, "toggle pin failed", err, "Unable to update the announcement.", "/announcements")
		return
	}

	http.Redirect(w, r, "/announcements", http.StatusSeeOther)
}

// Delete removes a broadcast for everyone. HR and above only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !authz.IsHROrAbove(r) {
		uierrors.RenderForbidden(w, r, "Only HR and above can delete announcements.", "/announcements")
		return
	}

	annID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, annID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete announcement failed", err, "Unable to delete the announcement.", "/announcements")
		return
	}

	http.Redirect(w, r, "/announcements?success=deleted", http.StatusSeeOther)
}
