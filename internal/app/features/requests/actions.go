// internal/app/features/requests/actions.go
package requests

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/nibrashq/nibras/internal/app/features/errors"
	requeststore "github.com/nibrashq/nibras/internal/app/store/requests"
	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/nibrashq/nibras/internal/app/system/htmlsanitize"
	"github.com/nibrashq/nibras/internal/app/system/orgdir"
	"github.com/nibrashq/nibras/internal/app/system/timeouts"
	"github.com/nibrashq/nibras/internal/app/system/viewdata"
	"github.com/nibrashq/nibras/internal/app/system/workflow"
	"github.com/nibrashq/nibras/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func actionLabel(t models.RequestActionType) string {
	switch t {
	case models.ActionSubmitted:
		return "Submitted"
	case models.ActionForwarded:
		return "Forwarded"
	case models.ActionApproved:
		return "Approved"
	case models.ActionRejected:
		return "Rejected"
	case models.ActionComment:
		return "Comment"
	case models.ActionClosed:
		return "Closed"
	case models.ActionGeneratedPDF:
		return "PDF generated"
	}
	return string(t)
}

// timelineRow is one action in the request's history, oldest first.
type timelineRow struct {
	At      string
	Label   string
	From    string
	To      string
	Comment string
}

// DetailVM is the view model for the request detail page.
type DetailVM struct {
	viewdata.BaseVM
	Row         requestRow
	Description string
	PDFURL      string
	Timeline    []timelineRow
	Recipients  []orgdir.Recipient

	CanAct    bool
	CanCancel bool
	Success   string
	Error     string
}

// canAct reports whether the signed-in user may perform workflow actions
// on the request: the current assignee (addressed by uid or by role) and
// hr-and-above staff may.
func canAct(r *http.Request, req *models.InternalRequest) bool {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if req.CurrentAssignee.UID != "" && req.CurrentAssignee.UID == uid {
		return true
	}
	if req.CurrentAssignee.Role != "" && req.CurrentAssignee.Role == string(role) {
		return true
	}
	return authz.IsHROrAbove(r)
}

// canView is broader than canAct: the creator always sees their own
// request.
func canView(r *http.Request, req *models.InternalRequest) bool {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	return uid == req.CreatedByUID || canAct(r, req)
}

// Show displays a request with its full action timeline.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "invalid request id", err, "That request does not exist.", "/requests")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requeststore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "request not found", err, "That request does not exist.", "/requests")
			return
		}
		h.ErrLog.LogServerError(w, r, "load request failed", err, "A database error occurred.", "/requests")
		return
	}
	if !canView(r, req) {
		uierrors.RenderForbidden(w, r, "You do not have access to this request.", "/requests")
		return
	}

	names := h.displayNames(ctx, req)

	vm := DetailVM{
		BaseVM:      viewdata.NewBaseVM(r, req.Title, "/requests"),
		Row:         rowFor(*req),
		Description: req.Description,
		PDFURL:      req.PDFURL,
		Recipients:  orgdir.Recipients,
		CanAct:      canAct(r, req) && !req.Status.IsTerminal(),
	}
	if _, _, uid, _ := authz.UserCtx(r); uid == req.CreatedByUID && !req.Status.IsTerminal() {
		vm.CanCancel = true
	}

	for _, a := range req.Actions {
		vm.Timeline = append(vm.Timeline, timelineRow{
			At:      a.At.Format("Jan 2, 2006 3:04 PM"),
			Label:   actionLabel(a.ActionType),
			From:    partyLabel(names, a.FromUID, a.FromRole),
			To:      partyLabel(names, a.ToUID, a.ToRole),
			Comment: a.Comment,
		})
	}

	switch r.URL.Query().Get("success") {
	case "created":
		vm.Success = "Request submitted"
	case "action":
		vm.Success = "Action recorded"
	}
	switch r.URL.Query().Get("error") {
	case "conflict":
		vm.Error = "Someone else updated this request at the same time. Review the timeline and try again."
	case "terminal":
		vm.Error = "This request is closed and no longer accepts actions."
	case "comment":
		vm.Error = "Write a comment first"
	case "recipient":
		vm.Error = "Choose who to forward the request to"
	}

	templates.Render(w, r, "requests/detail", vm)
}

// displayNames resolves the uids appearing in the request's timeline to
// full names. Lookups are best-effort; a missing profile falls back to
// the raw uid.
func (h *Handler) displayNames(ctx context.Context, req *models.InternalRequest) map[string]string {
	names := make(map[string]string)
	want := map[string]bool{req.CreatedByUID: true}
	for _, a := range req.Actions {
		if a.FromUID != "" {
			want[a.FromUID] = true
		}
		if a.ToUID != "" {
			want[a.ToUID] = true
		}
	}
	for uid := range want {
		if uid == "" {
			continue
		}
		u, err := h.Users.GetByUID(ctx, uid)
		if err != nil {
			continue
		}
		names[uid] = u.FullName
	}
	return names
}

// roleTitle renders a role key for display ("hr" stays an initialism,
// the rest get a leading capital).
func roleTitle(role string) string {
	switch role {
	case "hr", "ceo":
		return strings.ToUpper(role)
	}
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

func partyLabel(names map[string]string, uid, role string) string {
	if uid != "" {
		if name := names[uid]; name != "" {
			return name
		}
		return uid
	}
	if role != "" {
		return roleTitle(role)
	}
	return ""
}

// Act performs one workflow action on a request. Append-and-project is
// delegated to the store; a concurrent append surfaces as ErrConflict and
// is retried once before the user is asked to re-review.
func (h *Handler) Act(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.ActorCtx(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "invalid request id", err, "That request does not exist.", "/requests")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse action form failed", err, "The submitted form could not be read.", "/requests")
		return
	}

	detail := "/requests/" + id.Hex()
	redirectErr := func(code string) {
		http.Redirect(w, r, detail+"?error="+url.QueryEscape(code), http.StatusSeeOther)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requeststore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "request not found", err, "That request does not exist.", "/requests")
			return
		}
		h.ErrLog.LogServerError(w, r, "load request failed", err, "A database error occurred.", "/requests")
		return
	}

	in := requeststore.ActionInput{
		ActorUID:  actor.UID,
		ActorRole: string(actor.Role),
		Comment:   htmlsanitize.Plain(r.FormValue("comment")),
	}

	kind := r.FormValue("action")
	switch kind {
	case "forward":
		rec, ok := orgdir.RecipientByID(r.FormValue("recipient"))
		if !ok {
			redirectErr("recipient")
			return
		}
		in.ActionType = models.ActionForwarded
		in.TargetRole = string(rec.DefaultRole)
		if target, err := h.Users.GetByEmail(ctx, rec.Email); err == nil {
			in.TargetUID = target.UID
		}
	case "approve":
		in.ActionType = models.ActionApproved
	case "reject":
		in.ActionType = models.ActionRejected
	case "close":
		in.ActionType = models.ActionClosed
	case "comment":
		if in.Comment == "" {
			redirectErr("comment")
			return
		}
		in.ActionType = models.ActionComment
	case "cancel":
		// Only the creator may withdraw their own request.
		if actor.UID != req.CreatedByUID {
			uierrors.RenderForbidden(w, r, "Only the submitter can cancel a request.", detail)
			return
		}
		in.ActionType = models.ActionClosed
		in.NewStatus = models.StatusCancelled
	case "generate_pdf":
		in.ActionType = models.ActionGeneratedPDF
		in.Comment = htmlsanitize.Plain(r.FormValue("pdf_url"))
	default:
		h.ErrLog.LogBadRequest(w, r, "unknown request action", nil, "That action is not recognized.", detail)
		return
	}

	if kind != "cancel" && !canAct(r, req) {
		uierrors.RenderForbidden(w, r, "This request is not assigned to you.", detail)
		return
	}

	updated, err := h.Store.ApplyAction(ctx, id, in)
	if errors.Is(err, requeststore.ErrConflict) {
		// One concurrent append is ordinary contention; re-read and retry.
		updated, err = h.Store.ApplyAction(ctx, id, in)
	}
	if err != nil {
		switch {
		case errors.Is(err, requeststore.ErrConflict):
			redirectErr("conflict")
		case errors.Is(err, workflow.ErrTerminal):
			redirectErr("terminal")
		case errors.Is(err, requeststore.ErrNotFound):
			h.ErrLog.LogNotFound(w, r, "request not found", err, "That request does not exist.", "/requests")
		default:
			h.ErrLog.LogServerError(w, r, "apply request action failed", err, "A database error occurred.", detail)
		}
		return
	}

	h.Log.Info("request action applied",
		zap.String("request_id", id.Hex()),
		zap.String("action", kind),
		zap.String("actor", actor.UID),
		zap.String("status", string(updated.Status)))

	last := updated.Actions[len(updated.Actions)-1]
	go h.Dispatcher.NotifyWorkflowTransition(r.Context(), updated, last)

	http.Redirect(w, r, detail+"?success=action", http.StatusSeeOther)
}
