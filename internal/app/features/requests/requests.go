// internal/app/features/requests/requests.go
package requests

import (
	"context"
	"errors"
	"net/http"
	"strings"

	requeststore "github.com/nibrashq/nibras/internal/app/store/requests"
	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/nibrashq/nibras/internal/app/system/htmlsanitize"
	"github.com/nibrashq/nibras/internal/app/system/orgdir"
	"github.com/nibrashq/nibras/internal/app/system/timeouts"
	"github.com/nibrashq/nibras/internal/app/system/viewdata"
	"github.com/nibrashq/nibras/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// typeOption is one request category offered on the submission form.
type typeOption struct {
	Key   models.RequestType
	Label string
}

var typeOptions = []typeOption{
	{Key: models.TypeGeneral, Label: "General"},
	{Key: models.TypeFinance, Label: "Finance"},
	{Key: models.TypeHR, Label: "Human Resources"},
	{Key: models.TypeProjects, Label: "Projects"},
	{Key: models.TypeIT, Label: "IT & Platforms"},
}

func statusLabel(s models.RequestStatus) string {
	switch s {
	case models.StatusOpen:
		return "Open"
	case models.StatusInProgress:
		return "In progress"
	case models.StatusApproved:
		return "Approved"
	case models.StatusRejected:
		return "Rejected"
	case models.StatusClosed:
		return "Closed"
	case models.StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// requestRow is one request in a list view.
type requestRow struct {
	ID        string
	Title     string
	Type      string
	Status    string
	StatusKey models.RequestStatus
	Assignee  string
	CreatedAt string
	UpdatedAt string
}

func rowFor(req models.InternalRequest) requestRow {
	assignee := req.CurrentAssignee.Role
	if req.CurrentAssignee.UID != "" {
		assignee = req.CurrentAssignee.UID
	}
	return requestRow{
		ID:        req.ID.Hex(),
		Title:     req.Title,
		Type:      string(req.Type),
		Status:    statusLabel(req.Status),
		StatusKey: req.Status,
		Assignee:  assignee,
		CreatedAt: req.CreatedAt.Format("Jan 2, 2006"),
		UpdatedAt: req.UpdatedAt.Format("Jan 2, 2006 3:04 PM"),
	}
}

// ListVM is the view model for both request list pages.
type ListVM struct {
	viewdata.BaseVM
	Items   []requestRow
	Inbox   bool
	Success string
	Error   string
}

// Mine lists the requests the signed-in user submitted, newest first.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := h.Store.ListByCreator(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list my requests failed", err, "A database error occurred.", "/dashboard")
		return
	}

	vm := ListVM{
		BaseVM: viewdata.NewBaseVM(r, "My Requests", "/dashboard"),
		Items:  make([]requestRow, 0, len(reqs)),
	}
	for _, req := range reqs {
		if req.Archived {
			continue
		}
		vm.Items = append(vm.Items, rowFor(req))
	}

	switch r.URL.Query().Get("success") {
	case "created":
		vm.Success = "Request submitted"
	case "cancelled":
		vm.Success = "Request cancelled"
	}

	templates.Render(w, r, "requests/list", vm)
}

// Inbox lists the active requests currently assigned to the signed-in
// user, whether addressed to them directly or to their role.
func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	role, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	byUID, err := h.Store.ListAssignedToUID(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list inbox by uid failed", err, "A database error occurred.", "/dashboard")
		return
	}
	byRole, err := h.Store.ListAssignedToRole(ctx, string(role))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list inbox by role failed", err, "A database error occurred.", "/dashboard")
		return
	}

	vm := ListVM{
		BaseVM: viewdata.NewBaseVM(r, "Request Inbox", "/requests"),
		Inbox:  true,
	}
	seen := make(map[string]bool, len(byUID))
	for _, req := range append(byUID, byRole...) {
		id := req.ID.Hex()
		if seen[id] || req.Archived {
			continue
		}
		seen[id] = true
		vm.Items = append(vm.Items, rowFor(req))
	}

	templates.Render(w, r, "requests/list", vm)
}

// NewVM is the view model for the submission form.
type NewVM struct {
	viewdata.BaseVM
	Types      []typeOption
	Recipients []orgdir.Recipient
	Error      string
}

// ShowNew displays the request submission form.
func (h *Handler) ShowNew(w http.ResponseWriter, r *http.Request) {
	vm := NewVM{
		BaseVM:     viewdata.NewBaseVM(r, "New Request", "/requests"),
		Types:      typeOptions,
		Recipients: orgdir.Recipients,
	}
	switch r.URL.Query().Get("error") {
	case "missing_title":
		vm.Error = "Give the request a title"
	case "recipient":
		vm.Error = "Choose who the request goes to"
	}
	templates.Render(w, r, "requests/new", vm)
}

// Create submits a new request routed to one of the fixed internal
// recipients. The recipient's uid is resolved from the user directory by
// email when a matching profile exists; otherwise the request is held by
// the recipient's default role.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.ActorCtx(r)

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse request form failed", err, "The submitted form could not be read.", "/requests/new")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		http.Redirect(w, r, "/requests/new?error=missing_title", http.StatusSeeOther)
		return
	}
	rec, ok := orgdir.RecipientByID(r.FormValue("recipient"))
	if !ok {
		http.Redirect(w, r, "/requests/new?error=recipient", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	profile, err := h.Users.GetByUID(ctx, actor.UID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load submitter profile failed", err, "A database error occurred.", "/requests/new")
		return
	}

	assigneeUID := ""
	if target, err := h.Users.GetByEmail(ctx, rec.Email); err == nil {
		assigneeUID = target.UID
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogServerError(w, r, "resolve recipient failed", err, "A database error occurred.", "/requests/new")
		return
	}

	req, err := h.Store.Create(ctx, requeststore.CreateInput{
		Title:               title,
		Type:                models.RequestType(r.FormValue("type")),
		Description:         htmlsanitize.Plain(r.FormValue("description")),
		CreatedByUID:        actor.UID,
		CreatedByEmail:      profile.Email,
		CreatedByRole:       string(actor.Role),
		CreatedByDept:       profile.Dept,
		InitialAssigneeUID:  assigneeUID,
		InitialAssigneeRole: string(rec.DefaultRole),
	})
	if err != nil {
		if errors.Is(err, requeststore.ErrValidation) {
			http.Redirect(w, r, "/requests/new?error=missing_title", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "create request failed", err, "A database error occurred.", "/requests/new")
		return
	}

	h.Log.Info("request submitted",
		zap.String("request_id", req.ID.Hex()),
		zap.String("created_by", actor.UID),
		zap.String("recipient", rec.ID))

	go h.Dispatcher.NotifyWorkflowTransition(r.Context(), &req, req.Actions[0])

	http.Redirect(w, r, "/requests/"+req.ID.Hex()+"?success=created", http.StatusSeeOther)
}
