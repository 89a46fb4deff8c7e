// Package workflow owns the internal-request state machine. Status and
// current assignee are projections of the append-only action log: folding
// the same action sequence always reproduces the same projection, so the
// log is the sole source of truth and nothing here keeps hidden state.
package workflow

import (
	"errors"

	"github.com/nibrashq/nibras/internal/domain/models"
)

// ErrTerminal is returned when the reopen policy forbids acting on a
// request that already reached a terminal status.
var ErrTerminal = errors.New("request is in a terminal status")

// Projection is the derived view of a request's history.
type Projection struct {
	Status   models.RequestStatus
	Assignee models.Assignee
}

// Step applies one action to a projection and returns the next one.
//
//	forwarded             → in_progress, assignee from the action's target
//	approved              → approved,    assignee cleared
//	rejected              → rejected,    assignee cleared
//	closed                → closed,      assignee cleared
//	comment/generated_pdf → unchanged
//
// An explicit override status takes precedence over the table; the
// assignee still only changes on forwarded.
func Step(p Projection, a models.RequestAction, override models.RequestStatus) Projection {
	switch a.ActionType {
	case models.ActionForwarded:
		p.Status = models.StatusInProgress
		p.Assignee = models.Assignee{UID: a.ToUID, Role: a.ToRole}
	case models.ActionApproved:
		p.Status = models.StatusApproved
		p.Assignee = models.Assignee{}
	case models.ActionRejected:
		p.Status = models.StatusRejected
		p.Assignee = models.Assignee{}
	case models.ActionClosed:
		p.Status = models.StatusClosed
		p.Assignee = models.Assignee{}
	case models.ActionSubmitted:
		p.Status = models.StatusOpen
		p.Assignee = models.Assignee{UID: a.ToUID, Role: a.ToRole}
	case models.ActionComment, models.ActionGeneratedPDF:
		// no status or assignee change
	}
	if override != "" {
		p.Status = override
	}
	return p
}

// Project folds a full action sequence into its projection. Overrides are
// not replayable from the log alone, so Project reproduces the table-only
// fold; callers replaying a request with historical overrides compare
// against the stored status instead.
func Project(actions []models.RequestAction) Projection {
	p := Projection{Status: models.StatusOpen}
	for _, a := range actions {
		p = Step(p, a, "")
	}
	return p
}

// Policy configures the loose edges of the state machine.
type Policy struct {
	// AllowTerminalActions permits appending actions to a request whose
	// status is already terminal. The source system never guarded this;
	// default configuration preserves that behavior.
	AllowTerminalActions bool
}

// Check validates that an action may be applied to a request in the given
// status under this policy.
func (pol Policy) Check(status models.RequestStatus) error {
	if status.IsTerminal() && !pol.AllowTerminalActions {
		return ErrTerminal
	}
	return nil
}
