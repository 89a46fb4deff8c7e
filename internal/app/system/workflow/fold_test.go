package workflow_test

import (
	"errors"
	"testing"

	"github.com/nibrashq/nibras/internal/app/system/workflow"
	"github.com/nibrashq/nibras/internal/domain/models"
)

func TestStep_TransitionTable(t *testing.T) {
	start := workflow.Projection{
		Status:   models.StatusOpen,
		Assignee: models.Assignee{Role: "hr"},
	}

	cases := []struct {
		name   string
		action models.RequestAction
		want   workflow.Projection
	}{
		{
			"forwarded reassigns and moves to in_progress",
			models.RequestAction{ActionType: models.ActionForwarded, ToUID: "u9", ToRole: "ceo"},
			workflow.Projection{Status: models.StatusInProgress, Assignee: models.Assignee{UID: "u9", Role: "ceo"}},
		},
		{
			"approved clears assignee",
			models.RequestAction{ActionType: models.ActionApproved},
			workflow.Projection{Status: models.StatusApproved},
		},
		{
			"rejected clears assignee",
			models.RequestAction{ActionType: models.ActionRejected},
			workflow.Projection{Status: models.StatusRejected},
		},
		{
			"closed clears assignee",
			models.RequestAction{ActionType: models.ActionClosed},
			workflow.Projection{Status: models.StatusClosed},
		},
		{
			"comment changes nothing",
			models.RequestAction{ActionType: models.ActionComment, Comment: "looks fine"},
			start,
		},
		{
			"generated_pdf changes nothing",
			models.RequestAction{ActionType: models.ActionGeneratedPDF},
			start,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := workflow.Step(start, tc.action, "")
			if got != tc.want {
				t.Errorf("Step: got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestStep_OverrideWins(t *testing.T) {
	// Cancellation appends a closed action with an explicit cancelled
	// status; the override must take precedence over the table.
	got := workflow.Step(
		workflow.Projection{Status: models.StatusOpen, Assignee: models.Assignee{Role: "hr"}},
		models.RequestAction{ActionType: models.ActionClosed},
		models.StatusCancelled,
	)
	if got.Status != models.StatusCancelled {
		t.Errorf("Step: status = %q, want %q", got.Status, models.StatusCancelled)
	}
	if got.Assignee != (models.Assignee{}) {
		t.Errorf("Step: assignee = %+v, want cleared", got.Assignee)
	}
}

func TestProject_FoldIsDeterministic(t *testing.T) {
	actions := []models.RequestAction{
		{ActionType: models.ActionSubmitted, ToRole: "hr"},
		{ActionType: models.ActionComment, Comment: "need budget line"},
		{ActionType: models.ActionForwarded, ToUID: "boss", ToRole: "ceo"},
		{ActionType: models.ActionApproved},
	}

	want := workflow.Projection{Status: models.StatusApproved}
	if got := workflow.Project(actions); got != want {
		t.Errorf("Project: got %+v, want %+v", got, want)
	}

	// Replaying the same log yields the same projection.
	if again := workflow.Project(actions); again != want {
		t.Errorf("Project replay: got %+v, want %+v", again, want)
	}
}

func TestProject_TrailingTimelineActionsKeepStatus(t *testing.T) {
	actions := []models.RequestAction{
		{ActionType: models.ActionSubmitted, ToRole: "hr"},
		{ActionType: models.ActionRejected},
		{ActionType: models.ActionComment, Comment: "sorry"},
		{ActionType: models.ActionGeneratedPDF, Comment: "https://cdn/x.pdf"},
	}
	got := workflow.Project(actions)
	if got.Status != models.StatusRejected {
		t.Errorf("Project: status = %q, want %q", got.Status, models.StatusRejected)
	}
}

func TestPolicy_Check(t *testing.T) {
	strict := workflow.Policy{}
	lax := workflow.Policy{AllowTerminalActions: true}

	active := []models.RequestStatus{models.StatusOpen, models.StatusInProgress}
	terminal := []models.RequestStatus{
		models.StatusApproved, models.StatusRejected, models.StatusClosed, models.StatusCancelled,
	}

	for _, st := range active {
		if err := strict.Check(st); err != nil {
			t.Errorf("strict.Check(%q): unexpected error %v", st, err)
		}
	}
	for _, st := range terminal {
		if err := strict.Check(st); !errors.Is(err, workflow.ErrTerminal) {
			t.Errorf("strict.Check(%q): got %v, want ErrTerminal", st, err)
		}
		if err := lax.Check(st); err != nil {
			t.Errorf("lax.Check(%q): unexpected error %v", st, err)
		}
	}
}
