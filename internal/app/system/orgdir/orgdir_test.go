package orgdir_test

import (
	"testing"

	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/nibrashq/nibras/internal/app/system/orgdir"
)

func TestRecipientByID(t *testing.T) {
	rec, ok := orgdir.RecipientByID("hr")
	if !ok {
		t.Fatal("hr should be a known routing target")
	}
	if rec.DefaultRole != authz.RoleHR {
		t.Errorf("hr default role = %q, want %q", rec.DefaultRole, authz.RoleHR)
	}
	if rec.Email == "" {
		t.Error("routing targets need an email for uid resolution")
	}

	if _, ok := orgdir.RecipientByID("nonexistent"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestRecipientIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range orgdir.Recipients {
		if seen[r.ID] {
			t.Errorf("duplicate recipient id %q", r.ID)
		}
		seen[r.ID] = true
		if r.DefaultRole == "" {
			t.Errorf("recipient %q has no default role", r.ID)
		}
	}
}

func TestLabelsFallBackToKey(t *testing.T) {
	if got := orgdir.SchoolLabel("manar_boys"); got != "Manar Leadership — Boys" {
		t.Errorf("SchoolLabel(manar_boys) = %q", got)
	}
	if got := orgdir.SchoolLabel("unknown_school"); got != "unknown_school" {
		t.Errorf("SchoolLabel fallback = %q, want the key", got)
	}
	if got := orgdir.UnitLabel("school"); got != "Schools" {
		t.Errorf("UnitLabel(school) = %q", got)
	}
	if got := orgdir.UnitLabel("warehouse"); got != "warehouse" {
		t.Errorf("UnitLabel fallback = %q, want the key", got)
	}
}
