// Package orgdir holds the fixed organizational directory: the schools
// and units an audience can target, and the internal recipients a request
// can be routed to. These are configuration-as-code, edited when the
// organization changes shape.
package orgdir

import "github.com/nibrashq/nibras/internal/app/system/authz"

// SchoolOption is one school an audience selector can target.
type SchoolOption struct {
	Key   string
	Label string
}

// SchoolOptions lists the organization's schools in display order.
var SchoolOptions = []SchoolOption{
	{Key: "manar_boys", Label: "Manar Leadership — Boys"},
	{Key: "manar_girls", Label: "Manar Leadership — Girls"},
	{Key: "rawdat_1", Label: "Rayaheen Kindergarten 1"},
	{Key: "rawdat_2", Label: "Rayaheen Kindergarten 2"},
	{Key: "rawdat_3", Label: "Rayaheen Kindergarten 3"},
	{Key: "rawdat_4", Label: "Rayaheen Kindergarten 4"},
}

// UnitOption is one organizational unit an audience selector can target.
type UnitOption struct {
	Key   string
	Label string
}

// UnitOptions lists the organization's units.
var UnitOptions = []UnitOption{
	{Key: "council", Label: "Board of Directors"},
	{Key: "executive", Label: "Executive Management"},
	{Key: "supervision", Label: "Educational Supervision"},
	{Key: "school", Label: "Schools"},
}

// SchoolLabel resolves a school key to its display label, falling back to
// the key itself for unknown schools.
func SchoolLabel(key string) string {
	for _, s := range SchoolOptions {
		if s.Key == key {
			return s.Label
		}
	}
	return key
}

// UnitLabel resolves a unit key to its display label.
func UnitLabel(key string) string {
	for _, u := range UnitOptions {
		if u.Key == key {
			return u.Label
		}
	}
	return key
}

// Recipient is one fixed internal routing target for requests. When the
// target has no profile in the user directory, DefaultRole decides who
// owns forwarded requests.
type Recipient struct {
	ID          string
	Label       string
	Email       string
	DefaultRole authz.Role
}

// Recipients is the internal routing table for request submission and
// forwarding, in the order shown to submitters.
var Recipients = []Recipient{
	{ID: "chairman", Label: "Chairman of the Board", Email: "chairman@nibras.example", DefaultRole: authz.RoleChairman},
	{ID: "ceo", Label: "Chief Executive", Email: "ceo@nibras.example", DefaultRole: authz.RoleCEO},
	{ID: "finance", Label: "Finance", Email: "finance@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "projects", Label: "Projects", Email: "projects@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "maintenance", Label: "Maintenance", Email: "maintenance@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "hr", Label: "Human Resources", Email: "hr@nibras.example", DefaultRole: authz.RoleHR},
	{ID: "platforms", Label: "Platforms", Email: "platforms@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "collector", Label: "Financial Collector", Email: "collector@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "secretary", Label: "Secretariat", Email: "secretary@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "media_manager", Label: "Media Manager", Email: "media@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "supervision_head", Label: "Head of Supervision", Email: "supervision@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "ceo_assistant", Label: "CEO Assistant", Email: "ceo.assistant@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "admin_supervisor", Label: "Administrative Supervisor", Email: "admin.supervisor@nibras.example", DefaultRole: authz.RoleAdmin},
	{ID: "edu_supervisor", Label: "Educational Supervisor", Email: "edu.supervisor@nibras.example", DefaultRole: authz.RoleAdmin},
}

// RecipientByID resolves a routing target; ok is false for unknown IDs.
func RecipientByID(id string) (Recipient, bool) {
	for _, r := range Recipients {
		if r.ID == id {
			return r, true
		}
	}
	return Recipient{}, false
}
