// internal/app/features/employees/views/views.go
package employees

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "employees",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
