package audience

import (
	"strings"

	"github.com/nibrashq/nibras/internal/app/system/orgdir"
)

// TokenLabel renders a single token as a display string. Total: unknown
// categories (or malformed tokens) pass through verbatim.
func TokenLabel(token string) string {
	category, value, ok := strings.Cut(token, ":")
	if !ok {
		return token
	}
	switch category {
	case CategoryAll:
		return "Everyone"
	case CategorySchoolKey:
		return "School: " + orgdir.SchoolLabel(value)
	case CategoryUnit:
		return "Unit: " + orgdir.UnitLabel(value)
	case CategorySchoolType:
		return "School type: " + value
	case CategoryRole:
		return "Role: " + value
	case CategoryTag:
		return "Tag: " + value
	}
	return token
}

// Describe renders a whole token set as one audience hint line. A set
// containing all:all is simply "Everyone".
func Describe(tokens []string) string {
	for _, t := range tokens {
		if t == TokenAll {
			return "Everyone"
		}
	}
	labels := make([]string, 0, len(tokens))
	for _, t := range tokens {
		labels = append(labels, TokenLabel(t))
	}
	return strings.Join(labels, " • ")
}
