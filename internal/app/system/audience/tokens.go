// Package audience implements the audience-targeting token scheme shared
// by announcements and notification fan-out.
//
// A token is an opaque "category:value" string. A reader's own profile
// encodes to subject tokens (always including all:all); an author's
// audience selection encodes to selector tokens (all:all only when the
// author explicitly targets everyone). Visibility is any-overlap between
// the two sets.
package audience

import (
	"errors"
	"strings"
)

// Token categories. The set is closed; anything else passes through
// labeling verbatim.
const (
	CategoryAll        = "all"
	CategoryUnit       = "unit"
	CategorySchoolKey  = "schoolKey"
	CategorySchoolType = "schoolType"
	CategoryRole       = "role"
	CategoryTag        = "tag"
)

// TokenAll is the universal token every subject carries.
const TokenAll = "all:all"

// MaxQueryTokens is the upstream store's cap on any-of-N token matching.
// Subject token sets must be truncated to this size before querying.
const MaxQueryTokens = 10

// ErrEmptyAudience is returned when a selector encodes to zero tokens.
// A broadcast must always carry at least one token.
var ErrEmptyAudience = errors.New("audience selection encodes to no tokens")

// Profile is the subset of a user's organizational profile that feeds
// subject token encoding. Absent fields are simply omitted.
type Profile struct {
	Unit       string
	SchoolKey  string
	SchoolType string
	Tags       []string
}

// Selector is an author's audience choice for a broadcast. Everyone
// short-circuits every other facet.
type Selector struct {
	Everyone bool
	Schools  []string
	Units    []string
	Roles    []string
	Tags     []string
}

// SubjectTokens encodes a reader's own profile into tokens. The result
// always contains all:all, never contains duplicates, and never fails.
func SubjectTokens(p Profile) []string {
	tokens := []string{TokenAll}
	if p.Unit != "" {
		tokens = append(tokens, CategoryUnit+":"+p.Unit)
	}
	if p.SchoolKey != "" {
		tokens = append(tokens, CategorySchoolKey+":"+p.SchoolKey)
	}
	if p.SchoolType != "" {
		tokens = append(tokens, CategorySchoolType+":"+p.SchoolType)
	}
	for _, t := range p.Tags {
		if t != "" {
			tokens = append(tokens, CategoryTag+":"+t)
		}
	}
	return dedupe(tokens)
}

// SelectorTokens encodes an author's audience selection. Everyone yields
// exactly {all:all}, discarding every other facet so a broadcast-to-all
// cannot accidentally gain narrower tokens. Otherwise the facets union;
// an empty result is ErrEmptyAudience.
func SelectorTokens(sel Selector) ([]string, error) {
	if sel.Everyone {
		return []string{TokenAll}, nil
	}

	var tokens []string
	for _, sk := range sel.Schools {
		tokens = append(tokens, CategorySchoolKey+":"+sk)
	}
	for _, u := range sel.Units {
		tokens = append(tokens, CategoryUnit+":"+u)
	}
	for _, r := range sel.Roles {
		tokens = append(tokens, CategoryRole+":"+r)
	}
	for _, t := range sel.Tags {
		tokens = append(tokens, CategoryTag+":"+t)
	}

	tokens = dedupe(tokens)
	if len(tokens) == 0 {
		return nil, ErrEmptyAudience
	}
	return tokens, nil
}

// ParseTags splits a free-text tag list on ';' and ',', trims entries,
// drops empties, and removes duplicates.
func ParseTags(s string) []string {
	s = strings.ReplaceAll(s, ",", ";")
	var out []string
	for _, part := range strings.Split(s, ";") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return dedupe(out)
}

// Truncate limits a token set to the store's any-of query cap. all:all is
// never the element dropped: when present it is retained first, with the
// remainder kept in first-come order. The precision loss on the remainder
// is accepted behavior.
func Truncate(tokens []string, max int) []string {
	if len(tokens) <= max {
		return tokens
	}
	out := make([]string, 0, max)
	hasAll := false
	for _, t := range tokens {
		if t == TokenAll {
			hasAll = true
			break
		}
	}
	if hasAll {
		out = append(out, TokenAll)
	}
	for _, t := range tokens {
		if len(out) == max {
			break
		}
		if t == TokenAll {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Matches reports whether a reader sees a broadcast: true iff the two
// token sets share at least one token. This mirrors the store's
// "any of these tokens" filter and must stay exactly any-overlap, not
// subset.
func Matches(subjectTokens, broadcastTokens []string) bool {
	set := make(map[string]struct{}, len(subjectTokens))
	for _, t := range subjectTokens {
		set[t] = struct{}{}
	}
	for _, t := range broadcastTokens {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
