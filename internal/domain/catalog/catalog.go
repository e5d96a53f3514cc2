// Package catalog holds the static rule tables the scanners apply: filter
// and object names, tag sets, and (pattern, severity, message, suggestion)
// rules grouped by concern.
package catalog

import (
	"regexp"
	"sort"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

// Rule is one regex-driven check. Rules with Enabled false stay in the
// catalog but are skipped unless experimental rules are switched on.
type Rule struct {
	Name       string
	Type       string
	Pattern    *regexp.Regexp
	Severity   domain.Severity
	Message    string
	Suggestion string
	Enabled    bool
}

// Issue reports r against the byte range [start,end) of f.
func (r Rule) Issue(f *source.File, start, end int) domain.Issue {
	return f.Issue(start, end, r.Type, r.Severity, r.Message, r.Suggestion)
}

// Active filters rules down to the ones that run for the given setting.
func Active(rules []Rule, experimental bool) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled || experimental {
			out = append(out, r)
		}
	}
	return out
}

// Set is a string membership table.
type Set map[string]struct{}

func newSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SortedKeys returns the keys of a string map in lexical order.
func SortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
