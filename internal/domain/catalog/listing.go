package catalog

import (
	"sort"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

// RuleInfo is the printable form of a Rule.
type RuleInfo struct {
	Group      string          `json:"group"`
	Name       string          `json:"name"`
	Type       string          `json:"issue_type"`
	Severity   domain.Severity `json:"severity"`
	Message    string          `json:"message"`
	Suggestion string          `json:"fix_suggestion,omitempty"`
	Enabled    bool            `json:"enabled"`
}

// FilterListing is the filter catalog in printable form.
type FilterListing struct {
	Official     []string          `json:"official"`
	Hallucinated map[string]string `json:"hallucinated"`
	Deprecated   map[string]string `json:"deprecated"`
}

// Listing is every catalog in printable form.
type Listing struct {
	Filters           FilterListing     `json:"filters"`
	SuspiciousObjects map[string]string `json:"suspicious_objects"`
	InvalidTags       map[string]string `json:"invalid_tags"`
	Rules             []RuleInfo        `json:"rules"`
}

// Filters returns the filter tables.
func Filters() FilterListing {
	return FilterListing{
		Official:     OfficialFilters.Sorted(),
		Hallucinated: HallucinatedFilters,
		Deprecated:   DeprecatedFilters,
	}
}

// List returns every catalog. Rules keep table order within a group.
func List() Listing {
	groups := []struct {
		name  string
		rules []Rule
	}{
		{"complexity", ComplexityRules},
		{"performance", PerformanceRules},
		{"theme_store", ThemeStoreRules},
		{"syntax", SyntaxRules},
		{"encoding", append(EncodingRules[:len(EncodingRules):len(EncodingRules)], SchemaEntityRule)},
		{"css", append(CSSRules[:len(CSSRules):len(CSSRules)], cssMessageRules()...)},
	}

	l := Listing{
		Filters:           Filters(),
		SuspiciousObjects: SuspiciousObjects,
		InvalidTags:       InvalidTags,
	}
	for _, g := range groups {
		for _, r := range g.rules {
			l.Rules = append(l.Rules, RuleInfo{
				Group:      g.name,
				Name:       r.Name,
				Type:       r.Type,
				Severity:   r.Severity,
				Message:    r.Message,
				Suggestion: r.Suggestion,
				Enabled:    r.Enabled,
			})
		}
	}
	return l
}

func cssMessageRules() []Rule {
	keys := make([]string, 0, len(CSSMessages))
	for k := range CSSMessages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Rule, 0, len(keys))
	for _, k := range keys {
		out = append(out, CSSMessages[k])
	}
	return out
}
