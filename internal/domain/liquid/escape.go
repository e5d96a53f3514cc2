package liquid

import (
	"regexp"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

// output is one {{ }} expression with the context the cascade inspects.
type output struct {
	content string // visible view of the file
	start   int
	expr    string
	base    string // expression before the first filter
	filters []string
	schema  []source.Region
	styles  []source.Region
}

func newOutput(v views, start int, expr string) *output {
	o := &output{content: v.visible, start: start, expr: expr, schema: v.schema, styles: v.styles}
	base, _, _ := strings.Cut(expr, "|")
	o.base = strings.TrimSpace(base)
	for _, m := range catalog.FilterName.FindAllStringSubmatch(blankStrings(expr), -1) {
		o.filters = append(o.filters, m[1])
	}
	return o
}

func (o *output) hasFilter(pred func(string) bool) bool {
	for _, f := range o.filters {
		if pred(f) {
			return true
		}
	}
	return false
}

// escaped reports whether a filter already makes the output safe for HTML.
func (o *output) escaped() bool {
	return o.hasFilter(catalog.SafeOutputFilters.Has)
}

func (o *output) urlFiltered() bool {
	return o.hasFilter(func(name string) bool {
		for _, prefix := range catalog.URLFilters {
			if name == prefix || strings.HasPrefix(name, prefix) {
				return true
			}
		}
		return false
	})
}

// before returns up to n bytes preceding the output.
func (o *output) before(n int) string {
	return o.content[max(o.start-n, 0):o.start]
}

// after returns up to n bytes starting at the output.
func (o *output) after(n int) string {
	return o.content[o.start:min(o.start+n, len(o.content))]
}

// inAttribute reports whether the output sits inside an attribute value
// opened within lookback bytes and still open after it.
func (o *output) inAttribute(opened *regexp.Regexp, lookback int) bool {
	return opened.MatchString(o.before(lookback)) &&
		catalog.AttributeStillOpen.MatchString(o.after(catalog.AttributeLookahead))
}

func (o *output) inURLAttribute() bool {
	return o.inAttribute(catalog.URLAttributeBefore, catalog.AttributeLookback)
}

func (o *output) inTextAttribute() bool {
	return catalog.TextAttributeBefore.MatchString(o.before(catalog.AttributeLookback))
}

func (o *output) inClassAttribute() bool {
	return o.inAttribute(catalog.ClassAttributeBefore, catalog.AttributeLookback)
}

func (o *output) inStyle() bool {
	if source.InAny(o.styles, o.start) {
		return true
	}
	return catalog.StyleAttributeBefore.MatchString(o.before(catalog.StyleAttributeLookback)) &&
		catalog.AttributeStillOpen.MatchString(o.after(catalog.StyleLookahead))
}

// names returns the spellings the name heuristics are matched against: the
// raw base expression and the snake_case form of its last segment.
func (o *output) names() []string {
	last := o.base
	if i := strings.LastIndexAny(last, ".["); i >= 0 {
		last = strings.Trim(last[i+1:], `'"] `)
	}
	return []string{o.base, catalog.SnakeCase(last)}
}

func (o *output) nameMatches(re *regexp.Regexp) bool {
	for _, n := range o.names() {
		if n != "" && re.MatchString(n) {
			return true
		}
	}
	return false
}

// safeValue reports numeric, enum, CSS-keyword and richtext values that
// never need escaping.
func (o *output) safeValue() bool {
	switch {
	case catalog.NumericCalculation.MatchString(o.expr):
		return true
	case o.nameMatches(catalog.RichtextSuffix), o.nameMatches(catalog.SafeValueNames):
		return true
	case o.hasFilter(catalog.FontFilters.Has):
		return true
	case strings.Contains(o.base, ".font") || strings.Contains(o.base, "_font."):
		return true
	}
	if _, def, ok := strings.Cut(o.expr, "default:"); ok {
		return catalog.SafeDefault.MatchString(strings.TrimSpace(def))
	}
	return false
}

// escapeRule is one step of the unescaped-output cascade. decided false
// hands the output to the next rule; otherwise flag is the issue type to
// raise, empty when the output is safe.
type escapeRule struct {
	name   string
	decide func(o *output) (flag string, decided bool)
}

func safe() (string, bool)                { return "", true }
func flagged(issue string) (string, bool) { return issue, true }
func pass() (string, bool)                { return "", false }

// escapeCascade is evaluated top to bottom; the first decided rule wins.
var escapeCascade = []escapeRule{
	{"user content", func(o *output) (string, bool) {
		if !catalog.UserContentRoot.MatchString(o.expr) {
			return safe()
		}
		return pass()
	}},
	{"url attribute", func(o *output) (string, bool) {
		if !o.inURLAttribute() {
			return pass()
		}
		if o.inTextAttribute() && !o.escaped() {
			return flagged(catalog.TypeUnescapedAttributeText)
		}
		return safe()
	}},
	{"url filter", func(o *output) (string, bool) {
		if o.urlFiltered() {
			return safe()
		}
		return pass()
	}},
	{"schema", func(o *output) (string, bool) {
		if source.InAny(o.schema, o.start) {
			return safe()
		}
		return pass()
	}},
	{"style", func(o *output) (string, bool) {
		if !o.inStyle() {
			return pass()
		}
		if !o.safeValue() && !o.escaped() && o.nameMatches(catalog.CSSTextNames) {
			return flagged(catalog.TypeUnescapedCSSText)
		}
		return safe()
	}},
	{"class attribute", func(o *output) (string, bool) {
		if o.inClassAttribute() && o.nameMatches(catalog.SafeClassNames) {
			return safe()
		}
		return pass()
	}},
	{"safe value", func(o *output) (string, bool) {
		if o.safeValue() {
			return safe()
		}
		return pass()
	}},
	{"escaped", func(o *output) (string, bool) {
		if o.escaped() {
			return safe()
		}
		return pass()
	}},
	{"html", func(o *output) (string, bool) {
		if strings.Contains(o.expr, "block.settings") {
			return flagged(catalog.TypeUnescapedBlockSetting)
		}
		return flagged(catalog.TypeUnescapedUserContent)
	}},
}

var escapeMessages = map[string][2]string{
	catalog.TypeUnescapedAttributeText: {"Text content in HTML attribute without escape filter", "Add | escape filter for text in attributes"},
	catalog.TypeUnescapedCSSText:       {"Text content in CSS without escape filter", "Add | escape filter for text content in CSS"},
	catalog.TypeUnescapedBlockSetting:  {"User-controllable content without escape filter", "Add | escape filter to prevent XSS and encoding issues"},
	catalog.TypeUnescapedUserContent:   {"User-controllable content without escape filter", "Add | escape filter to prevent XSS and encoding issues"},
}

// Unescaped is an output the cascade flags.
type Unescaped struct {
	source.Region
	Type string
}

// FindUnescaped runs the cascade over every output in content and returns
// the flagged ones in content order.
func FindUnescaped(content string) []Unescaped {
	return findUnescaped(newViews(content))
}

func findUnescaped(v views) []Unescaped {
	var out []Unescaped
	for _, m := range catalog.OutputExpression.FindAllStringSubmatchIndex(v.visible, -1) {
		expr := strings.TrimSpace(v.visible[m[2]:m[3]])
		if flag := classify(newOutput(v, m[0], expr)); flag != "" {
			out = append(out, Unescaped{Region: source.Region{Start: m[0], End: m[1]}, Type: flag})
		}
	}
	return out
}

// CascadeSteps names the escape cascade's rules in evaluation order.
func CascadeSteps() []string {
	names := make([]string, len(escapeCascade))
	for i, r := range escapeCascade {
		names[i] = r.name
	}
	return names
}

func classify(o *output) string {
	for _, rule := range escapeCascade {
		if flag, decided := rule.decide(o); decided {
			return flag
		}
	}
	return ""
}

func (s *scanner) checkOutputEscaping() {
	for _, u := range findUnescaped(s.v) {
		msg := escapeMessages[u.Type]
		s.add(s.f.Issue(u.Start, u.End, u.Type, domain.SeverityError, msg[0], msg[1]))
	}
}
