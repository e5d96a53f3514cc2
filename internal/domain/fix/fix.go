// Package fix rewrites theme files to remove the defects the scanners can
// repair mechanically. Every rule is a pure string transformation; the
// fixer runs them to a fixed point and never edits {% raw %} bodies.
package fix

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/classify"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/encoding"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/liquid"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

// MaxPasses bounds the fixed-point loop.
const MaxPasses = 5

// Scope selects the files a rule applies to.
type Scope int

const (
	ScopeLiquid Scope = 1 << iota
	ScopeCSS
	ScopeJSON

	ScopeAll = ScopeLiquid | ScopeCSS | ScopeJSON
)

// ScopeOf returns the scopes a path belongs to. A .css.liquid asset is
// both CSS and Liquid.
func ScopeOf(path string) Scope {
	var s Scope
	if strings.HasSuffix(path, ".liquid") {
		s |= ScopeLiquid
	}
	if classify.IsCSS(path) {
		s |= ScopeCSS
	}
	if strings.HasSuffix(path, ".json") {
		s |= ScopeJSON
	}
	return s
}

// Rule is one rewrite. Apply returns the new text and how many sites it
// changed. Whole rules see the full content and must leave {% raw %}
// bodies alone themselves; the rest only ever see text outside them.
type Rule struct {
	Name        string
	Description string
	Scope       Scope
	Whole       bool
	Apply       func(string) (string, int)
}

var (
	docTag           = regexp.MustCompile(`\{%(-?)(\s*)(end)?doc(\s*-?)%\}`)
	structuredData   = regexp.MustCompile(`(\|\s*)structured_data\b`)
	imageTagFilter   = regexp.MustCompile(`(\|\s*)image_tag\b`)
	imageURLFilter   = regexp.MustCompile(`\|\s*image_url\b`)
	unboundedForLoop = regexp.MustCompile(`\{%(-?)\s*for\s+(\w+)\s+in\s+collections\s*(-?)%\}`)
	calcExpression   = regexp.MustCompile(`calc\([^)]*\)`)
	escapableOutputs = map[string]bool{catalog.TypeUnescapedBlockSetting: true, catalog.TypeUnescapedUserContent: true}
)

// Rules lists every rewrite in application order.
var Rules = []Rule{
	{Name: "doc_to_comment", Description: "{% doc %} becomes {% comment %}", Scope: ScopeLiquid,
		Apply: func(s string) (string, int) {
			return replaceEach(docTag, s, func(m string) string {
				return docTag.ReplaceAllString(m, "{%${1}${2}${3}comment${4}%}")
			})
		}},
	{Name: "structured_data_to_json", Description: "| structured_data becomes | json", Scope: ScopeLiquid,
		Apply: inLiquid(func(b string) string {
			return structuredData.ReplaceAllString(b, "${1}json")
		})},
	{Name: "image_tag_to_image_url", Description: "| image_tag without an image_url source becomes | image_url", Scope: ScopeLiquid,
		Apply: inLiquid(func(b string) string {
			if imageURLFilter.MatchString(b) {
				return b
			}
			return imageTagFilter.ReplaceAllString(b, "${1}image_url")
		})},
	{Name: "collections_limit", Description: "limit: 50 added to loops over all collections", Scope: ScopeLiquid,
		Apply: func(s string) (string, int) {
			return replaceEach(unboundedForLoop, s, func(m string) string {
				return unboundedForLoop.ReplaceAllString(m, "{%${1} for ${2} in collections limit: 50 ${3}%}")
			})
		}},
	{Name: "decode_entities", Description: "HTML entities inside Liquid delimiters decoded", Scope: ScopeLiquid,
		Apply: inLiquid(encoding.DecodeEntities)},
	{Name: "straighten_quotes", Description: "curly quotes inside Liquid delimiters straightened", Scope: ScopeLiquid,
		Apply: inLiquid(encoding.StraightenQuotes)},
	{Name: "escape_output", Description: "| escape appended to unescaped settings output", Scope: ScopeLiquid, Whole: true,
		Apply: escapeOutputs},
	{Name: "calc_operators", Description: "Unicode operators in calc() replaced with ASCII", Scope: ScopeLiquid | ScopeCSS,
		Apply: func(s string) (string, int) {
			return replaceEach(calcExpression, s, encoding.FixCalcOperators)
		}},
	{Name: "remove_bom", Description: "leading byte order mark removed", Scope: ScopeAll, Whole: true,
		Apply: func(s string) (string, int) {
			out := encoding.RemoveBOM(s)
			if out == s {
				return s, 0
			}
			return out, 1
		}},
	{Name: "remove_invisible", Description: "zero-width characters removed", Scope: ScopeAll,
		Apply: func(s string) (string, int) {
			out := encoding.RemoveInvisible(s)
			return out, utf8.RuneCountInString(s) - utf8.RuneCountInString(out)
		}},
}

// Lookup returns the rule with the given name.
func Lookup(name string) (Rule, bool) {
	for _, r := range Rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Result is the outcome of fixing one file.
type Result struct {
	Content string
	Changed bool
	Applied map[string]int
}

// RuleNames returns the names of the rules that fired, sorted.
func (r Result) RuleNames() []string {
	names := make([]string, 0, len(r.Applied))
	for n := range r.Applied {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply fixes content and reports which rules fired. Applying the result
// again changes nothing unless MaxPasses was exhausted.
func Apply(path, content string) Result {
	scope := ScopeOf(path)
	res := Result{Content: content, Applied: make(map[string]int)}

	for pass := 0; pass < MaxPasses; pass++ {
		changed := false
		for _, rule := range Rules {
			if rule.Scope&scope == 0 {
				continue
			}
			next, n := rule.run(res.Content)
			if n == 0 || next == res.Content {
				continue
			}
			res.Content = next
			res.Applied[rule.Name] += n
			changed = true
		}
		if !changed {
			break
		}
	}
	res.Changed = res.Content != content
	return res
}

// run applies the rule to every stretch of content outside raw blocks.
func (r Rule) run(content string) (string, int) {
	if r.Whole {
		return r.Apply(content)
	}
	raws := source.Regions(catalog.RawBlock, content)
	if len(raws) == 0 {
		return r.Apply(content)
	}

	var b strings.Builder
	total, at := 0, 0
	for _, raw := range raws {
		out, n := r.Apply(content[at:raw.Start])
		b.WriteString(out)
		b.WriteString(content[raw.Start:raw.End])
		total += n
		at = raw.End
	}
	out, n := r.Apply(content[at:])
	b.WriteString(out)
	return b.String(), total + n
}

// replaceEach rewrites every match of re with fn and counts the matches
// that actually changed.
func replaceEach(re *regexp.Regexp, s string, fn func(string) string) (string, int) {
	n := 0
	out := re.ReplaceAllStringFunc(s, func(m string) string {
		r := fn(m)
		if r != m {
			n++
		}
		return r
	})
	return out, n
}

// inLiquid applies fn to every {{ }} and {% %} pair.
func inLiquid(fn func(string) string) func(string) (string, int) {
	return func(s string) (string, int) {
		return replaceEach(catalog.LiquidBlock, s, fn)
	}
}

// escapeOutputs appends | escape to the outputs the escape cascade flags
// as HTML-unsafe settings text. Raw and comment bodies are never flagged.
func escapeOutputs(content string) (string, int) {
	var targets []liquid.Unescaped
	for _, u := range liquid.FindUnescaped(content) {
		if escapableOutputs[u.Type] {
			targets = append(targets, u)
		}
	}
	for i := len(targets) - 1; i >= 0; i-- {
		u := targets[i]
		content = content[:u.Start] + withEscape(content[u.Start:u.End]) + content[u.End:]
	}
	return content, len(targets)
}

func withEscape(output string) string {
	body := strings.TrimSuffix(output, "}}")
	closing := "}}"
	if strings.HasSuffix(body, "-") {
		body = strings.TrimSuffix(body, "-")
		closing = "-}}"
	}
	return strings.TrimRight(body, " \t") + " | escape " + closing
}
