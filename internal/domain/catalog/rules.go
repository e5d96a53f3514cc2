package catalog

import (
	"regexp"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

// Issue types produced by body-level rule tables.
const (
	TypeComplexity           = "complexity"
	TypePerformance          = "performance"
	TypeThemeStore           = "theme_store"
	TypeSyntaxError          = "syntax_error"
	TypeHardcodedRoute       = "hardcoded_route"
	TypeParserBlockingScript = "parser_blocking_script"
)

// Rule names for checks whose matching needs code rather than one regex.
// Their Pattern is nil; the scanner looks them up by name for wording.
const (
	RuleFilterChain        = "filter_chain"
	RuleAppendChain        = "append_chain"
	RuleNestedIf           = "nested_if"
	RuleNestedFor          = "nested_for"
	RuleLongLiquidBlock    = "long_liquid_block"
	RuleAllProductsLoop    = "all_products_loop"
	RuleAllProductsSize    = "all_products_size"
	RuleCollectionsLoop    = "collections_loop"
	RuleOversizedImage     = "oversized_image"
	RuleUnlessInFor        = "unless_in_for"
	RuleAssignsBeforeFor   = "assigns_before_for"
	RuleExternalScript     = "external_script"
	RuleExternalStylesheet = "external_stylesheet"
	RuleExternalImport     = "external_import"
	RuleUnclosedOutput     = "unclosed_output"
)

// Thresholds for the complexity and performance checks.
const (
	MaxFilterChain       = 10
	MaxAppendChain       = 8
	MaxNestedIf          = 5
	MaxNestedFor         = 4
	MaxLiquidBlockLines  = 50
	MaxImageWidth        = 4000
	MaxAssignsBeforeLoop = 5
)

// ComplexityRules are readability gates. Nested if/for are kept but
// disabled: they raise too many false positives on real themes.
var ComplexityRules = []Rule{
	{Name: RuleFilterChain, Type: TypeComplexity, Severity: domain.SeverityCritical, Enabled: true,
		Message:    "OVER-ENGINEERED: 10+ filter chains are unreadable",
		Suggestion: "Break into multiple assign statements"},
	{Name: RuleAppendChain, Type: TypeComplexity, Severity: domain.SeverityError, Enabled: true,
		Message:    "OVER-ENGINEERED: 8+ chained append filters",
		Suggestion: "Use {% capture %} tag instead"},
	{Name: RuleNestedIf, Type: TypeComplexity, Severity: domain.SeverityCritical, Enabled: false,
		Message:    "OVER-ENGINEERED: 5+ nested if statements",
		Suggestion: "Refactor logic or use case/when statements"},
	{Name: RuleNestedFor, Type: TypeComplexity, Severity: domain.SeverityCritical, Enabled: false,
		Message:    "PERFORMANCE KILLER: 4+ nested loops",
		Suggestion: "Redesign data structure - this will break themes"},
	{Name: RuleLongLiquidBlock, Type: TypeComplexity, Severity: domain.SeverityError, Enabled: true,
		Message:    "OVER-ENGINEERED: 50+ line liquid blocks are unreadable",
		Suggestion: "Break into smaller logical chunks"},
}

// PerformanceRules flag constructs that slow rendering or waste bandwidth.
var PerformanceRules = []Rule{
	{Name: RuleAllProductsLoop, Type: TypePerformance, Severity: domain.SeverityCritical, Enabled: true,
		Message:    "PERFORMANCE KILLER: Looping ALL products (collections.all.products) breaks themes",
		Suggestion: "Use pagination or specific collection"},
	{Name: RuleAllProductsSize, Type: TypePerformance, Severity: domain.SeverityCritical, Enabled: true,
		Pattern:    regexp.MustCompile(`collections\.all\.products\.size`),
		Message:    "PERFORMANCE KILLER: Counting all products is slow",
		Suggestion: "Use collections[handle].products_count"},
	{Name: RuleCollectionsLoop, Type: TypePerformance, Severity: domain.SeverityCritical, Enabled: true,
		Message:    "PERFORMANCE KILLER: Looping all collections without limit",
		Suggestion: "Add limit: 50 or use specific collections"},
	{Name: RuleOversizedImage, Type: TypePerformance, Severity: domain.SeverityError, Enabled: true,
		Message:    "PERFORMANCE KILLER: Images >4000px waste bandwidth",
		Suggestion: "Use maximum 3000px width for performance"},
	{Name: RuleUnlessInFor, Type: TypePerformance, Severity: domain.SeverityError, Enabled: true,
		Message:    "PERFORMANCE KILLER: Unless inside loops is inefficient",
		Suggestion: "Filter data before loop or use if statements"},
	{Name: RuleAssignsBeforeFor, Type: TypePerformance, Severity: domain.SeverityWarning, Enabled: true,
		Message:    "PERFORMANCE KILLER: Many assigns before loops",
		Suggestion: "Move assigns outside loops when possible"},
}

// ThemeStoreRules fail marketplace review.
var ThemeStoreRules = []Rule{
	{Name: RuleExternalScript, Type: TypeThemeStore, Severity: domain.SeverityCritical, Enabled: true,
		Message:    "THEME STORE VIOLATION: External scripts not allowed",
		Suggestion: "Host scripts locally or use Shopify CDN"},
	{Name: RuleExternalStylesheet, Type: TypeThemeStore, Severity: domain.SeverityCritical, Enabled: true,
		Message:    "THEME STORE VIOLATION: External stylesheets not allowed",
		Suggestion: "Host CSS locally or use approved CDNs"},
	{Name: RuleExternalImport, Type: TypeThemeStore, Severity: domain.SeverityError, Enabled: true,
		Message:    "THEME STORE VIOLATION: External CSS imports not allowed",
		Suggestion: "Include CSS directly in files"},
	{Name: "console_statement", Type: TypeThemeStore, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`console\.(?:log|error|warn|info|debug)`),
		Message:    "THEME STORE VIOLATION: Console statements must be removed",
		Suggestion: "Remove all console statements for production"},
	{Name: "alert_dialog", Type: TypeThemeStore, Severity: domain.SeverityCritical, Enabled: true,
		Pattern:    regexp.MustCompile(`\balert\s*\(`),
		Message:    "THEME STORE VIOLATION: Alert dialogs not allowed",
		Suggestion: "Use proper UI notifications instead"},
	{Name: "document_write", Type: TypeThemeStore, Severity: domain.SeverityCritical, Enabled: true,
		Pattern:    regexp.MustCompile(`document\.write\s*\(`),
		Message:    "THEME STORE VIOLATION: document.write breaks modern browsers",
		Suggestion: "Use proper DOM manipulation"},
}

// SyntaxRules catch delimiter-level mistakes.
var SyntaxRules = []Rule{
	{Name: "double_pipe", Type: TypeSyntaxError, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`\{\{[^}]*\|\s*\|`),
		Message:    "Invalid filter syntax: double pipes",
		Suggestion: "Remove the empty filter between the pipes"},
	{Name: "operator_combination", Type: TypeSyntaxError, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`\{%[^%]*==\s*(?:and|or)\b`),
		Message:    "Invalid operator combination",
		Suggestion: "Compare against a value before combining with and/or"},
	{Name: RuleUnclosedOutput, Type: TypeSyntaxError, Severity: domain.SeverityError, Enabled: true,
		Message:    "Unclosed output tag",
		Suggestion: "Close the expression with }}"},
}

// Lookup finds a rule by name across tables.
func Lookup(name string) (Rule, bool) {
	for _, table := range [][]Rule{ComplexityRules, PerformanceRules, ThemeStoreRules, SyntaxRules} {
		for _, r := range table {
			if r.Name == name {
				return r, true
			}
		}
	}
	return Rule{}, false
}

// MustLookup is Lookup for names defined in this package.
func MustLookup(name string) Rule {
	r, ok := Lookup(name)
	if !ok {
		panic("catalog: unknown rule " + name)
	}
	return r
}

// Host allow-lists for theme-store checks.
var (
	AllowedScriptHosts     = []string{"cdn.shopify.com", "ajax.googleapis.com/ajax/libs/jquery"}
	AllowedStylesheetHosts = []string{"cdn.shopify.com", "fonts.googleapis.com", "fonts.gstatic.com", "fonts.shopifycdn.com"}
	AllowedImportHosts     = []string{"fonts.googleapis.com"}
)

// HardcodedRoutes maps literal storefront paths to their routes object.
var HardcodedRoutes = map[string]string{
	"/cart":        "routes.cart_url",
	"/search":      "routes.search_url",
	"/account":     "routes.account_url",
	"/collections": "routes.collections_url",
	"/products":    "routes.all_products_collection_url",
}

// HardcodedRoute matches a quoted string literal starting with one of the
// HardcodedRoutes paths.
var HardcodedRoute = regexp.MustCompile(`["'](/(?:cart|search|account|collections|products))(?:[/?#"'])`)
