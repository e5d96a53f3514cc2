package catalog

import (
	"regexp"
	"strings"

	"github.com/fatih/camelcase"
)

// Issue types produced by the unescaped-output cascade.
const (
	TypeUnescapedBlockSetting  = "unescaped_block_setting"
	TypeUnescapedUserContent   = "unescaped_user_content"
	TypeUnescapedAttributeText = "unescaped_attribute_text"
	TypeUnescapedCSSText       = "unescaped_css_text_content"
)

// OutputExpression captures the body of every {{ }} output.
var OutputExpression = regexp.MustCompile(`\{\{-?\s*([^}]+?)\s*-?\}\}`)

// Attribute context patterns. Each *Before pattern is matched against the
// text preceding an output; AttributeStillOpen against the text after it.
var (
	URLAttributeBefore   = regexp.MustCompile(`(?i)(?:href|src|action|formaction|data-url|data-href|data-src)\s*=\s*["'][^"']*$`)
	TextAttributeBefore  = regexp.MustCompile(`(?i)(?:aria-label|aria-describedby|aria-description|title|alt|placeholder|value|data-title|data-text|data-content)\s*=\s*["'][^"']*$`)
	ClassAttributeBefore = regexp.MustCompile(`(?i)class\s*=\s*["'][^"']*$`)
	StyleAttributeBefore = regexp.MustCompile(`(?i)style\s*=\s*["'][^"']*$`)
	AttributeStillOpen   = regexp.MustCompile(`^[^"'<>]*["']`)
)

// Lookback and lookahead windows for attribute patterns, in bytes.
const (
	AttributeLookback      = 200
	AttributeLookahead     = 100
	StyleAttributeLookback = 500
	StyleLookahead         = 200
)

// RichtextSuffix marks settings assumed to hold intentional HTML.
var RichtextSuffix = regexp.MustCompile(`(?i)(?:content|description|body|text|rte|richtext|answer)$`)

// NumericCalculation marks expressions that evaluate to numbers.
var NumericCalculation = regexp.MustCompile(`(?i)divided_by|times|plus|minus|round|floor|ceil|abs|^\d+\s*\|`)

// SafeValueNames are setting-name fragments for numeric, enum and CSS
// keyword values that are never user prose.
var SafeValueNames = regexp.MustCompile(`(?i)` +
	`padding|margin|width|height|size|spacing|gap|` +
	`radius|opacity|weight|line_height|letter_spacing|` +
	`columns|rows|order|flex|grid|` +
	`top|bottom|left|right|offset|` +
	`delay|duration|speed|` +
	`products_count|variants_count|reviews_count|comments_count|` +
	`quantity|stock|inventory|available|` +
	`id|price|` +
	`color|background|` +
	`alignment|align|justify|position|display|` +
	`direction|` +
	`tag|` +
	`font|transform|transition|animation|` +
	`z_index|aspect_ratio|object_fit|` +
	`enable_|show_|hide_|is_`)

// SafeClassNames are select-style settings that emit CSS class fragments.
var SafeClassNames = regexp.MustCompile(`(?i)direction|orientation|style|variant|theme|design|alignment|align|position|size|scale|magnitude|state|status|mode`)

// CSSTextNames are settings that hold prose even inside CSS.
var CSSTextNames = regexp.MustCompile(`(?i)content|label|title|description|text|message|caption|heading|subheading|paragraph|name`)

// SafeDefault is a numeric or CSS-keyword default: argument.
var SafeDefault = regexp.MustCompile(`^['"]?(?:\d+|transparent|none|auto|inherit|initial|unset)`)

// SnakeCase normalises an identifier such as showVendor or text-color to
// show_vendor and text_color so name heuristics see one spelling.
func SnakeCase(name string) string {
	var parts []string
	for _, p := range camelcase.Split(name) {
		p = strings.Trim(strings.ToLower(p), "_-. ")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}
