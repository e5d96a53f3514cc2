package catalog

import (
	"regexp"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

// Issue types produced by the character-encoding scanner.
const (
	TypeEntityInOutput        = "html_entity_in_liquid_output"
	TypeEntityInTag           = "html_entity_in_liquid_tag"
	TypeEntityInFilterParam   = "html_entity_in_filter_parameter"
	TypeEntityInSchema        = "html_entity_in_schema"
	TypeUnicodeAssignVariable = "unicode_assign_variable"
	TypeUnicodeLoopVariable   = "unicode_loop_variable"
	TypeUnicodeCaptureVar     = "unicode_capture_variable"
	TypeUnicodeAssetFilename  = "unicode_asset_filename"
	TypeUnicodeRenderFilename = "unicode_render_filename"
	TypeNonUTF8Charset        = "non_utf8_charset"
	TypeNonUTF8ContentType    = "non_utf8_content_type"
	TypeBOM                   = "utf8_bom_detected"
	TypeReplacementChars      = "encoding_replacement_chars"
	TypeZeroWidth             = "zero_width_character"
)

// Issue types produced by the CSS scanner.
const (
	TypeIllegalSelectorChars     = "illegal_selector_chars"
	TypeUnicodeCalcOperators     = "unicode_calc_operators"
	TypeRawUnicodeContent        = "raw_unicode_content"
	TypeNonASCIICSSVars          = "non_ascii_css_vars"
	TypeMalformedUnicodeEscapes  = "malformed_unicode_escapes"
	TypeUnescapedFontQuotes      = "unescaped_font_quotes"
	TypeIncompleteUnicodeEscapes = "incomplete_unicode_escapes"
	TypeUnicodeInComments        = "unicode_in_comments"
)

// EncodingRules run over the whole Liquid file with comments blanked.
var EncodingRules = []Rule{
	{Name: TypeEntityInOutput, Type: TypeEntityInOutput, Severity: domain.SeverityCritical, Enabled: true,
		Pattern:    regexp.MustCompile(`\{\{\s*[^}]*&(?:amp|lt|gt|quot|#39|nbsp|mdash|ndash|hellip|[a-zA-Z]+);[^}]*\}\}`),
		Message:    "HTML entity in Liquid output expression - breaks parsing",
		Suggestion: "Replace HTML entities with actual characters (e.g., &amp; -> &)"},
	{Name: TypeEntityInTag, Type: TypeEntityInTag, Severity: domain.SeverityCritical, Enabled: true,
		Pattern:    regexp.MustCompile(`\{%\s*[^%]*&(?:amp|lt|gt|quot|#39|nbsp|mdash|ndash|hellip|[a-zA-Z]+);[^%]*%\}`),
		Message:    "HTML entity in Liquid tag - breaks parsing",
		Suggestion: "Replace HTML entities with actual characters"},
	{Name: TypeEntityInFilterParam, Type: TypeEntityInFilterParam, Severity: domain.SeverityCritical, Enabled: true,
		Pattern:    regexp.MustCompile(`\|\s*(?:split|replace|append|prepend):\s*["'][^"']*&(?:amp|lt|gt|quot|#39|[a-zA-Z]+);[^"']*["']`),
		Message:    "HTML entity in filter parameter - breaks filter operation",
		Suggestion: "Use actual characters in filter parameters"},
	{Name: TypeUnicodeAssignVariable, Type: TypeUnicodeAssignVariable, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`\{%-?\s*assign\s+[^\s]*[^\x00-\x7F][^\s]*\s*=`),
		Message:    "Non-ASCII characters in assign variable name",
		Suggestion: "Use ASCII-only characters in variable names (a-z, A-Z, 0-9, _)"},
	{Name: TypeUnicodeLoopVariable, Type: TypeUnicodeLoopVariable, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`\{%-?\s*for\s+[^\s]*[^\x00-\x7F][^\s]*\s+in`),
		Message:    "Non-ASCII characters in for loop variable name",
		Suggestion: "Use ASCII-only characters in loop variable names"},
	{Name: TypeUnicodeCaptureVar, Type: TypeUnicodeCaptureVar, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`\{%-?\s*capture\s+[^\s]*[^\x00-\x7F][^\s]*\s*-?%\}`),
		Message:    "Non-ASCII characters in capture variable name",
		Suggestion: "Use ASCII-only characters in capture variable names"},
	{Name: TypeUnicodeAssetFilename, Type: TypeUnicodeAssetFilename, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`\{\{\s*["'][^"']*[^\x00-\x7F][^"']*\.(?:css|js|png|jpg|jpeg|gif|svg)["']\s*\|\s*asset_url\s*\}\}`),
		Message:    "Non-ASCII characters in asset filename",
		Suggestion: "Use ASCII-only characters in asset filenames"},
	{Name: TypeUnicodeRenderFilename, Type: TypeUnicodeRenderFilename, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`\{%-?\s*(?:render|include)\s+["'][^"']*[^\x00-\x7F][^"']*["']`),
		Message:    "Non-ASCII characters in render/include filename",
		Suggestion: "Use ASCII-only characters in snippet filenames"},
}

// SchemaEntity finds HTML entities inside schema JSON text.
var SchemaEntity = regexp.MustCompile(`(?i)&(?:amp|lt|gt|quot|#39|nbsp|mdash|ndash|hellip|[a-z]+);`)

// SchemaEntityRule carries the wording for SchemaEntity findings.
var SchemaEntityRule = Rule{
	Name: TypeEntityInSchema, Type: TypeEntityInSchema, Severity: domain.SeverityCritical, Enabled: true,
	Message:    "HTML entity in schema JSON - causes FileSaveError on upload",
	Suggestion: "Replace HTML entities with actual characters in schema",
}

// Charset declarations. The captured value is compared against utf-8 in code.
var (
	MetaCharset     = regexp.MustCompile(`(?i)<meta\s+charset=["']?([^"'>\s]+)`)
	MetaContentType = regexp.MustCompile(`(?i)<meta\s+http-equiv=["']content-type["'][^>]*content=["'][^"']*charset=([^"';\s]+)`)
)

// ZeroWidthChars are invisible code points that break parsing. U+FEFF is
// only a defect after the first byte; at offset 0 it is a BOM.
var ZeroWidthChars = regexp.MustCompile(`[\x{200B}-\x{200D}\x{2060}\x{FEFF}]`)

// CSSRules are the regex-expressible CSS encoding checks. Selector
// legality, font quotes and incomplete escapes need code and are keyed by
// type in CSSMessages.
var CSSRules = []Rule{
	{Name: TypeUnicodeCalcOperators, Type: TypeUnicodeCalcOperators, Severity: domain.SeverityCritical, Enabled: true,
		Pattern:    regexp.MustCompile(`calc\([^)]*[\x{2013}\x{2014}\x{00D7}\x{00F7}\x{2212}][^)]*\)`),
		Message:    "INVALID CALC OPERATOR: Unicode math operators not allowed",
		Suggestion: "Use ASCII operators: + - * / in calc() expressions"},
	{Name: TypeRawUnicodeContent, Type: TypeRawUnicodeContent, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`content\s*:\s*["'][^"']*[^\x00-\x7F][^"']*["']`),
		Message:    "RAW UNICODE IN CONTENT: Use escaped Unicode sequences",
		Suggestion: `Replace with \[Unicode-hex] escape sequences`},
	{Name: TypeNonASCIICSSVars, Type: TypeNonASCIICSSVars, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`--[\w\-]*[^\x00-\x7F][^\s:;{}]*\s*:`),
		Message:    "NON-ASCII CSS VARIABLE: Variable names must be ASCII",
		Suggestion: "Use ASCII characters only in CSS variable names"},
	{Name: TypeMalformedUnicodeEscapes, Type: TypeMalformedUnicodeEscapes, Severity: domain.SeverityError, Enabled: true,
		Pattern:    regexp.MustCompile(`\\[^0-9a-fA-F\r\n\f[:punct:]]`),
		Message:    "INVALID ESCAPE SEQUENCE: Malformed Unicode escape",
		Suggestion: `Use valid escape sequences: \[0-9a-fA-F]{1,6}`},
	{Name: TypeUnicodeInComments, Type: TypeUnicodeInComments, Severity: domain.SeverityInfo, Enabled: true,
		Pattern:    regexp.MustCompile(`/\*[^*]*[^\x00-\x7F][^*]*\*/`),
		Message:    "UNICODE IN COMMENTS: Non-ASCII characters in CSS comments",
		Suggestion: "Consider using ASCII characters in comments for better compatibility"},
}

// CSSMessages words the code-driven CSS checks.
var CSSMessages = map[string]Rule{
	TypeIllegalSelectorChars: {Name: TypeIllegalSelectorChars, Type: TypeIllegalSelectorChars, Severity: domain.SeverityCritical, Enabled: true,
		Message:    "ILLEGAL CSS SELECTOR: Contains invalid characters",
		Suggestion: "Use only alphanumeric, hyphen, underscore in selectors"},
	TypeUnescapedFontQuotes: {Name: TypeUnescapedFontQuotes, Type: TypeUnescapedFontQuotes, Severity: domain.SeverityWarning, Enabled: true,
		Message:    "UNESCAPED QUOTES IN FONT: Font family has unescaped quotes",
		Suggestion: "Properly escape or remove extra quotes in font names"},
	TypeIncompleteUnicodeEscapes: {Name: TypeIncompleteUnicodeEscapes, Type: TypeIncompleteUnicodeEscapes, Severity: domain.SeverityWarning, Enabled: true,
		Message:    "INCOMPLETE UNICODE ESCAPE: Unicode escape sequence too short",
		Suggestion: "Complete Unicode escape sequences or pad with zeros"},
}

var (
	// CSSPrelude captures the text before a "{" that is not an at-rule.
	CSSPrelude = regexp.MustCompile(`(?:^|[{};])\s*([^{};@\s][^{};]*)\{`)
	// CSSSelectorToken is one class or id selector within a prelude.
	CSSSelectorToken = regexp.MustCompile(`[.#][^\s,>+~]+`)
	// CSSAttributeSelector and CSSEscape are removed before token checks.
	CSSAttributeSelector = regexp.MustCompile(`\[[^\]]*\]`)
	CSSEscape            = regexp.MustCompile(`\\.`)
	// CSSKeyframeSelector matches percentage and from/to keyframe preludes.
	CSSKeyframeSelector = regexp.MustCompile(`^(?:[\d.]+%|from|to)(?:\s*,\s*(?:[\d.]+%|from|to))*$`)
	// CSSLegalSelector is the character set a selector token may use.
	CSSLegalSelector = regexp.MustCompile(`^[A-Za-z0-9_\-.#:()*]+$`)
	CSSFontFamily    = regexp.MustCompile(`font-family\s*:([^;{}]*)`)
	CSSShortEscape   = regexp.MustCompile(`\\([0-9a-fA-F]{1,3})(?:[^0-9a-fA-F]|$)`)
)

// OperatorReplacements maps Unicode math glyphs to ASCII operators.
var OperatorReplacements = map[string]string{
	"\u2013": "-", "\u2014": "-", "\u00d7": "*", "\u00f7": "/", "\u2212": "-", "\u2044": "/",
}

// PunctuationReplacements straightens typographic punctuation.
var PunctuationReplacements = map[string]string{
	"\u2018": "'", "\u2019": "'", "\u201c": `"`, "\u201d": `"`, "\u2026": "...", "\u2013": "-", "\u2014": "-",
}

// ContentEscapes maps glyphs used in CSS content values to hex escapes.
var ContentEscapes = map[string]string{
	"\u2192": `\2192`, "\u2190": `\2190`, "\u2191": `\2191`, "\u2193": `\2193`,
	"\u2605": `\2605`, "\u2606": `\2606`, "\u2660": `\2660`, "\u2663": `\2663`,
	"\u2665": `\2665`, "\u2666": `\2666`, "\u2713": `\2713`, "\u2717": `\2717`,
	"\u25cf": `\25CF`, "\u25cb": `\25CB`, "\u25a0": `\25A0`, "\u25a1": `\25A1`,
	"\u2022": `\2022`, "\u201a": `\201A`, "\u201e": `\201E`, "\u2039": `\2039`, "\u203a": `\203A`,
}

// InvisibleChars are stripped by the fixer.
var InvisibleChars = []string{"\u200B", "\u200C", "\u200D", "\uFEFF", "\u2060"}

// BOM is the UTF-8 byte order mark.
const BOM = "\uFEFF"
