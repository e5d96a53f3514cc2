package catalog

import "regexp"

// Issue types produced by tag checks.
const (
	TypeUnclosedTag     = "unclosed_tag"
	TypeMismatchedTags  = "mismatched_tags"
	TypeUnmatchedEndTag = "unmatched_end_tag"
	TypeNestingDepth    = "nesting_depth"
	TypeInvalidTag      = "invalid_tag"
)

// MaxNestingDepth is Shopify's limit on nested block tags.
const MaxNestingDepth = 8

// PairedTags open a block that must be closed by end<name>.
var PairedTags = newSet(
	"if", "unless", "case", "for", "capture", "tablerow", "paginate",
	"form", "style", "comment", "schema", "raw",
	"javascript", "stylesheet",
)

// SelfClosingTags never push onto the tag stack.
var SelfClosingTags = newSet(
	"assign", "echo", "increment", "decrement", "break", "continue",
	"include", "render", "section", "sections", "layout", "cycle", "when",
	"else", "elsif", "liquid", "content_for",
)

// NestingTags count towards nesting depth. content_for has no end tag in
// Shopify Liquid, so it never changes the net depth and is left out.
var NestingTags = newSet(
	"for", "if", "unless", "case", "capture", "tablerow", "paginate",
)

// InvalidTags look like Liquid tags but do not exist in Shopify Liquid.
var InvalidTags = map[string]string{
	"doc":       "Use {% comment %} ... {% endcomment %}",
	"meta":      "Write a plain <meta> element",
	"header":    "Use {% section 'header' %} or a <header> element",
	"footer":    "Use {% section 'footer' %} or a <footer> element",
	"class":     "Set the class attribute directly on the element",
	"function":  "Liquid has no functions - use {% render %} with a snippet",
	"block":     "Use {% content_for 'block' %} or section blocks",
	"extends":   "Liquid has no template inheritance - use layouts",
	"import":    "Use {% render %} to include snippets",
	"require":   "Use {% render %} to include snippets",
	"macro":     "Liquid has no macros - use {% render %} with parameters",
	"set":       "Use {% assign %}",
	"var":       "Use {% assign %}",
	"let":       "Use {% assign %}",
	"while":     "Use {% for %} with a range or limit",
	"foreach":   "Use {% for %}",
	"elseif":    "Use {% elsif %}",
	"switch":    "Use {% case %}",
	"endswitch": "Use {% endcase %}",
	"yield":     "Use {{ content_for_layout }} in layouts",
	"debug":     "Output values with {{ x | json }}",
}

var (
	// LogicTag captures the first word of a {% %} tag body, honouring
	// whitespace control dashes.
	LogicTag = regexp.MustCompile(`\{%-?\s*([a-zA-Z_]\w*)(` + tagBody + `)-?%\}`)
	// CommentBlock, RawBlock, SchemaBlock and friends are whole regions.
	CommentBlock    = regexp.MustCompile(`(?s)\{%-?\s*comment\s*-?%\}.*?\{%-?\s*endcomment\s*-?%\}`)
	RawBlock        = regexp.MustCompile(`(?s)\{%-?\s*raw\s*-?%\}.*?\{%-?\s*endraw\s*-?%\}`)
	SchemaBlock     = regexp.MustCompile(`(?s)\{%-?\s*schema\s*-?%\}.*?\{%-?\s*endschema\s*-?%\}`)
	StyleTagBlock   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	LiquidStyle     = regexp.MustCompile(`(?s)\{%-?\s*style\s*-?%\}.*?\{%-?\s*endstyle\s*-?%\}`)
	StylesheetBlock = regexp.MustCompile(`(?s)\{%-?\s*stylesheet\s*-?%\}.*?\{%-?\s*endstylesheet\s*-?%\}`)
	JavascriptBlock = regexp.MustCompile(`(?s)\{%-?\s*javascript\s*-?%\}.*?\{%-?\s*endjavascript\s*-?%\}`)
	ScriptTagBlock  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	InlineComment   = regexp.MustCompile(`\{%-?\s*#` + tagBody + `%\}`)
	// LiquidTagBlock is a {% liquid %} multi-statement tag.
	LiquidTagBlock = regexp.MustCompile(`(?s)\{%-?\s*liquid\s.*?-?%\}`)
	// LiquidTagOpen tells a {% liquid %} block apart from a single tag.
	LiquidTagOpen = regexp.MustCompile(`^\{%-?\s*liquid\s`)
)
