package catalog

import "regexp"

// Issue types produced by filter checks.
const (
	TypeHallucinatedFilter = "hallucinated_filter"
	TypeUnknownFilter      = "unknown_filter"
	TypeDeprecatedFilter   = "deprecated_filter"
)

// tagBody and outputBody match the inside of {% %} and {{ }}. Quoted
// literals are consumed whole so a '%' or '}' inside one does not end the
// delimiter; a stray quote is taken as a plain character.
const (
	tagBody    = `(?:'[^'\n]*'|"[^"\n]*"|[^%'"]|['"])*?`
	outputBody = `(?:'[^'\n]*'|"[^"\n]*"|[^}'"]|['"])*?`
)

var (
	// LiquidBlock matches one output or logic delimiter pair.
	LiquidBlock = regexp.MustCompile(`\{\{` + outputBody + `\}\}|\{%` + tagBody + `%\}`)
	// FilterName captures the name after each pipe inside a LiquidBlock.
	FilterName = regexp.MustCompile(`\|\s*([a-zA-Z_][a-zA-Z0-9_]*)`)
)

// OfficialFilters are the filters Shopify Liquid actually provides.
// Deprecated names are kept out so each name lands in exactly one table.
var OfficialFilters = newSet(
	// string
	"append", "capitalize", "downcase", "escape", "escape_once", "lstrip",
	"newline_to_br", "prepend", "remove", "remove_first", "remove_last",
	"replace", "replace_first", "replace_last", "rstrip", "slice", "split",
	"strip", "strip_html", "strip_newlines", "truncate", "truncatewords",
	"upcase", "url_encode", "url_decode", "url_escape", "url_param_escape",
	"base64_encode", "base64_decode", "base64_url_safe_encode",
	"base64_url_safe_decode", "camelize", "handle", "handleize",
	"md5", "sha1", "sha256", "hmac_sha1", "hmac_sha256", "pluralize",
	// math
	"abs", "at_least", "at_most", "ceil", "divided_by", "floor", "minus",
	"modulo", "plus", "round", "times",
	// array
	"compact", "concat", "first", "join", "last", "map", "reverse", "size",
	"sort", "sort_natural", "sum", "uniq", "where", "find", "find_index",
	"has", "reject",
	// misc
	"date", "default", "json",
	// url
	"asset_url", "file_img_url", "file_url", "global_asset_url", "image_url",
	"link_to", "link_to_add_tag", "link_to_remove_tag", "link_to_tag",
	"link_to_type", "link_to_vendor", "payment_type_img_url",
	"shopify_asset_url", "url_for_type", "url_for_vendor", "within",
	"customer_login_link", "customer_logout_link", "customer_register_link",
	"article_img_url", "blog_img_url", "product_img_url",
	// html
	"highlight", "highlight_active_tag", "image_tag", "img_tag",
	"placeholder_svg_tag", "script_tag", "stylesheet_tag", "time_tag",
	"preload_tag", "inline_asset_content", "payment_button",
	"payment_type_svg_tag", "external_video_tag", "external_video_url",
	"video_tag", "media_tag", "model_viewer_tag", "metafield_tag",
	"metafield_text", "login_button", "avatar",
	// color
	"brightness_difference", "color_brightness", "color_contrast",
	"color_darken", "color_desaturate", "color_difference", "color_lighten",
	"color_mix", "color_modify", "color_saturate", "color_to_hex",
	"color_to_hsl", "color_to_rgb",
	// money
	"money", "money_with_currency", "money_without_currency",
	"money_without_trailing_zeros",
	// localization
	"t", "translate", "format_address",
	// font
	"font_face", "font_modify", "font_url",
	// default objects
	"default_errors", "default_pagination",
	// cart and misc shopify
	"weight_with_unit", "sort_by", "url_for_vendor_javascript",
	"url_for_vendor_stylesheet", "page_description", "page_title",
	"item_count_for_variant", "line_items_for",
)

// HallucinatedFilters are plausible-looking filters that do not exist,
// with the corrective suggestion for each.
var HallucinatedFilters = map[string]string{
	"color_extract": "DOES NOT EXIST - Use color_brightness, color_lighten, etc.",
	"rgb":           "DOES NOT EXIST - Use CSS rgb() directly",
	"rgba":          "DOES NOT EXIST - Use CSS rgba() directly",
	"hex_to_rgb":    "DOES NOT EXIST - Use color_to_rgb or CSS",
	"extract":       "DOES NOT EXIST - Use object properties directly",
	"get":           "DOES NOT EXIST - Use bracket notation [key]",
	"fetch":         "DOES NOT EXIST - Use assign statements",
	"load":          "DOES NOT EXIST - Use assign statements",
	"parse":         "DOES NOT EXIST - Use split or string filters",
	"eval":          "DOES NOT EXIST - Would be dangerous anyway",
	"execute":       "DOES NOT EXIST - Would be dangerous anyway",
	"include":       "DOES NOT EXIST - Use {% include %} tag",
	"render":        "DOES NOT EXIST - Use {% render %} tag",
	"partial":       "DOES NOT EXIST - Use {% render %} tag",
	"template":      "DOES NOT EXIST - Use {% render %} tag",
	"component":     "DOES NOT EXIST - Use {% render %} tag",
	"require":       "DOES NOT EXIST - Not available in Liquid",
	"import":        "DOES NOT EXIST - Not available in Liquid",
	"raw":           "DOES NOT EXIST - Use the {% raw %} tag to output Liquid syntax",
	"safe":          "DOES NOT EXIST - Liquid output is not auto-escaped; use | escape where needed",
	"to_json":       "DOES NOT EXIST - Use | json",
	"stringify":     "DOES NOT EXIST - Use | json",
	"lower":         "DOES NOT EXIST - Use | downcase",
	"upper":         "DOES NOT EXIST - Use | upcase",
	"trim":          "DOES NOT EXIST - Use | strip",
	"length":        "DOES NOT EXIST - Use | size",
	"currency":      "DOES NOT EXIST - Use | money",
}

// DeprecatedFilters still render but have modern replacements.
var DeprecatedFilters = map[string]string{
	"img_url":            "Use image_url instead",
	"asset_img_url":      "Use image_url with asset_url instead",
	"collection_img_url": "Use image_url with collection.image instead",
}

// FilterVerdict classifies a filter name.
type FilterVerdict int

const (
	FilterOfficial FilterVerdict = iota
	FilterDeprecated
	FilterHallucinated
	FilterUnknown
)

// ClassifyFilter places name in exactly one table.
func ClassifyFilter(name string) FilterVerdict {
	switch {
	case OfficialFilters.Has(name):
		return FilterOfficial
	case DeprecatedFilters[name] != "":
		return FilterDeprecated
	case HallucinatedFilters[name] != "":
		return FilterHallucinated
	default:
		return FilterUnknown
	}
}

// URLFilters produce URLs; output passed through them is never escaped.
var URLFilters = []string{"image_url", "asset_url", "file_url", "url_for_", "link_to_"}

// SafeOutputFilters make user content safe to emit in HTML.
var SafeOutputFilters = newSet(
	"escape", "escape_once", "strip_html", "strip", "json", "t", "translate",
	"money", "money_with_currency", "money_without_currency",
	"money_without_trailing_zeros", "link_to", "date",
)

// FontFilters emit font declarations that are safe in any context.
var FontFilters = newSet("font_face", "font_family", "font_url")
