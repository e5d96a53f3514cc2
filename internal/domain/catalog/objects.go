package catalog

import "regexp"

// TypeFakeObject tags references to objects Shopify does not provide.
const TypeFakeObject = "fake_object"

// SuspiciousObjects look like Shopify globals but are not, mapped to the
// real equivalent.
var SuspiciousObjects = map[string]string{
	"products": "Use collections[handle].products or search.results",
	"items":    "Not a Shopify object - use cart.items or line_items",
	"data":     "Not a Shopify object - use metaobjects or settings",
	"config":   "Not a Shopify object - use settings",
	"theme":    "Not a Shopify object - use settings",
	"store":    "Not a Shopify object - use shop",
	"user":     "Not a Shopify object - use customer",
	"session":  "Not available in Shopify Liquid",
}

// ObjectHeadPatterns capture the head identifier of dotted and loop
// expressions: {{ X. , for _ in X , assign _ = X. , if X. , unless X.
var ObjectHeadPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\{\{-?\s*([a-zA-Z_]\w*)\.`),
	regexp.MustCompile(`\{%-?\s*for\s+\w+\s+in\s+([a-zA-Z_]\w*)`),
	regexp.MustCompile(`\{%-?\s*assign\s+\w+\s*=\s*([a-zA-Z_]\w*)\.`),
	regexp.MustCompile(`\{%-?\s*if\s+([a-zA-Z_]\w*)\.`),
	regexp.MustCompile(`\{%-?\s*unless\s+([a-zA-Z_]\w*)\.`),
}

// UserContentRoot matches expressions reading merchant- or visitor-controlled
// data. It is deliberately unanchored: section.settings.x and
// block.settings.x both match through "settings.".
var UserContentRoot = regexp.MustCompile(`(?:settings|customer|form|article|product|collection|page)\.`)

// LayoutRequiredObjects must appear in every layout file.
var LayoutRequiredObjects = []string{"content_for_header", "content_for_layout"}

// TemplateObjectHints mark a loose file as a legacy template.
var TemplateObjectHints = []string{"content_for_layout", "collection.products", "paginate"}
