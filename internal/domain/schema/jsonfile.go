package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

// TypeInvalidJSON tags a JSON theme file that does not parse.
const TypeInvalidJSON = "invalid_json"

// generatedHeader is the block comment Shopify prepends to JSON templates.
var generatedHeader = regexp.MustCompile(`(?s)^\s*/\*.*?\*/`)

// ValidateJSON parses a template, config or locale file. The leading
// generated-file comment Shopify writes is tolerated.
func ValidateJSON(f *source.File) []domain.Issue {
	content := f.Content
	if loc := generatedHeader.FindStringIndex(content); loc != nil {
		content = source.Blank(content, source.Region{Start: loc[0], End: loc[1]})
	}
	content = trimBOM(content)

	var v any
	err := json.Unmarshal([]byte(content), &v)
	if err == nil {
		return nil
	}
	offset := 0
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		offset = max(int(syntax.Offset)-1, 0)
	}
	offset = min(offset+len(f.Content)-len(content), len(f.Content))
	return []domain.Issue{f.Issue(offset, min(offset+1, len(f.Content)), TypeInvalidJSON, domain.SeverityCritical,
		fmt.Sprintf("Invalid JSON: %v (line %d, column %d)", err, f.Line(offset), f.Column(offset)),
		"Fix the JSON syntax: check commas, quotes and brackets")}
}

// trimBOM drops a leading byte order mark; the encoding scanner reports it.
func trimBOM(s string) string {
	return strings.TrimPrefix(s, catalog.BOM)
}
