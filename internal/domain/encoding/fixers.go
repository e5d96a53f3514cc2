package encoding

import (
	"html"
	"regexp"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
)

var (
	calcExpr     = regexp.MustCompile(`calc\([^)]*\)`)
	contentValue = regexp.MustCompile(`content\s*:\s*["'][^"']*["']`)
	entity       = regexp.MustCompile(`&(?:[a-zA-Z]+|#\d+|#[xX][0-9a-fA-F]+);`)
)

func replacer(table map[string]string) *strings.Replacer {
	var pairs []string
	for _, k := range catalog.SortedKeys(table) {
		pairs = append(pairs, k, table[k])
	}
	return strings.NewReplacer(pairs...)
}

var (
	operators = replacer(catalog.OperatorReplacements)
	quotes    = replacer(quoteReplacements())
	escapes   = replacer(catalog.ContentEscapes)
	invisible = func() *strings.Replacer {
		var pairs []string
		for _, c := range catalog.InvisibleChars {
			pairs = append(pairs, c, "")
		}
		return strings.NewReplacer(pairs...)
	}()
)

// FixCalcOperators replaces Unicode math glyphs with ASCII operators inside
// calc() expressions.
func FixCalcOperators(css string) string {
	return calcExpr.ReplaceAllStringFunc(css, operators.Replace)
}

func quoteReplacements() map[string]string {
	out := make(map[string]string)
	for from, to := range catalog.PunctuationReplacements {
		if to == "'" || to == `"` {
			out[from] = to
		}
	}
	return out
}

// StraightenQuotes replaces curly quotes with ASCII ones. Dashes and
// ellipses are left alone since they are usually intended text.
func StraightenQuotes(s string) string {
	return quotes.Replace(s)
}

// EscapeContentChars rewrites glyphs inside CSS content values as hex
// escapes.
func EscapeContentChars(css string) string {
	return contentValue.ReplaceAllStringFunc(css, escapes.Replace)
}

// RemoveBOM drops a leading byte order mark.
func RemoveBOM(s string) string {
	return strings.TrimPrefix(s, catalog.BOM)
}

// RemoveInvisible deletes every zero-width character, a BOM included.
func RemoveInvisible(s string) string {
	return invisible.Replace(s)
}

// DecodeEntities turns HTML entities back into the characters they name.
// Unknown entities are left as written.
func DecodeEntities(s string) string {
	return entity.ReplaceAllStringFunc(s, html.UnescapeString)
}
