// Package encoding detects character-level corruption in theme files and
// CSS, and provides the pure substitution functions the fixer composes.
// Nothing here mutates a file; scanners only report positions.
package encoding

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

// ReplacementChar marks bytes lost in an earlier bad conversion.
const ReplacementChar = "\uFFFD"

// Scan checks one file for encoding defects. Every file gets the byte-level
// checks; Liquid files also get the entity, identifier and charset rules.
func Scan(f *source.File) []domain.Issue {
	var out []domain.Issue
	out = append(out, scanBytes(f)...)
	if strings.HasSuffix(f.Path, ".liquid") {
		out = append(out, scanLiquid(f)...)
	}
	return out
}

func scanBytes(f *source.File) []domain.Issue {
	var out []domain.Issue
	content := f.Content

	if strings.HasPrefix(content, catalog.BOM) {
		out = append(out, f.Issue(0, len(catalog.BOM), catalog.TypeBOM, domain.SeverityWarning,
			"UTF-8 BOM at start of file", "Save the file as UTF-8 without BOM"))
	}

	if n := strings.Count(content, ReplacementChar); n > 0 {
		at := strings.Index(content, ReplacementChar)
		out = append(out, f.Issue(at, at+len(ReplacementChar), catalog.TypeReplacementChars, domain.SeverityCritical,
			fmt.Sprintf("Found %d Unicode replacement characters (U+FFFD): content was corrupted by a bad encoding conversion", n),
			"Restore the original characters from version control or retype them"))
	}

	for _, m := range catalog.ZeroWidthChars.FindAllStringIndex(content, -1) {
		if m[0] == 0 && content[m[0]:m[1]] == catalog.BOM {
			continue
		}
		r, _ := utf8.DecodeRuneInString(content[m[0]:])
		out = append(out, f.Issue(m[0], m[1], catalog.TypeZeroWidth, domain.SeverityError,
			fmt.Sprintf("Invisible zero-width character U+%04X", r),
			"Delete the character; it breaks Liquid and JSON parsing"))
	}
	return out
}

func scanLiquid(f *source.File) []domain.Issue {
	var out []domain.Issue
	visible := source.Blank(f.Content,
		append(source.Regions(catalog.CommentBlock, f.Content), source.Regions(catalog.RawBlock, f.Content)...)...)

	for _, r := range catalog.Active(catalog.EncodingRules, false) {
		for _, m := range r.Pattern.FindAllStringIndex(visible, -1) {
			out = append(out, r.Issue(f, m[0], m[1]))
		}
	}

	for _, block := range source.Regions(catalog.SchemaBlock, visible) {
		for _, m := range catalog.SchemaEntity.FindAllStringIndex(visible[block.Start:block.End], -1) {
			out = append(out, catalog.SchemaEntityRule.Issue(f, block.Start+m[0], block.Start+m[1]))
		}
	}

	charsets := []struct {
		issueType string
		what      string
		m         [][]int
	}{
		{catalog.TypeNonUTF8Charset, "meta charset", catalog.MetaCharset.FindAllStringSubmatchIndex(visible, -1)},
		{catalog.TypeNonUTF8ContentType, "Content-Type charset", catalog.MetaContentType.FindAllStringSubmatchIndex(visible, -1)},
	}
	for _, cs := range charsets {
		for _, m := range cs.m {
			value := visible[m[2]:m[3]]
			if isUTF8Label(value) {
				continue
			}
			out = append(out, f.Issue(m[0], m[1], cs.issueType, domain.SeverityWarning,
				fmt.Sprintf("Non-UTF-8 %s: %s", cs.what, value), `Declare charset="utf-8"`))
		}
	}
	return out
}

func isUTF8Label(v string) bool {
	v = strings.ToLower(strings.Trim(v, `"' `))
	return v == "utf-8" || v == "utf8"
}
