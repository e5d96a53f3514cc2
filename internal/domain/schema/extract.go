// Package schema extracts and validates the JSON schema block embedded in
// Liquid section and block files, and tracks static block ids across files.
package schema

import (
	"regexp"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

var (
	schemaOpen  = regexp.MustCompile(`\{%-?\s*schema\s*-?%\}`)
	schemaClose = regexp.MustCompile(`\{%-?\s*endschema\s*-?%\}`)
)

// conditionalTags may not enclose a schema block.
var conditionalTags = map[string]bool{"if": true, "unless": true, "case": true, "for": true}

// Extraction locates the schema blocks of one file. Offsets index the
// original content.
type Extraction struct {
	Found     bool
	Start     int // opening tag of the first block
	End       int // end of the first block's closing tag
	BodyStart int
	BodyEnd   int
	Body      string
	// Extra holds every schema block after the first.
	Extra []source.Region
	// Enclosing names the innermost conditional tag open at Start, if any.
	Enclosing string
}

// Extract finds schema blocks outside comments and raw regions.
func Extract(content string) Extraction {
	visible := source.Blank(content,
		append(source.Regions(catalog.CommentBlock, content), source.Regions(catalog.RawBlock, content)...)...)

	blocks := source.Regions(catalog.SchemaBlock, visible)
	if len(blocks) == 0 {
		return Extraction{}
	}

	first := blocks[0]
	region := visible[first.Start:first.End]
	open := schemaOpen.FindStringIndex(region)
	closeTags := schemaClose.FindAllStringIndex(region, -1)
	last := closeTags[len(closeTags)-1]

	ex := Extraction{
		Found:     true,
		Start:     first.Start,
		End:       first.End,
		BodyStart: first.Start + open[1],
		BodyEnd:   first.Start + last[0],
		Extra:     blocks[1:],
		Enclosing: enclosingConditional(visible[:first.Start]),
	}
	ex.Body = content[ex.BodyStart:ex.BodyEnd]
	return ex
}

// Regions returns every schema block, first included.
func (e Extraction) Regions() []source.Region {
	if !e.Found {
		return nil
	}
	return append([]source.Region{{Start: e.Start, End: e.End}}, e.Extra...)
}

func enclosingConditional(before string) string {
	var stack []string
	for _, m := range catalog.LogicTag.FindAllStringSubmatch(before, -1) {
		name := m[1]
		switch {
		case conditionalTags[name]:
			stack = append(stack, name)
		case strings.HasPrefix(name, "end") && conditionalTags[name[3:]]:
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == name[3:] {
					stack = stack[:i]
					break
				}
			}
		}
	}
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}
