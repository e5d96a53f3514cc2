// Package liquid scans the Liquid and HTML body of a theme file: filter and
// object legality, complexity and performance limits, theme store policy,
// unescaped output, and tag pairing and nesting.
package liquid

import (
	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

// Options tune a scan.
type Options struct {
	// Experimental enables catalog rules that are disabled by default.
	Experimental bool
}

// views holds the file content with different regions blanked out. Every
// view keeps the original byte offsets.
type views struct {
	// visible has comments and raw blocks blanked.
	visible string
	// code additionally blanks schema blocks.
	code string
	// markup additionally blanks script and javascript bodies.
	markup string
	schema []source.Region
	styles []source.Region
}

func newViews(content string) views {
	var hidden []source.Region
	hidden = append(hidden, source.Regions(catalog.CommentBlock, content)...)
	hidden = append(hidden, source.Regions(catalog.RawBlock, content)...)
	hidden = append(hidden, source.Regions(catalog.InlineComment, content)...)
	visible := source.Blank(content, hidden...)

	schema := source.Regions(catalog.SchemaBlock, visible)
	code := source.Blank(visible, schema...)

	var scripts []source.Region
	scripts = append(scripts, source.Regions(catalog.ScriptTagBlock, code)...)
	scripts = append(scripts, source.Regions(catalog.JavascriptBlock, code)...)

	var styles []source.Region
	styles = append(styles, source.Regions(catalog.StyleTagBlock, visible)...)
	styles = append(styles, source.Regions(catalog.LiquidStyle, visible)...)
	styles = append(styles, source.Regions(catalog.StylesheetBlock, visible)...)

	return views{
		visible: visible,
		code:    code,
		markup:  source.Blank(code, scripts...),
		schema:  schema,
		styles:  styles,
	}
}

// scanner carries one file's scan state.
type scanner struct {
	f    *source.File
	c    domain.Classification
	opts Options
	v    views
	out  []domain.Issue
}

func (s *scanner) add(issue domain.Issue) { s.out = append(s.out, issue) }

func (s *scanner) report(rule catalog.Rule, start, end int) {
	s.add(rule.Issue(s.f, start, end))
}

// Scan runs every body check over one Liquid file. Comment and raw blocks
// are never inspected; schema blocks are left to the schema validator.
func Scan(f *source.File, c domain.Classification, opts Options) []domain.Issue {
	s := &scanner{f: f, c: c, opts: opts, v: newViews(f.Content)}

	s.checkFilters()
	s.checkObjects()
	s.checkComplexity()
	s.checkPerformance()
	s.checkThemeStore()
	s.checkOutputEscaping()
	s.walkTags()
	s.checkSyntax()
	s.checkHardcodedRoutes()
	s.checkParserBlockingScripts()
	s.checkLayout()

	return s.out
}
