package encoding

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/classify"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

var cssComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

// ScanCSS checks stylesheet text. CSS assets are scanned whole; in other
// Liquid files only the bodies of style and stylesheet blocks are.
func ScanCSS(f *source.File) []domain.Issue {
	css := cssView(f)
	if strings.TrimSpace(css) == "" {
		return nil
	}
	bare := source.Blank(css, source.Regions(cssComment, css)...)

	var out []domain.Issue
	for _, r := range catalog.Active(catalog.CSSRules, false) {
		text := bare
		if r.Type == catalog.TypeUnicodeInComments {
			text = css
		}
		for _, m := range r.Pattern.FindAllStringIndex(text, -1) {
			out = append(out, r.Issue(f, m[0], m[1]))
		}
	}
	out = append(out, illegalSelectors(f, bare)...)
	out = append(out, fontQuotes(f, bare)...)
	out = append(out, shortEscapes(f, bare)...)
	return out
}

// cssView returns the file content with everything that is not CSS
// blanked, Liquid delimiters included.
func cssView(f *source.File) string {
	content := source.Blank(f.Content,
		append(source.Regions(catalog.CommentBlock, f.Content), source.Regions(catalog.RawBlock, f.Content)...)...)

	if !classify.IsCSS(f.Path) {
		var bodies []source.Region
		for _, re := range []*regexp.Regexp{catalog.StyleTagBlock, catalog.LiquidStyle, catalog.StylesheetBlock} {
			for _, r := range source.Regions(re, content) {
				bodies = append(bodies, innerBody(content, r))
			}
		}
		content = keepOnly(content, bodies)
	}
	return source.Blank(content, source.Regions(catalog.LiquidBlock, content)...)
}

// innerBody strips the opening and closing tag from a style block region.
func innerBody(content string, r source.Region) source.Region {
	block := content[r.Start:r.End]
	open := strings.Index(block, ">") + 1
	if strings.HasPrefix(block, "{%") {
		open = strings.Index(block, "%}") + 2
	}
	closing := strings.LastIndex(block, "{%")
	if strings.HasPrefix(block, "<") {
		closing = strings.LastIndex(block, "<")
	}
	if closing < open {
		return source.Region{Start: r.Start, End: r.Start}
	}
	return source.Region{Start: r.Start + open, End: r.Start + closing}
}

// keepOnly blanks every byte outside the given regions.
func keepOnly(content string, keep []source.Region) string {
	var drop []source.Region
	at := 0
	for _, r := range sortRegions(keep) {
		if r.Start > at {
			drop = append(drop, source.Region{Start: at, End: r.Start})
		}
		at = max(at, r.End)
	}
	drop = append(drop, source.Region{Start: at, End: len(content)})
	return source.Blank(content, drop...)
}

func sortRegions(rs []source.Region) []source.Region {
	out := append([]source.Region(nil), rs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func illegalSelectors(f *source.File, css string) []domain.Issue {
	rule := catalog.CSSMessages[catalog.TypeIllegalSelectorChars]
	var out []domain.Issue
	for _, m := range catalog.CSSPrelude.FindAllStringSubmatchIndex(css, -1) {
		prelude := strings.TrimSpace(css[m[2]:m[3]])
		if catalog.CSSKeyframeSelector.MatchString(prelude) {
			continue
		}
		cleaned := catalog.CSSEscape.ReplaceAllString(catalog.CSSAttributeSelector.ReplaceAllString(prelude, ""), "")
		for _, tok := range catalog.CSSSelectorToken.FindAllString(cleaned, -1) {
			if !catalog.CSSLegalSelector.MatchString(tok) {
				out = append(out, rule.Issue(f, m[2], m[3]))
				break
			}
		}
	}
	return out
}

func fontQuotes(f *source.File, css string) []domain.Issue {
	rule := catalog.CSSMessages[catalog.TypeUnescapedFontQuotes]
	var out []domain.Issue
	for _, m := range catalog.CSSFontFamily.FindAllStringSubmatchIndex(css, -1) {
		value := css[m[2]:m[3]]
		if strings.Count(value, `"`)%2 == 1 || strings.Count(value, "'")%2 == 1 {
			out = append(out, rule.Issue(f, m[0], m[1]))
		}
	}
	return out
}

func shortEscapes(f *source.File, css string) []domain.Issue {
	rule := catalog.CSSMessages[catalog.TypeIncompleteUnicodeEscapes]
	var out []domain.Issue
	for _, m := range catalog.CSSShortEscape.FindAllStringSubmatchIndex(css, -1) {
		out = append(out, rule.Issue(f, m[0], m[3]))
	}
	return out
}
