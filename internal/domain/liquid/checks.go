package liquid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
)

// TypeLayoutRequiredObject tags a layout missing a mandatory global.
const TypeLayoutRequiredObject = "layout_required_object"

var (
	stringLiteral = regexp.MustCompile(`'[^']*'|"[^"]*"`)
	localBinding  = regexp.MustCompile(`\b(?:assign|capture)\s+([a-zA-Z_]\w*)|\bfor\s+([a-zA-Z_]\w*)\s+in\b`)
	imageWidth    = regexp.MustCompile(`image_url:\s*width:\s*(\d+)`)

	scriptTag     = regexp.MustCompile(`(?is)<script\b[^>]*>`)
	linkTag       = regexp.MustCompile(`(?is)<link\b[^>]*>`)
	srcAttr       = regexp.MustCompile(`(?i)\bsrc\s*=\s*["']([^"']+)["']`)
	hrefAttr      = regexp.MustCompile(`(?i)\bhref\s*=\s*["']([^"']+)["']`)
	relStylesheet = regexp.MustCompile(`(?i)\brel\s*=\s*["']?stylesheet\b`)
	deferredAttr  = regexp.MustCompile(`(?i)\s(?:defer|async)\b|\btype\s*=\s*["']?module\b`)
	cssImport     = regexp.MustCompile(`(?i)@import\s+(?:url\(\s*)?["']?((?:https?:)?//[^"')\s;]+)`)
)

// active looks up a named catalog rule and reports whether it runs.
func (s *scanner) active(name string) (catalog.Rule, bool) {
	r := catalog.MustLookup(name)
	return r, r.Enabled || s.opts.Experimental
}

// blankStrings hides quoted literals so pipes inside them are not filters.
func blankStrings(block string) string {
	return stringLiteral.ReplaceAllStringFunc(block, func(lit string) string {
		return lit[:1] + strings.Repeat(" ", len(lit)-2) + lit[len(lit)-1:]
	})
}

func (s *scanner) checkFilters() {
	for _, b := range catalog.LiquidBlock.FindAllStringIndex(s.v.code, -1) {
		block := blankStrings(s.v.code[b[0]:b[1]])
		for _, m := range catalog.FilterName.FindAllStringSubmatchIndex(block, -1) {
			name := block[m[2]:m[3]]
			start, end := b[0]+m[0], b[0]+m[1]
			switch catalog.ClassifyFilter(name) {
			case catalog.FilterDeprecated:
				s.add(s.f.Issue(start, end, catalog.TypeDeprecatedFilter, domain.SeverityWarning,
					"Deprecated filter: | "+name, catalog.DeprecatedFilters[name]))
			case catalog.FilterHallucinated:
				s.add(s.f.Issue(start, end, catalog.TypeHallucinatedFilter, domain.SeverityCritical,
					"Hallucinated filter: | "+name, catalog.HallucinatedFilters[name]))
			case catalog.FilterUnknown:
				s.add(s.f.Issue(start, end, catalog.TypeUnknownFilter, domain.SeverityCritical,
					"Unknown filter: | "+name, "Check the Shopify Liquid filter reference"))
			}
		}
	}
}

func (s *scanner) checkObjects() {
	bound := make(map[string]bool)
	for _, m := range localBinding.FindAllStringSubmatch(s.v.code, -1) {
		bound[m[1]+m[2]] = true
	}
	for _, re := range catalog.ObjectHeadPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(s.v.code, -1) {
			head := s.v.code[m[2]:m[3]]
			hint, suspicious := catalog.SuspiciousObjects[head]
			if !suspicious || bound[head] {
				continue
			}
			s.add(s.f.Issue(m[2], m[3], catalog.TypeFakeObject, domain.SeverityError,
				fmt.Sprintf("Suspicious object: %s is not a Shopify global", head), hint))
		}
	}
}

func (s *scanner) checkComplexity() {
	chain, chainOn := s.active(catalog.RuleFilterChain)
	appends, appendsOn := s.active(catalog.RuleAppendChain)
	for _, b := range catalog.LiquidBlock.FindAllStringIndex(s.v.code, -1) {
		block := blankStrings(s.v.code[b[0]:b[1]])
		for _, st := range statements(block) {
			stmt := block[st[0]:st[1]]
			start, end := b[0]+st[0], b[0]+st[1]
			if chainOn && strings.Count(stmt, "|") >= catalog.MaxFilterChain {
				s.report(chain, start, end)
			}
			if !appendsOn {
				continue
			}
			n := 0
			for _, m := range catalog.FilterName.FindAllStringSubmatch(stmt, -1) {
				if m[1] == "append" {
					n++
				}
			}
			if n >= catalog.MaxAppendChain {
				s.report(appends, start, end)
			}
		}
	}

	if long, ok := s.active(catalog.RuleLongLiquidBlock); ok {
		for _, b := range catalog.LiquidTagBlock.FindAllStringIndex(s.v.code, -1) {
			if strings.Count(s.v.code[b[0]:b[1]], "\n")+1 >= catalog.MaxLiquidBlockLines {
				s.report(long, b[0], b[0]+len("{% liquid"))
			}
		}
	}
}

// statements returns the byte ranges of the expressions in a Liquid block.
// A {% liquid %} block holds one statement per line; any other block is a
// single expression.
func statements(block string) [][2]int {
	if !catalog.LiquidTagOpen.MatchString(block) {
		return [][2]int{{0, len(block)}}
	}
	var out [][2]int
	at := 0
	for _, line := range strings.SplitAfter(block, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, [2]int{at, at + len(line)})
		}
		at += len(line)
	}
	return out
}

func (s *scanner) checkPerformance() {
	for _, r := range catalog.Active(catalog.PerformanceRules, s.opts.Experimental) {
		if r.Pattern == nil {
			continue
		}
		for _, m := range r.Pattern.FindAllStringIndex(s.v.code, -1) {
			s.report(r, m[0], m[1])
		}
	}
	if r, ok := s.active(catalog.RuleOversizedImage); ok {
		for _, m := range imageWidth.FindAllStringSubmatchIndex(s.v.code, -1) {
			width, err := strconv.Atoi(s.v.code[m[2]:m[3]])
			if err == nil && width >= catalog.MaxImageWidth {
				s.report(r, m[0], m[1])
			}
		}
	}
}

func (s *scanner) checkThemeStore() {
	for _, r := range catalog.Active(catalog.ThemeStoreRules, s.opts.Experimental) {
		if r.Pattern == nil {
			continue
		}
		for _, m := range r.Pattern.FindAllStringIndex(s.v.code, -1) {
			s.report(r, m[0], m[1])
		}
	}

	if r, ok := s.active(catalog.RuleExternalScript); ok {
		for _, m := range scriptTag.FindAllStringIndex(s.v.code, -1) {
			src := srcAttr.FindStringSubmatch(s.v.code[m[0]:m[1]])
			if src != nil && isExternal(src[1], catalog.AllowedScriptHosts) {
				s.report(r, m[0], m[1])
			}
		}
	}
	if r, ok := s.active(catalog.RuleExternalStylesheet); ok {
		for _, m := range linkTag.FindAllStringIndex(s.v.code, -1) {
			tag := s.v.code[m[0]:m[1]]
			href := hrefAttr.FindStringSubmatch(tag)
			if relStylesheet.MatchString(tag) && href != nil && isExternal(href[1], catalog.AllowedStylesheetHosts) {
				s.report(r, m[0], m[1])
			}
		}
	}
	if r, ok := s.active(catalog.RuleExternalImport); ok {
		for _, m := range cssImport.FindAllStringSubmatchIndex(s.v.code, -1) {
			if isExternal(s.v.code[m[2]:m[3]], catalog.AllowedImportHosts) {
				s.report(r, m[0], m[1])
			}
		}
	}
}

// isExternal reports whether url points off-site to a host outside allowed.
func isExternal(url string, allowed []string) bool {
	rest, ok := strings.CutPrefix(url, "https:")
	if !ok {
		rest, _ = strings.CutPrefix(url, "http:")
	}
	rest, ok = strings.CutPrefix(rest, "//")
	if !ok {
		return false
	}
	for _, host := range allowed {
		if strings.HasPrefix(rest, host) {
			return false
		}
	}
	return true
}

func (s *scanner) checkSyntax() {
	for _, r := range catalog.Active(catalog.SyntaxRules, s.opts.Experimental) {
		if r.Pattern == nil {
			continue
		}
		for _, m := range r.Pattern.FindAllStringIndex(s.v.code, -1) {
			s.report(r, m[0], m[1])
		}
	}

	unclosed, ok := s.active(catalog.RuleUnclosedOutput)
	if !ok {
		return
	}
	code := s.v.code
	for i := 0; i < len(code); {
		open := strings.Index(code[i:], "{{")
		if open < 0 {
			return
		}
		open += i
		rest := code[open+2:]
		closeAt := strings.Index(rest, "}}")
		next := strings.Index(rest, "{{")
		if closeAt < 0 || (next >= 0 && next < closeAt) {
			s.report(unclosed, open, open+2)
		}
		i = open + 2
	}
}

func (s *scanner) checkHardcodedRoutes() {
	for _, m := range catalog.HardcodedRoute.FindAllStringSubmatchIndex(s.v.markup, -1) {
		route := s.v.markup[m[2]:m[3]]
		s.add(s.f.Issue(m[2], m[3], catalog.TypeHardcodedRoute, domain.SeverityWarning,
			fmt.Sprintf("Hardcoded route '%s'", route),
			fmt.Sprintf("Use {{ %s }} so the link follows the storefront locale", catalog.HardcodedRoutes[route])))
	}
}

func (s *scanner) checkParserBlockingScripts() {
	for _, m := range scriptTag.FindAllStringIndex(s.v.code, -1) {
		tag := s.v.code[m[0]:m[1]]
		if !srcAttr.MatchString(tag) || deferredAttr.MatchString(tag) {
			continue
		}
		s.add(s.f.Issue(m[0], m[1], catalog.TypeParserBlockingScript, domain.SeverityError,
			"Parser-blocking script: <script src> without defer or async",
			"Add defer (or async for independent scripts)"))
	}
}

func (s *scanner) checkLayout() {
	if s.c.Type != domain.FileTypeLayout {
		return
	}
	for _, name := range catalog.LayoutRequiredObjects {
		if strings.Contains(s.v.code, name) {
			continue
		}
		s.add(s.f.IssueAtLine(1, TypeLayoutRequiredObject, domain.SeverityError,
			"Layout missing required object: "+name,
			fmt.Sprintf("Output {{ %s }} in the layout", name)))
	}
}
