package liquid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
)

var (
	allProductsLoop = regexp.MustCompile(`\bin\s+collections\.all\.products\b`)
	collectionsLoop = regexp.MustCompile(`^\s*\w+\s+in\s+collections(?:\s|$)`)
	limitParam      = regexp.MustCompile(`\blimit\s*:`)
)

// openTag is one entry of the tag nesting stack.
type openTag struct {
	name   string
	start  int
	end    int
	line   int
	nested bool // counts towards nesting depth
}

// tagWalk is the state of one pass over a file's logic tags.
type tagWalk struct {
	s       *scanner
	stack   []openTag
	depth   int
	deep    bool
	ifs     int
	fors    int
	deepIf  bool
	deepFor bool
	assigns int
}

// walkTags visits every logic tag in order, checking pairing, nesting
// depth, invalid tag names and the loop-shape performance rules.
func (s *scanner) walkTags() {
	w := &tagWalk{s: s}
	for _, m := range catalog.LogicTag.FindAllStringSubmatchIndex(s.v.code, -1) {
		w.visit(m[0], m[1], s.v.code[m[2]:m[3]], s.v.code[m[4]:m[5]])
	}
	for _, t := range w.stack {
		w.unclosed(t)
	}
}

func (w *tagWalk) visit(start, end int, name, params string) {
	s := w.s
	if hint, ok := catalog.InvalidTags[name]; ok {
		w.invalid(start, end, name, hint)
		return
	}
	if base, ok := strings.CutPrefix(name, "end"); ok {
		if hint, invalid := catalog.InvalidTags[base]; invalid {
			w.invalid(start, end, name, hint)
			return
		}
		if catalog.PairedTags.Has(base) {
			w.assigns = 0
			w.close(start, end, base)
			return
		}
	}

	if name == "assign" {
		w.assigns++
		return
	}
	if name == "for" {
		w.checkLoop(start, end, params)
	}
	w.assigns = 0

	if name == "unless" && len(w.stack) > 0 && w.stack[len(w.stack)-1].name == "for" {
		if r, ok := s.active(catalog.RuleUnlessInFor); ok {
			s.report(r, start, end)
		}
	}
	if catalog.PairedTags.Has(name) {
		w.open(openTag{name: name, start: start, end: end, line: s.f.Line(start), nested: catalog.NestingTags.Has(name)})
	}
}

func (w *tagWalk) invalid(start, end int, name, hint string) {
	w.s.add(w.s.f.Issue(start, end, catalog.TypeInvalidTag, domain.SeverityCritical,
		fmt.Sprintf("Tag {%% %s %%} does not exist in Shopify Liquid", name), hint))
}

func (w *tagWalk) checkLoop(start, end int, params string) {
	s := w.s
	if w.assigns >= catalog.MaxAssignsBeforeLoop {
		if r, ok := s.active(catalog.RuleAssignsBeforeFor); ok {
			s.report(r, start, end)
		}
	}
	if limitParam.MatchString(params) {
		return
	}
	if allProductsLoop.MatchString(params) {
		if r, ok := s.active(catalog.RuleAllProductsLoop); ok {
			s.report(r, start, end)
		}
	}
	if collectionsLoop.MatchString(params) {
		if r, ok := s.active(catalog.RuleCollectionsLoop); ok {
			s.report(r, start, end)
		}
	}
}

func (w *tagWalk) open(t openTag) {
	w.stack = append(w.stack, t)
	if !t.nested {
		return
	}
	w.depth++
	if w.depth > catalog.MaxNestingDepth && !w.deep {
		w.deep = true
		w.s.add(w.s.f.Issue(t.start, t.end, catalog.TypeNestingDepth, domain.SeverityError,
			fmt.Sprintf("Liquid nesting depth %d exceeds Shopify's limit of %d", w.depth, catalog.MaxNestingDepth),
			"Move inner logic into a snippet with {% render %}"))
	}

	switch t.name {
	case "if":
		w.ifs++
		if w.ifs >= catalog.MaxNestedIf && !w.deepIf {
			w.deepIf = true
			if r, ok := w.s.active(catalog.RuleNestedIf); ok {
				w.s.report(r, t.start, t.end)
			}
		}
	case "for":
		w.fors++
		if w.fors >= catalog.MaxNestedFor && !w.deepFor {
			w.deepFor = true
			if r, ok := w.s.active(catalog.RuleNestedFor); ok {
				w.s.report(r, t.start, t.end)
			}
		}
	}
}

// pop removes the top of the stack and unwinds the depth counters.
func (w *tagWalk) pop() openTag {
	t := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if !t.nested {
		return t
	}
	w.depth--
	if w.depth <= catalog.MaxNestingDepth {
		w.deep = false
	}
	switch t.name {
	case "if":
		w.ifs--
		if w.ifs < catalog.MaxNestedIf {
			w.deepIf = false
		}
	case "for":
		w.fors--
		if w.fors < catalog.MaxNestedFor {
			w.deepFor = false
		}
	}
	return t
}

// close matches an end tag against the stack. An opener found deeper in
// the stack closes it and reports everything above as unclosed; an opener
// not on the stack at all is a mismatch and leaves the stack untouched.
func (w *tagWalk) close(start, end int, name string) {
	s := w.s
	endTag := "{% end" + name + " %}"
	if len(w.stack) == 0 {
		s.add(s.f.Issue(start, end, catalog.TypeUnmatchedEndTag, domain.SeverityError,
			fmt.Sprintf("Unexpected %s: no matching opening tag", endTag),
			fmt.Sprintf("Remove the tag or add the opening {%% %s %%}", name)))
		return
	}

	at := -1
	for i := len(w.stack) - 1; i >= 0; i-- {
		if w.stack[i].name == name {
			at = i
			break
		}
	}
	if at < 0 {
		top := w.stack[len(w.stack)-1]
		s.add(s.f.Issue(start, end, catalog.TypeMismatchedTags, domain.SeverityError,
			fmt.Sprintf("Mismatched tags: expected {%% end%s %%}, found %s", top.name, endTag),
			fmt.Sprintf("Close {%% %s %%} from line %d before %s", top.name, top.line, endTag)))
		return
	}
	for len(w.stack) > at+1 {
		w.unclosed(w.pop())
	}
	w.pop()
}

func (w *tagWalk) unclosed(t openTag) {
	w.s.add(w.s.f.Issue(t.start, t.end, catalog.TypeUnclosedTag, domain.SeverityError,
		fmt.Sprintf("Unclosed tag: {%% %s %%} opened on line %d is never closed", t.name, t.line),
		fmt.Sprintf("Add {%% end%s %%}", t.name)))
}
