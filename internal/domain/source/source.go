// Package source maps byte offsets in theme file content to lines, columns
// and context snippets, and blanks regions out of content while keeping every
// remaining byte at its original offset.
package source

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

// SnippetRadius is how many bytes of context surround a match.
const SnippetRadius = 50

// MaxMatchLen caps the matched text recorded on an issue.
const MaxMatchLen = 200

var whitespaceRun = regexp.MustCompile(`\s+`)

// File is immutable file content with a precomputed line index.
type File struct {
	Path    string
	Content string
	lines   []int // byte offset at which each line starts
}

// New indexes content for offset lookups.
func New(path, content string) *File {
	lines := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &File{Path: path, Content: content, lines: lines}
}

// Line returns the 1-based line containing offset.
func (f *File) Line(offset int) int {
	return sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset })
}

// Column returns the 1-based column of offset within its line.
func (f *File) Column(offset int) int {
	line := f.Line(offset)
	return offset - f.lines[line-1] + 1
}

// LineCount is the number of lines in the file.
func (f *File) LineCount() int { return len(f.lines) }

// LineText returns line n (1-based) without its newline.
func (f *File) LineText(n int) string {
	if n < 1 || n > len(f.lines) {
		return ""
	}
	start := f.lines[n-1]
	end := len(f.Content)
	if n < len(f.lines) {
		end = f.lines[n] - 1
	}
	return f.Content[start:end]
}

// Snippet returns up to SnippetRadius bytes either side of [start,end) with
// whitespace runs collapsed to one space.
func (f *File) Snippet(start, end int) string {
	return Snippet(f.Content, start, end)
}

// Snippet is File.Snippet for content without an index.
func Snippet(content string, start, end int) string {
	from := clampRune(content, start-SnippetRadius)
	to := clampRuneEnd(content, end+SnippetRadius)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(content[from:to], " "))
}

// Truncate shortens s to at most n bytes on a rune boundary.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:clampRune(s, n)]
}

func clampRune(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !runeStart(s[i]) {
		i--
	}
	return i
}

func clampRuneEnd(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	if i <= 0 {
		return 0
	}
	for i < len(s) && !runeStart(s[i]) {
		i++
	}
	return i
}

func runeStart(b byte) bool { return b&0xC0 != 0x80 }

// Region is a half-open byte range [Start, End).
type Region struct {
	Start int
	End   int
}

// Contains reports whether offset falls inside r.
func (r Region) Contains(offset int) bool { return offset >= r.Start && offset < r.End }

// Regions finds every match of re in content.
func Regions(re *regexp.Regexp, content string) []Region {
	var out []Region
	for _, m := range re.FindAllStringIndex(content, -1) {
		out = append(out, Region{Start: m[0], End: m[1]})
	}
	return out
}

// InAny reports whether offset falls inside any region.
func InAny(regions []Region, offset int) bool {
	for _, r := range regions {
		if r.Contains(offset) {
			return true
		}
	}
	return false
}

// Blank replaces every byte inside the regions with a space, except
// newlines, so offsets and line numbers in the result match the input.
func Blank(content string, regions ...Region) string {
	if len(regions) == 0 {
		return content
	}
	b := []byte(content)
	for _, r := range regions {
		for i := max(r.Start, 0); i < r.End && i < len(b); i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	return string(b)
}

// Issue builds a finding for the byte range [start,end) of the file.
func (f *File) Issue(start, end int, issueType string, sev domain.Severity, message, suggestion string) domain.Issue {
	start = clampRune(f.Content, start)
	end = clampRuneEnd(f.Content, max(end, start))
	return domain.Issue{
		FilePath:   f.Path,
		Line:       f.Line(start),
		Column:     f.Column(start),
		Type:       issueType,
		Severity:   sev,
		Message:    message,
		Match:      Truncate(strings.TrimSpace(f.Content[start:end]), MaxMatchLen),
		Suggestion: suggestion,
		Context:    f.Snippet(start, end),
	}
}

// IssueAtLine builds a finding that has no match text, such as a missing
// block, anchored to a whole line.
func (f *File) IssueAtLine(line int, issueType string, sev domain.Severity, message, suggestion string) domain.Issue {
	return domain.Issue{
		FilePath:   f.Path,
		Line:       line,
		Type:       issueType,
		Severity:   sev,
		Message:    message,
		Suggestion: suggestion,
		Context:    Truncate(strings.TrimSpace(f.LineText(line)), MaxMatchLen),
	}
}
