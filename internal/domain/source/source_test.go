package source_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
	"github.com/stretchr/testify/assert"
)

func TestFile_LineAndColumn(t *testing.T) {
	f := source.New("x.liquid", "ab\ncde\n\nf")

	assert.Equal(t, 1, f.Line(0))
	assert.Equal(t, 1, f.Line(2))
	assert.Equal(t, 2, f.Line(3))
	assert.Equal(t, 2, f.Line(5))
	assert.Equal(t, 4, f.Line(8))
	assert.Equal(t, 3, f.Column(5))
	assert.Equal(t, 4, f.LineCount())
	assert.Equal(t, "cde", f.LineText(2))
	assert.Equal(t, "f", f.LineText(4))
	assert.Equal(t, "", f.LineText(9))
}

func TestSnippet_CollapsesWhitespace(t *testing.T) {
	content := "<div>\n    {{ x }}\n\t</div>"
	got := source.Snippet(content, 10, 17)
	assert.Equal(t, "<div> {{ x }} </div>", got)
}

func TestSnippet_RespectsRuneBoundaries(t *testing.T) {
	content := strings.Repeat("\u00e9", 60) + "{{ x }}"
	got := source.Snippet(content, 120, 127)
	assert.True(t, strings.HasSuffix(got, "{{ x }}"))
	assert.True(t, strings.HasPrefix(got, "\u00e9"))
}

func TestBlank_PreservesOffsetsAndNewlines(t *testing.T) {
	content := "a{% raw %}\nxx{% endraw %}b"
	re := regexp.MustCompile(`(?s)\{% raw %\}.*?\{% endraw %\}`)
	out := source.Blank(content, source.Regions(re, content)...)

	assert.Len(t, out, len(content))
	assert.Equal(t, byte('a'), out[0])
	assert.Equal(t, byte('b'), out[len(out)-1])
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.NotContains(t, out, "raw")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", source.Truncate("abcdef", 3))
	assert.Equal(t, "ab", source.Truncate("ab", 3))
	assert.Equal(t, "", source.Truncate("\u00e9", 1))
}

func TestInAny(t *testing.T) {
	regions := []source.Region{{Start: 2, End: 4}, {Start: 10, End: 12}}
	assert.True(t, source.InAny(regions, 3))
	assert.False(t, source.InAny(regions, 4))
	assert.True(t, source.InAny(regions, 10))
}

func TestFile_Issue(t *testing.T) {
	f := source.New("sections/a.liquid", "<p>\n  {{ x | bad }}\n</p>")
	issue := f.Issue(6, 19, "unknown_filter", domain.SeverityCritical, "msg", "fix")

	assert.Equal(t, "sections/a.liquid", issue.FilePath)
	assert.Equal(t, 2, issue.Line)
	assert.Equal(t, 3, issue.Column)
	assert.Equal(t, "{{ x | bad }}", issue.Match)
	assert.Equal(t, "<p> {{ x | bad }} </p>", issue.Context)

	atLine := f.IssueAtLine(1, "missing_schema", domain.SeverityError, "msg", "fix")
	assert.Equal(t, "<p>", atLine.Context)
	assert.Empty(t, atLine.Match)
}
