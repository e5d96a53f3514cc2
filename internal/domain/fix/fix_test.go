package fix_test

import (
	"testing"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain/fix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Rules(t *testing.T) {
	tests := []struct {
		name string
		path string
		in   string
		want string
		rule string
		n    int
	}{
		{"doc tag", "snippets/card.liquid",
			"{% doc %}Renders a card{% enddoc %}",
			"{% comment %}Renders a card{% endcomment %}", "doc_to_comment", 2},
		{"doc tag whitespace control", "snippets/card.liquid",
			"{%- doc -%}x{%- enddoc -%}",
			"{%- comment -%}x{%- endcomment -%}", "doc_to_comment", 2},
		{"structured data", "snippets/seo.liquid",
			"{{ product | structured_data }}",
			"{{ product | json }}", "structured_data_to_json", 1},
		{"image tag", "sections/hero.liquid",
			"{{ section.settings.image | image_tag }}",
			"{{ section.settings.image | image_url }}", "image_tag_to_image_url", 1},
		{"collections loop", "sections/list.liquid",
			"{% for c in collections %}{{ c.title }}{% endfor %}",
			"{% for c in collections limit: 50 %}{{ c.title }}{% endfor %}", "collections_limit", 1},
		{"entity in output", "snippets/a.liquid",
			"{{ 'Tom &amp; Jerry' | upcase }}",
			"{{ 'Tom & Jerry' | upcase }}", "decode_entities", 1},
		{"nested entity decodes over passes", "snippets/a.liquid",
			"{{ '&amp;lt;' }}",
			"{{ '<' }}", "decode_entities", 2},
		{"curly quotes", "snippets/a.liquid",
			"{{ \u201chi\u201d | upcase }}",
			"{{ \"hi\" | upcase }}", "straighten_quotes", 1},
		{"unescaped block setting", "blocks/heading.liquid",
			"<h2>{{ block.settings.heading }}</h2>",
			"<h2>{{ block.settings.heading | escape }}</h2>", "escape_output", 1},
		{"unescaped whitespace control", "sections/a.liquid",
			"<h2>{{- section.settings.title -}}</h2>",
			"<h2>{{- section.settings.title | escape -}}</h2>", "escape_output", 1},
		{"calc in css", "assets/base.css",
			".a { width: calc(1px \u2212 2px); }",
			".a { width: calc(1px - 2px); }", "calc_operators", 1},
		{"bom", "config/settings_data.json",
			"\ufeff{\"a\": 1}",
			"{\"a\": 1}", "remove_bom", 1},
		{"zero width", "locales/en.default.json",
			"{\"a\": \"x\u200b\u2060\"}",
			"{\"a\": \"x\"}", "remove_invisible", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fix.Apply(tt.path, tt.in)
			assert.Equal(t, tt.want, res.Content)
			assert.True(t, res.Changed)
			assert.Equal(t, tt.n, res.Applied[tt.rule])
			assert.Equal(t, []string{tt.rule}, res.RuleNames())
		})
	}
}

func TestApply_LeavesSafeContentAlone(t *testing.T) {
	inputs := map[string]string{
		"snippets/image.liquid":   "{{ img | image_url: width: 400 | image_tag }}",
		"sections/list.liquid":    "{% for c in collections limit: 10 %}{% endfor %}",
		"snippets/html.liquid":    "<p>Tom &amp; Jerry</p>",
		"snippets/escaped.liquid": "<h2>{{ block.settings.heading | escape }}</h2>",
		"snippets/shop.liquid":    "<p>{{ shop.name }}</p>",
	}
	for path, in := range inputs {
		res := fix.Apply(path, in)
		assert.False(t, res.Changed, path)
		assert.Equal(t, in, res.Content, path)
		assert.Empty(t, res.Applied, path)
	}
}

func TestApply_RawIsUntouched(t *testing.T) {
	raw := "{% raw %}{% doc %}{{ block.settings.heading }} {{ 'a &amp; b' }}\u200b{% enddoc %}{% endraw %}"
	res := fix.Apply("snippets/example.liquid", raw)
	assert.False(t, res.Changed)
	assert.Equal(t, raw, res.Content)

	mixed := "{% raw %}{{ 'a &amp; b' }}{% endraw %}\n{{ 'a &amp; b' }}"
	res = fix.Apply("snippets/example.liquid", mixed)
	assert.Equal(t, "{% raw %}{{ 'a &amp; b' }}{% endraw %}\n{{ 'a & b' }}", res.Content)
	assert.Equal(t, 1, res.Applied["decode_entities"])
}

func TestApply_ScopeByFileType(t *testing.T) {
	content := "{% doc %}x{% enddoc %}"
	assert.False(t, fix.Apply("config/settings_schema.json", content).Changed)
	assert.False(t, fix.Apply("assets/base.css", content).Changed)
	assert.True(t, fix.Apply("snippets/a.liquid", content).Changed)
}

func TestApply_Idempotent(t *testing.T) {
	content := "\ufeff{% doc %}Hero{% enddoc %}\n" +
		"<h2>{{ section.settings.title }}</h2>\n" +
		"<p>{{ block.settings.caption | upcase }}</p>\n" +
		"{{ product | structured_data }}\n" +
		"{% for c in collections %}{{ c.title }}{% endfor %}\n" +
		"{{ '&amp;amp;' }}\u200b\n" +
		"<style>.a { width: calc(100% \u2212 1px); }</style>\n" +
		"{% raw %}{{ block.settings.heading }}{% endraw %}\n"

	once := fix.Apply("sections/hero.liquid", content)
	require.True(t, once.Changed)
	twice := fix.Apply("sections/hero.liquid", once.Content)
	assert.False(t, twice.Changed)
	assert.Equal(t, once.Content, twice.Content)
	assert.Empty(t, twice.Applied)

	assert.Contains(t, once.Content, "{{ section.settings.title | escape }}")
	assert.Contains(t, once.Content, "{{ block.settings.caption | upcase | escape }}")
	assert.Contains(t, once.Content, "{% raw %}{{ block.settings.heading }}{% endraw %}")
	assert.NotContains(t, once.Content, "\u200b")
}

func TestScopeOf(t *testing.T) {
	tests := []struct {
		path string
		want fix.Scope
	}{
		{"snippets/a.liquid", fix.ScopeLiquid},
		{"assets/base.css", fix.ScopeCSS},
		{"assets/theme.css.liquid", fix.ScopeLiquid | fix.ScopeCSS},
		{"templates/index.json", fix.ScopeJSON},
		{"assets/app.js", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fix.ScopeOf(tt.path), tt.path)
	}
}

func TestRules_Named(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range fix.Rules {
		assert.NotEmpty(t, r.Description, r.Name)
		assert.NotNil(t, r.Apply, r.Name)
		assert.False(t, seen[r.Name], "duplicate rule %s", r.Name)
		seen[r.Name] = true
	}
}
