package catalog_test

import (
	"strings"
	"testing"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFilter_EachNameInExactlyOneTable(t *testing.T) {
	for name := range catalog.OfficialFilters {
		assert.Equal(t, catalog.FilterOfficial, catalog.ClassifyFilter(name), name)
		_, hallucinated := catalog.HallucinatedFilters[name]
		_, deprecated := catalog.DeprecatedFilters[name]
		assert.False(t, hallucinated, "%s is official and hallucinated", name)
		assert.False(t, deprecated, "%s is official and deprecated", name)
	}
	for name := range catalog.HallucinatedFilters {
		assert.Equal(t, catalog.FilterHallucinated, catalog.ClassifyFilter(name), name)
	}
	for name := range catalog.DeprecatedFilters {
		assert.Equal(t, catalog.FilterDeprecated, catalog.ClassifyFilter(name), name)
	}
	assert.Equal(t, catalog.FilterUnknown, catalog.ClassifyFilter("structured_data"))
}

func TestHallucinatedFilters_SuggestionsAreTailored(t *testing.T) {
	for name, suggestion := range catalog.HallucinatedFilters {
		assert.True(t, strings.HasPrefix(suggestion, "DOES NOT EXIST"), name)
	}
}

func TestActive_SkipsDisabledUnlessExperimental(t *testing.T) {
	base := catalog.Active(catalog.ComplexityRules, false)
	all := catalog.Active(catalog.ComplexityRules, true)

	assert.Len(t, all, len(catalog.ComplexityRules))
	assert.Len(t, base, len(catalog.ComplexityRules)-2)
	for _, r := range base {
		assert.NotEqual(t, catalog.RuleNestedIf, r.Name)
		assert.NotEqual(t, catalog.RuleNestedFor, r.Name)
	}
}

func TestLookup(t *testing.T) {
	r, ok := catalog.Lookup(catalog.RuleAllProductsLoop)
	assert.True(t, ok)
	assert.Contains(t, r.Message, "collections.all.products")

	_, ok = catalog.Lookup("nope")
	assert.False(t, ok)
	assert.Panics(t, func() { catalog.MustLookup("nope") })
}

func TestTagSets_AreDisjoint(t *testing.T) {
	for name := range catalog.PairedTags {
		assert.False(t, catalog.SelfClosingTags.Has(name), name)
	}
	assert.False(t, catalog.SelfClosingTags.Has("elseif"))
	_, invalid := catalog.InvalidTags["elseif"]
	assert.True(t, invalid)
}

func TestLogicTag_HonoursWhitespaceControl(t *testing.T) {
	m := catalog.LogicTag.FindStringSubmatch("{%- if x -%}")
	assert.Equal(t, "if", m[1])
}

func TestDelimiters_SkipQuotedLiterals(t *testing.T) {
	tag := `{% if product.title contains '%' %}`
	m := catalog.LogicTag.FindStringSubmatch(tag + "<b>sale</b>{% endif %}")
	require.NotNil(t, m)
	assert.Equal(t, tag, m[0])
	assert.Equal(t, "if", m[1])

	assert.Equal(t, []string{tag, `{{ "50%" | append: '}' }}`, "{% endif %}"},
		catalog.LiquidBlock.FindAllString(tag+`{{ "50%" | append: '}' }}{% endif %}`, -1))
	assert.Equal(t, []string{"{{ x }}", "{% if a %}"},
		catalog.LiquidBlock.FindAllString("{{ x }} it's {% if a %}", -1))
}

func TestSafeValueNames(t *testing.T) {
	assert.True(t, catalog.SafeValueNames.MatchString("section.settings.padding_top"))
	assert.True(t, catalog.SafeValueNames.MatchString("block.settings.text_color"))
	assert.False(t, catalog.SafeValueNames.MatchString("block.settings.heading"))
	assert.True(t, catalog.RichtextSuffix.MatchString("section.settings.description"))
}

func TestHardcodedRoute(t *testing.T) {
	m := catalog.HardcodedRoute.FindStringSubmatch(`<a href="/cart">`)
	assert.Equal(t, "/cart", m[1])
	assert.Equal(t, "routes.cart_url", catalog.HardcodedRoutes[m[1]])
	assert.False(t, catalog.HardcodedRoute.MatchString(`<a href="/cartography">`))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, catalog.SortedKeys(map[string]string{"b": "", "a": ""}))
	assert.Equal(t, []string{"a", "b"}, catalog.Set{"b": {}, "a": {}}.Sorted())
}

func TestList(t *testing.T) {
	l := catalog.List()

	assert.Contains(t, l.Filters.Official, "escape")
	assert.Contains(t, l.Filters.Deprecated, "img_url")
	assert.Contains(t, l.InvalidTags, "elseif")
	assert.Contains(t, l.SuspiciousObjects, "products")

	groups := map[string]int{}
	disabled := 0
	for _, r := range l.Rules {
		groups[r.Group]++
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Message, r.Name)
		if !r.Enabled {
			disabled++
		}
	}
	assert.Equal(t, len(catalog.ComplexityRules), groups["complexity"])
	assert.Equal(t, len(catalog.EncodingRules)+1, groups["encoding"])
	assert.Equal(t, len(catalog.CSSRules)+len(catalog.CSSMessages), groups["css"])
	assert.Equal(t, 2, disabled)
}
