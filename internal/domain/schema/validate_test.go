package schema_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/classify"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/schema"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(path, content string) schema.Result {
	return schema.Validate(source.New(path, content), classify.Classify(path, content))
}

func withSchema(body, json string) string {
	return body + "\n{% schema %}\n" + json + "\n{% endschema %}\n"
}

func ofType(issues []domain.Issue, issueType string) []domain.Issue {
	var out []domain.Issue
	for _, i := range issues {
		if i.Type == issueType {
			out = append(out, i)
		}
	}
	return out
}

func ofSeverity(issues []domain.Issue, sev domain.Severity) []domain.Issue {
	var out []domain.Issue
	for _, i := range issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

func TestValidate_SectionWithoutSchema(t *testing.T) {
	r := validate("sections/hero.liquid", "<h1>Hello</h1>")

	require.Len(t, r.Issues, 1)
	assert.Equal(t, schema.TypeMissingSchema, r.Issues[0].Type)
	assert.Equal(t, domain.SeverityError, r.Issues[0].Severity)
	assert.Equal(t, "Section requires schema block", r.Issues[0].Message)
}

func TestValidate_SnippetWithoutSchema(t *testing.T) {
	r := validate("snippets/card.liquid", "<div>{{ product.title | escape }}</div>")
	assert.Empty(t, r.Issues)
}

func TestValidate_SnippetWithSchemaWarns(t *testing.T) {
	r := validate("snippets/card.liquid", withSchema("", `{"name": "Card"}`))
	require.Len(t, r.Issues, 1)
	assert.Equal(t, schema.TypeUnexpectedSchema, r.Issues[0].Type)
	assert.Equal(t, domain.SeverityWarning, r.Issues[0].Severity)
}

func TestValidate_CleanSchemaHasNoIssues(t *testing.T) {
	content := withSchema(`<h2>{{ section.settings.heading | escape }}</h2>
<span>{{ section.settings.count }}</span>
{% for block in section.blocks %}{{ block.settings.text }}{% endfor %}`, `{
  "name": "Hero",
  "settings": [
    {"id": "heading", "type": "text", "label": "Heading"},
    {"type": "header", "content": "Layout"},
    {"id": "count", "type": "range", "min": 1, "max": 100, "step": 1, "label": "Count", "default": 4}
  ],
  "blocks": [
    {"type": "item", "name": "Item", "settings": [{"id": "text", "type": "richtext", "label": "Text"}]}
  ],
  "presets": [
    {"name": "Hero", "settings": {"heading": "Hi", "count": 3}, "blocks": [{"type": "item", "settings": {"text": "<p>Hi</p>"}}]}
  ]
}`)
	r := validate("sections/hero.liquid", content)

	assert.Empty(t, r.Issues)
	require.NotNil(t, r.Document)
	assert.Equal(t, "Hero", schema.DisplayName(r.Document.Name, ""))
}

func TestValidate_AppBlockWithLimit(t *testing.T) {
	r := validate("sections/apps-area.liquid", withSchema("", `{"blocks":[{"type":"@app","limit":5}]}`))

	critical := ofSeverity(r.Issues, domain.SeverityCritical)
	require.Len(t, critical, 1)
	assert.Equal(t, schema.TypeAppBlock, critical[0].Type)
	assert.Contains(t, critical[0].Message, "cannot have 'limit' parameter")
}

func TestValidate_AppBlockWithSettingsWarns(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("", `{"name":"A","blocks":[{"type":"@app","settings":[{"id":"x","type":"text","label":"X"}]}]}`))
	app := ofType(r.Issues, schema.TypeAppBlock)
	require.Len(t, app, 1)
	assert.Equal(t, domain.SeverityWarning, app[0].Severity)
}

func TestValidate_DuplicateSettingIDs(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("", `{"settings":[{"id":"heading"},{"id":"heading"}]}`))

	dups := ofType(r.Issues, schema.TypeDuplicateSettingID)
	require.Len(t, dups, 1)
	assert.Equal(t, domain.SeverityError, dups[0].Severity)
	assert.Contains(t, strings.ToLower(dups[0].Message), "duplicate setting id: heading")
	assert.Equal(t, 3, dups[0].Line)
}

func TestValidate_DuplicateAcrossBlocks(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("", `{"name":"A","settings":[{"id":"title","type":"text","label":"T"}],
"blocks":[{"type":"b","name":"B","settings":[{"id":"title","type":"text","label":"T"}]}]}`))
	assert.Len(t, ofType(r.Issues, schema.TypeDuplicateSettingID), 1)
}

func TestValidate_RangeStepArithmetic(t *testing.T) {
	tests := []struct {
		name      string
		setting   string
		wantIssue bool
	}{
		{"999 steps", `{"id":"count","type":"range","label":"C","min":1,"max":1000,"step":1}`, true},
		{"99 steps", `{"id":"count","type":"range","label":"C","min":1,"max":100,"step":1}`, false},
		{"exactly 101", `{"id":"count","type":"range","label":"C","min":0,"max":101,"step":1}`, false},
		{"coarse step", `{"id":"count","type":"range","label":"C","min":0,"max":1000,"step":10}`, false},
		{"defaults", `{"id":"count","type":"range","label":"C"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validate("sections/a.liquid", withSchema("{{ section.settings.count }}", `{"name":"A","settings":[`+tt.setting+`]}`))
			got := ofType(r.Issues, schema.TypeInvalidRange)
			if !tt.wantIssue {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, domain.SeverityError, got[0].Severity)
			assert.Contains(t, got[0].Message, "Range setting 'count' violates (max-min)/step <= 101")
			assert.Contains(t, got[0].Message, "999.0")
			assert.Equal(t, "Current: (1000-1)/1 = 999.0", got[0].Suggestion)
		})
	}
}

func TestValidate_RangeDefaultOutsideBounds(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("{{ section.settings.n }}",
		`{"name":"A","settings":[{"id":"n","type":"range","label":"N","min":0,"max":10,"default":20}]}`))
	got := ofType(r.Issues, schema.TypeInvalidRange)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "outside [0, 10]")
}

func TestValidate_InvalidJSON(t *testing.T) {
	content := "<p>x</p>\n{% schema %}\n{\n  \"name\": \"x\",\n}\n{% endschema %}\n"
	r := validate("sections/a.liquid", content)

	require.Len(t, r.Issues, 1)
	issue := r.Issues[0]
	assert.Equal(t, schema.TypeInvalidSchema, issue.Type)
	assert.Equal(t, domain.SeverityCritical, issue.Severity)
	assert.Contains(t, issue.Message, "Invalid JSON in schema")
	assert.Contains(t, issue.Message, "line 4")
	assert.Equal(t, 5, issue.Line)
	assert.Nil(t, r.Document)
}

func TestValidate_NonObjectSchema(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("", `[1, 2]`))
	require.Len(t, r.Issues, 1)
	assert.Equal(t, "Schema must be a JSON object", r.Issues[0].Message)
}

func TestValidate_StructureViolation(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("",
		`{"name":"A","settings":[{"id":"a","type":"range","label":"A","min":"0"}]}`))
	got := ofType(r.Issues, schema.TypeSchemaStructure)
	require.NotEmpty(t, got)
	assert.Contains(t, got[0].Message, "settings.0.min")
	require.NotNil(t, r.Document)
	assert.Equal(t, "a", r.Document.Settings[0].ID)
}

func TestValidate_StructureViolationKeepsSemanticChecks(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("{{ section.settings.count }}{{ section.settings.missing | escape }}",
		`{"name":"A","settings":[
  {"id":"count","type":"range","label":"C","min":1,"max":1000,"step":1,"info":1},
  {"id":"count","type":"text","label":"Again"}
],
"blocks":[{"type":"@app","limit":"5"}]}`))

	assert.Len(t, ofType(r.Issues, schema.TypeSchemaStructure), 2)
	assert.Len(t, ofType(r.Issues, schema.TypeDuplicateSettingID), 1)

	ranges := ofType(r.Issues, schema.TypeInvalidRange)
	require.Len(t, ranges, 1)
	assert.Contains(t, ranges[0].Message, "999.0")

	apps := ofType(r.Issues, schema.TypeAppBlock)
	require.Len(t, apps, 1)
	assert.Equal(t, domain.SeverityCritical, apps[0].Severity)

	undefined := ofType(r.Issues, schema.TypeUndefinedSetting)
	require.Len(t, undefined, 1)
	assert.Contains(t, undefined[0].Message, "'missing'")
}

func TestValidate_MistypedFieldSkipsSettingCrossReference(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("{{ section.settings.title }}",
		`{"name":"A","settings":[{"id":"title","type":"text","label":"T"},{"id":7,"type":"text","label":"N"}]}`))

	assert.NotEmpty(t, ofType(r.Issues, schema.TypeSchemaStructure))
	assert.Empty(t, ofType(r.Issues, schema.TypeUndefinedSetting))
	assert.Empty(t, ofType(r.Issues, schema.TypeUnusedSetting))
}

func TestValidate_MultipleSchemaBlocks(t *testing.T) {
	content := withSchema("", `{"name":"A"}`) + withSchema("", `{"name":"B"}`)
	r := validate("sections/a.liquid", content)
	got := ofType(r.Issues, schema.TypeMultipleSchemas)
	require.Len(t, got, 1)
	assert.Equal(t, domain.SeverityCritical, got[0].Severity)
}

func TestValidate_SchemaInsideConditional(t *testing.T) {
	content := "{% if section.settings.x %}\n{% schema %}{\"name\":\"A\"}{% endschema %}\n{% endif %}"
	r := validate("sections/a.liquid", content)
	got := ofType(r.Issues, schema.TypeSchemaInConditional)
	require.Len(t, got, 1)
	assert.Equal(t, domain.SeverityCritical, got[0].Severity)
	assert.Contains(t, got[0].Message, "{% if %}")
}

func TestValidate_CommentedSchemaIsIgnored(t *testing.T) {
	content := "{% comment %}{% schema %}{}{% endschema %}{% endcomment %}" + withSchema("", `{"name":"A"}`)
	r := validate("sections/a.liquid", content)
	assert.Empty(t, r.Issues)
}

func TestValidate_RequiredFields(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("{{ section.settings.a }}", `{
  "settings": [
    {"id": "a", "type": "text"},
    {"type": "header"},
    {"label": "No id"}
  ],
  "blocks": [{"name": "Typeless"}]
}`))
	fields := ofType(r.Issues, schema.TypeMissingField)
	var messages []string
	for _, i := range fields {
		messages = append(messages, i.Severity.String()+": "+i.Message)
	}
	assert.Contains(t, messages, "error: Schema missing required field: name")
	assert.Contains(t, messages, "warning: Section setting 'a' missing label")
	assert.Contains(t, messages, "warning: Section header setting 2 missing content")
	assert.Contains(t, messages, "error: Section setting 3 missing required field: id")
	assert.Contains(t, messages, "error: Section setting 3 missing required field: type")
	assert.Contains(t, messages, "error: Block 1 missing required field: type")
}

func TestValidate_Presets(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("{{ section.settings.rt }}{{ section.settings.r }}{{ section.settings.s }}", `{
  "name": "A",
  "settings": [
    {"id": "rt", "type": "richtext", "label": "RT"},
    {"id": "r", "type": "range", "label": "R", "min": 0, "max": 10},
    {"id": "s", "type": "select", "label": "S", "options": [{"value": "a", "label": "A"}, {"value": "b", "label": "B"}]}
  ],
  "presets": [{"name": "Default", "settings": {"rt": "plain", "r": 50, "s": "c", "zzz": 1}}]
}`))
	got := ofType(r.Issues, schema.TypeInvalidPreset)
	require.Len(t, got, 4)
	for _, i := range got {
		assert.Equal(t, domain.SeverityError, i.Severity)
		assert.Contains(t, i.Message, "Preset 'Default'")
	}
}

func TestValidate_PresetRichtextAccepted(t *testing.T) {
	for _, value := range []string{"<p>Hello</p>", "<br/>", `<h2 class=\"x\">Hi</h2>`} {
		r := validate("sections/a.liquid", withSchema("{{ section.settings.rt }}",
			`{"name":"A","settings":[{"id":"rt","type":"richtext","label":"RT"}],"presets":[{"name":"P","settings":{"rt":"`+value+`"}}]}`))
		assert.Empty(t, ofType(r.Issues, schema.TypeInvalidPreset), value)
	}
}

func TestValidate_WrapperSection(t *testing.T) {
	r := validate("sections/_blocks.liquid", withSchema("",
		`{"name":"Blocks","blocks":[{"type":"@app"}],"enabled_on":{"templates":["index"]}}`))
	got := ofType(r.Issues, schema.TypeWrapperSection)
	require.Len(t, got, 3)
	for _, i := range got {
		assert.Equal(t, domain.SeverityCritical, i.Severity)
	}
	assert.Empty(t, ofType(r.Issues, schema.TypeTemplateRestriction))
}

func TestValidate_WrapperSectionComplete(t *testing.T) {
	r := validate("sections/apps.liquid", withSchema("",
		`{"name":"Apps","blocks":[{"type":"@app"}],"presets":[{"name":"Apps"}]}`))
	assert.Empty(t, r.Issues)
}

func TestValidate_TemplateRestrictions(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("",
		`{"name":"A","enabled_on":{"templates":["index","bogus","customers/account"]},"disabled_on":{"templates":["index"]}}`))
	got := ofType(r.Issues, schema.TypeTemplateRestriction)
	require.Len(t, got, 3)

	bySeverity := map[domain.Severity][]string{}
	for _, i := range got {
		bySeverity[i.Severity] = append(bySeverity[i.Severity], i.Message)
	}
	assert.ElementsMatch(t, []string{
		"Unknown template 'bogus' in enabled_on",
		"Conflicting restriction: template 'index' is both enabled and disabled",
	}, bySeverity[domain.SeverityError])
	assert.Equal(t, []string{"Regular sections should not use enabled_on/disabled_on"}, bySeverity[domain.SeverityWarning])
}

func TestValidate_ThemeBlockRestrictionIsNotWarned(t *testing.T) {
	r := validate("blocks/a.liquid", withSchema("", `{"name":"A","enabled_on":{"templates":["product"]}}`))
	assert.Empty(t, r.Issues)
}

func TestValidate_SettingCrossReference(t *testing.T) {
	content := withSchema(`{{ section.settings.missing }}
{{ section.settings.missing }}
{{ section.settings['title'] }}
{% comment %}{{ section.settings.commented }}{% endcomment %}`,
		`{"name":"A","settings":[{"id":"title","type":"text","label":"T"},{"id":"unused","type":"text","label":"U"}]}`)
	r := validate("sections/a.liquid", content)

	undefined := ofType(r.Issues, schema.TypeUndefinedSetting)
	require.Len(t, undefined, 1)
	assert.Equal(t, "Setting 'missing' used but not defined in schema", undefined[0].Message)
	assert.Equal(t, "Add setting to schema or check spelling", undefined[0].Suggestion)
	assert.Equal(t, 1, undefined[0].Line)

	unused := ofType(r.Issues, schema.TypeUnusedSetting)
	require.Len(t, unused, 1)
	assert.Equal(t, domain.SeverityWarning, unused[0].Severity)
	assert.Contains(t, unused[0].Message, "'unused'")
}

func TestValidate_OpaqueBlocksSkipBlockSettingCheck(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("{{ block.settings.anything }}",
		`{"name":"A","blocks":[{"type":"@theme"}],"presets":[{"name":"A"}]}`))
	assert.Empty(t, ofType(r.Issues, schema.TypeUndefinedSetting))
}

func TestValidate_CamelCaseSettingID(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("{{ section.settings.showVendor }}",
		`{"name":"A","settings":[{"id":"showVendor","type":"checkbox","label":"S"}]}`))
	got := ofType(r.Issues, schema.TypeSettingIDStyle)
	require.Len(t, got, 1)
	assert.Equal(t, domain.SeverityInfo, got[0].Severity)
	assert.Equal(t, "Rename to 'show_vendor'", got[0].Suggestion)
}

func TestValidate_BlockIDs(t *testing.T) {
	r := validate("sections/a.liquid", withSchema("",
		`{"name":"A","blocks":[{"type":"slide","name":"Slide","id":"hero-slide"},{"type":"text","name":"Text"}]}`))
	require.Len(t, r.BlockIDs, 1)
	assert.Equal(t, "hero-slide", r.BlockIDs[0].ID)
	assert.Equal(t, 3, r.BlockIDs[0].Line)
}

func TestRegistry_FlagsLaterDefinitions(t *testing.T) {
	reg := schema.NewRegistry()

	assert.Empty(t, reg.Register("sections/a.liquid", []domain.BlockIDEntry{{ID: "hero", Line: 3}}))
	issues := reg.Register("sections/b.liquid", []domain.BlockIDEntry{{ID: "hero", Line: 7}, {ID: "other", Line: 8}})

	require.Len(t, issues, 1)
	assert.Equal(t, schema.TypeDuplicateBlockID, issues[0].Type)
	assert.Equal(t, "sections/b.liquid", issues[0].FilePath)
	assert.Equal(t, 7, issues[0].Line)
	assert.Contains(t, issues[0].Message, "sections/a.liquid:3")
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	reg := schema.NewRegistry()
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := len(reg.Register("sections/x.liquid", []domain.BlockIDEntry{{ID: "shared", Line: 1}}))
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 49, total)
}

func TestValidateJSON(t *testing.T) {
	valid := "/*\n * generated by Shopify\n */\n{\"sections\": {}}"
	assert.Empty(t, schema.ValidateJSON(source.New("templates/index.json", valid)))
	assert.Empty(t, schema.ValidateJSON(source.New("config/settings_data.json", "\ufeff{}")))

	issues := schema.ValidateJSON(source.New("templates/index.json", "{\n  \"a\": \n}"))
	require.Len(t, issues, 1)
	assert.Equal(t, schema.TypeInvalidJSON, issues[0].Type)
	assert.Equal(t, domain.SeverityCritical, issues[0].Severity)
	assert.Equal(t, 3, issues[0].Line)
}
