package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/classify"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

// Issue types produced by schema validation.
const (
	TypeMissingSchema       = "missing_schema"
	TypeUnexpectedSchema    = "unexpected_schema"
	TypeMultipleSchemas     = "multiple_schemas"
	TypeSchemaInConditional = "schema_in_conditional"
	TypeInvalidSchema       = "invalid_schema"
	TypeSchemaStructure     = "schema_structure"
	TypeMissingField        = "missing_schema_field"
	TypeDuplicateSettingID  = "duplicate_setting_id"
	TypeInvalidRange        = "invalid_range"
	TypeInvalidPreset       = "invalid_preset"
	TypeAppBlock            = "app_block"
	TypeWrapperSection      = "wrapper_section"
	TypeTemplateRestriction = "template_restriction"
	TypeUndefinedSetting    = "undefined_setting"
	TypeUnusedSetting       = "unused_setting"
	TypeSettingIDStyle      = "setting_id_style"
)

// MaxRangeSteps is Shopify's limit on discrete steps in a range setting.
const MaxRangeSteps = 101

// AllowedTemplates may appear in enabled_on/disabled_on and templates.
var AllowedTemplates = map[string]bool{
	"*": true, "index": true, "product": true, "collection": true, "blog": true,
	"article": true, "page": true, "password": true, "gift_card": true,
	"cart": true, "search": true, "404": true,
}

// wrapperBlockTypes lists the block types each wrapper section must accept.
var wrapperBlockTypes = map[string][]string{
	"apps.liquid":    {"@app"},
	"_blocks.liquid": {"@app", "@theme"},
}

var (
	richtextPreset = regexp.MustCompile(`(?s)^<[a-zA-Z][^>]*>.*</[a-zA-Z][^>]*>$|^<[a-zA-Z][^>]*/>$`)
	settingUse     = regexp.MustCompile(`\b(section|block)\.settings\.([a-zA-Z_]\w*)`)
	settingIndex   = regexp.MustCompile(`\b(section|block)\.settings\[\s*['"]([\w-]+)['"]\s*\]`)
)

// Result is what validating one file's schema yields.
type Result struct {
	Issues   []domain.Issue
	BlockIDs []domain.BlockIDEntry
	// Document is nil when the file has no schema or it is not a JSON
	// object. Fields of the wrong type are left zero.
	Document *Document
}

type validator struct {
	f   *source.File
	c   domain.Classification
	ex  Extraction
	doc *Document
	out []domain.Issue
	// partial is set when mistyped fields were left out of doc.
	partial bool
}

// Validate checks the schema block of a Liquid file against its
// classification. It never fails: every problem is an issue.
func Validate(f *source.File, c domain.Classification) Result {
	v := &validator{f: f, c: c, ex: Extract(f.Content)}
	req := classify.SchemaRequirement(c)

	// 1. Presence against the file type's requirement
	if !v.ex.Found {
		if req == domain.SchemaRequired {
			v.add(f.IssueAtLine(1, TypeMissingSchema, domain.SeverityError,
				fmt.Sprintf("%s requires schema block", typeNoun(c.Type)),
				"Add a {% schema %} block with a name and settings"))
		}
		return v.result()
	}
	if req == domain.SchemaForbidden {
		v.add(f.Issue(v.ex.Start, v.ex.End, TypeUnexpectedSchema, domain.SeverityWarning,
			fmt.Sprintf("Schema block has no effect in %s files", strings.ReplaceAll(string(c.Type), "_", " ")),
			"Move the settings to the section that renders this file"))
	}

	// 2. Placement: one block, never inside a conditional
	for _, extra := range v.ex.Extra {
		v.add(f.Issue(extra.Start, extra.End, TypeMultipleSchemas, domain.SeverityCritical,
			"Multiple schema blocks in one file", "Merge into a single {% schema %} block"))
	}
	if v.ex.Enclosing != "" {
		v.add(f.Issue(v.ex.Start, v.ex.End, TypeSchemaInConditional, domain.SeverityCritical,
			fmt.Sprintf("Schema block cannot be nested inside {%% %s %%}", v.ex.Enclosing),
			"Move {% schema %} to the top level of the file"))
	}

	// 3. Parse; schema-dependent checks stop here only on malformed JSON
	if !v.parse() {
		return v.result()
	}

	// 4. Document-level rules
	v.checkRequiredFields()
	v.checkDuplicateIDs()
	v.checkRanges()
	v.checkAppBlocks()
	v.checkWrapper()
	v.checkTemplates()
	v.checkIDStyle()

	// 5. Checks that read the settings as a whole would flag whatever a
	// mistyped field dropped, so they need a complete document
	if !v.partial {
		v.checkPresets()
		v.checkSettingUsage()
	}

	return v.result()
}

func (v *validator) add(issue domain.Issue) { v.out = append(v.out, issue) }

func (v *validator) result() Result {
	r := Result{Issues: v.out, Document: v.doc}
	if v.doc == nil {
		return r
	}
	for _, b := range v.doc.Blocks {
		if b.ID == "" {
			continue
		}
		r.BlockIDs = append(r.BlockIDs, domain.BlockIDEntry{ID: b.ID, Line: v.f.Line(v.locate("id", b.ID, 0))})
	}
	return r
}

func (v *validator) parse() bool {
	raw := []byte(v.ex.Body)
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		v.add(v.jsonError(err))
		return false
	}
	if _, ok := generic.(map[string]any); !ok {
		v.add(v.f.Issue(v.ex.Start, v.ex.End, TypeInvalidSchema, domain.SeverityCritical,
			"Schema must be a JSON object", "Wrap the schema in { }"))
		return false
	}

	// Structure violations are reported but do not stop the semantic checks.
	structural, err := CheckStructure(raw)
	if err != nil {
		v.add(v.f.Issue(v.ex.Start, v.ex.End, TypeSchemaStructure, domain.SeverityError,
			fmt.Sprintf("Schema structure could not be checked: %v", err), ""))
	}
	for _, se := range structural {
		v.add(v.f.Issue(v.ex.Start, v.ex.BodyStart, TypeSchemaStructure, domain.SeverityError,
			"Invalid schema structure at "+se.String(), "Match the Shopify section schema format"))
	}

	// Unmarshal skips fields of the wrong type and fills in the rest.
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			v.add(v.f.Issue(v.ex.Start, v.ex.BodyStart, TypeSchemaStructure, domain.SeverityError,
				fmt.Sprintf("Invalid schema structure: %v", err), "Match the Shopify section schema format"))
			return false
		}
		v.partial = true
		if len(structural) == 0 {
			v.add(v.f.Issue(v.ex.Start, v.ex.BodyStart, TypeSchemaStructure, domain.SeverityError,
				fmt.Sprintf("Invalid schema structure at %s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
				"Match the Shopify section schema format"))
		}
	}
	v.doc = &doc
	return true
}

func (v *validator) jsonError(err error) domain.Issue {
	body := source.New("", v.ex.Body)
	var syntax *json.SyntaxError
	offset := 0
	if errors.As(err, &syntax) {
		offset = max(int(syntax.Offset)-1, 0)
	}
	msg := fmt.Sprintf("Invalid JSON in schema: %v (line %d, column %d)", err, body.Line(offset), body.Column(offset))
	at := min(v.ex.BodyStart+offset, v.ex.BodyEnd)
	return v.f.Issue(at, min(at+1, v.ex.BodyEnd), TypeInvalidSchema, domain.SeverityCritical, msg,
		"Fix the JSON syntax: check commas, quotes and brackets")
}

// locate finds the nth occurrence of "key": "value" in the schema body and
// returns its file offset, falling back to the body start.
func (v *validator) locate(key, value string, nth int) int {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"` + regexp.QuoteMeta(value) + `"`)
	hits := re.FindAllStringIndex(v.ex.Body, nth+1)
	if len(hits) <= nth {
		return v.ex.BodyStart
	}
	return v.ex.BodyStart + hits[nth][0]
}

func (v *validator) issueAt(offset int, issueType string, sev domain.Severity, msg, suggestion string) {
	end := offset
	if line := v.f.LineText(v.f.Line(offset)); line != "" {
		end = offset + len(line) - (v.f.Column(offset) - 1)
	}
	v.add(v.f.Issue(offset, end, issueType, sev, msg, suggestion))
}

func (v *validator) checkRequiredFields() {
	if DisplayName(v.doc.Name, "") == "" {
		v.issueAt(v.ex.BodyStart, TypeMissingField, domain.SeverityError,
			"Schema missing required field: name", `Add "name" to the schema`)
	}
	check := func(settings []Setting, scope string) {
		for i, s := range settings {
			at := v.ex.BodyStart
			if s.ID != "" {
				at = v.locate("id", s.ID, 0)
			}
			if s.IsInformational() {
				if s.Content == nil {
					v.issueAt(at, TypeMissingField, domain.SeverityWarning,
						fmt.Sprintf("%s %s setting %d missing content", scope, s.Type, i+1),
						`Add "content" to the setting`)
				}
				continue
			}
			if s.ID == "" {
				v.issueAt(at, TypeMissingField, domain.SeverityError,
					fmt.Sprintf("%s setting %d missing required field: id", scope, i+1), `Add a unique "id"`)
			}
			if s.Type == "" {
				v.issueAt(at, TypeMissingField, domain.SeverityError,
					fmt.Sprintf("%s setting %s missing required field: type", scope, settingRef(s, i)), `Add "type"`)
			}
			if s.Label == nil {
				v.issueAt(at, TypeMissingField, domain.SeverityWarning,
					fmt.Sprintf("%s setting %s missing label", scope, settingRef(s, i)), `Add "label"`)
			}
		}
	}
	check(v.doc.Settings, "Section")
	for i, b := range v.doc.Blocks {
		if b.Type == "" {
			v.issueAt(v.ex.BodyStart, TypeMissingField, domain.SeverityError,
				fmt.Sprintf("Block %d missing required field: type", i+1), `Add "type" to the block`)
		} else if !strings.HasPrefix(b.Type, "@") && DisplayName(b.Name, "") == "" {
			v.issueAt(v.locate("type", b.Type, 0), TypeMissingField, domain.SeverityError,
				fmt.Sprintf("Block '%s' missing required field: name", b.Type), `Add "name" to the block`)
		}
		check(b.Settings, fmt.Sprintf("Block '%s'", b.Type))
	}
}

func settingRef(s Setting, i int) string {
	if s.ID != "" {
		return "'" + s.ID + "'"
	}
	return strconv.Itoa(i + 1)
}

func (v *validator) checkDuplicateIDs() {
	seen := make(map[string]int)
	for _, s := range v.doc.AllSettings() {
		if s.ID == "" {
			continue
		}
		n := seen[s.ID]
		seen[s.ID] = n + 1
		if n == 0 {
			continue
		}
		v.issueAt(v.locate("id", s.ID, n), TypeDuplicateSettingID, domain.SeverityError,
			fmt.Sprintf("Duplicate setting ID: %s", s.ID), "Give every setting a unique id")
	}
}

func (v *validator) checkRanges() {
	for _, s := range v.doc.AllSettings() {
		if s.Type != "range" {
			continue
		}
		lo, hi, step := s.RangeBounds()
		if step <= 0 {
			continue
		}
		at := v.locate("id", s.ID, 0)
		steps := (hi - lo) / step
		if steps > MaxRangeSteps {
			v.issueAt(at, TypeInvalidRange, domain.SeverityError,
				fmt.Sprintf("Range setting '%s' violates (max-min)/step <= %d (%.1f steps)", s.ID, MaxRangeSteps, steps),
				fmt.Sprintf("Current: (%s-%s)/%s = %.1f", num(hi), num(lo), num(step), steps))
		}
		if d, ok := s.Default.(float64); ok && (d < lo || d > hi) {
			v.issueAt(at, TypeInvalidRange, domain.SeverityError,
				fmt.Sprintf("Range setting '%s' default %s is outside [%s, %s]", s.ID, num(d), num(lo), num(hi)),
				"Set a default between min and max")
		}
	}
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func (v *validator) checkPresets() {
	sectionSettings := indexSettings(v.doc.Settings)
	blockSettings := make(map[string]map[string]Setting)
	for _, b := range v.doc.Blocks {
		blockSettings[b.Type] = indexSettings(b.Settings)
	}
	for i, p := range v.doc.Presets {
		name := DisplayName(p.Name, fmt.Sprintf("Preset %d", i+1))
		v.checkPresetValues(name, "", p.Settings, sectionSettings)
		for _, pb := range p.PresetBlocks() {
			defined, known := blockSettings[pb.Type]
			if !known {
				continue
			}
			v.checkPresetValues(name, pb.Type, pb.Settings, defined)
		}
	}
}

func indexSettings(settings []Setting) map[string]Setting {
	out := make(map[string]Setting, len(settings))
	for _, s := range settings {
		if s.ID != "" {
			out[s.ID] = s
		}
	}
	return out
}

func (v *validator) checkPresetValues(preset, blockType string, values map[string]any, defined map[string]Setting) {
	where := fmt.Sprintf("Preset '%s'", preset)
	if blockType != "" {
		where += fmt.Sprintf(" block '%s'", blockType)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, id := range keys {
		value := values[id]
		at := v.locate("name", preset, 0)
		s, ok := defined[id]
		if !ok {
			v.issueAt(at, TypeInvalidPreset, domain.SeverityError,
				fmt.Sprintf("%s uses undefined setting '%s'", where, id), "Remove the preset value or define the setting")
			continue
		}
		switch s.Type {
		case "richtext":
			str, isString := value.(string)
			if !isString || !richtextPreset.MatchString(strings.TrimSpace(str)) {
				v.issueAt(at, TypeInvalidPreset, domain.SeverityError,
					fmt.Sprintf("%s value for richtext setting '%s' must be wrapped in an HTML tag", where, id),
					"Wrap the text in <p>...</p>")
			}
		case "range":
			lo, hi, _ := s.RangeBounds()
			n, isNum := value.(float64)
			if !isNum || n < lo || n > hi {
				v.issueAt(at, TypeInvalidPreset, domain.SeverityError,
					fmt.Sprintf("%s value %v for range setting '%s' is outside [%s, %s]", where, value, id, num(lo), num(hi)),
					"Use a value between min and max")
			}
		case "select", "radio":
			if !hasOption(s.Options, value) {
				v.issueAt(at, TypeInvalidPreset, domain.SeverityError,
					fmt.Sprintf("%s value %v for %s setting '%s' is not one of its options", where, value, s.Type, id),
					"Use one of the declared option values")
			}
		}
	}
}

func hasOption(options []Option, value any) bool {
	for _, o := range options {
		if fmt.Sprint(o.Value) == fmt.Sprint(value) {
			return true
		}
	}
	return false
}

func (v *validator) checkAppBlocks() {
	n := 0
	for _, b := range v.doc.Blocks {
		if b.Type != "@app" {
			continue
		}
		at := v.locate("type", "@app", n)
		n++
		if b.Limit != nil {
			v.issueAt(at, TypeAppBlock, domain.SeverityCritical,
				"@app blocks cannot have 'limit' parameter", "Remove limit from the @app block")
		}
		if len(b.Settings) > 0 {
			v.issueAt(at, TypeAppBlock, domain.SeverityWarning,
				"@app blocks should not declare settings", "Remove settings; apps supply their own")
		}
	}
}

func (v *validator) checkWrapper() {
	if v.c.Type != domain.FileTypeWrapperSection {
		return
	}
	base := path.Base(filepath.ToSlash(v.f.Path))
	declared := make(map[string]bool)
	for _, b := range v.doc.Blocks {
		declared[b.Type] = true
	}
	for _, required := range wrapperBlockTypes[base] {
		if !declared[required] {
			v.issueAt(v.ex.BodyStart, TypeWrapperSection, domain.SeverityCritical,
				fmt.Sprintf("%s must accept %s blocks", base, required),
				fmt.Sprintf(`Add {"type": "%s"} to blocks`, required))
		}
	}
	if len(v.doc.Presets) == 0 {
		v.issueAt(v.ex.BodyStart, TypeWrapperSection, domain.SeverityCritical,
			fmt.Sprintf("%s requires at least one preset", base), `Add "presets": [{"name": "..."}]`)
	}
	restrictions := []struct {
		key     string
		present bool
	}{
		{"templates", v.doc.Templates != nil},
		{"enabled_on", v.doc.EnabledOn != nil},
		{"disabled_on", v.doc.DisabledOn != nil},
	}
	for _, r := range restrictions {
		if key := r.key; r.present {
			v.issueAt(v.keyOffset(key), TypeWrapperSection, domain.SeverityCritical,
				fmt.Sprintf("Wrapper sections cannot declare %s", key), "Remove "+key+"; wrapper sections are theme-global")
		}
	}
}

func (v *validator) keyOffset(key string) int {
	if i := strings.Index(v.ex.Body, `"`+key+`"`); i >= 0 {
		return v.ex.BodyStart + i
	}
	return v.ex.BodyStart
}

func (v *validator) checkTemplates() {
	if v.c.Type == domain.FileTypeWrapperSection {
		return
	}
	var enabled, disabled []string
	if v.doc.EnabledOn != nil {
		enabled = v.doc.EnabledOn.Templates
	}
	if v.doc.DisabledOn != nil {
		disabled = v.doc.DisabledOn.Templates
	}

	lists := []struct {
		key   string
		names []string
	}{
		{"enabled_on", enabled},
		{"disabled_on", disabled},
		{"templates", v.doc.Templates},
	}
	for _, l := range lists {
		key := l.key
		for _, name := range l.names {
			if !knownTemplate(name) {
				v.issueAt(v.keyOffset(key), TypeTemplateRestriction, domain.SeverityError,
					fmt.Sprintf("Unknown template '%s' in %s", name, key),
					"Use index, product, collection, blog, article, page, password, gift_card, customers/*, cart, search or 404")
			}
		}
	}

	inEnabled := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		inEnabled[name] = true
	}
	for _, name := range disabled {
		if inEnabled[name] {
			v.issueAt(v.keyOffset("disabled_on"), TypeTemplateRestriction, domain.SeverityError,
				fmt.Sprintf("Conflicting restriction: template '%s' is both enabled and disabled", name),
				"Remove the template from one of the lists")
		}
	}

	if v.c.Type == domain.FileTypeSection && (v.doc.EnabledOn != nil || v.doc.DisabledOn != nil) {
		v.issueAt(v.keyOffset("enabled_on"), TypeTemplateRestriction, domain.SeverityWarning,
			"Regular sections should not use enabled_on/disabled_on",
			"Restrict availability through section groups or templates instead")
	}
}

func knownTemplate(name string) bool {
	return AllowedTemplates[name] || strings.HasPrefix(name, "customers/")
}

func (v *validator) checkIDStyle() {
	for _, s := range v.doc.AllSettings() {
		if s.ID == "" || strings.ToLower(s.ID) == s.ID {
			continue
		}
		snake := catalog.SnakeCase(s.ID)
		v.issueAt(v.locate("id", s.ID, 0), TypeSettingIDStyle, domain.SeverityInfo,
			fmt.Sprintf("Setting ID '%s' is not snake_case", s.ID),
			fmt.Sprintf("Rename to '%s'", snake))
	}
}

func (v *validator) checkSettingUsage() {
	body := source.Blank(v.f.Content, append(v.ex.Regions(),
		append(source.Regions(catalog.CommentBlock, v.f.Content), source.Regions(catalog.RawBlock, v.f.Content)...)...)...)

	defined := make(map[string]bool)
	for _, s := range v.doc.AllSettings() {
		if s.ID != "" {
			defined[s.ID] = true
		}
	}
	// Blocks supplied by apps or theme block files define their own settings.
	opaqueBlocks := false
	for _, b := range v.doc.Blocks {
		if strings.HasPrefix(b.Type, "@") {
			opaqueBlocks = true
		}
	}

	used := make(map[string]bool)
	reported := make(map[string]bool)
	for _, re := range []*regexp.Regexp{settingUse, settingIndex} {
		for _, m := range re.FindAllStringSubmatchIndex(body, -1) {
			scope, id := body[m[2]:m[3]], body[m[4]:m[5]]
			used[id] = true
			if defined[id] || reported[id] || (scope == "block" && opaqueBlocks) {
				continue
			}
			reported[id] = true
			v.add(v.f.Issue(m[0], m[1], TypeUndefinedSetting, domain.SeverityError,
				fmt.Sprintf("Setting '%s' used but not defined in schema", id),
				"Add setting to schema or check spelling"))
		}
	}

	for _, s := range v.doc.AllSettings() {
		if s.ID == "" || s.IsInformational() || used[s.ID] {
			continue
		}
		v.issueAt(v.locate("id", s.ID, 0), TypeUnusedSetting, domain.SeverityWarning,
			fmt.Sprintf("Setting '%s' defined but never used in Liquid", s.ID),
			"Remove the setting or reference it in the template")
	}
}

func typeNoun(t domain.FileType) string {
	switch t {
	case domain.FileTypeSection:
		return "Section"
	case domain.FileTypeThemeBlock:
		return "Theme block"
	case domain.FileTypeWrapperSection:
		return "Wrapper section"
	default:
		return "File"
	}
}
