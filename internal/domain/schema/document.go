package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Document is a parsed schema block. Only the keys the validator reads are
// typed; everything else is ignored.
type Document struct {
	Name       any          `json:"name"`
	Settings   []Setting    `json:"settings"`
	Blocks     []Block      `json:"blocks"`
	Presets    []Preset     `json:"presets"`
	Templates  []string     `json:"templates"`
	EnabledOn  *Restriction `json:"enabled_on"`
	DisabledOn *Restriction `json:"disabled_on"`
}

// Setting is one entry of settings[].
type Setting struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Label   any      `json:"label"`
	Content any      `json:"content"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Step    *float64 `json:"step"`
	Options []Option `json:"options"`
	Default any      `json:"default"`
}

// Option is one choice of a select or radio setting.
type Option struct {
	Value any `json:"value"`
	Label any `json:"label"`
}

// Block is one entry of blocks[].
type Block struct {
	Type     string           `json:"type"`
	Name     any              `json:"name"`
	ID       string           `json:"id"`
	Limit    *json.RawMessage `json:"limit"`
	Settings []Setting        `json:"settings"`
}

// Preset is one entry of presets[].
type Preset struct {
	Name     any             `json:"name"`
	Settings map[string]any  `json:"settings"`
	Blocks   json.RawMessage `json:"blocks"`
}

// Restriction is the value of enabled_on or disabled_on.
type Restriction struct {
	Templates []string `json:"templates"`
	Groups    []string `json:"groups"`
}

// informational setting types carry no id or value.
var informational = map[string]bool{"header": true, "paragraph": true}

// IsInformational reports whether the setting is a header or paragraph.
func (s Setting) IsInformational() bool { return informational[s.Type] }

// RangeBounds returns min, max and step with Shopify's defaults applied.
func (s Setting) RangeBounds() (lo, hi, step float64) {
	lo, hi, step = 0, 100, 1
	if s.Min != nil {
		lo = *s.Min
	}
	if s.Max != nil {
		hi = *s.Max
	}
	if s.Step != nil {
		step = *s.Step
	}
	return lo, hi, step
}

// AllSettings returns section settings followed by every block's settings.
func (d *Document) AllSettings() []Setting {
	out := append([]Setting(nil), d.Settings...)
	for _, b := range d.Blocks {
		out = append(out, b.Settings...)
	}
	return out
}

// PresetBlock is one entry of presets[].blocks in either the array or the
// keyed-object form.
type PresetBlock struct {
	Type     string         `json:"type"`
	Settings map[string]any `json:"settings"`
}

// PresetBlocks decodes presets[].blocks, accepting both the array and the
// object-keyed forms.
func (p Preset) PresetBlocks() []PresetBlock {
	if len(p.Blocks) == 0 {
		return nil
	}
	var list []PresetBlock
	if err := json.Unmarshal(p.Blocks, &list); err == nil {
		return list
	}
	var keyed map[string]PresetBlock
	if err := json.Unmarshal(p.Blocks, &keyed); err != nil {
		return nil
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		list = append(list, keyed[k])
	}
	return list
}

// DisplayName renders a name that may be a string or a translation object.
func DisplayName(v any, fallback string) string {
	switch n := v.(type) {
	case string:
		if n != "" {
			return n
		}
	case map[string]any:
		if s, ok := n["en"].(string); ok {
			return s
		}
	}
	return fallback
}

//go:embed structure.json
var structureJSON []byte

var (
	structureOnce   sync.Once
	structureSchema *gojsonschema.Schema
	structureErr    error
)

func compiledStructure() (*gojsonschema.Schema, error) {
	structureOnce.Do(func() {
		structureSchema, structureErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(structureJSON))
	})
	return structureSchema, structureErr
}

// StructureError is one JSON Schema violation.
type StructureError struct {
	Field       string
	Description string
}

func (e StructureError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// CheckStructure validates raw schema JSON against the embedded structural
// schema and returns its violations in document order.
func CheckStructure(raw []byte) ([]StructureError, error) {
	sch, err := compiledStructure()
	if err != nil {
		return nil, fmt.Errorf("compiling schema structure: %w", err)
	}
	result, err := sch.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validating schema structure: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	out := make([]StructureError, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "(root)" {
			field = "schema"
		}
		out = append(out, StructureError{Field: field, Description: verr.Description()})
	}
	return out, nil
}
