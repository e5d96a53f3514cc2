package domain

import (
	"fmt"
	"strings"
)

// Severity grades a finding. The zero value is SeverityInfo.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "info",
	SeverityWarning:  "warning",
	SeverityError:    "error",
	SeverityCritical: "critical",
}

// Severities lists every severity from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityError, SeverityWarning, SeverityInfo}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Blocking reports whether the severity fails a run under every level.
func (s Severity) Blocking() bool { return s >= SeverityError }

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity accepts the lower-case severity names, case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if strings.EqualFold(n, name) {
			return sev, nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", name)
}

// Issue represents one finding. Issues are values and are never mutated
// after a scanner returns them.
type Issue struct {
	FilePath   string   `json:"file_path"`
	Line       int      `json:"line_number"`
	Column     int      `json:"-"`
	Type       string   `json:"issue_type"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Match      string   `json:"match"`
	Suggestion string   `json:"fix_suggestion"`
	Context    string   `json:"context"`
}

// FileType is the role a theme file plays.
type FileType string

const (
	FileTypeLayout         FileType = "layout"
	FileTypeTemplateLiquid FileType = "template_liquid"
	FileTypeTemplateJSON   FileType = "template_json"
	FileTypeSection        FileType = "section"
	FileTypeThemeBlock     FileType = "theme_block"
	FileTypeSnippet        FileType = "snippet"
	FileTypeAsset          FileType = "asset"
	FileTypeConfig         FileType = "config"
	FileTypeLocale         FileType = "locale"
	FileTypeWrapperSection FileType = "wrapper_section"
	FileTypeUnknown        FileType = "unknown"
)

// IsJSON reports whether files of this type hold JSON rather than Liquid.
func (t FileType) IsJSON() bool {
	return t == FileTypeTemplateJSON || t == FileTypeConfig || t == FileTypeLocale
}

// SchemaRequirement states whether a schema block must, must not, or may appear.
type SchemaRequirement int

const (
	SchemaForbidden SchemaRequirement = iota
	SchemaRequired
	SchemaOptional
)

// Classification is the classifier's verdict for one file.
type Classification struct {
	Type   FileType `json:"type"`
	Legacy bool     `json:"legacy,omitempty"`
}

// ValidationLevel selects which severities reach the report.
type ValidationLevel string

const (
	LevelDevelopment ValidationLevel = "development"
	LevelProduction  ValidationLevel = "production"
	LevelUltimate    ValidationLevel = "ultimate"
)

// ValidLevels enumerates the levels from least to most strict.
var ValidLevels = []ValidationLevel{LevelDevelopment, LevelProduction, LevelUltimate}

// ParseLevel returns the named level or an error listing the valid ones.
func ParseLevel(name string) (ValidationLevel, error) {
	for _, l := range ValidLevels {
		if strings.EqualFold(string(l), name) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q (valid: development, production, ultimate)", name)
}

// Allows reports whether issues of severity s are materialized at this level.
func (l ValidationLevel) Allows(s Severity) bool {
	switch l {
	case LevelDevelopment:
		return s >= SeverityError
	case LevelUltimate:
		return true
	default:
		return s >= SeverityWarning
	}
}

// Description is the one-line summary shown in reports and by the rules command.
func (l ValidationLevel) Description() string {
	switch l {
	case LevelDevelopment:
		return "Fast feedback: critical errors and errors only"
	case LevelUltimate:
		return "Zero tolerance: every finding including info"
	default:
		return "Theme Store gate: adds warnings to critical errors and errors"
	}
}

// Summary is the machine-report header.
type Summary struct {
	FilesScanned    int `json:"files_scanned"`
	FilesWithIssues int `json:"files_with_issues"`
	TotalIssues     int `json:"total_issues"`
}

// Report is the aggregated outcome of one run. Only Summary and Issues are
// part of the JSON contract.
type Report struct {
	Summary    Summary          `json:"summary"`
	Issues     []Issue          `json:"issues"`
	Level      ValidationLevel  `json:"-"`
	BySeverity map[Severity]int `json:"-"`
	ByType     map[string]int   `json:"-"`
}

// Passed is the verdict: no Critical and no Error issues.
func (r *Report) Passed() bool {
	return r.BySeverity[SeverityCritical]+r.BySeverity[SeverityError] == 0
}

// ExitCode maps the verdict onto the process contract: 2 for any Critical,
// 1 for Errors only, 0 otherwise.
func (r *Report) ExitCode() int {
	switch {
	case r.BySeverity[SeverityCritical] > 0:
		return 2
	case r.BySeverity[SeverityError] > 0:
		return 1
	default:
		return 0
	}
}

// FileResult is what a single file's validation hands to the aggregator.
type FileResult struct {
	Path     string         `json:"path"`
	Type     FileType       `json:"type"`
	Issues   []Issue        `json:"issues"`
	BlockIDs []BlockIDEntry `json:"block_ids,omitempty"`
}

// BlockIDEntry is one static block id defined in a schema.
type BlockIDEntry struct {
	ID   string `json:"id"`
	Line int    `json:"line"`
}
