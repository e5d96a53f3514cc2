package application

import (
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/classify"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/encoding"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/liquid"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/schema"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/source"
)

// Issue types raised by the orchestrator rather than a scanner.
const (
	TypeFileUnreadable    = "file_unreadable"
	TypeValidationTimeout = "validation_timeout"
)

// CheckOptions tune the per-file pipeline.
type CheckOptions struct {
	Experimental bool
}

// CheckFile runs every scanner that applies to one file and returns its
// unfiltered findings. It never fails: malformed content becomes issues.
func CheckFile(path, content string, opts CheckOptions) domain.FileResult {
	// 1. Bytes that are not UTF-8 surface as U+FFFD for the encoding scanner
	content = strings.ToValidUTF8(content, encoding.ReplacementChar)

	f := source.New(path, content)
	c := classify.Classify(path, content)
	res := domain.FileResult{Path: path, Type: c.Type}

	// 2. Byte-level encoding checks apply to every file
	res.Issues = append(res.Issues, encoding.Scan(f)...)

	switch {
	case c.Type.IsJSON():
		// 3a. JSON templates, settings and locales must parse
		res.Issues = append(res.Issues, schema.ValidateJSON(f)...)

	case strings.HasSuffix(path, ".liquid"):
		// 3b. Schema first; Liquid checks run even when the schema is broken
		sr := schema.Validate(f, c)
		res.Issues = append(res.Issues, sr.Issues...)
		res.BlockIDs = sr.BlockIDs
		res.Issues = append(res.Issues, liquid.Scan(f, c, liquid.Options{
			Experimental: opts.Experimental,
		})...)
		res.Issues = append(res.Issues, encoding.ScanCSS(f)...)

	case classify.IsCSS(path):
		// 3c. Plain stylesheets
		res.Issues = append(res.Issues, encoding.ScanCSS(f)...)
	}

	return res
}

func unreadable(path string, err error) domain.FileResult {
	return domain.FileResult{
		Path: path,
		Type: classify.Classify(path, "").Type,
		Issues: []domain.Issue{{
			FilePath:   path,
			Line:       1,
			Type:       TypeFileUnreadable,
			Severity:   domain.SeverityCritical,
			Message:    "Could not read file: " + err.Error(),
			Suggestion: "Check the file permissions and that it is a regular file",
		}},
	}
}

func timedOut(path string) domain.FileResult {
	return domain.FileResult{
		Path: path,
		Type: classify.Classify(path, "").Type,
		Issues: []domain.Issue{{
			FilePath:   path,
			Line:       1,
			Type:       TypeValidationTimeout,
			Severity:   domain.SeverityWarning,
			Message:    "validation timeout",
			Suggestion: "Split the file or raise file_timeout in .liquidlint.yaml",
		}},
	}
}
