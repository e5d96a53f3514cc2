// Package classify decides the role a theme file plays from its path, with a
// content fallback for files outside the standard theme directories.
package classify

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
)

// WrapperFiles are classified wrapper_section wherever they live.
var WrapperFiles = map[string]bool{"apps.liquid": true, "_blocks.liquid": true}

var assetExtensions = map[string]bool{
	".css": true, ".js": true, ".scss": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".avif": true, ".ico": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
}

// dirRule maps a theme directory and extension to a file type.
type dirRule struct {
	dir  string
	ext  string
	kind domain.FileType
}

var dirRules = []dirRule{
	{"layout", ".liquid", domain.FileTypeLayout},
	{"layouts", ".liquid", domain.FileTypeLayout},
	{"sections", ".liquid", domain.FileTypeSection},
	{"blocks", ".liquid", domain.FileTypeThemeBlock},
	{"snippets", ".liquid", domain.FileTypeSnippet},
	{"templates", ".liquid", domain.FileTypeTemplateLiquid},
	{"templates", ".json", domain.FileTypeTemplateJSON},
	{"config", ".json", domain.FileTypeConfig},
	{"locales", ".json", domain.FileTypeLocale},
}

// layoutNames are layout files recognised by name when found outside layout/.
var layoutNames = map[string]bool{"theme.liquid": true, "checkout.liquid": true}

// Classify maps a file's path and content to its role. It is a pure
// function of its inputs.
func Classify(filePath, content string) domain.Classification {
	p := filepath.ToSlash(filePath)
	base := path.Base(p)

	if WrapperFiles[base] {
		return domain.Classification{Type: domain.FileTypeWrapperSection}
	}

	dirs := strings.Split(path.Dir(p), "/")
	if kind, ok := byDirectory(dirs, base); ok {
		return domain.Classification{Type: kind}
	}

	if layoutNames[base] {
		return domain.Classification{Type: domain.FileTypeLayout}
	}

	return domain.Classification{
		Type:   domain.FileTypeUnknown,
		Legacy: isLegacy(dirs, content),
	}
}

// byDirectory walks the directory segments from the innermost outwards so
// templates/customers/login.liquid still resolves through templates.
func byDirectory(dirs []string, base string) (domain.FileType, bool) {
	ext := assetExt(base)
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		if dir == "assets" && assetExtensions[ext] {
			return domain.FileTypeAsset, true
		}
		for _, r := range dirRules {
			if r.dir == dir && r.ext == path.Ext(base) {
				return r.kind, true
			}
		}
	}
	return "", false
}

// assetExt returns the meaningful extension, looking through a trailing
// .liquid on files such as theme.css.liquid.
func assetExt(base string) string {
	ext := path.Ext(base)
	if ext == ".liquid" {
		return path.Ext(strings.TrimSuffix(base, ext))
	}
	return ext
}

// isLegacy reports a loose file that behaves like an old-style template:
// it sits under a legacy directory, or has no schema and reads
// template-only objects.
func isLegacy(dirs []string, content string) bool {
	for _, d := range dirs {
		if d == "legacy" {
			return true
		}
	}
	if catalog.SchemaBlock.MatchString(content) {
		return false
	}
	for _, hint := range catalog.TemplateObjectHints {
		if strings.Contains(content, hint) {
			return true
		}
	}
	return false
}

// SchemaRequirement derives whether a schema block must, must not, or may
// appear in a file of the given classification.
func SchemaRequirement(c domain.Classification) domain.SchemaRequirement {
	switch c.Type {
	case domain.FileTypeSection, domain.FileTypeThemeBlock, domain.FileTypeWrapperSection:
		return domain.SchemaRequired
	case domain.FileTypeUnknown:
		if c.Legacy {
			return domain.SchemaOptional
		}
		return domain.SchemaRequired
	default:
		return domain.SchemaForbidden
	}
}

// IsCSS reports whether the file is a stylesheet asset the CSS scanner reads
// whole.
func IsCSS(filePath string) bool {
	base := path.Base(filepath.ToSlash(filePath))
	return assetExt(base) == ".css" || assetExt(base) == ".scss"
}
