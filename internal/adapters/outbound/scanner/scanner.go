package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/classify"
)

var skipDirs = map[string]bool{
	"_archive":      true,
	"node_modules":  true,
	".git":          true,
	domain.StateDir: true,
	".shopify":      true,
}

// FileScanner implements domain.ThemeScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan collects Liquid templates, the JSON files of templates/, config/ and
// locales/, and plain stylesheets. Exclude entries match either a directory
// name anywhere in the tree or a path prefix relative to the root.
func (s *FileScanner) Scan(rootPath string, excludePaths ...string) (*domain.ScanResult, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.Trim(filepath.ToSlash(p), "/")] = true
	}

	result := &domain.ScanResult{
		RootPath: absPath,
	}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(absPath, path)
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if path != absPath && (skipDirs[d.Name()] || extraSkip[d.Name()] || extraSkip[relPath]) {
				return filepath.SkipDir
			}
			return nil
		}
		if extraSkip[relPath] {
			return nil
		}

		switch {
		case strings.HasSuffix(d.Name(), ".liquid"):
			result.LiquidFiles = append(result.LiquidFiles, relPath)
		case strings.HasSuffix(d.Name(), ".json"):
			if classify.Classify(relPath, "").Type.IsJSON() {
				result.JSONFiles = append(result.JSONFiles, relPath)
			}
		case classify.IsCSS(d.Name()):
			result.CSSFiles = append(result.CSSFiles, relPath)
		}

		return nil
	})

	return result, err
}
