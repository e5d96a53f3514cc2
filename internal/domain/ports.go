package domain

import "time"

// ThemeScanner discovers lintable files under a theme root.
type ThemeScanner interface {
	Scan(rootPath string, excludePaths ...string) (*ScanResult, error)
}

// ScanResult holds the files found under a theme root, relative to RootPath.
type ScanResult struct {
	RootPath    string   `json:"root_path"`
	LiquidFiles []string `json:"liquid_files"`
	JSONFiles   []string `json:"json_files"`
	CSSFiles    []string `json:"css_files"`
}

// Files returns every discovered file in a stable order.
func (r *ScanResult) Files() []string {
	all := make([]string, 0, len(r.LiquidFiles)+len(r.JSONFiles)+len(r.CSSFiles))
	all = append(all, r.LiquidFiles...)
	all = append(all, r.JSONFiles...)
	all = append(all, r.CSSFiles...)
	return all
}

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(rootPath string) (LintConfig, error)
}

// ResultCache stores per-file issue lists keyed by content hash.
type ResultCache interface {
	Load(rootPath string) (*ResultCacheData, error)
	Save(rootPath string, data *ResultCacheData) error
	Invalidate(rootPath string) error
}

// ResultCacheData is the persisted form of the result cache.
type ResultCacheData struct {
	Fingerprint string                `json:"fingerprint"`
	Entries     map[string]CacheEntry `json:"entries"`
}

// CacheEntry is one cached file result.
type CacheEntry struct {
	Hash   string     `json:"hash"`
	Result FileResult `json:"result"`
}

// RunHistory persists a log of directory runs.
type RunHistory interface {
	Save(rootPath string, entry RunEntry) error
	Load(rootPath string) ([]RunEntry, error)
}

// RunEntry summarizes one validation run.
type RunEntry struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	CommitHash   string          `json:"commit_hash,omitempty"`
	Level        ValidationLevel `json:"level"`
	FilesScanned int             `json:"files_scanned"`
	TotalIssues  int             `json:"total_issues"`
	Critical     int             `json:"critical"`
	Errors       int             `json:"errors"`
	Warnings     int             `json:"warnings"`
	Info         int             `json:"info"`
	Passed       bool            `json:"passed"`
}

// GitInfo provides version-control metadata about a theme root.
type GitInfo interface {
	IsGitRepo(rootPath string) bool
	CommitHash(rootPath string) (string, error)
	ChangedFiles(rootPath string) ([]string, error)
}
