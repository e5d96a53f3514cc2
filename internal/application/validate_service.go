package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/report"
)

// ValidateOptions override configuration for a single run. Zero values
// defer to .liquidlint.yaml.
type ValidateOptions struct {
	Level       domain.ValidationLevel
	MaxFiles    int
	Timeout     time.Duration
	Concurrency int
	NoCache     bool
	ChangedOnly bool
}

// ValidateService orchestrates a run:
// config → discover → read → per-file pipeline (parallel, time-boxed) → aggregate.
type ValidateService struct {
	scanner      domain.ThemeScanner
	configLoader domain.ConfigLoader
	cache        domain.ResultCache
	history      domain.RunHistory
	git          domain.GitInfo
	logger       *slog.Logger

	check func(path, content string, opts CheckOptions) domain.FileResult
}

// NewValidateService creates a ValidateService. cache, history and git may
// be nil to disable those features.
func NewValidateService(
	scanner domain.ThemeScanner,
	configLoader domain.ConfigLoader,
	cache domain.ResultCache,
	history domain.RunHistory,
	git domain.GitInfo,
	logger *slog.Logger,
) *ValidateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateService{
		scanner:      scanner,
		configLoader: configLoader,
		cache:        cache,
		history:      history,
		git:          git,
		logger:       logger,
		check:        CheckFile,
	}
}

// target is one resolved run input.
type target struct {
	root  string   // theme root: config, cache and history live here
	files []string // relative to root
	dir   bool
}

// Validate checks a file or a theme directory and returns the aggregated report.
func (s *ValidateService) Validate(ctx context.Context, path string, opts ValidateOptions) (*domain.Report, error) {
	// 1. Resolve the input and load config
	t, cfg, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	cfg = merge(cfg, opts)
	discovered := t.files

	// 2. Narrow to changed files
	if opts.ChangedOnly && t.dir {
		t.files, err = s.changedOnly(t.root, t.files)
		if err != nil {
			return nil, err
		}
	}

	// 3. Resource cap
	if cfg.MaxFiles > 0 && len(t.files) > cfg.MaxFiles {
		s.logger.Warn("max files reached, skipping the rest", "limit", cfg.MaxFiles, "found", len(t.files))
		t.files = t.files[:cfg.MaxFiles]
	}

	// 4. Run the per-file pipeline
	useCache := t.dir && !opts.NoCache && cfg.CacheEnabled() && s.cache != nil
	previous := s.loadCache(t.root, cfg, useCache)
	next := &domain.ResultCacheData{Fingerprint: cfg.Fingerprint(), Entries: make(map[string]domain.CacheEntry)}
	results, err := s.checkAll(ctx, t, cfg, previous, next)
	if err != nil {
		return nil, err
	}
	if useCache {
		carryForward(previous, next, discovered, t.files)
		if err := s.cache.Save(t.root, next); err != nil {
			s.logger.Warn("saving result cache failed", "error", err)
		}
	}

	// 5. Aggregate
	r := report.Aggregate(results, report.Options{Level: cfg.EffectiveLevel(), Disabled: cfg.DisabledRules})
	s.logger.Debug("validation finished",
		"files", r.Summary.FilesScanned, "issues", r.Summary.TotalIssues, "exit_code", r.ExitCode())

	// 6. Record the run
	if t.dir {
		s.record(t.root, r)
	}
	return r, nil
}

// ValidateContent checks in-memory content as if it lived at path.
func (s *ValidateService) ValidateContent(path, content string, level domain.ValidationLevel) *domain.Report {
	if level == "" {
		level = domain.LevelProduction
	}
	res := s.check(filepath.ToSlash(path), content, CheckOptions{})
	return report.Aggregate([]domain.FileResult{res}, report.Options{Level: level})
}

// ClearCache removes the result cache of the theme at rootPath.
func (s *ValidateService) ClearCache(rootPath string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(rootPath); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

func (s *ValidateService) resolve(path string) (target, domain.LintConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return target{}, domain.LintConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var t target
	if info.IsDir() {
		t = target{root: path, dir: true}
	} else {
		// A lone file is reported by the path it was given; its grandparent
		// is the theme root when it sits in sections/, snippets/ and so on.
		abs, err := filepath.Abs(path)
		if err != nil {
			return target{}, domain.LintConfig{}, err
		}
		t = target{root: filepath.Dir(filepath.Dir(abs)), files: []string{filepath.ToSlash(path)}}
	}

	cfg, err := s.configLoader.Load(t.root)
	if err != nil {
		return target{}, domain.LintConfig{}, fmt.Errorf("loading config: %w", err)
	}

	if t.dir {
		scan, err := s.scanner.Scan(t.root, cfg.ExcludePaths...)
		if err != nil {
			return target{}, domain.LintConfig{}, fmt.Errorf("scanning theme: %w", err)
		}
		t.files = scan.Files()
	}
	return t, cfg, nil
}

func merge(cfg domain.LintConfig, opts ValidateOptions) domain.LintConfig {
	if opts.Level != "" {
		cfg.Level = opts.Level
	}
	if opts.MaxFiles > 0 {
		cfg.MaxFiles = opts.MaxFiles
	}
	if opts.Timeout > 0 {
		cfg.FileTimeout = opts.Timeout.String()
	}
	if opts.Concurrency > 0 {
		cfg.Concurrency = opts.Concurrency
	}
	return cfg
}

func (s *ValidateService) changedOnly(root string, files []string) ([]string, error) {
	if s.git == nil || !s.git.IsGitRepo(root) {
		return nil, fmt.Errorf("--changed needs a git repository at %s", root)
	}
	changed, err := s.git.ChangedFiles(root)
	if err != nil {
		return nil, fmt.Errorf("listing changed files: %w", err)
	}
	keep := make(map[string]bool, len(changed))
	for _, c := range changed {
		keep[c] = true
	}
	var out []string
	for _, f := range files {
		if keep[f] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *ValidateService) loadCache(root string, cfg domain.LintConfig, enabled bool) *domain.ResultCacheData {
	fresh := &domain.ResultCacheData{Fingerprint: cfg.Fingerprint(), Entries: make(map[string]domain.CacheEntry)}
	if !enabled {
		return fresh
	}
	data, err := s.cache.Load(root)
	if err != nil {
		s.logger.Warn("ignoring unreadable result cache", "error", err)
		return fresh
	}
	if data == nil || data.Fingerprint != fresh.Fingerprint {
		return fresh
	}
	return data
}

// checkAll validates files concurrently. previous is only read; next
// collects the entries to persist and is only written under mu.
func (s *ValidateService) checkAll(ctx context.Context, t target, cfg domain.LintConfig, previous, next *domain.ResultCacheData) ([]domain.FileResult, error) {
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	opts := CheckOptions{Experimental: cfg.ExperimentalRules}
	timeout := cfg.Timeout()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]domain.FileResult, len(t.files))
	var mu sync.Mutex

	for i, rel := range t.files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			full := rel
			if t.dir {
				full = filepath.Join(t.root, filepath.FromSlash(rel))
			}
			data, err := os.ReadFile(full)
			if err != nil {
				s.logger.Warn("unreadable file", "path", rel, "error", err)
				results[i] = unreadable(rel, err)
				return nil
			}

			hash := contentHash(rel, data)
			if hit, ok := previous.Entries[rel]; ok && hit.Hash == hash {
				results[i] = hit.Result
				mu.Lock()
				next.Entries[rel] = hit
				mu.Unlock()
				return nil
			}

			res, finished := s.checkWithTimeout(ctx, rel, string(data), opts, timeout)
			results[i] = res
			if !finished {
				s.logger.Warn("validation timeout", "path", rel, "timeout", timeout)
				return nil
			}

			mu.Lock()
			next.Entries[rel] = domain.CacheEntry{Hash: hash, Result: res}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validating files: %w", err)
	}
	return results, nil
}

// checkWithTimeout runs the pipeline in its own goroutine so a pathological
// file cannot stall the run. The goroutine is abandoned on timeout.
func (s *ValidateService) checkWithTimeout(ctx context.Context, path, content string, opts CheckOptions, timeout time.Duration) (domain.FileResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan domain.FileResult, 1)
	go func() { done <- s.check(path, content, opts) }()

	select {
	case res := <-done:
		return res, true
	case <-ctx.Done():
		return timedOut(path), false
	}
}

// carryForward keeps the previous entries of discovered files this run did
// not visit, so --changed and max_files do not evict them. Entries of files
// that no longer exist are dropped.
func carryForward(previous, next *domain.ResultCacheData, discovered, visited []string) {
	seen := make(map[string]bool, len(visited))
	for _, rel := range visited {
		seen[rel] = true
	}
	for _, rel := range discovered {
		if seen[rel] {
			continue
		}
		if hit, ok := previous.Entries[rel]; ok {
			next.Entries[rel] = hit
		}
	}
}

func (s *ValidateService) record(root string, r *domain.Report) {
	if s.history == nil {
		return
	}
	entry := domain.RunEntry{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Level:        r.Level,
		FilesScanned: r.Summary.FilesScanned,
		TotalIssues:  r.Summary.TotalIssues,
		Critical:     r.BySeverity[domain.SeverityCritical],
		Errors:       r.BySeverity[domain.SeverityError],
		Warnings:     r.BySeverity[domain.SeverityWarning],
		Info:         r.BySeverity[domain.SeverityInfo],
		Passed:       r.Passed(),
	}
	if s.git != nil && s.git.IsGitRepo(root) {
		if hash, err := s.git.CommitHash(root); err == nil {
			entry.CommitHash = hash
		}
	}
	if err := s.history.Save(root, entry); err != nil {
		s.logger.Warn("saving run history failed", "error", err)
	}
}

func contentHash(path string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
