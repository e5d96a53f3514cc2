package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/fix"
)

// FixService orchestrates the fix pipeline:
// config → discover → read → rewrite to a fixed point → write back.
type FixService struct {
	scanner      domain.ThemeScanner
	configLoader domain.ConfigLoader
	logger       *slog.Logger
}

func NewFixService(scanner domain.ThemeScanner, configLoader domain.ConfigLoader, logger *slog.Logger) *FixService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FixService{scanner: scanner, configLoader: configLoader, logger: logger}
}

// Fix rewrites every discoverable file under path, or path itself when it
// is a file. With DryRun nothing is written but the plan is the same.
func (s *FixService) Fix(ctx context.Context, path string, opts domain.FixOptions) (*domain.FixPlan, error) {
	// 1. Resolve files
	files, root, err := s.files(path)
	if err != nil {
		return nil, err
	}

	plan := &domain.FixPlan{
		DryRun:       opts.DryRun,
		FilesScanned: len(files),
		Applied:      []domain.AppliedFix{},
		RuleCounts:   make(map[string]int),
	}

	// 2. Fix each file in turn
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		full := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil {
			s.logger.Warn("skipping unreadable file", "path", rel, "error", err)
			continue
		}
		data, err := os.ReadFile(full)
		if err != nil {
			s.logger.Warn("skipping unreadable file", "path", rel, "error", err)
			continue
		}

		res := fix.Apply(rel, string(data))
		if !res.Changed {
			continue
		}
		plan.FilesChanged++
		for _, name := range res.RuleNames() {
			rule, _ := fix.Lookup(name)
			plan.Applied = append(plan.Applied, domain.AppliedFix{
				Type:        name,
				Path:        rel,
				Count:       res.Applied[name],
				Description: rule.Description,
			})
			plan.RuleCounts[name] += res.Applied[name]
		}

		// 3. Write back unless this is a dry run
		if opts.DryRun {
			continue
		}
		if err := os.WriteFile(full, []byte(res.Content), info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("writing %s: %w", rel, err)
		}
		s.logger.Debug("fixed file", "path", rel, "rules", res.RuleNames())
	}

	return plan, nil
}

func (s *FixService) files(path string) ([]string, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{filepath.Base(path)}, filepath.Dir(path), nil
	}

	cfg, err := s.configLoader.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	scan, err := s.scanner.Scan(path, cfg.ExcludePaths...)
	if err != nil {
		return nil, "", fmt.Errorf("scanning theme: %w", err)
	}
	return scan.Files(), path, nil
}
