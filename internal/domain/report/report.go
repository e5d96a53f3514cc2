// Package report folds per-file results into the run-level Report: the
// cross-file static block id pass, the level filter, the counts and the
// verdict all happen here.
package report

import (
	"sort"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/schema"
)

// Options tune aggregation.
type Options struct {
	Level    domain.ValidationLevel
	Disabled []string
}

// Aggregate builds the report for one run. Results are not modified.
func Aggregate(results []domain.FileResult, opts Options) *domain.Report {
	level := opts.Level
	if level == "" {
		level = domain.LevelProduction
	}
	disabled := make(map[string]bool, len(opts.Disabled))
	for _, d := range opts.Disabled {
		disabled[d] = true
	}

	// 1. Cross-file pass, in path order so the first owner is deterministic
	ordered := append([]domain.FileResult(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Path < ordered[j].Path })
	registry := schema.NewRegistry()

	r := &domain.Report{
		Level:      level,
		Issues:     []domain.Issue{},
		BySeverity: make(map[domain.Severity]int),
		ByType:     make(map[string]int),
	}
	withIssues := make(map[string]bool)

	for _, res := range ordered {
		issues := append([]domain.Issue(nil), res.Issues...)
		issues = append(issues, registry.Register(res.Path, res.BlockIDs)...)

		// 2. Level filter and disabled rules
		for _, is := range issues {
			if !level.Allows(is.Severity) || disabled[is.Type] {
				continue
			}
			r.Issues = append(r.Issues, is)
			r.BySeverity[is.Severity]++
			r.ByType[is.Type]++
			withIssues[res.Path] = true
		}
	}

	// 3. Stable presentation order
	Sort(r.Issues)

	r.Summary = domain.Summary{
		FilesScanned:    len(results),
		FilesWithIssues: len(withIssues),
		TotalIssues:     len(r.Issues),
	}
	return r
}

// Sort orders issues by file, line, column, then most severe first.
func Sort(issues []domain.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Severity > b.Severity
	})
}

// BySeverity groups issues, keyed by severity, keeping their order.
func BySeverity(issues []domain.Issue) map[domain.Severity][]domain.Issue {
	out := make(map[domain.Severity][]domain.Issue)
	for _, is := range issues {
		out[is.Severity] = append(out[is.Severity], is)
	}
	return out
}

// TypeCount is one row of the issue-type frequency breakdown.
type TypeCount struct {
	Type  string `json:"issue_type"`
	Count int    `json:"count"`
}

// Frequencies returns the issue types by descending count, ties by name.
func Frequencies(r *domain.Report) []TypeCount {
	out := make([]TypeCount, 0, len(r.ByType))
	for t, n := range r.ByType {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Verdict is the banner word for a report.
func Verdict(r *domain.Report) string {
	if r.Passed() {
		return "PASS"
	}
	return "FAIL"
}
