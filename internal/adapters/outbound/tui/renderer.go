package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/report"
)

// ── Warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	severityColors = map[domain.Severity]lipgloss.Color{
		domain.SeverityCritical: lipgloss.Color("#DC2626"), // deep red
		domain.SeverityError:    danger,
		domain.SeverityWarning:  warning,
		domain.SeverityInfo:     info,
	}

	dimStyle           = lipgloss.NewStyle().Foreground(dim)
	faintStyle         = lipgloss.NewStyle().Foreground(faint)
	passStyle          = lipgloss.NewStyle().Foreground(success)
	failStyle          = lipgloss.NewStyle().Foreground(danger)
	warnStyle          = lipgloss.NewStyle().Foreground(warning)
	fileStyle          = lipgloss.NewStyle().Foreground(dim)
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine      = faintStyle.Render(strings.Repeat("─", 64))
)

// contextWidth caps the context snippet shown under an issue.
const contextWidth = 100

// RenderReport formats a validation report for the terminal: issues grouped
// by severity, a verdict banner, then the issue-type breakdown.
func RenderReport(r *domain.Report) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("liquidlint")
	subtitle := dimStyle.Render(fmt.Sprintf("level: %s  ·  %s", r.Level, r.Level.Description()))
	counts := fmt.Sprintf("%d files scanned  ·  %d with issues  ·  %d issues",
		r.Summary.FilesScanned, r.Summary.FilesWithIssues, r.Summary.TotalIssues)
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + counts))
	b.WriteString("\n\n")

	// ── Issues by severity ──
	if len(r.Issues) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n")
	}
	grouped := report.BySeverity(r.Issues)
	for _, sev := range domain.Severities {
		issues := grouped[sev]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n\n",
			severityHeader(sev),
			dimStyle.Render(fmt.Sprintf("(%d)", len(issues))),
		)
		for _, issue := range issues {
			renderIssue(&b, issue)
		}
	}

	// ── Verdict ──
	b.WriteString("  " + separatorLine + "\n\n")
	b.WriteString("  " + renderVerdict(r) + "\n")

	// ── Frequencies ──
	if freq := report.Frequencies(r); len(freq) > 0 {
		b.WriteString("\n")
		b.WriteString("  " + sectionHeaderStyle.Render("Issue types") + "\n")
		width := 0
		for _, f := range freq {
			width = max(width, len(f.Type))
		}
		for _, f := range freq {
			fmt.Fprintf(&b, "    %s %s\n", padRight(f.Type, width), dimStyle.Render(fmt.Sprintf("%d", f.Count)))
		}
	}

	b.WriteString("\n")
	return b.String()
}

func renderIssue(b *strings.Builder, issue domain.Issue) {
	loc := fileStyle.Render(fmt.Sprintf("%s:%d", issue.FilePath, issue.Line))
	fmt.Fprintf(b, "    %s %s  %s\n", severityDot(issue.Severity), loc, faintStyle.Render(issue.Type))
	fmt.Fprintf(b, "      %s\n", issue.Message)
	if issue.Suggestion != "" {
		fmt.Fprintf(b, "      %s\n", hintStyle.Render("→ "+issue.Suggestion))
	}
	if ctx := firstLine(issue.Context); ctx != "" {
		fmt.Fprintf(b, "      %s\n", faintStyle.Render(truncate(ctx, contextWidth)))
	}
	b.WriteString("\n")
}

func renderVerdict(r *domain.Report) string {
	verdict := report.Verdict(r)
	style := lipgloss.NewStyle().Bold(true).Foreground(success)
	if !r.Passed() {
		style = style.Foreground(danger)
	}
	parts := []string{style.Render(verdict)}
	for _, sev := range domain.Severities {
		if n := r.BySeverity[sev]; n > 0 {
			parts = append(parts, severityStyle(sev).Render(fmt.Sprintf("%d %s", n, sev)))
		}
	}
	parts = append(parts, dimStyle.Render(fmt.Sprintf("exit %d", r.ExitCode())))
	return strings.Join(parts, "  ")
}

func severityHeader(sev domain.Severity) string {
	return severityStyle(sev).Bold(true).Render(strings.ToUpper(sev.String()))
}

func severityDot(sev domain.Severity) string {
	return severityStyle(sev).Render("●")
}

func severityStyle(sev domain.Severity) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(severityColors[sev])
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats run history for terminal output, oldest first.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}

		verdict := passStyle.Render("PASS")
		if !e.Passed {
			verdict = failStyle.Render("FAIL")
		}

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(e.Timestamp.Format("2006-01-02 15:04")),
			faintStyle.Render(hash),
			verdict,
			padRight(string(e.Level), 11),
			fmt.Sprintf("%d issues / %d files", e.TotalIssues, e.FilesScanned),
		)

		if i > 0 {
			diff := e.TotalIssues - entries[i-1].TotalIssues
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// RenderFixPlan summarises a fix run.
func RenderFixPlan(plan *domain.FixPlan) string {
	var b strings.Builder

	title := headerStyle.Render("liquidlint fix")
	mode := passStyle.Render("applied")
	if plan.DryRun {
		mode = warnStyle.Render("dry run, nothing written")
	}
	counts := fmt.Sprintf("%d files scanned  ·  %d changed", plan.FilesScanned, plan.FilesChanged)
	b.WriteString(boxStyle.Render(title + "\n" + mode + "\n\n" + counts))
	b.WriteString("\n\n")

	if len(plan.Applied) == 0 {
		b.WriteString("  " + passStyle.Render("Nothing to fix.") + "\n\n")
		return b.String()
	}

	// ── Per file ──
	byPath := map[string][]domain.AppliedFix{}
	var paths []string
	for _, a := range plan.Applied {
		if _, ok := byPath[a.Path]; !ok {
			paths = append(paths, a.Path)
		}
		byPath[a.Path] = append(byPath[a.Path], a)
	}
	sort.Strings(paths)
	for _, p := range paths {
		b.WriteString("  " + fileStyle.Render(p) + "\n")
		for _, a := range byPath[p] {
			fmt.Fprintf(&b, "    %s %s %s\n",
				passStyle.Render("✓"),
				a.Description,
				dimStyle.Render(fmt.Sprintf("×%d", a.Count)),
			)
		}
	}

	// ── Totals ──
	b.WriteString("\n  " + separatorLine + "\n\n")
	b.WriteString("  " + sectionHeaderStyle.Render("Rules applied") + "\n")
	names := make([]string, 0, len(plan.RuleCounts))
	width := 0
	for n := range plan.RuleCounts {
		names = append(names, n)
		width = max(width, len(n))
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(&b, "    %s %s\n", padRight(n, width), dimStyle.Render(fmt.Sprintf("%d", plan.RuleCounts[n])))
	}
	if plan.DryRun {
		b.WriteString("\n  " + hintStyle.Render("Run without --dry-run to write these changes.") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}
