package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
)

// RenderRules renders the catalogs the scanners apply.
func RenderRules(l catalog.Listing) string {
	var b strings.Builder

	b.WriteString(boxStyle.Render(headerStyle.Render("liquidlint rules") + "\n" +
		dimStyle.Render(fmt.Sprintf("%d rules  ·  %d official filters", len(l.Rules), len(l.Filters.Official)))))
	b.WriteString("\n")

	// Rule tables, one section per group in catalog order
	var group string
	for _, r := range l.Rules {
		if r.Group != group {
			group = r.Group
			fmt.Fprintf(&b, "\n  %s\n", sectionHeaderStyle.Render(group))
		}
		line := fmt.Sprintf("    %s %s  %s", severityDot(r.Severity), padRight(r.Name, 34), dimStyle.Render(r.Message))
		if !r.Enabled {
			line += "  " + faintStyle.Render("(experimental)")
		}
		b.WriteString(line + "\n")
	}

	renderNameTable(&b, "Hallucinated filters", l.Filters.Hallucinated)
	renderNameTable(&b, "Deprecated filters", l.Filters.Deprecated)
	renderNameTable(&b, "Suspicious objects", l.SuspiciousObjects)
	renderNameTable(&b, "Invalid tags", l.InvalidTags)

	b.WriteString("\n")
	b.WriteString("  " + hintStyle.Render("Use --json for the full tables including official filters."))
	b.WriteString("\n")
	return b.String()
}

func renderNameTable(b *strings.Builder, title string, entries map[string]string) {
	if len(entries) == 0 {
		return
	}
	names := make([]string, 0, len(entries))
	width := 0
	for n := range entries {
		names = append(names, n)
		width = max(width, len(n))
	}
	sort.Strings(names)

	fmt.Fprintf(b, "\n  %s %s\n",
		sectionHeaderStyle.Render(title),
		dimStyle.Render(fmt.Sprintf("(%d)", len(entries))),
	)
	for _, n := range names {
		fmt.Fprintf(b, "    %s  %s\n", warnStyle.Render(padRight(n, width)), dimStyle.Render(entries[n]))
	}
}
