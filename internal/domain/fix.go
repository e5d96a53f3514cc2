package domain

// FixPlan is the outcome of one fix run over a theme.
type FixPlan struct {
	DryRun       bool           `json:"dry_run"`
	FilesScanned int            `json:"files_scanned"`
	FilesChanged int            `json:"files_changed"`
	Applied      []AppliedFix   `json:"applied"`
	RuleCounts   map[string]int `json:"rule_counts"`
}

// AppliedFix records how often one rewrite rule fired in one file.
type AppliedFix struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	Count       int    `json:"count"`
	Description string `json:"description"`
}

type FixOptions struct {
	DryRun bool `json:"dry_run"`
}
