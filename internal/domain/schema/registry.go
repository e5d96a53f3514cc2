package schema

import (
	"fmt"
	"sync"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

// TypeDuplicateBlockID tags a static block id defined by more than one block.
const TypeDuplicateBlockID = "duplicate_block_id"

type blockOwner struct {
	path string
	line int
}

// Registry maps each static block id to the file that first defined it.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	owners map[string]blockOwner
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]blockOwner)}
}

// Register records the ids defined in path and returns an Error for every
// id some earlier registration already owns.
func (r *Registry) Register(path string, ids []domain.BlockIDEntry) []domain.Issue {
	r.mu.Lock()
	defer r.mu.Unlock()

	var issues []domain.Issue
	for _, e := range ids {
		first, taken := r.owners[e.ID]
		if !taken {
			r.owners[e.ID] = blockOwner{path: path, line: e.Line}
			continue
		}
		issues = append(issues, domain.Issue{
			FilePath:   path,
			Line:       e.Line,
			Type:       TypeDuplicateBlockID,
			Severity:   domain.SeverityError,
			Message:    fmt.Sprintf("Static block ID '%s' already defined in %s:%d", e.ID, first.path, first.line),
			Match:      e.ID,
			Suggestion: "Give every static block a unique id",
		})
	}
	return issues
}

// Len is the number of distinct ids registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}
