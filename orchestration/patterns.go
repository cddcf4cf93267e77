package orchestration

import (
	"fmt"
	"strings"

	"github.com/stockmind/stockmind/core"
)

// WorkflowPattern is a pre-declared capability sequence triggered by specific
// phrases. When a pattern matches, its sequence is used verbatim and
// per-capability keyword scoring is bypassed entirely.
type WorkflowPattern struct {
	ID          string   `yaml:"id" json:"id"`
	Triggers    []string `yaml:"triggers" json:"triggers"`
	Sequence    []string `yaml:"sequence" json:"sequence"`
	Description string   `yaml:"description" json:"description"`
}

// PatternCatalog is the immutable, ordered workflow pattern catalog. Order
// matters: the first pattern whose trigger set matches a query wins.
type PatternCatalog struct {
	patterns []WorkflowPattern
}

// NewPatternCatalog validates the patterns against the registry and returns
// an immutable catalog preserving the declared order.
func NewPatternCatalog(patterns []WorkflowPattern, registry *Registry) (*PatternCatalog, error) {
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: pattern has no id", core.ErrInvalidConfiguration)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate pattern id %s", core.ErrInvalidConfiguration, p.ID)
		}
		seen[p.ID] = true
		if len(p.Triggers) == 0 || len(p.Sequence) == 0 {
			return nil, fmt.Errorf("%w: pattern %s needs triggers and a sequence", core.ErrInvalidConfiguration, p.ID)
		}
		for _, id := range p.Sequence {
			if _, err := registry.Get(id); err != nil {
				return nil, fmt.Errorf("pattern %s references unknown capability: %w", p.ID, err)
			}
		}
	}

	copied := make([]WorkflowPattern, len(patterns))
	copy(copied, patterns)
	return &PatternCatalog{patterns: copied}, nil
}

// Match scans the catalog in declared order and returns the first pattern
// with a trigger phrase present in the query (case-insensitive substring).
// First match wins; later patterns are not consulted even if they would
// match more triggers.
func (c *PatternCatalog) Match(query string) *WorkflowPattern {
	lowered := strings.ToLower(query)
	for i := range c.patterns {
		for _, trigger := range c.patterns[i].Triggers {
			if strings.Contains(lowered, strings.ToLower(trigger)) {
				return &c.patterns[i]
			}
		}
	}
	return nil
}

// Patterns returns the catalog contents in declared order.
func (c *PatternCatalog) Patterns() []WorkflowPattern {
	return c.patterns
}

// DefaultPatterns returns the built-in workflow pattern catalog. Declared
// order is part of the contract: a query containing triggers of several
// patterns routes to the earliest one.
func DefaultPatterns() []WorkflowPattern {
	return []WorkflowPattern{
		{
			ID:          "comprehensive_analysis",
			Triggers:    []string{"comprehensive", "complete", "full analysis", "everything", "all aspects"},
			Sequence:    []string{CapDescriptive, CapDiagnostic, CapPredictive, CapPrescriptive},
			Description: "Complete 4-tier analysis workflow",
		},
		{
			ID:          "problem_solving",
			Triggers:    []string{"problem", "issue", "fix", "solve", "help with"},
			Sequence:    []string{CapDescriptive, CapDiagnostic, CapPrescriptive},
			Description: "Problem identification and solution workflow",
		},
		{
			ID:          "planning_workflow",
			Triggers:    []string{"plan", "planning", "strategy", "prepare", "future"},
			Sequence:    []string{CapDescriptive, CapPredictive, CapPrescriptive},
			Description: "Strategic planning workflow",
		},
		{
			ID:          "performance_review",
			Triggers:    []string{"performance", "review", "evaluation", "assessment"},
			Sequence:    []string{CapDescriptive, CapDiagnostic},
			Description: "Performance evaluation workflow",
		},
	}
}

// DefaultPatternCatalog builds the catalog from the built-in pattern set.
func DefaultPatternCatalog(registry *Registry) *PatternCatalog {
	c, err := NewPatternCatalog(DefaultPatterns(), registry)
	if err != nil {
		panic(err)
	}
	return c
}
