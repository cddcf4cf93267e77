package orchestration

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/stockmind/stockmind/core"
)

// Capability is a named analytical specialization. Tier is its position in
// the foundation-to-action pipeline; lower tiers are prerequisite to higher
// ones. Capabilities are immutable after registry construction.
type Capability struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Specialization string   `yaml:"specialization" json:"specialization"`
	Tools          []string `yaml:"tools" json:"tools"`
	Default        string   `yaml:"default_tool" json:"default_tool,omitempty"`
	Keywords       []string `yaml:"keywords" json:"keywords"`
	Tier           int      `yaml:"tier" json:"tier"`
}

// DefaultTool is the tool used when no selection rule matches. When the
// capability declares no explicit default, the first listed tool is used.
func (c *Capability) DefaultTool() string {
	if c.Default != "" {
		return c.Default
	}
	if len(c.Tools) == 0 {
		return ""
	}
	return c.Tools[0]
}

// Registry is the immutable catalog of capabilities. It is constructed once
// at startup and passed by reference into the router and planner; there is no
// runtime mutation API.
type Registry struct {
	byID    map[string]*Capability
	ordered []*Capability // sorted ascending by tier
}

// NewRegistry builds a registry from the given capabilities. Tiers must be
// positive and IDs unique.
func NewRegistry(caps []Capability) (*Registry, error) {
	if len(caps) == 0 {
		return nil, core.ErrRegistryEmpty
	}

	byID := make(map[string]*Capability, len(caps))
	ordered := make([]*Capability, 0, len(caps))
	for i := range caps {
		c := caps[i]
		if c.ID == "" {
			return nil, fmt.Errorf("%w: capability %d has no id", core.ErrInvalidConfiguration, i)
		}
		if c.Tier <= 0 {
			return nil, fmt.Errorf("%w: capability %s has non-positive tier %d", core.ErrInvalidConfiguration, c.ID, c.Tier)
		}
		if len(c.Tools) == 0 {
			return nil, fmt.Errorf("%w: capability %s has no tools", core.ErrInvalidConfiguration, c.ID)
		}
		if c.Default != "" && !containsString(c.Tools, c.Default) {
			return nil, fmt.Errorf("%w: capability %s default tool %s is not among its tools", core.ErrInvalidConfiguration, c.ID, c.Default)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate capability id %s", core.ErrInvalidConfiguration, c.ID)
		}
		byID[c.ID] = &c
		ordered = append(ordered, &c)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Tier < ordered[j].Tier
	})

	return &Registry{byID: byID, ordered: ordered}, nil
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Get returns the capability with the given ID.
func (r *Registry) Get(id string) (*Capability, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrCapabilityNotFound, id)
	}
	return c, nil
}

// All returns the capabilities sorted ascending by tier.
func (r *Registry) All() []*Capability {
	return r.ordered
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.byID)
}

// SortByTier orders capability IDs ascending by tier. Unknown IDs keep their
// relative position at the end. The input slice is not modified.
func (r *Registry) SortByTier(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool {
		ci, iok := r.byID[out[i]]
		cj, jok := r.byID[out[j]]
		if !iok || !jok {
			return jok
		}
		return ci.Tier < cj.Tier
	})
	return out
}

// Capability identifiers for the four analytics tiers.
const (
	CapDescriptive  = "descriptive"
	CapDiagnostic   = "diagnostic"
	CapPredictive   = "predictive"
	CapPrescriptive = "prescriptive"
)

// DefaultCapabilities returns the built-in four-tier capability set.
func DefaultCapabilities() []Capability {
	return []Capability{
		{
			ID:             CapDescriptive,
			Name:           "Descriptive Analytics",
			Specialization: "Current state analysis and reporting",
			Tools: []string{
				"generate_inventory_summary",
				"get_item_details",
				"get_category_overview",
				"get_stock_alerts",
				"get_supplier_inventory_summary",
			},
			Keywords: []string{"summary", "current", "status", "overview", "details", "what is", "show me", "list", "report"},
			Tier:     1,
		},
		{
			ID:             CapDiagnostic,
			Name:           "Diagnostic Analytics",
			Specialization: "Root cause analysis and problem diagnosis",
			Tools: []string{
				"analyze_stockout_root_cause",
				"analyze_supplier_performance",
				"analyze_inventory_turnover",
				"analyze_demand_patterns",
				"diagnose_category_issues",
			},
			Keywords: []string{"why", "cause", "reason", "problem", "issue", "analyze", "root cause", "performance", "diagnosis"},
			Tier:     2,
		},
		{
			ID:             CapPredictive,
			Name:           "Predictive Analytics",
			Specialization: "Forecasting and trend analysis",
			Tools: []string{
				"forecast_demand",
				"predict_stockout_risk",
				"forecast_inventory_levels",
				"predict_seasonal_trends",
			},
			Keywords: []string{"forecast", "predict", "future", "trend", "will", "expect", "risk", "projection", "ahead"},
			Tier:     3,
		},
		{
			ID:             CapPrescriptive,
			Name:           "Prescriptive Analytics",
			Specialization: "Actionable recommendations and optimization",
			Tools: []string{
				"recommend_reorder_strategy",
				"optimize_safety_stock",
				"generate_action_plan",
				"optimize_inventory_investment",
			},
			// The general-purpose action plan needs no item context, so it
			// is the fallback rather than the first listed tool.
			Default:  "generate_action_plan",
			Keywords: []string{"recommend", "optimize", "should", "action", "strategy", "improve", "solution", "plan"},
			Tier:     4,
		},
	}
}

// DefaultRegistry builds the registry from the built-in capability set.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultCapabilities())
	if err != nil {
		// The built-in set is validated by tests; this is unreachable.
		panic(err)
	}
	return r
}

// registryFile is the on-disk YAML shape for registry overrides.
type registryFile struct {
	Capabilities []Capability      `yaml:"capabilities"`
	Patterns     []WorkflowPattern `yaml:"patterns"`
}

// LoadRegistryFile reads a capability registry and workflow pattern catalog
// from a YAML file. Either section may be omitted, in which case the built-in
// defaults are used for it.
func LoadRegistryFile(path string) (*Registry, *PatternCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	caps := file.Capabilities
	if len(caps) == 0 {
		caps = DefaultCapabilities()
	}
	registry, err := NewRegistry(caps)
	if err != nil {
		return nil, nil, err
	}

	patterns := file.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	catalog, err := NewPatternCatalog(patterns, registry)
	if err != nil {
		return nil, nil, err
	}

	return registry, catalog, nil
}
