package orchestration

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockmind/stockmind/core"
)

// Parameter defaults applied during synthesis.
const (
	defaultForecastPeriods = 30
	defaultServiceLevel    = 0.95
	defaultWindowStart     = "2024-01-01"
	defaultWindowEnd       = "2024-12-31"
)

// toolRule is one row of a capability's tool decision list. A rule matches
// when the named entity field is non-empty, or when every phrase occurs in
// the lowercased query. Rules are evaluated top to bottom; the first match
// wins, and the capability's declared default tool is the fallback.
type toolRule struct {
	entity  entityField
	phrases []string
	tool    string
}

type entityField int

const (
	entityNone entityField = iota
	entityItems
	entityCategories
	entitySuppliers
)

func (f entityField) nonEmpty(e ExtractedEntities) bool {
	switch f {
	case entityItems:
		return len(e.Items) > 0
	case entityCategories:
		return len(e.Categories) > 0
	case entitySuppliers:
		return len(e.Suppliers) > 0
	default:
		return false
	}
}

// toolRules holds the per-capability decision lists. Keeping the policy in
// one declarative table keeps it testable in isolation from routing.
var toolRules = map[string][]toolRule{
	CapDescriptive: {
		{entity: entityItems, tool: "get_item_details"},
		{entity: entityCategories, tool: "get_category_overview"},
		{entity: entitySuppliers, tool: "get_supplier_inventory_summary"},
		{phrases: []string{"alert"}, tool: "get_stock_alerts"},
		{phrases: []string{"urgent"}, tool: "get_stock_alerts"},
	},
	CapDiagnostic: {
		{phrases: []string{"stockout"}, tool: "analyze_stockout_root_cause"},
		{phrases: []string{"out of stock"}, tool: "analyze_stockout_root_cause"},
		{phrases: []string{"supplier", "performance"}, tool: "analyze_supplier_performance"},
		{phrases: []string{"turnover"}, tool: "analyze_inventory_turnover"},
		{phrases: []string{"demand", "pattern"}, tool: "analyze_demand_patterns"},
		{entity: entityCategories, tool: "diagnose_category_issues"},
	},
	CapPredictive: {
		{phrases: []string{"risk"}, tool: "predict_stockout_risk"},
		{phrases: []string{"seasonal"}, tool: "predict_seasonal_trends"},
		{phrases: []string{"inventory level"}, tool: "forecast_inventory_levels"},
	},
	CapPrescriptive: {
		{phrases: []string{"reorder"}, tool: "recommend_reorder_strategy"},
		{phrases: []string{"safety stock"}, tool: "optimize_safety_stock"},
		{phrases: []string{"budget"}, tool: "optimize_inventory_investment"},
		{phrases: []string{"investment"}, tool: "optimize_inventory_investment"},
	},
}

// expectedOutputs maps capability IDs to their output category tag.
var expectedOutputs = map[string]string{
	CapDescriptive:  "Current state report",
	CapDiagnostic:   "Root cause analysis",
	CapPredictive:   "Forecast and predictions",
	CapPrescriptive: "Actionable recommendations",
}

// Planner turns a routing decision into an ordered execution plan: tool
// choice, parameter synthesis, dependency edges, and execution mode. Like the
// router it is pure and safe for concurrent use.
type Planner struct {
	registry *Registry
	logger   core.Logger
}

// NewPlanner creates a planner over the given registry.
func NewPlanner(registry *Registry) *Planner {
	return &Planner{registry: registry}
}

// SetLogger sets the logger provider
func (p *Planner) SetLogger(logger core.Logger) {
	if logger == nil {
		p.logger = &core.NoOpLogger{}
	} else {
		p.logger = logger
	}
}

// Build creates the execution plan for a routing decision. Overrides are
// caller-supplied parameters merged into every step after synthesis; a
// service_level override outside [0.0, 1.0] is rejected before any external
// call is made. This is the planner's only failure mode.
func (p *Planner) Build(decision RoutingDecision, overrides map[string]interface{}) (*ExecutionPlan, error) {
	if err := validateOverrides(overrides); err != nil {
		return nil, err
	}

	mode := p.executionMode(decision.Required)
	lowered := strings.ToLower(decision.Query)

	plan := &ExecutionPlan{
		PlanID:    uuid.NewString(),
		Query:     decision.Query,
		Mode:      mode,
		CreatedAt: time.Now(),
	}

	for i, capID := range decision.Required {
		cap, err := p.registry.Get(capID)
		if err != nil {
			return nil, err
		}

		tool := selectTool(cap, decision.Entities, lowered)
		params := synthesizeParams(tool, decision.Entities)
		for k, v := range overrides {
			params[k] = v
		}

		step := ExecutionStep{
			Number:         i + 1,
			CapabilityID:   cap.ID,
			CapabilityName: cap.Name,
			ToolID:         tool,
			Params:         params,
			ExpectedOutput: expectedOutputs[cap.ID],
		}
		if mode == ModeSequential {
			// Step i depends on every prior step.
			for n := 1; n <= i; n++ {
				step.DependsOn = append(step.DependsOn, n)
			}
		}
		plan.Steps = append(plan.Steps, step)
	}

	if len(decision.Required) > 1 {
		plan.ConsolidationRequired = true
		plan.FocusAreas = append([]string(nil), consolidationFocusAreas...)
	}

	if p.logger != nil {
		p.logger.Debug("Execution plan built", map[string]interface{}{
			"operation":     "plan_build",
			"plan_id":       plan.PlanID,
			"steps":         len(plan.Steps),
			"mode":          plan.Mode,
			"consolidation": plan.ConsolidationRequired,
		})
	}
	return plan, nil
}

// executionMode is parallel only for multi-capability plans where no
// required capability sits above the foundation tier; any dependent tier
// forces strict sequential ordering.
func (p *Planner) executionMode(required []string) ExecutionMode {
	if len(required) < 2 {
		return ModeSequential
	}
	for _, id := range required {
		cap, err := p.registry.Get(id)
		if err != nil || cap.Tier > 1 {
			return ModeSequential
		}
	}
	return ModeParallel
}

// selectTool evaluates the capability's decision list top to bottom and
// returns the first matching rule's tool, falling back to the declared
// default tool.
func selectTool(cap *Capability, entities ExtractedEntities, lowered string) string {
	for _, rule := range toolRules[cap.ID] {
		if rule.entity != entityNone {
			if rule.entity.nonEmpty(entities) {
				return rule.tool
			}
			continue
		}
		allPresent := true
		for _, phrase := range rule.phrases {
			if !strings.Contains(lowered, phrase) {
				allPresent = false
				break
			}
		}
		if allPresent && len(rule.phrases) > 0 {
			return rule.tool
		}
	}
	return cap.DefaultTool()
}

// synthesizeParams builds a step's parameter mapping. The first extracted
// item, category and supplier become parameters; later matches are dropped.
// Tool-keyed defaults are merged afterwards and never overwrite
// entity-derived values.
func synthesizeParams(tool string, entities ExtractedEntities) map[string]interface{} {
	params := make(map[string]interface{})

	if len(entities.Items) > 0 {
		params["item"] = entities.Items[0]
	}
	if len(entities.Categories) > 0 {
		params["category"] = entities.Categories[0]
	}
	if len(entities.Suppliers) > 0 {
		params["supplier"] = entities.Suppliers[0]
	}

	if strings.Contains(tool, "forecast") {
		setDefault(params, "forecast_periods", defaultForecastPeriods)
	}
	if strings.Contains(tool, "summary") {
		setDefault(params, "start_date", defaultWindowStart)
		setDefault(params, "end_date", defaultWindowEnd)
	}
	for _, metric := range entities.Metrics {
		if metric == "service level" {
			setDefault(params, "service_level", defaultServiceLevel)
		}
	}

	return params
}

func setDefault(params map[string]interface{}, key string, value interface{}) {
	if _, exists := params[key]; !exists {
		params[key] = value
	}
}

// validateOverrides rejects malformed caller-supplied parameters.
func validateOverrides(overrides map[string]interface{}) error {
	if overrides == nil {
		return nil
	}
	if raw, ok := overrides["service_level"]; ok {
		level, ok := toFloat(raw)
		if !ok {
			return core.NewPipelineError("planner.Build", "input", core.ErrInvalidParameter)
		}
		if level < 0.0 || level > 1.0 {
			return core.NewPipelineError("planner.Build", "input", core.ErrServiceLevelRange)
		}
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
