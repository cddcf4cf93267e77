// Package orchestration routes free-text inventory questions to the
// specialized analytics capabilities, plans their execution order and
// parameters, runs the plan against the tool runtime, and consolidates the
// step results into a single prioritized report.
package orchestration

import (
	"time"

	"github.com/stockmind/stockmind/core"
)

// Complexity labels a routing decision by the number of required capabilities.
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

// ExecutionMode defines how plan steps are dispatched.
type ExecutionMode string

const (
	// ModeSequential runs steps strictly in order; step i+1 starts only after
	// step i completes, regardless of its status.
	ModeSequential ExecutionMode = "sequential"

	// ModeParallel runs all steps concurrently with no shared state. Only
	// chosen when every required capability sits on the foundation tier.
	ModeParallel ExecutionMode = "parallel"
)

// StepStatus marks the outcome of a single executed step.
type StepStatus string

const (
	StatusSuccess StepStatus = "success"
	StatusError   StepStatus = "error"
)

// CapabilityScore records how strongly a capability's lexicon matched a query.
type CapabilityScore struct {
	MatchCount      int      `json:"match_count"`
	MatchedKeywords []string `json:"matched_keywords"`
	// Confidence is MatchCount divided by lexicon size, clamped to [0,1].
	Confidence float64 `json:"confidence"`
}

// RoutingDecision is the router's verdict for one query. When MatchedWorkflow
// is set, Required equals that pattern's declared sequence verbatim and Scores
// is empty; otherwise Required comes from keyword scoring, sorted ascending by
// capability tier.
type RoutingDecision struct {
	Query           string                     `json:"query"`
	MatchedWorkflow string                     `json:"matched_workflow,omitempty"`
	Required        []string                   `json:"required"`
	Scores          map[string]CapabilityScore `json:"scores,omitempty"`
	Complexity      Complexity                 `json:"complexity"`
	Entities        ExtractedEntities          `json:"entities"`
}

// ExecutionStep is one parameterized tool invocation in a plan. Step numbers
// are contiguous starting at 1.
type ExecutionStep struct {
	Number         int                    `json:"number"`
	CapabilityID   string                 `json:"capability_id"`
	CapabilityName string                 `json:"capability_name"`
	ToolID         string                 `json:"tool_id"`
	Params         map[string]interface{} `json:"params"`
	DependsOn      []int                  `json:"depends_on,omitempty"`
	ExpectedOutput string                 `json:"expected_output"`
}

// ExecutionPlan is the ordered, dependency-annotated set of steps derived
// from a routing decision.
type ExecutionPlan struct {
	PlanID                string          `json:"plan_id"`
	Query                 string          `json:"query"`
	Steps                 []ExecutionStep `json:"steps"`
	Mode                  ExecutionMode   `json:"mode"`
	ConsolidationRequired bool            `json:"consolidation_required"`
	FocusAreas            []string        `json:"focus_areas,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// StepResult is the outcome of executing one plan step. Payload carries the
// tool's tagged result; on status error it holds the error payload (or nil
// when the invocation itself failed before producing one).
type StepResult struct {
	Step     ExecutionStep `json:"step"`
	Status   StepStatus    `json:"status"`
	Payload  core.Payload  `json:"payload,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ExecutionResult collects all step results of one plan run. Steps are keyed
// by step number, never by completion order, so parallel runs merge the same.
type ExecutionResult struct {
	PlanID        string        `json:"plan_id"`
	Steps         []StepResult  `json:"steps"`
	FailedSteps   int           `json:"failed_steps"`
	TotalDuration time.Duration `json:"total_duration"`
}

// ConsolidatedReport merges the tier-tagged findings of all successful steps
// into one prioritized report.
type ConsolidatedReport struct {
	Query           string       `json:"query"`
	KeyFindings     []string     `json:"key_findings"`
	CrossInsights   []string     `json:"cross_insights,omitempty"`
	Recommendations []string     `json:"recommendations"`
	Consistent      bool         `json:"consistent"`
	Warning         string       `json:"warning,omitempty"`
	Steps           []StepResult `json:"steps"`
}

// ExecutionRecord is a historical entry kept by the orchestrator.
type ExecutionRecord struct {
	RequestID   string        `json:"request_id"`
	Timestamp   time.Time     `json:"timestamp"`
	Query       string        `json:"query"`
	Workflow    string        `json:"workflow,omitempty"`
	StepCount   int           `json:"step_count"`
	FailedSteps int           `json:"failed_steps"`
	Duration    time.Duration `json:"duration"`
	Success     bool          `json:"success"`
}

// OrchestratorMetrics contains counters maintained by the orchestrator.
type OrchestratorMetrics struct {
	TotalRequests      int64     `json:"total_requests"`
	SuccessfulRequests int64     `json:"successful_requests"`
	FailedRequests     int64     `json:"failed_requests"`
	ToolCallsTotal     int64     `json:"tool_calls_total"`
	ToolCallsFailed    int64     `json:"tool_calls_failed"`
	LastRequestTime    time.Time `json:"last_request_time"`
}

// complexityFor derives the complexity label purely from the required-list
// length: 0 or 1 capability is Low, 2 is Medium, more is High.
func complexityFor(required []string) Complexity {
	switch {
	case len(required) > 2:
		return ComplexityHigh
	case len(required) == 2:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

// Fixed focus areas attached to every multi-capability plan.
var consolidationFocusAreas = []string{
	"Key findings from each tier",
	"Conflicting recommendations resolution",
	"Prioritized action items",
	"Implementation timeline",
}
