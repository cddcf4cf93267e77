package orchestration

import (
	"fmt"
	"strings"

	"github.com/stockmind/stockmind/core"
)

// Finding tags prepended to consolidated key findings, one per payload kind.
const (
	tagCurrentState   = "[Current State]"
	tagRootCause      = "[Root Cause]"
	tagForecast       = "[Forecast]"
	tagActionRequired = "[Action Required]"
)

// maxRecommendations caps the final recommendation list.
const maxRecommendations = 6

// Standing strategic recommendations appended to every consolidated report
// after any critical items.
var standingRecommendations = []string{
	"Implement continuous monitoring system",
	"Review inventory policies quarterly",
	"Strengthen supplier relationships",
	"Enhance demand forecasting accuracy",
}

// Consolidator merges the tier-tagged findings of executed steps into one
// prioritized report. Findings are keyed by payload kind, never by step
// position, so sequential and parallel runs consolidate identically.
type Consolidator struct {
	logger core.Logger
}

// NewConsolidator creates a consolidator.
func NewConsolidator() *Consolidator {
	return &Consolidator{}
}

// SetLogger sets the logger provider
func (c *Consolidator) SetLogger(logger core.Logger) {
	if logger == nil {
		c.logger = &core.NoOpLogger{}
	} else {
		c.logger = logger
	}
}

// Consolidate builds the final report for one execution. Failed steps
// contribute nothing to key findings but stay in the report for transparency.
// When no step succeeded the report is still produced, with empty findings
// and a warning.
func (c *Consolidator) Consolidate(decision *RoutingDecision, result *ExecutionResult) *ConsolidatedReport {
	report := &ConsolidatedReport{
		Query:      decision.Query,
		Consistent: true,
		Steps:      result.Steps,
	}

	succeeded := 0
	for _, sr := range result.Steps {
		if sr.Status != StatusSuccess || sr.Payload == nil {
			continue
		}
		succeeded++
		report.KeyFindings = append(report.KeyFindings, c.extractFindings(sr.Payload)...)
	}

	if len(result.Steps) > 1 {
		report.CrossInsights = append(report.CrossInsights,
			fmt.Sprintf("Coordinated analysis across %d capabilities provides a complete operational picture", len(result.Steps)))
		if result.FailedSteps > 0 {
			report.CrossInsights = append(report.CrossInsights,
				fmt.Sprintf("%d of %d capabilities reported errors; findings below reflect the remaining tiers", result.FailedSteps, len(result.Steps)))
		}
	}

	report.Recommendations = c.buildRecommendations(result.Steps)

	if succeeded == 0 {
		report.Consistent = false
		report.Warning = "no step produced usable results; report contains recorded errors only"
	}

	if c.logger != nil {
		c.logger.Info("Consolidated execution results", map[string]interface{}{
			"operation":        "consolidate",
			"plan_id":          result.PlanID,
			"findings":         len(report.KeyFindings),
			"recommendations":  len(report.Recommendations),
			"successful_steps": succeeded,
			"failed_steps":     result.FailedSteps,
		})
	}
	return report
}

// extractFindings pulls the tier-specific fields out of one payload and tags
// them. The action tier contributes only its first two specific actions.
func (c *Consolidator) extractFindings(payload core.Payload) []string {
	var findings []string
	switch p := payload.(type) {
	case *core.FoundationPayload:
		for _, insight := range p.Insights {
			findings = append(findings, tagCurrentState+" "+insight)
		}
	case *core.DiagnosisPayload:
		for _, cause := range p.Causes {
			findings = append(findings, tagRootCause+" "+cause)
		}
	case *core.ForecastPayload:
		findings = append(findings, fmt.Sprintf("%s Total projected demand: %.1f units", tagForecast, p.TotalForecast))
	case *core.ActionPayload:
		actions := p.SpecificActions
		if len(actions) > 2 {
			actions = actions[:2]
		}
		for _, action := range actions {
			findings = append(findings, tagActionRequired+" "+action)
		}
	}
	return findings
}

// buildRecommendations promotes urgent action-tier entries into a critical
// bucket, appends the standing strategic quartet, and truncates to the cap.
func (c *Consolidator) buildRecommendations(steps []StepResult) []string {
	var critical []string
	for _, sr := range steps {
		if sr.Status != StatusSuccess {
			continue
		}
		action, ok := sr.Payload.(*core.ActionPayload)
		if !ok {
			continue
		}
		for _, entry := range append(append([]string{}, action.SpecificActions...), action.Recommendations...) {
			if isUrgent(entry) {
				critical = append(critical, entry)
			}
		}
	}

	recommendations := append(critical, standingRecommendations...)
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

// isUrgent reports whether an action entry belongs in the critical bucket.
// "URGENT" is matched as a literal marker, "immediate" case-insensitively.
func isUrgent(entry string) bool {
	return strings.Contains(entry, "URGENT") || strings.Contains(strings.ToLower(entry), "immediate")
}
