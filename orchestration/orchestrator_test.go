package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stockmind/stockmind/core"
)

func newTestOrchestrator(t *testing.T, invoker core.Invoker, opts ...core.Option) *Orchestrator {
	t.Helper()

	cfg, err := core.NewConfig(opts...)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	o, err := NewOrchestrator(invoker, cfg)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

func TestNewOrchestratorRequiresInvoker(t *testing.T) {
	_, err := NewOrchestrator(nil, nil)
	if !errors.Is(err, core.ErrMissingConfiguration) {
		t.Errorf("NewOrchestrator(nil) = %v, want ErrMissingConfiguration", err)
	}
}

func TestNewOrchestratorBadRegistryPath(t *testing.T) {
	cfg, err := core.NewConfig(core.WithRegistryPath("/does/not/exist.yaml"))
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	_, err = NewOrchestrator(NewMockInvoker(), cfg)
	if err == nil {
		t.Fatal("expected error for missing registry file")
	}
	if !core.IsConfigurationError(err) {
		t.Errorf("error kind = %v, want configuration error", err)
	}
}

func TestRouteQueryDoesNotInvokeTools(t *testing.T) {
	invoker := NewMockInvoker()
	o := newTestOrchestrator(t, invoker)

	decision, plan, err := o.RouteQuery(context.Background(), "comprehensive analysis of ITEM_007")
	if err != nil {
		t.Fatalf("RouteQuery: %v", err)
	}
	if decision.MatchedWorkflow != "comprehensive_analysis" {
		t.Errorf("workflow = %q, want comprehensive_analysis", decision.MatchedWorkflow)
	}
	if len(plan.Steps) != 4 {
		t.Errorf("steps = %d, want 4", len(plan.Steps))
	}
	if calls := invoker.Calls(); len(calls) != 0 {
		t.Errorf("routing invoked tools: %v", calls)
	}
}

// A failing diagnostic step must not sink the workflow: its findings are
// simply absent from the report while the other tiers still contribute.
func TestExecuteWorkflowSurvivesFailedStep(t *testing.T) {
	invoker := NewMockInvoker()
	invoker.Respond("get_item_details", &core.FoundationPayload{
		Status:   "Below Reorder Point",
		Insights: []string{"ITEM_007 is below its reorder point"},
	})
	invoker.Respond("analyze_stockout_root_cause", &core.ErrorPayload{
		Code:    core.ErrCodeNotFound,
		Message: "item ITEM_007 has no sales history",
	})
	invoker.Respond("forecast_demand", &core.ForecastPayload{
		TotalForecast: 420.5,
		AverageDaily:  14.0,
		HorizonDays:   30,
	})
	invoker.Respond("generate_action_plan", &core.ActionPayload{
		SpecificActions: []string{"Reorder ITEM_007: stock below reorder point (12 < 40)"},
		Priority:        "High",
	})

	o := newTestOrchestrator(t, invoker)
	report, err := o.ExecuteWorkflow(context.Background(), "comprehensive analysis of ITEM_007")
	if err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}

	if len(report.Steps) != 4 {
		t.Fatalf("report steps = %d, want 4", len(report.Steps))
	}
	if report.Steps[1].Status != StatusError {
		t.Errorf("diagnostic step status = %q, want error", report.Steps[1].Status)
	}

	joined := strings.Join(report.KeyFindings, "\n")
	if !strings.Contains(joined, "[Current State]") {
		t.Errorf("missing current state finding: %v", report.KeyFindings)
	}
	if !strings.Contains(joined, "[Forecast]") {
		t.Errorf("missing forecast finding: %v", report.KeyFindings)
	}
	if !strings.Contains(joined, "[Action Required]") {
		t.Errorf("missing action finding: %v", report.KeyFindings)
	}
	if strings.Contains(joined, "[Root Cause]") {
		t.Errorf("failed diagnostic step leaked findings: %v", report.KeyFindings)
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations from action tier and standing set")
	}
}

func TestExecuteWorkflowRejectsBadServiceLevel(t *testing.T) {
	invoker := NewMockInvoker()
	o := newTestOrchestrator(t, invoker)

	_, err := o.ExecuteWorkflowWithParams(context.Background(), "recommend reorder strategy for ITEM_001",
		map[string]interface{}{"service_level": 1.5})
	if !core.IsInputError(err) {
		t.Errorf("error = %v, want input error", err)
	}
	if calls := invoker.Calls(); len(calls) != 0 {
		t.Errorf("invalid plan still invoked tools: %v", calls)
	}

	metrics := o.GetMetrics()
	if metrics.FailedRequests != 1 || metrics.TotalRequests != 1 {
		t.Errorf("metrics = %+v, want 1 total / 1 failed", metrics)
	}
}

func TestExecuteWorkflowMetrics(t *testing.T) {
	invoker := NewMockInvoker()
	invoker.Fail("forecast_demand", errors.New("upstream unavailable"))

	o := newTestOrchestrator(t, invoker)
	_, err := o.ExecuteWorkflow(context.Background(), "comprehensive analysis of ITEM_003")
	if err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}

	metrics := o.GetMetrics()
	if metrics.TotalRequests != 1 || metrics.SuccessfulRequests != 1 {
		t.Errorf("request counters = %+v", metrics)
	}
	if metrics.ToolCallsTotal != 4 {
		t.Errorf("tool calls = %d, want 4", metrics.ToolCallsTotal)
	}
	if metrics.ToolCallsFailed != 1 {
		t.Errorf("failed tool calls = %d, want 1", metrics.ToolCallsFailed)
	}
	if metrics.LastRequestTime.IsZero() {
		t.Error("last request time not set")
	}
}

func TestExecuteWorkflowRecordsHistory(t *testing.T) {
	invoker := NewMockInvoker()
	o := newTestOrchestrator(t, invoker, core.WithHistory(10))

	if _, err := o.ExecuteWorkflow(context.Background(), "inventory summary"); err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}

	// Recording runs asynchronously off the request path.
	deadline := time.Now().Add(2 * time.Second)
	for {
		records, err := o.History().ListRecent(context.Background(), 10)
		if err != nil {
			t.Fatalf("ListRecent: %v", err)
		}
		if len(records) == 1 {
			if records[0].Query != "inventory summary" || !records[0].Success {
				t.Errorf("record = %+v", records[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("history record never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHistoryDisabledByDefault(t *testing.T) {
	o := newTestOrchestrator(t, NewMockInvoker())

	if _, ok := o.History().(*NoOpHistoryStore); !ok {
		t.Errorf("default history store = %T, want NoOpHistoryStore", o.History())
	}
}
