package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	stockmind "github.com/stockmind/stockmind"
	"github.com/stockmind/stockmind/core"
)

// Orchestrator is the top-level entry point: it routes a free-text inventory
// question, plans and executes the resulting workflow, and consolidates the
// step results into one report. Routing and planning are pure; only execution
// touches the outside world through the tool invoker.
type Orchestrator struct {
	config       *core.Config
	registry     *Registry
	catalog      *PatternCatalog
	router       *Router
	planner      *Planner
	executor     *Executor
	consolidator *Consolidator
	history      HistoryStore

	logger    core.Logger
	telemetry core.Telemetry

	mu      sync.Mutex
	metrics OrchestratorMetrics
}

// NewOrchestrator wires the full pipeline over the given tool invoker. The
// capability registry and workflow pattern catalog are built once here and
// never mutated afterwards; a registry that fails to load is the one
// catastrophic, constructor-level error in the pipeline.
func NewOrchestrator(invoker core.Invoker, cfg *core.Config) (*Orchestrator, error) {
	if invoker == nil {
		return nil, fmt.Errorf("%w: tool invoker is required", core.ErrMissingConfiguration)
	}
	if cfg == nil {
		var err error
		cfg, err = core.NewConfig()
		if err != nil {
			return nil, err
		}
	}

	var (
		registry *Registry
		catalog  *PatternCatalog
		err      error
	)
	if cfg.RegistryPath != "" {
		registry, catalog, err = LoadRegistryFile(cfg.RegistryPath)
		if err != nil {
			return nil, core.NewPipelineError("orchestration.NewOrchestrator", "configuration",
				fmt.Errorf("loading registry from %s: %w", cfg.RegistryPath, err))
		}
	} else {
		registry = DefaultRegistry()
		catalog = DefaultPatternCatalog(registry)
	}

	o := &Orchestrator{
		config:       cfg,
		registry:     registry,
		catalog:      catalog,
		router:       NewRouter(registry, catalog),
		planner:      NewPlanner(registry),
		executor:     NewExecutor(invoker, cfg.Execution.StepTimeout, cfg.Execution.MaxConcurrency),
		consolidator: NewConsolidator(),
		history:      newHistoryStore(cfg),
		logger:       &core.NoOpLogger{},
		telemetry:    &core.NoOpTelemetry{},
	}
	o.propagateDependencies()

	o.logger.Info("Orchestrator initialized", map[string]interface{}{
		"operation":    "orchestrator_init",
		"name":         cfg.Name,
		"version":      stockmind.Version,
		"capabilities": registry.Len(),
		"patterns":     len(catalog.Patterns()),
	})
	return o, nil
}

// newHistoryStore picks the history backend from configuration. A Redis URL
// that cannot be reached degrades to the in-memory store rather than failing
// construction; history is an observability aid, not a pipeline dependency.
func newHistoryStore(cfg *core.Config) HistoryStore {
	if !cfg.History.Enabled {
		return &NoOpHistoryStore{}
	}
	if cfg.History.RedisURL != "" {
		store, err := NewRedisHistoryStore(
			WithHistoryRedisURL(cfg.History.RedisURL),
			WithHistoryKeyPrefix(cfg.History.KeyPrefix+":"),
			WithHistoryTTL(cfg.History.TTL),
		)
		if err == nil {
			return store
		}
	}
	return NewMemoryHistoryStore(cfg.History.Size)
}

// SetLogger sets the logger provider
func (o *Orchestrator) SetLogger(logger core.Logger) {
	if logger == nil {
		o.logger = &core.NoOpLogger{}
	} else {
		o.logger = logger
	}
	o.propagateDependencies()
}

// SetTelemetry sets the telemetry provider
func (o *Orchestrator) SetTelemetry(t core.Telemetry) {
	if t == nil {
		o.telemetry = &core.NoOpTelemetry{}
	} else {
		o.telemetry = t
	}
	o.propagateDependencies()
}

// SetHistoryStore swaps the history backend. Useful for binding an external
// store after construction.
func (o *Orchestrator) SetHistoryStore(store HistoryStore) {
	if store == nil {
		o.history = &NoOpHistoryStore{}
	} else {
		o.history = store
	}
}

func (o *Orchestrator) propagateDependencies() {
	o.router.SetLogger(o.logger)
	o.planner.SetLogger(o.logger)
	o.executor.SetLogger(o.logger)
	o.executor.SetTelemetry(o.telemetry)
	o.consolidator.SetLogger(o.logger)
}

// RouteQuery routes a query and builds its execution plan without running it.
// It is pure apart from plan ID generation.
func (o *Orchestrator) RouteQuery(ctx context.Context, query string) (*RoutingDecision, *ExecutionPlan, error) {
	return o.routeQuery(ctx, query, nil)
}

// RouteQueryWithParams is RouteQuery with caller-supplied parameter overrides
// merged into every step.
func (o *Orchestrator) RouteQueryWithParams(ctx context.Context, query string, overrides map[string]interface{}) (*RoutingDecision, *ExecutionPlan, error) {
	return o.routeQuery(ctx, query, overrides)
}

func (o *Orchestrator) routeQuery(ctx context.Context, query string, overrides map[string]interface{}) (*RoutingDecision, *ExecutionPlan, error) {
	_, span := o.telemetry.StartSpan(ctx, "orchestration.route_query")
	defer span.End()
	span.SetAttribute("query_length", len(query))

	decision := o.router.Route(query)
	plan, err := o.planner.Build(decision, overrides)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	span.SetAttribute("plan_id", plan.PlanID)
	span.SetAttribute("steps", len(plan.Steps))
	return &decision, plan, nil
}

// ExecuteWorkflow routes, plans, executes, and consolidates one query end to
// end under the configured workflow deadline. Per-step failures are recorded
// inside the report; the call itself errors only for malformed input
// parameters, since routing never fails and execution is best-effort.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, query string) (*ConsolidatedReport, error) {
	return o.ExecuteWorkflowWithParams(ctx, query, nil)
}

// ExecuteWorkflowWithParams is ExecuteWorkflow with caller-supplied parameter
// overrides merged into every step.
func (o *Orchestrator) ExecuteWorkflowWithParams(ctx context.Context, query string, overrides map[string]interface{}) (*ConsolidatedReport, error) {
	requestID := uuid.NewString()
	startTime := time.Now()

	ctx, span := o.telemetry.StartSpan(ctx, "orchestration.execute_workflow")
	defer span.End()
	span.SetAttribute("request_id", requestID)

	o.logger.Info("Processing workflow request", map[string]interface{}{
		"operation":  "execute_workflow",
		"request_id": requestID,
		"query":      query,
	})

	decision, plan, err := o.routeQuery(ctx, query, overrides)
	if err != nil {
		o.recordRequest(requestID, query, "", nil, time.Since(startTime), false)
		span.RecordError(err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.config.Execution.WorkflowTimeout)
	defer cancel()

	result, err := o.executor.Execute(ctx, plan)
	if err != nil {
		o.recordRequest(requestID, query, decision.MatchedWorkflow, nil, time.Since(startTime), false)
		span.RecordError(err)
		return nil, err
	}

	report := o.consolidator.Consolidate(decision, result)

	o.recordRequest(requestID, query, decision.MatchedWorkflow, result, time.Since(startTime), true)
	o.telemetry.RecordMetric("stockmind.workflow.duration_ms", float64(time.Since(startTime).Milliseconds()), map[string]string{
		"workflow": decision.MatchedWorkflow,
	})

	o.logger.Info("Workflow request completed", map[string]interface{}{
		"operation":    "execute_workflow_complete",
		"request_id":   requestID,
		"plan_id":      plan.PlanID,
		"failed_steps": result.FailedSteps,
		"duration_ms":  time.Since(startTime).Milliseconds(),
	})
	return report, nil
}

// recordRequest updates metrics and persists a history record. History
// persistence is best effort and must never block the request path.
func (o *Orchestrator) recordRequest(requestID, query, workflow string, result *ExecutionResult, duration time.Duration, success bool) {
	o.mu.Lock()
	o.metrics.TotalRequests++
	if success {
		o.metrics.SuccessfulRequests++
	} else {
		o.metrics.FailedRequests++
	}
	if result != nil {
		o.metrics.ToolCallsTotal += int64(len(result.Steps))
		o.metrics.ToolCallsFailed += int64(result.FailedSteps)
	}
	o.metrics.LastRequestTime = time.Now()
	o.mu.Unlock()

	record := &ExecutionRecord{
		RequestID: requestID,
		Timestamp: time.Now(),
		Query:     query,
		Workflow:  workflow,
		Duration:  duration,
		Success:   success,
	}
	if result != nil {
		record.StepCount = len(result.Steps)
		record.FailedSteps = result.FailedSteps
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.history.Record(ctx, record); err != nil {
			o.logger.Warn("Failed to record execution history", map[string]interface{}{
				"operation":  "history_record",
				"request_id": requestID,
				"error":      err.Error(),
			})
		}
	}()
}

// GetMetrics returns a snapshot of the orchestrator's counters.
func (o *Orchestrator) GetMetrics() OrchestratorMetrics {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.metrics
}

// History exposes the configured history store for inspection.
func (o *Orchestrator) History() HistoryStore {
	return o.history
}

// Registry exposes the immutable capability registry.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}
