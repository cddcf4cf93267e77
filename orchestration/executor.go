package orchestration

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/stockmind/stockmind/core"
)

// Executor runs execution plans against the tool runtime. Each step is one
// synchronous invocation; a failing step is captured locally and never aborts
// the plan - partial results are still useful to the consolidator, so every
// step is attempted regardless of earlier failures.
//
// The tool runtime defines no timeouts of its own, so the executor enforces a
// per-step timeout and relies on the caller's context for the overall
// workflow deadline.
type Executor struct {
	invoker        core.Invoker
	stepTimeout    time.Duration
	maxConcurrency int
	semaphore      chan struct{}

	logger    core.Logger
	telemetry core.Telemetry
}

// NewExecutor creates an executor bound to the given tool invoker.
func NewExecutor(invoker core.Invoker, stepTimeout time.Duration, maxConcurrency int) *Executor {
	if stepTimeout <= 0 {
		stepTimeout = 30 * time.Second
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 5
	}
	return &Executor{
		invoker:        invoker,
		stepTimeout:    stepTimeout,
		maxConcurrency: maxConcurrency,
		semaphore:      make(chan struct{}, maxConcurrency),
	}
}

// SetLogger sets the logger provider
func (e *Executor) SetLogger(logger core.Logger) {
	if logger == nil {
		e.logger = &core.NoOpLogger{}
	} else {
		e.logger = logger
	}
}

// SetTelemetry sets the telemetry provider
func (e *Executor) SetTelemetry(t core.Telemetry) {
	if t == nil {
		e.telemetry = &core.NoOpTelemetry{}
	} else {
		e.telemetry = t
	}
}

// Execute runs all plan steps and returns their collected results. In
// sequential mode steps run strictly in order - step i+1 starts only after
// step i completes, whatever its status. In parallel mode all steps run
// concurrently under the concurrency bound, with no shared state between
// them; results are merged by step number, never by completion order.
func (e *Executor) Execute(ctx context.Context, plan *ExecutionPlan) (*ExecutionResult, error) {
	startTime := time.Now()

	if e.logger != nil {
		e.logger.Debug("Starting plan execution", map[string]interface{}{
			"operation":  "execute_plan",
			"plan_id":    plan.PlanID,
			"step_count": len(plan.Steps),
			"mode":       plan.Mode,
		})
	}

	result := &ExecutionResult{
		PlanID: plan.PlanID,
		Steps:  make([]StepResult, len(plan.Steps)),
	}

	switch plan.Mode {
	case ModeParallel:
		var wg sync.WaitGroup
		for i := range plan.Steps {
			wg.Add(1)
			go func(idx int, step ExecutionStep) {
				e.semaphore <- struct{}{}
				defer func() {
					<-e.semaphore
					wg.Done()
				}()
				result.Steps[idx] = e.executeStep(ctx, step)
			}(i, plan.Steps[i])
		}
		wg.Wait()
	default:
		for i, step := range plan.Steps {
			if err := ctx.Err(); err != nil {
				// Workflow deadline reached: record remaining steps as
				// errors rather than dropping them from the result.
				result.Steps[i] = StepResult{
					Step:   step,
					Status: StatusError,
					Error:  fmt.Sprintf("workflow canceled before step %d: %v", step.Number, err),
				}
				continue
			}
			result.Steps[i] = e.executeStep(ctx, step)
		}
	}

	for _, sr := range result.Steps {
		if sr.Status == StatusError {
			result.FailedSteps++
		}
	}
	result.TotalDuration = time.Since(startTime)

	if e.logger != nil {
		e.logger.Info("Plan execution finished", map[string]interface{}{
			"operation":    "execute_plan_complete",
			"plan_id":      plan.PlanID,
			"failed_steps": result.FailedSteps,
			"total_steps":  len(plan.Steps),
			"duration_ms":  result.TotalDuration.Milliseconds(),
		})
	}
	return result, nil
}

// executeStep invokes a single step's tool with the per-step timeout applied.
// A panicking tool becomes a failed step, not a crashed workflow.
func (e *Executor) executeStep(ctx context.Context, step ExecutionStep) (result StepResult) {
	stepStart := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = StepResult{
				Step:     step,
				Status:   StatusError,
				Error:    fmt.Sprintf("step %d panic: %v\n%s", step.Number, r, debug.Stack()),
				Duration: time.Since(stepStart),
			}
		}
	}()

	if e.telemetry != nil {
		var span core.Span
		ctx, span = e.telemetry.StartSpan(ctx, "orchestration.step")
		span.SetAttribute("tool_id", step.ToolID)
		span.SetAttribute("capability", step.CapabilityID)
		defer span.End()
	}

	if e.logger != nil {
		e.logger.Debug("Starting step execution", map[string]interface{}{
			"operation":  "step_execution_start",
			"step":       step.Number,
			"capability": step.CapabilityID,
			"tool_id":    step.ToolID,
		})
	}

	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	result = StepResult{Step: step}

	payload, err := e.invoker.Invoke(stepCtx, step.ToolID, step.Params)
	result.Duration = time.Since(stepStart)

	switch {
	case err != nil:
		result.Status = StatusError
		result.Error = err.Error()
	case payload == nil:
		result.Status = StatusError
		result.Error = fmt.Sprintf("tool %s returned no payload", step.ToolID)
	default:
		result.Payload = payload
		if ep, failed := payload.(*core.ErrorPayload); failed {
			result.Status = StatusError
			result.Error = ep.Message
		} else {
			result.Status = StatusSuccess
		}
	}

	if result.Status == StatusError && e.logger != nil {
		e.logger.Warn("Step execution failed", map[string]interface{}{
			"operation":  "step_execution_failed",
			"step":       step.Number,
			"capability": step.CapabilityID,
			"tool_id":    step.ToolID,
			"error":      result.Error,
		})
	}

	if e.logger != nil {
		e.logger.Debug("Step execution completed", map[string]interface{}{
			"operation":   "step_execution_complete",
			"step":        step.Number,
			"status":      result.Status,
			"duration_ms": result.Duration.Milliseconds(),
		})
	}
	return result
}
