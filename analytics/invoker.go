package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/stockmind/stockmind/core"
)

// toolFunc is the uniform shape of every analytical tool.
type toolFunc func(ctx context.Context, params map[string]interface{}) (core.Payload, error)

// ToolInvoker binds every analytical tool behind the invoke(toolID, params)
// boundary the orchestration layer depends on. Lookup misses and bad inputs
// surface as error payloads so the executor records them as failed steps
// instead of aborting a workflow; only infrastructure failures return a Go
// error.
type ToolInvoker struct {
	tools  map[string]toolFunc
	logger core.Logger
}

// NewToolInvoker wires the four tier services over one data provider.
func NewToolInvoker(provider DataProvider) *ToolInvoker {
	descriptive := NewDescriptiveService(provider)
	diagnostic := NewDiagnosticService(provider)
	predictive := NewPredictiveService(provider)
	prescriptive := NewPrescriptiveService(provider)

	inv := &ToolInvoker{logger: &core.NoOpLogger{}}
	inv.tools = map[string]toolFunc{
		"generate_inventory_summary":     descriptive.GenerateInventorySummary,
		"get_item_details":               descriptive.GetItemDetails,
		"get_category_overview":          descriptive.GetCategoryOverview,
		"get_stock_alerts":               descriptive.GetStockAlerts,
		"get_supplier_inventory_summary": descriptive.GetSupplierInventorySummary,

		"analyze_stockout_root_cause":  diagnostic.AnalyzeStockoutRootCause,
		"analyze_supplier_performance": diagnostic.AnalyzeSupplierPerformance,
		"analyze_inventory_turnover":   diagnostic.AnalyzeInventoryTurnover,
		"analyze_demand_patterns":      diagnostic.AnalyzeDemandPatterns,
		"diagnose_category_issues":     diagnostic.DiagnoseCategoryIssues,

		"forecast_demand":           predictive.ForecastDemand,
		"predict_stockout_risk":     predictive.PredictStockoutRisk,
		"forecast_inventory_levels": predictive.ForecastInventoryLevels,
		"predict_seasonal_trends":   predictive.PredictSeasonalTrends,

		"recommend_reorder_strategy":    prescriptive.RecommendReorderStrategy,
		"optimize_safety_stock":         prescriptive.OptimizeSafetyStock,
		"generate_action_plan":          prescriptive.GenerateActionPlan,
		"optimize_inventory_investment": prescriptive.OptimizeInventoryInvestment,
	}
	return inv
}

// SetLogger sets the logger provider
func (inv *ToolInvoker) SetLogger(logger core.Logger) {
	if logger == nil {
		inv.logger = &core.NoOpLogger{}
	} else {
		inv.logger = logger
	}
}

// Has reports whether a tool ID is registered.
func (inv *ToolInvoker) Has(toolID string) bool {
	_, ok := inv.tools[toolID]
	return ok
}

// Invoke runs one tool synchronously and returns its payload.
func (inv *ToolInvoker) Invoke(ctx context.Context, toolID string, params map[string]interface{}) (core.Payload, error) {
	tool, ok := inv.tools[toolID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrToolNotFound, toolID)
	}

	start := time.Now()
	payload, err := tool(ctx, params)
	if err != nil {
		inv.logger.Error("Tool invocation failed", map[string]interface{}{
			"operation":   "tool_invoke",
			"tool_id":     toolID,
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil, fmt.Errorf("%w: %s: %v", core.ErrToolExecution, toolID, err)
	}

	inv.logger.Debug("Tool invocation completed", map[string]interface{}{
		"operation":   "tool_invoke",
		"tool_id":     toolID,
		"payload":     string(payload.Kind()),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return payload, nil
}
