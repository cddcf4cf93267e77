package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockmind/stockmind/core"
)

var allToolIDs = []string{
	"generate_inventory_summary",
	"get_item_details",
	"get_category_overview",
	"get_stock_alerts",
	"get_supplier_inventory_summary",
	"analyze_stockout_root_cause",
	"analyze_supplier_performance",
	"analyze_inventory_turnover",
	"analyze_demand_patterns",
	"diagnose_category_issues",
	"forecast_demand",
	"predict_stockout_risk",
	"forecast_inventory_levels",
	"predict_seasonal_trends",
	"recommend_reorder_strategy",
	"optimize_safety_stock",
	"generate_action_plan",
	"optimize_inventory_investment",
}

func TestToolInvokerRegistersAllTools(t *testing.T) {
	inv := NewToolInvoker(NewMemoryProvider())

	for _, id := range allToolIDs {
		assert.True(t, inv.Has(id), "missing tool %s", id)
	}
	assert.False(t, inv.Has("nonexistent_tool"))
}

func TestToolInvokerUnknownTool(t *testing.T) {
	inv := NewToolInvoker(NewMemoryProvider())

	_, err := inv.Invoke(context.Background(), "levitate_inventory", nil)
	assert.ErrorIs(t, err, core.ErrToolNotFound)
}

func TestToolInvokerLookupFailureIsPayloadNotError(t *testing.T) {
	inv := NewToolInvoker(NewMemoryProvider())

	payload, err := inv.Invoke(context.Background(), "get_item_details",
		map[string]interface{}{"item": "ITEM_999"})
	require.NoError(t, err)

	ep, ok := payload.(*core.ErrorPayload)
	require.True(t, ok, "payload = %T", payload)
	assert.Equal(t, core.ErrCodeNotFound, ep.Code)
	assert.Contains(t, ep.Message, "ITEM_999")
}

func TestToolInvokerMissingParamIsBadInput(t *testing.T) {
	inv := NewToolInvoker(NewMemoryProvider())

	payload, err := inv.Invoke(context.Background(), "get_item_details", nil)
	require.NoError(t, err)

	ep, ok := payload.(*core.ErrorPayload)
	require.True(t, ok, "payload = %T", payload)
	assert.Equal(t, core.ErrCodeBadInput, ep.Code)
}

func TestToolInvokerWrapsInfraErrors(t *testing.T) {
	inv := NewToolInvoker(NewMemoryProvider())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inv.Invoke(ctx, "generate_inventory_summary", nil)
	assert.ErrorIs(t, err, core.ErrToolExecution)
}

// The prescriptive fallback tool must work without any item context, since
// planned general queries reach it with an empty parameter set.
func TestToolInvokerActionPlanWithoutParams(t *testing.T) {
	inv := NewToolInvoker(NewMemoryProvider())

	payload, err := inv.Invoke(context.Background(), "generate_action_plan", map[string]interface{}{})
	require.NoError(t, err)

	action, ok := payload.(*core.ActionPayload)
	require.True(t, ok, "payload = %T", payload)
	assert.NotEmpty(t, action.Recommendations)
}

// Every registered tool must run end to end against the generated data set
// without an infrastructure error, given a reasonable parameter set.
func TestToolInvokerAllToolsExecutable(t *testing.T) {
	inv := NewToolInvoker(NewMemoryProvider())
	params := map[string]interface{}{
		"item":     "ITEM_001",
		"supplier": "SUP_001",
		"category": "Electronics",
		"budget":   10000.0,
	}

	for _, id := range allToolIDs {
		payload, err := inv.Invoke(context.Background(), id, params)
		require.NoError(t, err, "tool %s", id)
		require.NotNil(t, payload, "tool %s", id)
		assert.NotEqual(t, core.KindError, payload.Kind(), "tool %s returned %+v", id, payload)
	}
}
