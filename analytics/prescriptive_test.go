package analytics

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockmind/stockmind/core"
)

func action(t *testing.T, payload core.Payload, err error) *core.ActionPayload {
	t.Helper()
	require.NoError(t, err)
	ap, ok := payload.(*core.ActionPayload)
	require.True(t, ok, "payload = %T: %+v", payload, payload)
	return ap
}

func TestRecommendReorderStrategyServiceLevelValidation(t *testing.T) {
	svc := NewPrescriptiveService(NewMemoryProvider())

	for _, level := range []float64{-0.1, 1.5, 2.0} {
		payload, err := svc.RecommendReorderStrategy(context.Background(), map[string]interface{}{
			"item":          "ITEM_001",
			"service_level": level,
		})
		require.NoError(t, err)
		ep, ok := payload.(*core.ErrorPayload)
		require.True(t, ok, "service_level=%v payload = %T", level, payload)
		assert.Equal(t, core.ErrCodeBadInput, ep.Code)
	}

	// Boundary values are accepted
	for _, level := range []float64{0.0, 1.0, 0.95} {
		payload, err := svc.RecommendReorderStrategy(context.Background(), map[string]interface{}{
			"item":          "ITEM_001",
			"service_level": level,
		})
		require.NoError(t, err)
		_, ok := payload.(*core.ActionPayload)
		assert.True(t, ok, "service_level=%v payload = %T", level, payload)
	}
}

func TestRecommendReorderStrategyUrgentWhenBelowReorderPoint(t *testing.T) {
	provider := &fakeProvider{
		inventory: []InventoryRecord{{
			ItemID:       "ITEM_001",
			CurrentStock: 5,
			ReorderPoint: 40,
			LeadTimeDays: 7,
			UnitCost:     25,
		}},
		sales: steadySales("ITEM_001", 90, 10),
	}
	svc := NewPrescriptiveService(provider)

	payload, err := svc.RecommendReorderStrategy(context.Background(),
		map[string]interface{}{"item": "ITEM_001"})
	ap := action(t, payload, err)

	assert.Equal(t, "Critical", ap.Priority)
	joined := strings.Join(ap.SpecificActions, "\n")
	assert.Contains(t, joined, "URGENT: Place immediate order for")
	require.NotEmpty(t, ap.Recommendations)
	assert.Contains(t, ap.Recommendations[0], "service level 95%")
}

func TestRecommendReorderStrategyLongLeadTimeAdvice(t *testing.T) {
	provider := &fakeProvider{
		inventory: []InventoryRecord{{
			ItemID:       "ITEM_001",
			CurrentStock: 2000,
			ReorderPoint: 100,
			LeadTimeDays: 25,
			UnitCost:     25,
		}},
		sales: steadySales("ITEM_001", 90, 10),
	}
	svc := NewPrescriptiveService(provider)

	payload, err := svc.RecommendReorderStrategy(context.Background(),
		map[string]interface{}{"item": "ITEM_001"})
	ap := action(t, payload, err)

	assert.Contains(t, strings.Join(ap.SpecificActions, "\n"),
		"Work with supplier to reduce lead time")
}

func TestOptimizeSafetyStockDirection(t *testing.T) {
	// Reorder point far above demand over lead time means current safety
	// stock is excessive.
	provider := &fakeProvider{
		inventory: []InventoryRecord{{
			ItemID:       "ITEM_001",
			CurrentStock: 500,
			ReorderPoint: 400,
			LeadTimeDays: 5,
			UnitCost:     10,
		}},
		sales: steadySales("ITEM_001", 90, 10),
	}
	svc := NewPrescriptiveService(provider)

	payload, err := svc.OptimizeSafetyStock(context.Background(),
		map[string]interface{}{"item": "ITEM_001"})
	ap := action(t, payload, err)

	assert.Contains(t, ap.SpecificActions[0], "Reduce safety stock")
	assert.Equal(t, "Normal", ap.Priority)
	assert.Contains(t, ap.Recommendations[0], "Recommended reorder point")
}

func TestGenerateActionPlanPrioritization(t *testing.T) {
	provider := &fakeProvider{
		inventory: []InventoryRecord{
			{ItemID: "ITEM_001", CurrentStock: 200, ReorderPoint: 50, MaxStock: 1000, LeadTimeDays: 25, SupplierID: "SUP_001"},
			{ItemID: "ITEM_002", CurrentStock: 10, ReorderPoint: 50, MaxStock: 1000, LeadTimeDays: 5},
			{ItemID: "ITEM_003", CurrentStock: 0, ReorderPoint: 50, MaxStock: 1000, LeadTimeDays: 5},
		},
	}
	svc := NewPrescriptiveService(provider)

	payload, err := svc.GenerateActionPlan(context.Background(), nil)
	ap := action(t, payload, err)

	assert.Equal(t, "Critical", ap.Priority)
	// Out-of-stock outranks below-reorder outranks lead time negotiation
	assert.Contains(t, ap.SpecificActions[0], "URGENT: ITEM_003 is out of stock")
	assert.Contains(t, ap.SpecificActions[1], "Reorder ITEM_002")
	assert.Contains(t, ap.SpecificActions[2], "Negotiate lead time with SUP_001")
}

func TestGenerateActionPlanHealthyPortfolio(t *testing.T) {
	provider := &fakeProvider{
		inventory: []InventoryRecord{
			{ItemID: "ITEM_001", CurrentStock: 200, ReorderPoint: 50, MaxStock: 1000, LeadTimeDays: 5},
		},
	}
	svc := NewPrescriptiveService(provider)

	payload, err := svc.GenerateActionPlan(context.Background(), nil)
	ap := action(t, payload, err)

	assert.Equal(t, "Low", ap.Priority)
	assert.Equal(t, []string{"No items currently require intervention"}, ap.SpecificActions)
}

func TestOptimizeInventoryInvestment(t *testing.T) {
	provider := &fakeProvider{
		inventory: []InventoryRecord{
			// Understocked with strong revenue: clear investment target
			{ItemID: "ITEM_001", CurrentStock: 10, ReorderPoint: 50, LeadTimeDays: 10, UnitCost: 20},
			// Fully stocked: no gap
			{ItemID: "ITEM_002", CurrentStock: 5000, ReorderPoint: 50, LeadTimeDays: 10, UnitCost: 20},
		},
		sales: append(steadySales("ITEM_001", 90, 10), steadySales("ITEM_002", 90, 10)...),
	}
	svc := NewPrescriptiveService(provider)

	payload, err := svc.OptimizeInventoryInvestment(context.Background(),
		map[string]interface{}{"budget": 5000.0})
	ap := action(t, payload, err)

	require.NotEmpty(t, ap.SpecificActions)
	assert.Contains(t, ap.SpecificActions[0], "ITEM_001")
	assert.Contains(t, ap.Recommendations[2], "Budget utilization")
}

func TestOptimizeInventoryInvestmentRequiresBudget(t *testing.T) {
	svc := NewPrescriptiveService(NewMemoryProvider())

	payload, err := svc.OptimizeInventoryInvestment(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, core.ErrCodeBadInput, payload.(*core.ErrorPayload).Code)
}
