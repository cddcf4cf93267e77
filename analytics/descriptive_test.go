package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockmind/stockmind/core"
)

func foundation(t *testing.T, payload core.Payload, err error) *core.FoundationPayload {
	t.Helper()
	require.NoError(t, err)
	fp, ok := payload.(*core.FoundationPayload)
	require.True(t, ok, "payload = %T: %+v", payload, payload)
	return fp
}

func TestGenerateInventorySummary(t *testing.T) {
	svc := NewDescriptiveService(NewMemoryProvider())

	payload, err := svc.GenerateInventorySummary(context.Background(), map[string]interface{}{
		"start_date": "2024-01-01",
		"end_date":   "2024-12-31",
	})
	fp := foundation(t, payload, err)

	assert.Equal(t, 100.0, fp.Metrics["total_items"])
	assert.Greater(t, fp.Metrics["total_stock_value"], 0.0)
	assert.Len(t, fp.Insights, 5)
	assert.Contains(t, fp.Insights[4], "2024-01-01 to 2024-12-31")
}

func TestGetItemDetailsStatusClassification(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		want  string
	}{
		{"out of stock", 0, "Out of Stock"},
		{"below reorder", 30, "Below Reorder Point"},
		{"overstock risk", 950, "Overstock Risk"},
		{"normal", 200, "Normal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{
				inventory: []InventoryRecord{{
					ItemID:       "ITEM_001",
					ItemName:     "Product 001",
					Category:     "Electronics",
					CurrentStock: tt.stock,
					ReorderPoint: 50,
					MaxStock:     1000,
					UnitCost:     25,
				}},
				sales: steadySales("ITEM_001", 60, 5),
			}
			svc := NewDescriptiveService(provider)

			payload, err := svc.GetItemDetails(context.Background(),
				map[string]interface{}{"item": "ITEM_001"})
			fp := foundation(t, payload, err)
			assert.Equal(t, tt.want, fp.Status)
		})
	}
}

func TestGetItemDetailsMetrics(t *testing.T) {
	provider := &fakeProvider{
		inventory: []InventoryRecord{{
			ItemID:       "ITEM_001",
			CurrentStock: 100,
			ReorderPoint: 50,
			MaxStock:     1000,
			UnitCost:     10,
		}},
		sales: steadySales("ITEM_001", 61, 5),
	}
	svc := NewDescriptiveService(provider)

	payload, err := svc.GetItemDetails(context.Background(),
		map[string]interface{}{"item": "ITEM_001"})
	fp := foundation(t, payload, err)

	assert.Equal(t, 100.0, fp.Metrics["current_stock"])
	assert.Equal(t, 1000.0, fp.Metrics["stock_value"])
	assert.Equal(t, 5.0, fp.Metrics["average_daily_demand"])
	assert.Equal(t, 20.0, fp.Metrics["days_of_stock_remaining"])
}

func TestGetItemDetailsErrors(t *testing.T) {
	svc := NewDescriptiveService(NewMemoryProvider())

	payload, err := svc.GetItemDetails(context.Background(), nil)
	require.NoError(t, err)
	ep := payload.(*core.ErrorPayload)
	assert.Equal(t, core.ErrCodeBadInput, ep.Code)

	payload, err = svc.GetItemDetails(context.Background(), map[string]interface{}{"item": "ITEM_777"})
	require.NoError(t, err)
	ep = payload.(*core.ErrorPayload)
	assert.Equal(t, core.ErrCodeNotFound, ep.Code)
}

func TestGetCategoryOverview(t *testing.T) {
	svc := NewDescriptiveService(NewMemoryProvider())

	fpPayload, fpErr := svc.GetCategoryOverview(context.Background(),
		map[string]interface{}{"category": "Electronics"})
	fp := foundation(t, fpPayload, fpErr)
	assert.Greater(t, fp.Metrics["total_items"], 0.0)

	payload, err := svc.GetCategoryOverview(context.Background(),
		map[string]interface{}{"category": "Spaceships"})
	require.NoError(t, err)
	assert.Equal(t, core.ErrCodeNotFound, payload.(*core.ErrorPayload).Code)
}

func TestGetStockAlerts(t *testing.T) {
	provider := &fakeProvider{
		inventory: []InventoryRecord{
			{ItemID: "ITEM_001", CurrentStock: 0, ReorderPoint: 50, MaxStock: 500},
			{ItemID: "ITEM_002", CurrentStock: 20, ReorderPoint: 50, MaxStock: 500},
			{ItemID: "ITEM_003", CurrentStock: 490, ReorderPoint: 50, MaxStock: 500},
			{ItemID: "ITEM_004", CurrentStock: 200, ReorderPoint: 50, MaxStock: 500},
		},
	}
	svc := NewDescriptiveService(provider)

	payload, err := svc.GetStockAlerts(context.Background(), nil)
	fp := foundation(t, payload, err)
	assert.Equal(t, 1.0, fp.Metrics["out_of_stock"])
	assert.Equal(t, 1.0, fp.Metrics["below_reorder_point"])
	assert.Equal(t, 1.0, fp.Metrics["overstock_risk"])
	assert.Equal(t, 3.0, fp.Metrics["total_alerts"])
	assert.Equal(t, "Attention Required", fp.Status)
}

func TestGetSupplierInventorySummary(t *testing.T) {
	svc := NewDescriptiveService(NewMemoryProvider())

	fpPayload, fpErr := svc.GetSupplierInventorySummary(context.Background(),
		map[string]interface{}{"supplier": "SUP_001"})
	fp := foundation(t, fpPayload, fpErr)
	assert.Greater(t, fp.Metrics["total_items"], 0.0)
	assert.Greater(t, fp.Metrics["average_lead_time"], 0.0)

	payload, err := svc.GetSupplierInventorySummary(context.Background(),
		map[string]interface{}{"supplier": "SUP_099"})
	require.NoError(t, err)
	assert.Equal(t, core.ErrCodeNotFound, payload.(*core.ErrorPayload).Code)
}
