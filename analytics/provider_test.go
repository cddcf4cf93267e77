package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves hand-built records so tool tests can pin exact inputs
// instead of depending on the generated data set.
type fakeProvider struct {
	inventory []InventoryRecord
	sales     []SalesRecord
	suppliers []SupplierRecord
}

func (f *fakeProvider) Inventory(ctx context.Context, filter InventoryFilter) ([]InventoryRecord, error) {
	var out []InventoryRecord
	for _, rec := range f.inventory {
		if filter.ItemID != "" && rec.ItemID != filter.ItemID {
			continue
		}
		if filter.Category != "" && rec.Category != filter.Category {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeProvider) Sales(ctx context.Context, filter SalesFilter) ([]SalesRecord, error) {
	var out []SalesRecord
	for _, rec := range f.sales {
		if filter.ItemID != "" && rec.ItemID != filter.ItemID {
			continue
		}
		if !filter.StartDate.IsZero() && rec.Date.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && rec.Date.After(filter.EndDate) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeProvider) Suppliers(ctx context.Context, supplierID string) ([]SupplierRecord, error) {
	var out []SupplierRecord
	for _, rec := range f.suppliers {
		if supplierID != "" && rec.SupplierID != supplierID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// steadySales builds count days of constant-quantity sales ending 2024-12-31.
func steadySales(itemID string, count, quantity int) []SalesRecord {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	var out []SalesRecord
	for i := count - 1; i >= 0; i-- {
		out = append(out, SalesRecord{
			Date:      end.AddDate(0, 0, -i),
			ItemID:    itemID,
			Quantity:  quantity,
			UnitPrice: 20,
			Revenue:   float64(quantity) * 20,
		})
	}
	return out
}

func TestMemoryProviderDataSetShape(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	inventory, err := p.Inventory(ctx, InventoryFilter{})
	require.NoError(t, err)
	assert.Len(t, inventory, 100)
	assert.Equal(t, "ITEM_001", inventory[0].ItemID)
	assert.Equal(t, "ITEM_100", inventory[99].ItemID)

	suppliers, err := p.Suppliers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, suppliers, 20)

	for _, item := range inventory {
		assert.GreaterOrEqual(t, item.ReorderPoint, 20)
		assert.GreaterOrEqual(t, item.UnitCost, 5.0)
		assert.Contains(t, sampleCategories, item.Category)
	}
	for _, sup := range suppliers {
		assert.GreaterOrEqual(t, sup.ReliabilityScore, 0.7)
		assert.LessOrEqual(t, sup.ReliabilityScore, 1.0)
	}
}

func TestMemoryProviderDeterministic(t *testing.T) {
	ctx := context.Background()
	a, _ := NewMemoryProvider().Inventory(ctx, InventoryFilter{})
	b, _ := NewMemoryProvider().Inventory(ctx, InventoryFilter{})

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ItemID, b[i].ItemID)
		assert.Equal(t, a[i].CurrentStock, b[i].CurrentStock)
		assert.Equal(t, a[i].SupplierID, b[i].SupplierID)
		assert.Equal(t, a[i].UnitCost, b[i].UnitCost)
	}
}

func TestMemoryProviderFilters(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	byID, err := p.Inventory(ctx, InventoryFilter{ItemID: "ITEM_042"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "ITEM_042", byID[0].ItemID)

	byCategory, err := p.Inventory(ctx, InventoryFilter{Category: "Electronics"})
	require.NoError(t, err)
	assert.NotEmpty(t, byCategory)
	for _, item := range byCategory {
		assert.Equal(t, "Electronics", item.Category)
	}

	window := SalesFilter{
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	sales, err := p.Sales(ctx, window)
	require.NoError(t, err)
	assert.NotEmpty(t, sales)
	for _, rec := range sales {
		assert.False(t, rec.Date.Before(window.StartDate))
		assert.False(t, rec.Date.After(window.EndDate))
	}

	sup, err := p.Suppliers(ctx, "SUP_007")
	require.NoError(t, err)
	require.Len(t, sup, 1)
	assert.Equal(t, "SUP_007", sup[0].SupplierID)
}

func TestMemoryProviderHonorsContext(t *testing.T) {
	p := NewMemoryProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Inventory(ctx, InventoryFilter{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = p.Sales(ctx, SalesFilter{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = p.Suppliers(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
