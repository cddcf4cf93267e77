package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/stockmind/stockmind/core"
)

// DescriptiveService implements the tier 1 tools: current and historical
// inventory state reporting.
type DescriptiveService struct {
	provider DataProvider
	logger   core.Logger
}

// NewDescriptiveService creates the tier 1 tool set.
func NewDescriptiveService(provider DataProvider) *DescriptiveService {
	return &DescriptiveService{provider: provider, logger: &core.NoOpLogger{}}
}

// SetLogger sets the logger provider
func (s *DescriptiveService) SetLogger(logger core.Logger) {
	if logger == nil {
		s.logger = &core.NoOpLogger{}
	} else {
		s.logger = logger
	}
}

// GenerateInventorySummary reports portfolio-wide stock statistics for the
// given reporting window.
func (s *DescriptiveService) GenerateInventorySummary(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	startDate := paramString(params, "start_date")
	endDate := paramString(params, "end_date")

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{})
	if err != nil {
		return nil, err
	}
	if len(inventory) == 0 {
		return notFound("no inventory data available for the specified period"), nil
	}

	var totalValue float64
	belowReorder := 0
	outOfStock := 0
	for _, item := range inventory {
		totalValue += float64(item.CurrentStock) * item.UnitCost
		if item.CurrentStock < item.ReorderPoint {
			belowReorder++
		}
		if item.CurrentStock == 0 {
			outOfStock++
		}
	}

	return &core.FoundationPayload{
		Status: "Normal",
		Insights: []string{
			fmt.Sprintf("%d items need immediate attention (below reorder point)", belowReorder),
			fmt.Sprintf("%d items are completely out of stock", outOfStock),
			fmt.Sprintf("Total inventory value: $%.2f", totalValue),
			fmt.Sprintf("Average stock value per item: $%.2f", totalValue/float64(len(inventory))),
			fmt.Sprintf("Report period: %s to %s", startDate, endDate),
		},
		Metrics: map[string]float64{
			"total_items":               float64(len(inventory)),
			"total_stock_value":         round2(totalValue),
			"items_below_reorder_point": float64(belowReorder),
			"out_of_stock_items":        float64(outOfStock),
			"stock_turnover_alerts":     float64(belowReorder + outOfStock),
		},
	}, nil
}

// GetItemDetails reports the current state of one item, including recent
// demand and a stock status indicator.
func (s *DescriptiveService) GetItemDetails(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	itemID := paramString(params, "item")
	if itemID == "" {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "item parameter is required"}, nil
	}

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	if len(inventory) == 0 {
		return notFound("item %s not found in inventory", itemID), nil
	}
	item := inventory[0]

	sales, err := s.provider.Sales(ctx, SalesFilter{
		ItemID:    itemID,
		StartDate: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return nil, err
	}

	demand := dailyDemand(sales)
	avgDaily := mean(demand)
	var recentQty float64
	for _, d := range demand {
		recentQty += d
	}

	status := "Normal"
	switch {
	case item.CurrentStock == 0:
		status = "Out of Stock"
	case item.CurrentStock < item.ReorderPoint:
		status = "Below Reorder Point"
	case float64(item.CurrentStock) > float64(item.MaxStock)*0.9:
		status = "Overstock Risk"
	}

	daysRemaining := float64(item.CurrentStock) / math.Max(avgDaily, 1)

	return &core.FoundationPayload{
		Status: status,
		Insights: []string{
			fmt.Sprintf("%s (%s) holds %d units in category %s", item.ItemID, item.ItemName, item.CurrentStock, item.Category),
			fmt.Sprintf("Stock status: %s", status),
			fmt.Sprintf("Recent sales: %.0f units, average daily demand %.2f", recentQty, avgDaily),
			fmt.Sprintf("Approximately %.1f days of stock remaining", daysRemaining),
		},
		Metrics: map[string]float64{
			"current_stock":           float64(item.CurrentStock),
			"reorder_point":           float64(item.ReorderPoint),
			"stock_value":             round2(float64(item.CurrentStock) * item.UnitCost),
			"average_daily_demand":    round2(avgDaily),
			"days_of_stock_remaining": round1(daysRemaining),
		},
	}, nil
}

// GetCategoryOverview reports aggregate stock health for one category.
func (s *DescriptiveService) GetCategoryOverview(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	category := paramString(params, "category")
	if category == "" {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "category parameter is required"}, nil
	}

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{Category: category})
	if err != nil {
		return nil, err
	}
	if len(inventory) == 0 {
		return notFound("no items found in category: %s", category), nil
	}

	var totalValue, totalStock float64
	belowReorder := 0
	for _, item := range inventory {
		totalValue += float64(item.CurrentStock) * item.UnitCost
		totalStock += float64(item.CurrentStock)
		if item.CurrentStock < item.ReorderPoint {
			belowReorder++
		}
	}
	reorderPct := float64(belowReorder) / float64(len(inventory)) * 100

	return &core.FoundationPayload{
		Status: "Normal",
		Insights: []string{
			fmt.Sprintf("Category %s carries %d items worth $%.2f", category, len(inventory), totalValue),
			fmt.Sprintf("Average stock level: %.2f units", totalStock/float64(len(inventory))),
			fmt.Sprintf("%d items (%.1f%%) are below their reorder point", belowReorder, reorderPct),
		},
		Metrics: map[string]float64{
			"total_items":          float64(len(inventory)),
			"total_category_value": round2(totalValue),
			"average_stock_level":  round2(totalStock / float64(len(inventory))),
			"items_below_reorder":  float64(belowReorder),
			"reorder_percentage":   round1(reorderPct),
		},
	}, nil
}

// GetStockAlerts reports items currently requiring attention: out of stock,
// below reorder point, or at overstock risk.
func (s *DescriptiveService) GetStockAlerts(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	inventory, err := s.provider.Inventory(ctx, InventoryFilter{})
	if err != nil {
		return nil, err
	}

	outOfStock := 0
	belowReorder := 0
	overstock := 0
	for _, item := range inventory {
		switch {
		case item.CurrentStock == 0:
			outOfStock++
		case item.CurrentStock < item.ReorderPoint:
			belowReorder++
		}
		if float64(item.CurrentStock) > float64(item.MaxStock)*0.9 {
			overstock++
		}
	}
	total := outOfStock + belowReorder + overstock

	status := "Normal"
	if outOfStock > 0 {
		status = "Attention Required"
	}

	return &core.FoundationPayload{
		Status: status,
		Insights: []string{
			fmt.Sprintf("%d active stock alerts across the portfolio", total),
			fmt.Sprintf("%d items are out of stock", outOfStock),
			fmt.Sprintf("%d items are below their reorder point", belowReorder),
			fmt.Sprintf("%d items are at overstock risk", overstock),
		},
		Metrics: map[string]float64{
			"total_alerts":        float64(total),
			"out_of_stock":        float64(outOfStock),
			"below_reorder_point": float64(belowReorder),
			"overstock_risk":      float64(overstock),
		},
	}, nil
}

// GetSupplierInventorySummary reports stock state for all items supplied by
// one supplier.
func (s *DescriptiveService) GetSupplierInventorySummary(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	supplierID := paramString(params, "supplier")
	if supplierID == "" {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "supplier parameter is required"}, nil
	}

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{})
	if err != nil {
		return nil, err
	}
	var supplierItems []InventoryRecord
	for _, item := range inventory {
		if item.SupplierID == supplierID {
			supplierItems = append(supplierItems, item)
		}
	}
	if len(supplierItems) == 0 {
		return notFound("no items found for supplier: %s", supplierID), nil
	}

	suppliers, err := s.provider.Suppliers(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	supplierName := "Unknown"
	if len(suppliers) > 0 {
		supplierName = suppliers[0].Name
	}

	var totalValue, totalLeadTime float64
	belowReorder := 0
	for _, item := range supplierItems {
		totalValue += float64(item.CurrentStock) * item.UnitCost
		totalLeadTime += float64(item.LeadTimeDays)
		if item.CurrentStock < item.ReorderPoint {
			belowReorder++
		}
	}

	return &core.FoundationPayload{
		Status: "Normal",
		Insights: []string{
			fmt.Sprintf("%s (%s) supplies %d items worth $%.2f", supplierID, supplierName, len(supplierItems), totalValue),
			fmt.Sprintf("%d supplied items are below their reorder point", belowReorder),
			fmt.Sprintf("Average lead time across supplied items: %.1f days", totalLeadTime/float64(len(supplierItems))),
		},
		Metrics: map[string]float64{
			"total_items":           float64(len(supplierItems)),
			"total_inventory_value": round2(totalValue),
			"items_below_reorder":   float64(belowReorder),
			"average_lead_time":     round1(totalLeadTime / float64(len(supplierItems))),
		},
	}, nil
}
