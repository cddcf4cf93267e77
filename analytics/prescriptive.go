package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/stockmind/stockmind/core"
)

// Cost model constants used by the optimization tools.
const (
	holdingCostRate = 0.20 // annual holding cost as a fraction of unit cost
	orderingCost    = 50.0 // fixed cost per order placed
)

// PrescriptiveService implements the tier 4 tools: actionable
// recommendations and optimization strategies.
type PrescriptiveService struct {
	provider DataProvider
	logger   core.Logger
}

// NewPrescriptiveService creates the tier 4 tool set.
func NewPrescriptiveService(provider DataProvider) *PrescriptiveService {
	return &PrescriptiveService{provider: provider, logger: &core.NoOpLogger{}}
}

// SetLogger sets the logger provider
func (s *PrescriptiveService) SetLogger(logger core.Logger) {
	if logger == nil {
		s.logger = &core.NoOpLogger{}
	} else {
		s.logger = logger
	}
}

// RecommendReorderStrategy computes an optimal reorder point and economic
// order quantity for one item at the requested service level.
func (s *PrescriptiveService) RecommendReorderStrategy(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	serviceLevel := paramFloat(params, "service_level", 0.95)
	if serviceLevel < 0.0 || serviceLevel > 1.0 {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "service level must be between 0.0 and 1.0"}, nil
	}

	itemID := paramString(params, "item")
	if itemID == "" {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "item parameter is required"}, nil
	}

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	if len(inventory) == 0 {
		return notFound("item %s not found", itemID), nil
	}
	item := inventory[0]

	sales, err := s.provider.Sales(ctx, SalesFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	demand := dailyDemand(sales)
	avgDemand := mean(demand)
	demandStd := stdDev(demand)

	z := normInv(serviceLevel)
	safetyStock := z * demandStd * math.Sqrt(float64(item.LeadTimeDays))
	reorderPoint := avgDemand*float64(item.LeadTimeDays) + safetyStock

	annualDemand := avgDemand * 365
	eoq := 100.0
	if annualDemand > 0 && item.UnitCost > 0 {
		eoq = math.Sqrt((2 * annualDemand * orderingCost) / (item.UnitCost * holdingCostRate))
	}

	var actions []string
	priority := "Normal"
	if reorderPoint > float64(item.ReorderPoint) {
		actions = append(actions,
			fmt.Sprintf("Increase reorder point from %d to %.0f units", item.ReorderPoint, reorderPoint))
		priority = "High"
	}
	if float64(item.CurrentStock) < reorderPoint {
		urgentQty := math.Round(reorderPoint - float64(item.CurrentStock) + eoq)
		actions = append(actions,
			fmt.Sprintf("URGENT: Place immediate order for %.0f units", urgentQty))
		priority = "Critical"
	}
	actions = append(actions,
		fmt.Sprintf("Optimize order quantity to %.0f units for cost efficiency", math.Max(1, eoq)))
	if avgDemand > 0 && demandStd/avgDemand > 0.5 {
		actions = append(actions, "Consider dynamic safety stock due to high demand variability")
	}
	if item.LeadTimeDays > 20 {
		actions = append(actions, "Work with supplier to reduce lead time for better inventory efficiency")
	}

	return &core.ActionPayload{
		SpecificActions: actions,
		Priority:        priority,
		Recommendations: []string{
			fmt.Sprintf("Target service level %.0f%% requires %.0f units of safety stock", serviceLevel*100, math.Max(0, safetyStock)),
		},
	}, nil
}

// OptimizeSafetyStock recomputes one item's safety stock for a target
// service level and recommends the adjustment.
func (s *PrescriptiveService) OptimizeSafetyStock(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	target := paramFloat(params, "service_level", 0.95)
	if target < 0.0 || target > 1.0 {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "service level must be between 0.0 and 1.0"}, nil
	}

	itemID := paramString(params, "item")
	if itemID == "" {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "item parameter is required"}, nil
	}

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	if len(inventory) == 0 {
		return notFound("item %s not found", itemID), nil
	}
	item := inventory[0]

	sales, err := s.provider.Sales(ctx, SalesFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	demand := dailyDemand(sales)
	avgDemand := mean(demand)
	demandStd := stdDev(demand)
	if demandStd == 0 {
		demandStd = avgDemand * 0.3
	}

	optimal := math.Max(0, normInv(target)*demandStd*math.Sqrt(float64(item.LeadTimeDays)))
	current := math.Max(0, float64(item.ReorderPoint)-avgDemand*float64(item.LeadTimeDays))

	var actions []string
	priority := "Normal"
	switch {
	case optimal > current*1.1:
		actions = append(actions,
			fmt.Sprintf("Increase safety stock by %.0f units", optimal-current),
			fmt.Sprintf("This will improve service level to %.0f%% but increase holding costs", target*100))
		priority = "High"
	case optimal < current*0.9:
		actions = append(actions,
			fmt.Sprintf("Reduce safety stock by %.0f units", current-optimal),
			fmt.Sprintf("This will reduce holding costs while maintaining %.0f%% service level", target*100))
	default:
		actions = append(actions, "Current safety stock levels are approximately optimal")
	}

	costChange := (optimal - current) * item.UnitCost * holdingCostRate

	return &core.ActionPayload{
		SpecificActions: actions,
		Priority:        priority,
		Recommendations: []string{
			fmt.Sprintf("Recommended reorder point: %.0f units", avgDemand*float64(item.LeadTimeDays)+optimal),
			fmt.Sprintf("Annual holding cost change: $%.2f", costChange),
		},
	}, nil
}

// GenerateActionPlan scans inventory for items requiring intervention and
// produces a prioritized action list.
func (s *PrescriptiveService) GenerateActionPlan(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	category := paramString(params, "category")

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{Category: category})
	if err != nil {
		return nil, err
	}
	if len(inventory) == 0 {
		if category != "" {
			return notFound("no inventory data found for category: %s", category), nil
		}
		return notFound("no inventory data found"), nil
	}

	type scoredAction struct {
		score  int
		action string
	}
	var scored []scoredAction

	for _, item := range inventory {
		switch {
		case item.CurrentStock == 0:
			scored = append(scored, scoredAction{10,
				fmt.Sprintf("URGENT: %s is out of stock - immediate reorder required", item.ItemID)})
		case item.CurrentStock < item.ReorderPoint:
			scored = append(scored, scoredAction{7,
				fmt.Sprintf("Reorder %s: stock below reorder point (%d < %d)", item.ItemID, item.CurrentStock, item.ReorderPoint)})
		case float64(item.CurrentStock) > float64(item.MaxStock)*0.9:
			scored = append(scored, scoredAction{3,
				fmt.Sprintf("Reduce inventory for %s: overstock situation", item.ItemID)})
		}
		if item.LeadTimeDays > 20 {
			scored = append(scored, scoredAction{2,
				fmt.Sprintf("Negotiate lead time with %s for %s (%d days)", item.SupplierID, item.ItemID, item.LeadTimeDays)})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	priority := "Low"
	if len(scored) > 0 {
		switch {
		case scored[0].score >= 10:
			priority = "Critical"
		case scored[0].score >= 7:
			priority = "High"
		case scored[0].score >= 3:
			priority = "Medium"
		}
	}

	actions := make([]string, 0, len(scored))
	for _, sa := range scored {
		actions = append(actions, sa.action)
		if len(actions) >= 10 {
			break
		}
	}
	if len(actions) == 0 {
		actions = append(actions, "No items currently require intervention")
	}

	return &core.ActionPayload{
		SpecificActions: actions,
		Priority:        priority,
		Recommendations: []string{
			"Reduce out-of-stock items to zero within 1 week",
			"Achieve 95% service level across all categories",
		},
	}, nil
}

// OptimizeInventoryInvestment allocates a budget across understocked items by
// expected return, largest investment gaps weighted by ROI first.
func (s *PrescriptiveService) OptimizeInventoryInvestment(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	budget := paramFloat(params, "budget", 0)
	if budget <= 0 {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "budget parameter must be positive"}, nil
	}
	category := paramString(params, "category")

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{Category: category})
	if err != nil {
		return nil, err
	}
	if len(inventory) == 0 {
		if category != "" {
			return notFound("no inventory data found for category: %s", category), nil
		}
		return notFound("no inventory data found"), nil
	}

	type opportunity struct {
		itemID   string
		gap      float64
		roi      float64
		priority float64
	}
	var opportunities []opportunity

	for _, item := range inventory {
		sales, err := s.provider.Sales(ctx, SalesFilter{ItemID: item.ItemID})
		if err != nil {
			return nil, err
		}
		if len(sales) == 0 {
			continue
		}
		var annualRevenue float64
		for _, rec := range sales {
			annualRevenue += rec.Revenue
		}
		daily := mean(dailyDemand(sales))
		optimalStock := daily * float64(item.LeadTimeDays+30)
		gap := optimalStock*item.UnitCost - float64(item.CurrentStock)*item.UnitCost
		if gap <= 0 {
			continue
		}
		stockoutRisk := math.Max(0, 1-float64(item.CurrentStock)/optimalStock)
		roi := annualRevenue * stockoutRisk * 0.5 / gap
		opportunities = append(opportunities, opportunity{
			itemID:   item.ItemID,
			gap:      gap,
			roi:      roi,
			priority: roi * gap,
		})
	}

	sort.Slice(opportunities, func(i, j int) bool { return opportunities[i].priority > opportunities[j].priority })

	remaining := budget
	allocated := 0
	var actions []string
	for _, opp := range opportunities {
		if remaining <= 0 {
			break
		}
		amount := math.Min(remaining, opp.gap)
		remaining -= amount
		allocated++
		if len(actions) < 10 {
			actions = append(actions,
				fmt.Sprintf("Invest $%.2f in %s (estimated ROI %.2f)", amount, opp.itemID, opp.roi))
		}
	}
	if len(actions) == 0 {
		actions = append(actions, "No investment gaps found within the current portfolio")
	}

	return &core.ActionPayload{
		SpecificActions: actions,
		Priority:        "Normal",
		Recommendations: []string{
			"Prioritize high-ROI, low-investment items first",
			"Reassess allocation quarterly based on performance",
			fmt.Sprintf("Budget utilization: $%.2f of $%.2f across %d items", budget-remaining, budget, allocated),
		},
	}, nil
}
