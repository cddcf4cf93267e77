package analytics

import (
	"context"
	"fmt"

	"github.com/stockmind/stockmind/core"
)

// DiagnosticService implements the tier 2 tools: root cause analysis of
// inventory issues.
type DiagnosticService struct {
	provider DataProvider
	logger   core.Logger
}

// NewDiagnosticService creates the tier 2 tool set.
func NewDiagnosticService(provider DataProvider) *DiagnosticService {
	return &DiagnosticService{provider: provider, logger: &core.NoOpLogger{}}
}

// SetLogger sets the logger provider
func (s *DiagnosticService) SetLogger(logger core.Logger) {
	if logger == nil {
		s.logger = &core.NoOpLogger{}
	} else {
		s.logger = logger
	}
}

// AnalyzeStockoutRootCause identifies the factors contributing to a stockout
// or stockout risk for one item.
func (s *DiagnosticService) AnalyzeStockoutRootCause(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
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
	recentDemand := mean(tail(demand, 30))

	var cv float64
	if avgDemand > 0 {
		cv = demandStd / avgDemand
	}

	var causes []string
	if item.CurrentStock < item.ReorderPoint {
		causes = append(causes, "Current stock below reorder point")
	}
	if cv > 0.5 {
		causes = append(causes, "High demand variability")
	}
	if item.LeadTimeDays > 14 {
		causes = append(causes, "Long supplier lead time")
	}
	if recentDemand > avgDemand*1.2 {
		causes = append(causes, "Recent demand spike")
	}
	if len(causes) == 0 {
		causes = append(causes, "No stockout risk factors identified")
	}

	severity := "Medium"
	if item.CurrentStock == 0 {
		severity = "High"
	}

	var recommendations []string
	if float64(item.CurrentStock) < avgDemand*3 {
		recommendations = append(recommendations, "Immediate replenishment required")
	}
	if cv > 0.5 {
		recommendations = append(recommendations, "Consider dynamic safety stock due to unpredictable demand")
	}

	return &core.DiagnosisPayload{
		Causes:          causes,
		Severity:        severity,
		Recommendations: recommendations,
	}, nil
}

// AnalyzeSupplierPerformance evaluates one supplier's reliability, lead
// times, and the stock health of the items it supplies.
func (s *DiagnosticService) AnalyzeSupplierPerformance(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	supplierID := paramString(params, "supplier")
	if supplierID == "" {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "supplier parameter is required"}, nil
	}

	suppliers, err := s.provider.Suppliers(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if len(suppliers) == 0 {
		return notFound("supplier %s not found", supplierID), nil
	}
	supplier := suppliers[0]

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{})
	if err != nil {
		return nil, err
	}

	totalItems := 0
	outOfStock := 0
	var totalLeadTime float64
	for _, item := range inventory {
		if item.SupplierID != supplierID {
			continue
		}
		totalItems++
		totalLeadTime += float64(item.LeadTimeDays)
		if item.CurrentStock == 0 {
			outOfStock++
		}
	}

	var stockoutRate, avgLeadTime float64
	if totalItems > 0 {
		stockoutRate = float64(outOfStock) / float64(totalItems) * 100
		avgLeadTime = totalLeadTime / float64(totalItems)
	}

	var causes, recommendations []string
	if stockoutRate > 10 {
		causes = append(causes, fmt.Sprintf("High stockout rate: %.1f%% of supplied items", stockoutRate))
		recommendations = append(recommendations, "Review reorder points for this supplier's items")
	}
	if avgLeadTime > 20 {
		causes = append(causes, fmt.Sprintf("Long lead times averaging %.1f days", avgLeadTime))
		recommendations = append(recommendations, "Consider alternative suppliers or increase safety stock")
	}
	if supplier.ReliabilityScore < 0.8 {
		causes = append(causes, fmt.Sprintf("Low reliability score: %.2f", supplier.ReliabilityScore))
		recommendations = append(recommendations, "Monitor delivery performance closely")
	}
	if supplier.QualityRating < 4.0 {
		causes = append(causes, fmt.Sprintf("Quality concerns: rating %.1f of 5", supplier.QualityRating))
		recommendations = append(recommendations, "Implement quality control measures")
	}

	severity := "Low"
	if len(causes) >= 2 {
		severity = "Medium"
	}
	if stockoutRate > 25 {
		severity = "High"
	}
	if len(causes) == 0 {
		causes = append(causes, fmt.Sprintf("Supplier %s performing within expected bounds", supplierID))
	}

	return &core.DiagnosisPayload{
		Causes:          causes,
		Severity:        severity,
		Recommendations: recommendations,
	}, nil
}

// AnalyzeInventoryTurnover evaluates turnover performance across a category
// or the whole portfolio, identifying slow movers.
func (s *DiagnosticService) AnalyzeInventoryTurnover(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
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

	var ratios []float64
	for _, item := range inventory {
		sales, err := s.provider.Sales(ctx, SalesFilter{ItemID: item.ItemID})
		if err != nil {
			return nil, err
		}
		annual := 0
		for _, rec := range sales {
			annual += rec.Quantity
		}
		if item.CurrentStock > 0 && annual > 0 {
			ratios = append(ratios, float64(annual)/float64(item.CurrentStock))
		}
	}

	avgTurnover := mean(ratios)
	slowMovers := 0
	for _, r := range ratios {
		if r < avgTurnover*0.5 {
			slowMovers++
		}
	}

	var causes, recommendations []string
	causes = append(causes, fmt.Sprintf("Average turnover ratio %.2f across %d analyzed items", avgTurnover, len(ratios)))
	if slowMovers > len(ratios)*3/10 {
		causes = append(causes, fmt.Sprintf("%d slow-moving items tie up working capital", slowMovers))
		recommendations = append(recommendations, "High number of slow-moving items - consider promotional strategies")
	}
	if avgTurnover < 4 {
		causes = append(causes, "Overall turnover below healthy threshold")
		recommendations = append(recommendations, "Overall low turnover - review inventory levels and demand forecasting")
	}

	severity := "Low"
	if avgTurnover < 4 {
		severity = "Medium"
	}

	return &core.DiagnosisPayload{
		Causes:          causes,
		Severity:        severity,
		Recommendations: recommendations,
	}, nil
}

// AnalyzeDemandPatterns characterizes one item's demand variability and
// trend direction.
func (s *DiagnosticService) AnalyzeDemandPatterns(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	itemID := paramString(params, "item")
	if itemID == "" {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "item parameter is required"}, nil
	}

	sales, err := s.provider.Sales(ctx, SalesFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return notFound("no sales data found for item %s", itemID), nil
	}

	demand := dailyDemand(sales)
	meanDemand := mean(demand)
	std := stdDev(demand)
	var cv float64
	if meanDemand > 0 {
		cv = std / meanDemand
	}

	recent := mean(tail(demand, 30))
	previous := meanDemand
	if len(demand) >= 60 {
		previous = mean(demand[len(demand)-60 : len(demand)-30])
	}
	trend := "Stable"
	if recent > previous*1.1 {
		trend = "Increasing"
	} else if recent < previous*0.9 {
		trend = "Decreasing"
	}

	variability := "Low"
	if cv > 0.5 {
		variability = "High"
	} else if cv > 0.3 {
		variability = "Medium"
	}

	causes := []string{
		fmt.Sprintf("Mean daily demand %.2f with %s variability (CV %.2f)", meanDemand, variability, cv),
		fmt.Sprintf("Demand trend is %s over the last 30 days", trend),
	}

	var recommendations []string
	if cv > 0.5 {
		recommendations = append(recommendations, "High demand variability - consider dynamic safety stock")
	}
	switch trend {
	case "Increasing":
		recommendations = append(recommendations, "Demand is trending upward - may need to increase reorder points")
	case "Decreasing":
		recommendations = append(recommendations, "Demand is trending downward - review inventory levels")
	}

	return &core.DiagnosisPayload{
		Causes:          causes,
		Severity:        variability,
		Recommendations: recommendations,
	}, nil
}

// DiagnoseCategoryIssues diagnoses systemic issues within one category:
// stockout rates, overstock rates, and supplier concentration.
func (s *DiagnosticService) DiagnoseCategoryIssues(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
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

	total := len(inventory)
	outOfStock := 0
	overstock := 0
	var totalLeadTime float64
	supplierSet := make(map[string]bool)
	for _, item := range inventory {
		if item.CurrentStock == 0 {
			outOfStock++
		}
		if float64(item.CurrentStock) > float64(item.MaxStock)*0.9 {
			overstock++
		}
		totalLeadTime += float64(item.LeadTimeDays)
		supplierSet[item.SupplierID] = true
	}

	outRate := float64(outOfStock) / float64(total) * 100
	overRate := float64(overstock) / float64(total) * 100
	avgLeadTime := totalLeadTime / float64(total)

	var causes, recommendations []string
	if outRate > 15 {
		causes = append(causes, "Inadequate inventory management driving high out-of-stock rate")
		recommendations = append(recommendations, "Review reorder points and safety stock levels")
	}
	if overRate > 20 {
		causes = append(causes, "Poor demand forecasting or excessive ordering")
		recommendations = append(recommendations, "Implement better demand forecasting")
	}
	if len(supplierSet) == 1 {
		causes = append(causes, "Supply chain risk concentrated in a single supplier")
		recommendations = append(recommendations, "Diversify supplier base")
	}
	if avgLeadTime > 20 {
		causes = append(causes, "Inefficient supply chain with long average lead times")
		recommendations = append(recommendations, "Work with suppliers to reduce lead times")
	}
	if len(causes) == 0 {
		causes = append(causes, fmt.Sprintf("No systemic issues identified in category %s", category))
	}

	severity := "Low"
	if len(causes) >= 2 {
		severity = "Medium"
	}
	if outRate > 25 {
		severity = "High"
	}

	return &core.DiagnosisPayload{
		Causes:          causes,
		Severity:        severity,
		Recommendations: recommendations,
	}, nil
}
