package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/stockmind/stockmind/core"
)

// PredictiveService implements the tier 3 tools: demand forecasting and
// trend prediction.
type PredictiveService struct {
	provider DataProvider
	logger   core.Logger
	now      func() time.Time
}

// NewPredictiveService creates the tier 3 tool set.
func NewPredictiveService(provider DataProvider) *PredictiveService {
	return &PredictiveService{provider: provider, logger: &core.NoOpLogger{}, now: time.Now}
}

// SetLogger sets the logger provider
func (s *PredictiveService) SetLogger(logger core.Logger) {
	if logger == nil {
		s.logger = &core.NoOpLogger{}
	} else {
		s.logger = logger
	}
}

// ForecastDemand projects daily demand for one item over the forecast
// horizon. The model extends the recent moving average with mild trend and
// weekly/monthly seasonal components, with 95% confidence bounds from
// historical variability.
func (s *PredictiveService) ForecastDemand(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	itemID := paramString(params, "item")
	if itemID == "" {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "item parameter is required"}, nil
	}
	periods := paramInt(params, "forecast_periods", 30)
	if periods <= 0 {
		periods = 30
	}

	sales, err := s.provider.Sales(ctx, SalesFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return notFound("no sales data found for item %s", itemID), nil
	}

	demand := dailyDemand(sales)
	base := mean(tail(demand, 30))
	std := stdDev(demand)
	if std == 0 {
		std = base * 0.2
	}

	points := make([]core.ForecastPoint, 0, periods)
	var total float64
	start := s.now().AddDate(0, 0, 1)
	for i := 0; i < periods; i++ {
		trendFactor := 1 + float64(i)*0.001
		seasonalFactor := 1 + 0.1*math.Sin(2*math.Pi*float64(i)/7)
		monthlyFactor := 1 + 0.05*math.Sin(2*math.Pi*float64(i)/30)
		value := math.Max(0, base*trendFactor*seasonalFactor*monthlyFactor)

		points = append(points, core.ForecastPoint{
			Date:       start.AddDate(0, 0, i).Format("2006-01-02"),
			Demand:     round2(value),
			LowerBound: round2(math.Max(0, value-1.96*std)),
			UpperBound: round2(value + 1.96*std),
		})
		total += value
	}

	return &core.ForecastPayload{
		TotalForecast: round2(total),
		AverageDaily:  round2(total / float64(periods)),
		HorizonDays:   periods,
		Points:        points,
		Recommendations: []string{
			fmt.Sprintf("Plan replenishment for %.0f units over the next %d days", total, periods),
		},
	}, nil
}

// PredictStockoutRisk projects whether current stock covers forecasted
// demand for one item or the whole portfolio.
func (s *PredictiveService) PredictStockoutRisk(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	itemID := paramString(params, "item")
	horizon := paramInt(params, "forecast_periods", 30)

	inventory, err := s.provider.Inventory(ctx, InventoryFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	if len(inventory) == 0 {
		if itemID != "" {
			return notFound("item %s not found", itemID), nil
		}
		return notFound("no inventory data found"), nil
	}

	highRisk := 0
	mediumRisk := 0
	var totalForecast float64
	var recommendations []string

	for _, item := range inventory {
		sales, err := s.provider.Sales(ctx, SalesFilter{ItemID: item.ItemID})
		if err != nil {
			return nil, err
		}
		demand := dailyDemand(sales)
		daily := mean(tail(demand, 30))
		forecast := daily * float64(horizon)
		totalForecast += forecast

		if forecast <= float64(item.CurrentStock) || daily == 0 {
			continue
		}
		daysUntilStockout := int(float64(item.CurrentStock) / daily)
		switch {
		case daysUntilStockout <= 7:
			highRisk++
		case daysUntilStockout <= 14:
			mediumRisk++
		}
	}

	recommendations = append(recommendations,
		fmt.Sprintf("Immediate attention needed for %d high-risk items", highRisk),
		fmt.Sprintf("Monitor %d medium-risk items closely", mediumRisk),
		"Consider increasing safety stock for high-variability items",
	)

	return &core.ForecastPayload{
		TotalForecast:   round2(totalForecast),
		AverageDaily:    round2(totalForecast / float64(horizon)),
		HorizonDays:     horizon,
		Recommendations: recommendations,
	}, nil
}

// ForecastInventoryLevels simulates future stock levels for one item day by
// day, applying forecasted demand and replenishment arrivals after the
// supplier lead time.
func (s *PredictiveService) ForecastInventoryLevels(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	itemID := paramString(params, "item")
	if itemID == "" {
		return &core.ErrorPayload{Code: core.ErrCodeBadInput, Message: "item parameter is required"}, nil
	}
	horizon := paramInt(params, "forecast_periods", 30)
	if horizon <= 0 {
		horizon = 30
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
	daily := mean(tail(demand, 30))

	running := float64(item.CurrentStock)
	stockoutDays := 0
	reorderEvents := 0
	pending := map[int]float64{}
	points := make([]core.ForecastPoint, 0, horizon)
	start := s.now().AddDate(0, 0, 1)
	var total float64

	for day := 0; day < horizon; day++ {
		if qty, ok := pending[day]; ok {
			running += qty
			delete(pending, day)
		}
		running = math.Max(0, running-daily)
		total += daily
		if running == 0 {
			stockoutDays++
		}
		if running <= float64(item.ReorderPoint) && len(pending) == 0 {
			orderQty := math.Max(100, float64(item.ReorderPoint)*2)
			pending[day+item.LeadTimeDays] = orderQty
			reorderEvents++
		}
		points = append(points, core.ForecastPoint{
			Date:       start.AddDate(0, 0, day).Format("2006-01-02"),
			Demand:     round2(running),
			LowerBound: round2(math.Max(0, running-daily)),
			UpperBound: round2(running + daily),
		})
	}

	var recommendations []string
	if stockoutDays > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Increase safety stock: %d projected stockout days in horizon", stockoutDays))
	} else {
		recommendations = append(recommendations, "Current stock levels adequate for the forecast horizon")
	}
	recommendations = append(recommendations,
		fmt.Sprintf("Expected %d reorder events in forecast period", reorderEvents))

	return &core.ForecastPayload{
		TotalForecast:   round2(total),
		AverageDaily:    round2(daily),
		HorizonDays:     horizon,
		Points:          points,
		Recommendations: recommendations,
	}, nil
}

// PredictSeasonalTrends derives monthly seasonal indices from historical
// sales and projects demand forward by month.
func (s *PredictiveService) PredictSeasonalTrends(ctx context.Context, params map[string]interface{}) (core.Payload, error) {
	category := paramString(params, "category")
	months := paramInt(params, "months_ahead", 12)
	if months <= 0 {
		months = 12
	}

	sales, err := s.provider.Sales(ctx, SalesFilter{})
	if err != nil {
		return nil, err
	}
	if category != "" {
		inventory, err := s.provider.Inventory(ctx, InventoryFilter{Category: category})
		if err != nil {
			return nil, err
		}
		if len(inventory) == 0 {
			return notFound("no sales data found for category: %s", category), nil
		}
		members := make(map[string]bool, len(inventory))
		for _, item := range inventory {
			members[item.ItemID] = true
		}
		filtered := sales[:0:0]
		for _, rec := range sales {
			if members[rec.ItemID] {
				filtered = append(filtered, rec)
			}
		}
		sales = filtered
	}
	if len(sales) == 0 {
		return notFound("no sales data found"), nil
	}

	var monthlyTotals [13]float64
	for _, rec := range sales {
		monthlyTotals[rec.Date.Month()] += float64(rec.Quantity)
	}
	var overall float64
	for m := 1; m <= 12; m++ {
		overall += monthlyTotals[m]
	}
	overall /= 12

	currentMonth := int(s.now().Month())
	var total float64
	var peaks, lows []string
	points := make([]core.ForecastPoint, 0, months)
	for i := 0; i < months; i++ {
		m := ((currentMonth + i - 1) % 12) + 1
		index := monthlyTotals[m] / overall
		predicted := monthlyTotals[m] * (1 + float64(i)*0.02)
		total += predicted

		monthName := time.Month(m).String()
		if index > 1.2 {
			peaks = append(peaks, monthName)
		} else if index < 0.8 {
			lows = append(lows, monthName)
		}
		points = append(points, core.ForecastPoint{
			Date:       fmt.Sprintf("%d-%02d", s.now().AddDate(0, i, 0).Year(), m),
			Demand:     round2(predicted),
			LowerBound: round2(predicted * 0.85),
			UpperBound: round2(predicted * 1.15),
		})
	}

	recommendations := []string{
		"Adjust safety stock levels based on seasonal patterns",
		"Plan supplier capacity for peak seasons",
	}
	if len(peaks) > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Prepare for peak demand in: %v", peaks))
	}
	if len(lows) > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Consider promotions during low seasons: %v", lows))
	}

	return &core.ForecastPayload{
		TotalForecast:   round2(total),
		AverageDaily:    round2(total / float64(months) / 30),
		HorizonDays:     months * 30,
		Points:          points,
		Recommendations: recommendations,
	}, nil
}
