// Package analytics implements the inventory analytics tools behind the
// orchestration pipeline. Tools are grouped by tier: descriptive tools report
// current state, diagnostic tools explain root causes, predictive tools
// forecast demand, and prescriptive tools recommend actions.
package analytics

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/stockmind/stockmind/core"
)

// InventoryRecord is one stocked item.
type InventoryRecord struct {
	ItemID       string    `json:"item_id"`
	ItemName     string    `json:"item_name"`
	Category     string    `json:"category"`
	CurrentStock int       `json:"current_stock"`
	ReorderPoint int       `json:"reorder_point"`
	MaxStock     int       `json:"max_stock"`
	UnitCost     float64   `json:"unit_cost"`
	SupplierID   string    `json:"supplier_id"`
	LeadTimeDays int       `json:"lead_time_days"`
	LastUpdated  time.Time `json:"last_updated"`
}

// SalesRecord is one day's sales of one item.
type SalesRecord struct {
	Date      time.Time `json:"date"`
	ItemID    string    `json:"item_id"`
	Quantity  int       `json:"quantity_sold"`
	UnitPrice float64   `json:"unit_price"`
	Revenue   float64   `json:"total_revenue"`
}

// SupplierRecord describes one supplier.
type SupplierRecord struct {
	SupplierID       string  `json:"supplier_id"`
	Name             string  `json:"supplier_name"`
	ReliabilityScore float64 `json:"reliability_score"`
	AvgLeadTimeDays  int     `json:"average_lead_time"`
	QualityRating    float64 `json:"quality_rating"`
}

// InventoryFilter narrows inventory reads. Empty fields match everything.
type InventoryFilter struct {
	ItemID   string
	Category string
}

// SalesFilter narrows sales reads by item and date window.
type SalesFilter struct {
	ItemID    string
	StartDate time.Time
	EndDate   time.Time
}

// DataProvider is the read boundary to the inventory data backend. All
// methods must be safe for concurrent reads since parallel plans may query
// simultaneously.
type DataProvider interface {
	Inventory(ctx context.Context, filter InventoryFilter) ([]InventoryRecord, error)
	Sales(ctx context.Context, filter SalesFilter) ([]SalesRecord, error)
	Suppliers(ctx context.Context, supplierID string) ([]SupplierRecord, error)
}

// MemoryProvider serves deterministic generated data from memory. The data
// set covers 100 items across 5 categories, 20 suppliers, and daily 2024
// sales, generated from a fixed seed so reports are reproducible across runs.
type MemoryProvider struct {
	inventory []InventoryRecord
	sales     []SalesRecord
	suppliers []SupplierRecord
}

var sampleCategories = []string{"Electronics", "Clothing", "Home & Garden", "Sports", "Books"}

// NewMemoryProvider builds the generated data set. Construction is the only
// write; all reads afterwards copy out of immutable slices.
func NewMemoryProvider() *MemoryProvider {
	rng := rand.New(rand.NewSource(42))
	p := &MemoryProvider{}

	for i := 1; i <= 100; i++ {
		itemID := fmt.Sprintf("ITEM_%03d", i)
		p.inventory = append(p.inventory, InventoryRecord{
			ItemID:       itemID,
			ItemName:     fmt.Sprintf("Product %03d", i),
			Category:     sampleCategories[rng.Intn(len(sampleCategories))],
			CurrentStock: rng.Intn(500),
			ReorderPoint: 20 + rng.Intn(80),
			MaxStock:     200 + rng.Intn(800),
			UnitCost:     round2(5.0 + rng.Float64()*195.0),
			SupplierID:   fmt.Sprintf("SUP_%03d", 1+rng.Intn(20)),
			LeadTimeDays: 1 + rng.Intn(29),
			LastUpdated:  time.Now().AddDate(0, 0, -rng.Intn(7)),
		})
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		active := 10 + rng.Intn(40)
		seen := make(map[int]bool, active)
		for len(seen) < active {
			idx := rng.Intn(100)
			if seen[idx] {
				continue
			}
			seen[idx] = true
			quantity := 1 + rng.Intn(19)
			price := round2(10.0 + rng.Float64()*290.0)
			p.sales = append(p.sales, SalesRecord{
				Date:      date,
				ItemID:    p.inventory[idx].ItemID,
				Quantity:  quantity,
				UnitPrice: price,
				Revenue:   round2(float64(quantity) * price),
			})
		}
	}

	for i := 1; i <= 20; i++ {
		p.suppliers = append(p.suppliers, SupplierRecord{
			SupplierID:       fmt.Sprintf("SUP_%03d", i),
			Name:             fmt.Sprintf("Supplier Company %d", i),
			ReliabilityScore: round2(0.7 + rng.Float64()*0.3),
			AvgLeadTimeDays:  5 + rng.Intn(20),
			QualityRating:    round1(3.0 + rng.Float64()*2.0),
		})
	}

	return p
}

// Inventory returns inventory records matching the filter.
func (p *MemoryProvider) Inventory(ctx context.Context, filter InventoryFilter) ([]InventoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []InventoryRecord
	for _, rec := range p.inventory {
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

// Sales returns sales records matching the filter. A zero start or end date
// leaves that side of the window open.
func (p *MemoryProvider) Sales(ctx context.Context, filter SalesFilter) ([]SalesRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []SalesRecord
	for _, rec := range p.sales {
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

// Suppliers returns supplier records, all of them when supplierID is empty.
func (p *MemoryProvider) Suppliers(ctx context.Context, supplierID string) ([]SupplierRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []SupplierRecord
	for _, rec := range p.suppliers {
		if supplierID != "" && rec.SupplierID != supplierID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// notFound builds the lookup-failure payload shared by all tiers.
func notFound(format string, args ...interface{}) *core.ErrorPayload {
	return &core.ErrorPayload{
		Code:    core.ErrCodeNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
