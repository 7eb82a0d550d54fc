package inventory

import (
	"sort"
	"time"

	"ss-uniforms/internal/models"
	"ss-uniforms/internal/money"
)

// DashboardLowStock is the fixed dashboard signal: an item is low when stock < 6.
// The low-stock report uses its own adjustable threshold.
const DashboardLowStock = 6

const (
	bestSellerCount  = 5
	recentSalesCount = 10
)

// BestSellerMetric selects how best sellers are ranked.
type BestSellerMetric string

const (
	// BestSellerByStock ranks by current stock, highest first.
	BestSellerByStock BestSellerMetric = "stock"
	// BestSellerByUnitsSold ranks by units sold across all recorded sales.
	BestSellerByUnitsSold BestSellerMetric = "units_sold"
)

type DashboardStats struct {
	TotalStockValue float64 `json:"total_stock_value"`
	TotalItems      int     `json:"total_items"`
	TotalStock      int     `json:"total_stock"`
	LowStockCount   int     `json:"low_stock_count"`
	SalesCount      int     `json:"sales_count"`
	Revenue         float64 `json:"revenue"` // year to date
}

type SalesAnalytics struct {
	DailySales      float64       `json:"daily_sales"`
	WeeklySales     float64       `json:"weekly_sales"`
	MonthlySales    float64       `json:"monthly_sales"`
	YearlySales     float64       `json:"yearly_sales"`
	TopSellingItems []models.Item `json:"top_selling_items"`
	RecentSales     []models.Sale `json:"recent_sales"`
}

// Snapshot is every aggregate derived from one catalogue tree and sales list.
type Snapshot struct {
	Stats         DashboardStats `json:"stats"`
	Analytics     SalesAnalytics `json:"analytics"`
	BestSellers   []models.Item  `json:"best_sellers"`
	LowStockItems []models.Item  `json:"low_stock_items"`
}

// AllItems flattens every item across catalogues and sections.
func AllItems(catalogues []models.Catalogue) []models.Item {
	var out []models.Item
	for _, c := range catalogues {
		for _, s := range c.Sections {
			out = append(out, s.Items...)
		}
	}
	return out
}

// Compute derives dashboard stats and sales analytics. Calendar comparisons use
// now's location.
func Compute(catalogues []models.Catalogue, sales []models.Sale, now time.Time, metric BestSellerMetric) Snapshot {
	items := AllItems(catalogues)

	stats := DashboardStats{
		TotalItems: len(items),
		SalesCount: len(sales),
		TotalStockValue: money.Total(items,
			func(it models.Item) float64 { return it.Price },
			func(it models.Item) int { return it.Stock }),
	}
	lowStock := []models.Item{}
	for _, it := range items {
		stats.TotalStock += it.Stock
		if it.Stock < DashboardLowStock {
			lowStock = append(lowStock, it)
		}
	}
	stats.LowStockCount = len(lowStock)

	var daily, weekly, monthly, yearly []float64
	weekStart := now.AddDate(0, 0, -7)
	for _, s := range sales {
		at := s.CreatedAt.In(now.Location())
		if at.After(weekStart) && !at.After(now) {
			weekly = append(weekly, s.TotalAmount)
		}
		if at.Year() != now.Year() {
			continue
		}
		yearly = append(yearly, s.TotalAmount)
		if at.Month() == now.Month() {
			monthly = append(monthly, s.TotalAmount)
			if at.Day() == now.Day() {
				daily = append(daily, s.TotalAmount)
			}
		}
	}
	stats.Revenue = money.Sum(yearly...)

	best := BestSellers(items, sales, metric)

	return Snapshot{
		Stats: stats,
		Analytics: SalesAnalytics{
			DailySales:      money.Sum(daily...),
			WeeklySales:     money.Sum(weekly...),
			MonthlySales:    money.Sum(monthly...),
			YearlySales:     stats.Revenue,
			TopSellingItems: best,
			RecentSales:     RecentSales(sales, recentSalesCount),
		},
		BestSellers:   best,
		LowStockItems: lowStock,
	}
}

// BestSellers returns up to five items ranked by metric. Under BestSellerByUnitsSold
// only items with at least one unit sold are ranked.
func BestSellers(items []models.Item, sales []models.Sale, metric BestSellerMetric) []models.Item {
	ranked := make([]models.Item, 0, len(items))

	switch metric {
	case BestSellerByUnitsSold:
		sold := UnitsSold(sales)
		for _, it := range items {
			if sold[it.ID] > 0 {
				ranked = append(ranked, it)
			}
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return sold[ranked[i].ID] > sold[ranked[j].ID]
		})
	default:
		ranked = append(ranked, items...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Stock > ranked[j].Stock
		})
	}

	if len(ranked) > bestSellerCount {
		ranked = ranked[:bestSellerCount]
	}
	return ranked
}

// UnitsSold totals sold quantities per item id. Lines recorded without an item id
// are skipped.
func UnitsSold(sales []models.Sale) map[string]int {
	out := make(map[string]int)
	for _, s := range sales {
		for _, l := range s.Items {
			if l.ItemID != "" {
				out[l.ItemID] += l.Quantity
			}
		}
	}
	return out
}

// RecentSales returns the n newest sales, newest first.
func RecentSales(sales []models.Sale, n int) []models.Sale {
	out := make([]models.Sale, len(sales))
	copy(out, sales)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
