package inventory

import (
	"fmt"
	"testing"
	"time"

	"ss-uniforms/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func catalogueWith(items ...models.Item) []models.Catalogue {
	return []models.Catalogue{{
		ID: "cat-1",
		Sections: []models.Section{
			{Name: models.SectionSummer, Items: items},
		},
	}}
}

func TestDashboardStatsFromStocks(t *testing.T) {
	var items []models.Item
	for i, stock := range []int{2, 10, 0, 5} {
		items = append(items, models.Item{ID: fmt.Sprintf("item-%d", i), Stock: stock, Price: 100})
	}

	snap := Compute(catalogueWith(items...), nil, now, BestSellerByStock)

	assert.Equal(t, 4, snap.Stats.TotalItems)
	assert.Equal(t, 17, snap.Stats.TotalStock)
	assert.Equal(t, 3, snap.Stats.LowStockCount)
	assert.Equal(t, 1700.0, snap.Stats.TotalStockValue)
	require.Len(t, snap.LowStockItems, 3)
	assert.Equal(t, "item-0", snap.LowStockItems[0].ID)
	assert.Equal(t, "item-2", snap.LowStockItems[1].ID)
	assert.Equal(t, "item-3", snap.LowStockItems[2].ID)
}

func TestDashboardLowStockBoundary(t *testing.T) {
	snap := Compute(catalogueWith(
		models.Item{ID: "five", Stock: 5},
		models.Item{ID: "six", Stock: 6},
	), nil, now, BestSellerByStock)

	require.Len(t, snap.LowStockItems, 1)
	assert.Equal(t, "five", snap.LowStockItems[0].ID)
}

func TestSalesAnalyticsCalendarWindows(t *testing.T) {
	sales := []models.Sale{
		{ID: "today", TotalAmount: 100, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "this-week", TotalAmount: 200, CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "last-month", TotalAmount: 300, CreatedAt: now.AddDate(0, 0, -20)},
		{ID: "last-year", TotalAmount: 400, CreatedAt: now.AddDate(-1, 0, 0)},
	}

	snap := Compute(nil, sales, now, BestSellerByStock)

	assert.Equal(t, 100.0, snap.Analytics.DailySales)
	assert.Equal(t, 300.0, snap.Analytics.WeeklySales)
	assert.Equal(t, 300.0, snap.Analytics.MonthlySales)
	assert.Equal(t, 600.0, snap.Analytics.YearlySales)
	assert.Equal(t, 600.0, snap.Stats.Revenue)
	assert.Equal(t, 4, snap.Stats.SalesCount)
}

func TestSalesAnalyticsUsesLocalCalendar(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	localNow := time.Date(2026, time.October, 15, 1, 0, 0, 0, ist)
	// 19:00 UTC on the 14th is already the 15th in IST.
	sale := models.Sale{TotalAmount: 50, CreatedAt: time.Date(2026, time.October, 14, 19, 0, 0, 0, time.UTC)}

	snap := Compute(nil, []models.Sale{sale}, localNow, BestSellerByStock)

	assert.Equal(t, 50.0, snap.Analytics.DailySales)
}

func TestBestSellersByStock(t *testing.T) {
	var items []models.Item
	for i, stock := range []int{3, 50, 7, 50, 1, 20, 9} {
		items = append(items, models.Item{ID: fmt.Sprintf("i%d", i), Stock: stock})
	}

	best := BestSellers(items, nil, BestSellerByStock)

	ids := make([]string, len(best))
	for i, it := range best {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"i1", "i3", "i5", "i6", "i2"}, ids)
}

func TestBestSellersByUnitsSold(t *testing.T) {
	items := []models.Item{{ID: "a", Stock: 100}, {ID: "b", Stock: 1}, {ID: "c", Stock: 5}}
	sales := []models.Sale{
		{Items: []models.SaleLine{{ItemID: "b", Quantity: 4}, {ItemID: "c", Quantity: 1}}},
		{Items: []models.SaleLine{{ItemID: "b", Quantity: 2}, {Name: "legacy line", Quantity: 9}}},
	}

	best := BestSellers(items, sales, BestSellerByUnitsSold)

	require.Len(t, best, 2)
	assert.Equal(t, "b", best[0].ID)
	assert.Equal(t, "c", best[1].ID)
	assert.Equal(t, map[string]int{"b": 6, "c": 1}, UnitsSold(sales))
}

func TestRecentSalesKeepsTenNewest(t *testing.T) {
	var sales []models.Sale
	for i := 0; i < 12; i++ {
		sales = append(sales, models.Sale{ID: fmt.Sprintf("s%02d", i), CreatedAt: now.Add(time.Duration(i) * time.Minute)})
	}

	recent := RecentSales(sales, 10)

	require.Len(t, recent, 10)
	assert.Equal(t, "s11", recent[0].ID)
	assert.Equal(t, "s02", recent[9].ID)
	assert.Equal(t, "s00", sales[0].ID, "input must not be reordered")
}
