package inventory

import (
	"testing"
	"time"

	"ss-uniforms/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func salesFixture() []models.Sale {
	return []models.Sale{
		{ID: "aaa-111", EmployeeID: "emp-1", CustomerName: strPtr("Ravi Kumar"), CustomerPhone: strPtr("9876543210"), TotalAmount: 300, CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "bbb-222", EmployeeID: "emp-2", CustomerName: strPtr("Anita"), TotalAmount: 100, CreatedAt: now.Add(-time.Hour)},
		{ID: "ccc-333", EmployeeID: "emp-1", TotalAmount: 200, CreatedAt: now.AddDate(0, -2, 0)},
		{ID: "ddd-444", EmployeeID: "emp-2", TotalAmount: 50, CreatedAt: now.AddDate(-2, 0, 0)},
	}
}

func ids(sales []models.Sale) []string {
	out := make([]string, len(sales))
	for i, s := range sales {
		out[i] = s.ID
	}
	return out
}

func TestFilterSalesSortsNewestFirst(t *testing.T) {
	got := FilterSales(salesFixture(), SalesFilter{}, now)
	assert.Equal(t, []string{"bbb-222", "aaa-111", "ccc-333", "ddd-444"}, ids(got))
}

func TestFilterSalesSearch(t *testing.T) {
	sales := salesFixture()

	assert.Equal(t, []string{"aaa-111"}, ids(FilterSales(sales, SalesFilter{Search: "ravi"}, now)))
	assert.Equal(t, []string{"aaa-111"}, ids(FilterSales(sales, SalesFilter{Search: "54321"}, now)))
	assert.Equal(t, []string{"ccc-333"}, ids(FilterSales(sales, SalesFilter{Search: "CCC"}, now)))
	assert.Empty(t, FilterSales(sales, SalesFilter{Search: "nobody"}, now))
}

func TestFilterSalesPeriods(t *testing.T) {
	sales := salesFixture()

	cases := map[Period][]string{
		PeriodAll:   {"bbb-222", "aaa-111", "ccc-333", "ddd-444"},
		PeriodToday: {"bbb-222"},
		PeriodWeek:  {"bbb-222", "aaa-111"},
		PeriodMonth: {"bbb-222", "aaa-111"},
		PeriodYear:  {"bbb-222", "aaa-111", "ccc-333"},
	}
	for period, want := range cases {
		got := FilterSales(sales, SalesFilter{Period: period}, now)
		assert.Equal(t, want, ids(got), "period %s", period)
	}
}

func TestFilterSalesByEmployee(t *testing.T) {
	sales := salesFixture()

	assert.Equal(t, []string{"aaa-111", "ccc-333"}, ids(FilterSales(sales, SalesFilter{EmployeeID: "emp-1"}, now)))
	assert.Len(t, FilterSales(sales, SalesFilter{EmployeeID: "all"}, now), 4)
}

func TestSummarizeSales(t *testing.T) {
	sum := SummarizeSales(salesFixture())
	assert.Equal(t, 4, sum.Count)
	assert.Equal(t, 650.0, sum.Revenue)
	assert.Equal(t, 162.5, sum.AverageOrderValue)

	assert.Equal(t, SalesSummary{}, SummarizeSales(nil))
}

func TestEmployees(t *testing.T) {
	assert.Equal(t, []string{"emp-1", "emp-2"}, Employees(salesFixture()))
	assert.Empty(t, Employees(nil))
}
