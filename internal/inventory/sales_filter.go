package inventory

import (
	"sort"
	"strings"
	"time"

	"ss-uniforms/internal/models"
	"ss-uniforms/internal/money"
)

// Period narrows the sales list to a window ending now.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// SalesFilter is the sales management screen's query. Empty fields and "all" match everything.
type SalesFilter struct {
	Search     string `form:"search" json:"search"`
	Period     Period `form:"period" json:"period"`
	EmployeeID string `form:"employee" json:"employee"`
}

type SalesSummary struct {
	Count             int     `json:"count"`
	Revenue           float64 `json:"revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// start returns the earliest creation time p admits, and false for PeriodAll.
func (p Period) start(now time.Time) (time.Time, bool) {
	switch p {
	case PeriodToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, -1, 0), true
	case PeriodYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// FilterSales applies f and returns the matching sales newest first.
func FilterSales(sales []models.Sale, f SalesFilter, now time.Time) []models.Sale {
	search := strings.TrimSpace(f.Search)
	lower := strings.ToLower(search)
	from, bounded := f.Period.start(now)

	out := []models.Sale{}
	for _, s := range sales {
		if search != "" && !matchesSearch(s, search, lower) {
			continue
		}
		if bounded && s.CreatedAt.Before(from) {
			continue
		}
		if f.EmployeeID != "" && f.EmployeeID != "all" && s.EmployeeID != f.EmployeeID {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesSearch(s models.Sale, raw, lower string) bool {
	if s.CustomerName != nil && strings.Contains(strings.ToLower(*s.CustomerName), lower) {
		return true
	}
	if s.CustomerPhone != nil && strings.Contains(*s.CustomerPhone, raw) {
		return true
	}
	return strings.Contains(strings.ToLower(s.ID), lower)
}

func SummarizeSales(sales []models.Sale) SalesSummary {
	amounts := make([]float64, len(sales))
	for i, s := range sales {
		amounts[i] = s.TotalAmount
	}
	sum := SalesSummary{Count: len(sales), Revenue: money.Sum(amounts...)}
	if sum.Count > 0 {
		sum.AverageOrderValue = sum.Revenue / float64(sum.Count)
	}
	return sum
}

// Employees lists the distinct employee ids that recorded sales, in first-seen order.
func Employees(sales []models.Sale) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, s := range sales {
		if !seen[s.EmployeeID] {
			seen[s.EmployeeID] = true
			out = append(out, s.EmployeeID)
		}
	}
	return out
}
