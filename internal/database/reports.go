package database

import (
	"context"
	"time"

	"ss-uniforms/internal/models"

	"gorm.io/gorm"
)

// SalesReportResult holds revenue and order count for a date range
type SalesReportResult struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalCount   int64   `json:"total_count"`
}

// GetSalesReport calculates sales within a specific date range
func GetSalesReport(ctx context.Context, db *gorm.DB, start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no sales exist
	err := db.WithContext(ctx).Model(&models.Sale{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(&models.Sale{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&result.TotalCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
