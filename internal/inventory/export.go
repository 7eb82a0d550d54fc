package inventory

import (
	"bytes"
	"fmt"
	"strings"

	"ss-uniforms/internal/format"
	"ss-uniforms/internal/models"

	"github.com/xuri/excelize/v2"
)

const salesSheet = "Sales"

var salesHeader = []interface{}{
	"Sale ID", "Date", "Employee", "Customer", "Phone", "Items", "Units", "Total",
}

// ExportSales renders sales as an xlsx workbook. employees maps employee ids to
// display names; unknown ids are written as-is.
func ExportSales(sales []models.Sale, employees map[string]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(salesSheet, "A1", &salesHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(salesSheet, "A1", "H1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(salesSheet, "A", "H", 20); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(salesSheet, "F", "F", 48); err != nil {
		return nil, err
	}

	for i, s := range sales {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		employee := s.EmployeeID
		if name, ok := employees[employee]; ok && name != "" {
			employee = name
		}
		lines := make([]string, 0, len(s.Items))
		units := 0
		for _, l := range s.Items {
			lines = append(lines, fmt.Sprintf("%s (%s) x%d", l.Name, l.Size, l.Quantity))
			units += l.Quantity
		}
		values := []interface{}{
			s.ID, format.Date(s.CreatedAt), employee, deref(s.CustomerName), deref(s.CustomerPhone),
			strings.Join(lines, ", "), units, s.TotalAmount,
		}
		if err := f.SetSheetRow(salesSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("inventory: write sale row %d: %w", i+2, err)
		}
	}

	return f.WriteToBuffer()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
