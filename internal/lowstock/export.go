package lowstock

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheet = "Low Stock"

var header = []interface{}{
	"Item", "Catalogue", "Section", "Size", "Stock", "Severity", "Price", "Location", "Material",
}

// Export renders rows as an xlsx workbook with a single "Low Stock" sheet.
func Export(rows []Row) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "I1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "I", 18); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			r.Name, r.CatalogueName, string(r.Section), r.Size, r.Stock,
			r.Severity.Text, r.Price, r.Location, r.Material,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("lowstock: write row %d: %w", i+2, err)
		}
	}

	return f.WriteToBuffer()
}
