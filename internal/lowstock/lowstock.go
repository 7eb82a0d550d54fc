// Package lowstock builds the low-stock report: one row per item whose own stock
// is at or below a threshold, plus one row per tracked size variant that is.
package lowstock

import (
	"sort"
	"strings"

	"ss-uniforms/internal/models"
)

// DefaultThreshold is the report's starting threshold.
const DefaultThreshold = 10

// StandardSize labels the row for an item's own stock.
const StandardSize = "Standard"

type Kind string

const (
	KindMain    Kind = "main"
	KindVariant Kind = "size_variant"
)

type Level string

const (
	LevelOut      Level = "out"
	LevelCritical Level = "critical"
	LevelVeryLow  Level = "very_low"
	LevelLow      Level = "low"
	LevelNormal   Level = "normal"
)

type Severity struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// SeverityOf bands stock: ≤0 out, 1–3 critical, 4–5 very low, 6–10 low, else normal.
func SeverityOf(stock int) Severity {
	switch {
	case stock <= 0:
		return Severity{LevelOut, "Out of Stock"}
	case stock <= 3:
		return Severity{LevelCritical, "Critical"}
	case stock <= 5:
		return Severity{LevelVeryLow, "Very Low"}
	case stock <= 10:
		return Severity{LevelLow, "Low"}
	default:
		return Severity{LevelNormal, "Normal"}
	}
}

type Row struct {
	ItemID        string             `json:"item_id"`
	Name          string             `json:"name"`
	CatalogueID   string             `json:"catalogue_id"`
	CatalogueName string             `json:"catalogue_name"`
	Section       models.SectionType `json:"section"`
	Material      string             `json:"material"`
	Location      string             `json:"location"`
	Image         string             `json:"image"`
	Size          string             `json:"size"`
	Price         float64            `json:"price"`
	Stock         int                `json:"stock"`
	Kind          Kind               `json:"kind"`
	Severity      Severity           `json:"severity"`
	Progress      int                `json:"progress"` // percent of 20 units, capped at 100
}

// Build walks catalogues → sections → items. Size variants with untracked (nil)
// stock never produce a row.
func Build(catalogues []models.Catalogue, threshold int) []Row {
	rows := []Row{}
	for _, c := range catalogues {
		for _, sec := range c.Sections {
			for _, it := range sec.Items {
				base := Row{
					ItemID:        it.ID,
					Name:          it.Name,
					CatalogueID:   c.ID,
					CatalogueName: c.Name,
					Section:       sec.Name,
					Material:      it.Material,
					Location:      it.Location,
					Image:         it.Image,
				}
				if it.Stock <= threshold {
					rows = append(rows, withStock(base, StandardSize, it.Price, it.Stock, KindMain))
				}
				for _, sz := range it.Sizes {
					if sz.Stock != nil && *sz.Stock <= threshold {
						rows = append(rows, withStock(base, sz.Size, sz.Price, *sz.Stock, KindVariant))
					}
				}
			}
		}
	}
	return rows
}

func withStock(r Row, size string, price float64, stock int, kind Kind) Row {
	r.Size = size
	r.Price = price
	r.Stock = stock
	r.Kind = kind
	r.Severity = SeverityOf(stock)
	r.Progress = progress(stock)
	return r
}

func progress(stock int) int {
	if stock <= 0 {
		return 0
	}
	if stock >= 20 {
		return 100
	}
	return stock * 100 / 20
}

// Filter narrows report rows. Empty fields and "all" match everything.
type Filter struct {
	CatalogueID string `form:"catalogue"`
	Size        string `form:"size"`
	Search      string `form:"search"`
}

// Apply keeps rows matching every set field. Search matches item name, catalogue
// name or location, case-insensitively.
func Apply(rows []Row, f Filter) []Row {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []Row{}
	for _, r := range rows {
		if !all(f.CatalogueID) && r.CatalogueID != f.CatalogueID {
			continue
		}
		if !all(f.Size) && r.Size != f.Size {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(strings.ToLower(r.CatalogueName), search) &&
			!strings.Contains(strings.ToLower(r.Location), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func all(v string) bool {
	return v == "" || v == "all"
}

type Summary struct {
	Out        int `json:"out"`
	Critical   int `json:"critical"`
	Low        int `json:"low"` // 4–10
	TotalUnits int `json:"total_units"`
}

func Summarize(rows []Row) Summary {
	var s Summary
	for _, r := range rows {
		switch {
		case r.Stock <= 0:
			s.Out++
		case r.Stock <= 3:
			s.Critical++
		case r.Stock <= 10:
			s.Low++
		}
		s.TotalUnits += r.Stock
	}
	return s
}

// Sizes returns the distinct size labels in rows, sorted.
func Sizes(rows []Row) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range rows {
		if !seen[r.Size] {
			seen[r.Size] = true
			out = append(out, r.Size)
		}
	}
	sort.Strings(out)
	return out
}
