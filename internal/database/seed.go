package database

import (
	"fmt"

	"ss-uniforms/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func stock(n int) *int { return &n }

type seedItem struct {
	item  models.Item
	sizes []models.ItemSize
}

// Seed inserts a demo catalogue when the catalogue table is empty. It reports
// whether anything was written.
func Seed(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.Catalogue{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		log.WithField("catalogues", count).Info("Catalogues already present, skipping seed")
		return false, nil
	}

	catalogue := models.Catalogue{
		Name:        "Delhi Public School",
		Description: "Summer, winter and house uniforms for DPS students",
		Image:       "https://images.pexels.com/photos/8613089/pexels-photo-8613089.jpeg",
		SortOrder:   1,
	}
	items := []seedItem{
		{
			item: models.Item{Name: "Half Sleeve Shirt", Material: "Cotton", Location: "Rack A1", Stock: 40, Price: 350, SectionType: models.SectionSummer},
			sizes: []models.ItemSize{
				{Size: "28", Price: 330, Stock: stock(12)},
				{Size: "32", Price: 350, Stock: stock(3)},
				{Size: "36", Price: 380, Stock: stock(0)},
			},
		},
		{
			item: models.Item{Name: "Grey Trousers", Material: "Terry Wool", Location: "Rack A2", Stock: 8, Price: 520, SectionType: models.SectionSummer},
		},
		{
			item: models.Item{Name: "Navy Blazer", Material: "Wool Blend", Location: "Rack B1", Stock: 5, Price: 1450, SectionType: models.SectionWinter},
			sizes: []models.ItemSize{
				{Size: "34", Price: 1450, Stock: stock(2)},
				{Size: "38", Price: 1550},
			},
		},
		{
			item: models.Item{Name: "Pullover", Material: "Acrylic", Location: "Rack B2", Stock: 0, Price: 650, SectionType: models.SectionWinter},
		},
		{
			item: models.Item{Name: "House T-Shirt (Red)", Material: "Polyester", Location: "Rack C1", Stock: 25, Price: 280, SectionType: models.SectionHouse},
		},
		{
			item: models.Item{Name: "School Tie", Material: "Polyester", Location: "Counter", Stock: 2, Price: 120, SectionType: models.SectionOther},
		},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&catalogue).Error; err != nil {
			return err
		}
		for _, s := range items {
			item := s.item
			item.CatalogueID = catalogue.ID
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			for _, sz := range s.sizes {
				sz.ItemID = item.ID
				if err := tx.Create(&sz).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("database: seed: %w", err)
	}
	log.WithField("catalogue_id", catalogue.ID).Info("Seeded demo catalogue")
	return true, nil
}
