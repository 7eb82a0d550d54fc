// Package shop serves the storefront's public details from the single shop_info row.
package shop

import (
	"context"
	"fmt"
	"time"

	"ss-uniforms/internal/models"
	"ss-uniforms/internal/notify"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultID marks the built-in details served when no row exists yet.
const DefaultID = "default"

type BusinessHours struct {
	Weekdays string `json:"weekdays"`
	Weekends string `json:"weekends"`
}

type SocialMedia struct {
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Info is the stored row plus the fixed listing details.
type Info struct {
	models.ShopInfo
	JustDialURL   string        `json:"justDialUrl"`
	BusinessHours BusinessHours `json:"businessHours"`
	SocialMedia   SocialMedia   `json:"socialMedia"`
	Location      Location      `json:"location"`
}

type Input struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Email       string   `json:"email" binding:"omitempty,email"`
	Phone       string   `json:"phone"`
	Images      []string `json:"images"`
}

func withListing(row models.ShopInfo) Info {
	if row.Images == nil {
		row.Images = []string{}
	}
	return Info{
		ShopInfo:    row,
		JustDialURL: "https://www.justdial.com/Delhi/SS-Uniforms",
		BusinessHours: BusinessHours{
			Weekdays: "9:00 AM - 7:00 PM",
			Weekends: "10:00 AM - 4:00 PM",
		},
		SocialMedia: SocialMedia{
			Facebook:  "https://facebook.com/ssuniforms",
			Instagram: "https://instagram.com/ssuniforms",
			Twitter:   "https://twitter.com/ssuniforms",
		},
		Location: Location{Lat: 28.560651, Lng: 77.002637},
	}
}

// Defaults are served until an admin saves the shop details.
func Defaults() Info {
	return withListing(models.ShopInfo{
		ID:          DefaultID,
		Name:        "SS Uniforms",
		Description: "Delhi NCR's premier school uniform provider. Quality uniforms, competitive prices, and exceptional service for educational institutions. Trusted by 50+ schools across the region.",
		Address:     "Shop No. 123, Uniform Market, Chhawla, Delhi NCR - 110071",
		Email:       "info@ssuniforms.com",
		Phone:       "+91-9876543210",
		Images:      []string{"https://images.pexels.com/photos/5632402/pexels-photo-5632402.jpeg"},
		CreatedAt:   time.Now(),
	})
}

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Get returns the stored details, or Defaults when none are stored.
func (s *Service) Get(ctx context.Context) (Info, error) {
	var row models.ShopInfo
	err := s.DB.WithContext(ctx).Order("created_at").Limit(1).Find(&row).Error
	if err != nil {
		log.WithError(err).Error("Error fetching shop info")
		notify.Error(ctx, "Error", "Failed to load shop information")
		return Info{}, err
	}
	if row.ID == "" {
		return Defaults(), nil
	}
	return withListing(row), nil
}

// Update overwrites the stored details, creating the row on first save.
func (s *Service) Update(ctx context.Context, in Input) (Info, error) {
	var saved models.ShopInfo
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("created_at").Limit(1).Find(&saved).Error; err != nil {
			return err
		}
		saved.Name = in.Name
		saved.Description = in.Description
		saved.Address = in.Address
		saved.Email = in.Email
		saved.Phone = in.Phone
		saved.Images = in.Images
		if saved.ID == "" {
			return tx.Create(&saved).Error
		}
		return tx.Save(&saved).Error
	})
	if err != nil {
		log.WithError(err).Error("Error updating shop info")
		notify.Error(ctx, "Error", "Failed to update shop information")
		return Info{}, fmt.Errorf("shop: update: %w", err)
	}
	notify.Success(ctx, "Success", "Shop information updated successfully")
	return withListing(saved), nil
}
