package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role - permission tier stored on a profile
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// SectionType - the fixed taxonomy partitioning a catalogue
type SectionType string

const (
	SectionSummer SectionType = "summer"
	SectionWinter SectionType = "winter"
	SectionHouse  SectionType = "house"
	SectionOther  SectionType = "other"
)

// Sections lists the section names in display order.
var Sections = []SectionType{SectionSummer, SectionWinter, SectionHouse, SectionOther}

// Valid reports whether s is one of the four fixed sections.
func (s SectionType) Valid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// User - the sign-in identity (email + password)
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// Profile - the application identity (name + role), shares its ID with User
type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `json:"name"`
	Role      Role      `gorm:"size:16;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalogue - a named collection of uniform items for one school
type Catalogue struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	SortOrder   int       `gorm:"column:order" json:"order"`
	CreatedAt   time.Time `json:"created_at"`

	// Assembled on read, never persisted
	Sections []Section `gorm:"-" json:"sections"`
}

// Section groups a catalogue's items by section tag
type Section struct {
	ID    string      `json:"id"`
	Name  SectionType `json:"name"`
	Items []Item      `json:"items"`
}

// Item - a stocked uniform piece
type Item struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	CatalogueID string      `gorm:"size:36;index" json:"catalogue_id"`
	Name        string      `json:"name"`
	Material    string      `json:"material"`
	Location    string      `json:"location"`
	Stock       int         `json:"stock"`
	Price       float64     `json:"price"`
	Image       string      `json:"image"`
	SectionType SectionType `gorm:"size:16" json:"section_type"`
	CreatedAt   time.Time   `json:"created_at"`

	Sizes []ItemSize `gorm:"-" json:"sizes"`
}

// ItemSize - a priced size option. Stock is nil when the size is not tracked separately.
type ItemSize struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ItemID    string    `gorm:"size:36;index" json:"item_id"`
	Size      string    `gorm:"size:32" json:"size"`
	Price     float64   `json:"price"`
	Stock     *int      `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

// Sale - append-only record of a checkout
type Sale struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	EmployeeID    string     `gorm:"size:36;index" json:"employee_id"`
	CustomerName  *string    `json:"customer_name,omitempty"`
	CustomerPhone *string    `json:"customer_phone,omitempty"`
	TotalAmount   float64    `json:"total_amount"`
	Items         []SaleLine `gorm:"type:text;serializer:json" json:"items"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
}

// SaleLine - snapshot of a cart line at sale time, not a live reference
type SaleLine struct {
	ID       string  `json:"id"`
	ItemID   string  `json:"item_id,omitempty"`
	Name     string  `json:"name"`
	Size     string  `json:"size"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CartLine - one (item, size) entry in a cart
type CartLine struct {
	ID       string  `json:"id"`
	Item     Item    `json:"item"`
	Size     string  `json:"size"`
	Price    float64 `json:"price" binding:"gte=0"` // Unit price snapshot at add time
	Quantity int     `json:"quantity" binding:"min=1"`
}

// ShopInfo - the storefront's public details
type ShopInfo struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Images      []string  `gorm:"type:text;serializer:json" json:"images"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ShopInfo) TableName() string { return "shop_info" }

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error      { newID(&u.ID); return nil }
func (p *Profile) BeforeCreate(tx *gorm.DB) error   { newID(&p.ID); return nil }
func (c *Catalogue) BeforeCreate(tx *gorm.DB) error { newID(&c.ID); return nil }
func (i *Item) BeforeCreate(tx *gorm.DB) error      { newID(&i.ID); return nil }
func (s *ItemSize) BeforeCreate(tx *gorm.DB) error  { newID(&s.ID); return nil }
func (s *Sale) BeforeCreate(tx *gorm.DB) error      { newID(&s.ID); return nil }
func (s *ShopInfo) BeforeCreate(tx *gorm.DB) error  { newID(&s.ID); return nil }
