package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoPrice is returned when a menu item has none of its price fields set.
var ErrNoPrice = errors.New("menu item must have at least one price")

// MenuCategory groups menu items on the public menu
type MenuCategory struct {
	ID           uint       `gorm:"primary_key" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Description  string     `json:"description"`
	DisplayOrder int        `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `sql:"index" json:"-"`
}

// TableName sets the table name for MenuCategory
func (MenuCategory) TableName() string {
	return "menu_categories"
}

// Validate checks the category fields an admin can set
func (c *MenuCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	return nil
}

// MenuItem represents a dish on the catering menu. A dish is priced in one or
// more of the sizes it can be ordered in.
type MenuItem struct {
	ID                uint             `gorm:"primary_key" json:"id"`
	Name              string           `gorm:"not null" json:"name"`
	Description       string           `json:"description"`
	CategoryID        *uint            `gorm:"index" json:"category_id"`
	Category          *MenuCategory    `gorm:"foreignkey:CategoryID" json:"category,omitempty"`
	PricePerPlate     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_per_plate"`
	PriceHalfTray     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_half_tray"`
	PriceFullTray     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_full_tray"`
	PricePerPiece     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_per_piece"`
	PiecesPerPlate    *int             `json:"pieces_per_plate"`
	MinimumPieceOrder *int             `json:"minimum_piece_order"`
	Ingredients       StringSlice      `gorm:"type:text" json:"ingredients"`
	ImageURL          string           `json:"image_url"`
	IsAvailable       bool             `gorm:"not null" json:"is_available"`
	DisplayOrder      int              `gorm:"not null;default:0" json:"display_order"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         *time.Time       `sql:"index" json:"-"`
}

// TableName sets the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}

// BeforeSave keeps rows without any price out of the store, whichever path
// writes them.
func (mi *MenuItem) BeforeSave() error {
	return mi.Validate()
}

// Validate validates a menu item
func (mi *MenuItem) Validate() error {
	if strings.TrimSpace(mi.Name) == "" {
		return fmt.Errorf("menu item name is required")
	}
	if !mi.HasPrice() {
		return ErrNoPrice
	}
	for size, price := range mi.prices() {
		if price != nil && price.IsNegative() {
			return fmt.Errorf("%s price must not be negative", size)
		}
	}
	if mi.PiecesPerPlate != nil && *mi.PiecesPerPlate < 1 {
		return fmt.Errorf("pieces per plate must be at least 1")
	}
	if mi.MinimumPieceOrder != nil && *mi.MinimumPieceOrder < 1 {
		return fmt.Errorf("minimum piece order must be at least 1")
	}
	return nil
}

// HasPrice reports whether any price field is set
func (mi *MenuItem) HasPrice() bool {
	for _, price := range mi.prices() {
		if price != nil {
			return true
		}
	}
	return false
}

// PriceFor returns the unit price for a size, if the item is sold in it
func (mi *MenuItem) PriceFor(size SizeType) (decimal.Decimal, bool) {
	price := mi.prices()[size]
	if price == nil {
		return decimal.Zero, false
	}
	return *price, true
}

// Sizes lists the sizes the item can be ordered in
func (mi *MenuItem) Sizes() []SizeType {
	var sizes []SizeType
	for _, size := range AllSizeTypes {
		if _, ok := mi.PriceFor(size); ok {
			sizes = append(sizes, size)
		}
	}
	return sizes
}

// CheckQuantity enforces the minimum piece order for per-piece orders
func (mi *MenuItem) CheckQuantity(size SizeType, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if size == SizePiece && mi.MinimumPieceOrder != nil && quantity < *mi.MinimumPieceOrder {
		return fmt.Errorf("%s requires at least %d pieces", mi.Name, *mi.MinimumPieceOrder)
	}
	return nil
}

// HasIngredient checks if the item contains a specific ingredient
func (mi *MenuItem) HasIngredient(ingredient string) bool {
	for _, ing := range mi.Ingredients {
		if strings.EqualFold(ing, ingredient) {
			return true
		}
	}
	return false
}

func (mi *MenuItem) prices() map[SizeType]*decimal.Decimal {
	return map[SizeType]*decimal.Decimal{
		SizePlate:    mi.PricePerPlate,
		SizeHalfTray: mi.PriceHalfTray,
		SizeFullTray: mi.PriceFullTray,
		SizePiece:    mi.PricePerPiece,
	}
}

// SizeType is the unit a menu item is ordered in
type SizeType string

const (
	SizePlate    SizeType = "plate"
	SizeHalfTray SizeType = "half_tray"
	SizeFullTray SizeType = "full_tray"
	SizePiece    SizeType = "piece"
)

// AllSizeTypes in menu display order
var AllSizeTypes = []SizeType{SizePlate, SizeHalfTray, SizeFullTray, SizePiece}

// Valid reports whether s is one of the known sizes
func (s SizeType) Valid() bool {
	switch s {
	case SizePlate, SizeHalfTray, SizeFullTray, SizePiece:
		return true
	}
	return false
}

// Label returns the human readable size name
func (s SizeType) Label() string {
	switch s {
	case SizePlate:
		return "Plate"
	case SizeHalfTray:
		return "Half Tray"
	case SizeFullTray:
		return "Full Tray"
	case SizePiece:
		return "Piece"
	}
	return string(s)
}

// TodaysMenu marks a menu item as available for same-day pickup on a date
type TodaysMenu struct {
	ID           uint      `gorm:"primary_key" json:"id"`
	MenuItemID   uint      `gorm:"not null" json:"menu_item_id"`
	MenuItem     *MenuItem `gorm:"foreignkey:MenuItemID" json:"menu_item,omitempty"`
	Date         string    `gorm:"type:varchar(10);not null;index" json:"date"`
	IsAvailable  bool      `gorm:"not null" json:"is_available"`
	SpecialNote  string    `json:"special_note"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the table name for TodaysMenu
func (TodaysMenu) TableName() string {
	return "todays_menu"
}

// DateLayout is the storage and wire format of calendar dates
const DateLayout = "2006-01-02"

// Validate checks the entry references an item and a well formed date
func (t *TodaysMenu) Validate() error {
	if t.MenuItemID == 0 {
		return fmt.Errorf("menu item is required")
	}
	_, err := ParseDate(t.Date)
	return err
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
