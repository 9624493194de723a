package database

import (
	"fmt"

	"catering/internal/models"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Seed fills an empty menu with starter categories and dishes. It does
// nothing once any category exists.
func Seed(db *gorm.DB) error {
	var categoryCount int64
	if err := db.Model(&models.MenuCategory{}).Count(&categoryCount).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if categoryCount > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, seed := range defaultMenu() {
			category := seed.category
			if err := tx.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to create category %s: %w", category.Name, err)
			}
			for _, item := range seed.items {
				item.CategoryID = &category.ID
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("failed to create menu item %s: %w", item.Name, err)
				}
			}
		}
		return nil
	})
}

type categorySeed struct {
	category models.MenuCategory
	items    []models.MenuItem
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func defaultMenu() []categorySeed {
	return []categorySeed{
		{
			category: models.MenuCategory{Name: "Appetizers", Description: "Starters and finger food", DisplayOrder: 1, IsActive: true},
			items: []models.MenuItem{
				{
					Name:              "Vegetable Samosa",
					Description:       "Crisp pastry filled with spiced potato and peas",
					PricePerPiece:     price("1.50"),
					MinimumPieceOrder: intPtr(25),
					Ingredients:       models.StringSlice{"potato", "peas", "flour", "cumin"},
					IsAvailable:       true,
					DisplayOrder:      1,
				},
				{
					Name:          "Chicken 65",
					Description:   "Fried chicken bites tossed in curry leaves and chili",
					PriceHalfTray: price("55.00"),
					PriceFullTray: price("100.00"),
					Ingredients:   models.StringSlice{"chicken", "curry leaves", "chili", "yogurt"},
					IsAvailable:   true,
					DisplayOrder:  2,
				},
			},
		},
		{
			category: models.MenuCategory{Name: "Mains", Description: "Curries and gravies", DisplayOrder: 2, IsActive: true},
			items: []models.MenuItem{
				{
					Name:          "Paneer Butter Masala",
					Description:   "Cottage cheese in a tomato and butter gravy",
					PricePerPlate: price("12.00"),
					PriceHalfTray: price("60.00"),
					PriceFullTray: price("110.00"),
					Ingredients:   models.StringSlice{"paneer", "tomato", "butter", "cream"},
					IsAvailable:   true,
					DisplayOrder:  1,
				},
				{
					Name:          "Goat Curry",
					Description:   "Slow cooked bone-in goat",
					PriceHalfTray: price("80.00"),
					PriceFullTray: price("150.00"),
					Ingredients:   models.StringSlice{"goat", "onion", "garam masala"},
					IsAvailable:   true,
					DisplayOrder:  2,
				},
			},
		},
		{
			category: models.MenuCategory{Name: "Rice & Breads", DisplayOrder: 3, IsActive: true},
			items: []models.MenuItem{
				{
					Name:           "Chicken Biryani",
					PricePerPlate:  price("14.00"),
					PriceHalfTray:  price("65.00"),
					PriceFullTray:  price("120.00"),
					PiecesPerPlate: intPtr(2),
					Ingredients:    models.StringSlice{"basmati rice", "chicken", "saffron", "fried onion"},
					IsAvailable:    true,
					DisplayOrder:   1,
				},
			},
		},
		{
			category: models.MenuCategory{Name: "Desserts", DisplayOrder: 4, IsActive: true},
			items: []models.MenuItem{
				{
					Name:              "Gulab Jamun",
					PricePerPiece:     price("1.00"),
					MinimumPieceOrder: intPtr(20),
					Ingredients:       models.StringSlice{"milk solids", "sugar syrup", "cardamom"},
					IsAvailable:       true,
					DisplayOrder:      1,
				},
			},
		},
	}
}
