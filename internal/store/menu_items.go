package store

import (
	"context"
	"strings"

	"catering/internal/models"
)

// MenuItemFilter narrows ListMenuItems. The zero value lists everything.
type MenuItemFilter struct {
	CategoryID    *uint
	Query         string
	Ingredient    string
	AvailableOnly bool
}

// ListMenuItems returns menu items with their category, in display order
func (s *Store) ListMenuItems(ctx context.Context, filter MenuItemFilter) ([]models.MenuItem, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if filter.CategoryID != nil {
		db = db.Where("category_id = ?", *filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := likePattern(strings.ToLower(q))
		db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.AvailableOnly {
		db = db.Where("is_available = ?", true)
	}

	var items []models.MenuItem
	if err := db.Preload("Category").Order("display_order asc, name asc").Find(&items).Error; err != nil {
		return nil, wrap(err, "failed to list menu items")
	}
	if ingredient := strings.TrimSpace(filter.Ingredient); ingredient != "" {
		// ingredients are a JSON text column, so they are matched here
		matched := items[:0]
		for _, item := range items {
			if item.HasIngredient(ingredient) {
				matched = append(matched, item)
			}
		}
		items = matched
	}
	return items, nil
}

// GetMenuItem loads a menu item with its category
func (s *Store) GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var item models.MenuItem
	if err := db.Preload("Category").Where("id = ?", id).First(&item).Error; err != nil {
		return nil, wrap(err, "failed to get menu item %d", id)
	}
	return &item, nil
}

// CountMenuItems counts the live rows among ids
func (s *Store) CountMenuItems(ctx context.Context, ids []uint) (int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	if err := db.Model(&models.MenuItem{}).Where("id IN (?)", ids).Count(&count).Error; err != nil {
		return 0, wrap(err, "failed to count menu items")
	}
	return count, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.checkCategory(ctx, item.CategoryID); err != nil {
		return err
	}
	return wrap(db.Set("gorm:save_associations", false).Create(item).Error, "failed to create menu item")
}

// UpdateMenuItem saves every field of an existing menu item
func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if err := item.Validate(); err != nil {
		return invalid(err)
	}
	existing, err := s.GetMenuItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if err := s.checkCategory(ctx, item.CategoryID); err != nil {
		return err
	}
	item.CreatedAt = existing.CreatedAt
	return wrap(s.db.Set("gorm:save_associations", false).Save(item).Error, "failed to update menu item %d", item.ID)
}

// SetMenuItemAvailability flips is_available without touching the rest of
// the row.
func (s *Store) SetMenuItemAvailability(ctx context.Context, id uint, available bool) (*models.MenuItem, error) {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(item).UpdateColumn("is_available", available).Error; err != nil {
		return nil, wrap(err, "failed to update availability of menu item %d", id)
	}
	item.IsAvailable = available
	return item, nil
}

// DeleteMenuItem soft deletes a menu item. Past order lines keep their
// snapshot name.
func (s *Store) DeleteMenuItem(ctx context.Context, id uint) error {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return err
	}
	return wrap(s.db.Delete(item).Error, "failed to delete menu item %d", id)
}

func (s *Store) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := s.GetCategory(ctx, *id)
	return err
}
