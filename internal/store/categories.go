package store

import (
	"context"

	"catering/internal/models"
)

// ListCategories returns categories in display order. With activeOnly set,
// inactive categories are left out.
func (s *Store) ListCategories(ctx context.Context, activeOnly bool) ([]models.MenuCategory, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	var categories []models.MenuCategory
	if err := db.Order("display_order asc, name asc").Find(&categories).Error; err != nil {
		return nil, wrap(err, "failed to list categories")
	}
	return categories, nil
}

// GetCategory loads a single category
func (s *Store) GetCategory(ctx context.Context, id uint) (*models.MenuCategory, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var category models.MenuCategory
	if err := db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, wrap(err, "failed to get category %d", id)
	}
	return &category, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.MenuCategory) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := category.Validate(); err != nil {
		return invalid(err)
	}
	return wrap(db.Create(category).Error, "failed to create category")
}

// UpdateCategory saves every field of an existing category
func (s *Store) UpdateCategory(ctx context.Context, category *models.MenuCategory) error {
	if err := category.Validate(); err != nil {
		return invalid(err)
	}
	existing, err := s.GetCategory(ctx, category.ID)
	if err != nil {
		return err
	}
	category.CreatedAt = existing.CreatedAt
	return wrap(s.db.Save(category).Error, "failed to update category %d", category.ID)
}

// DeleteCategory soft deletes a category. Its items keep their category id
// and stop being listed under it.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	return wrap(s.db.Delete(category).Error, "failed to delete category %d", id)
}
