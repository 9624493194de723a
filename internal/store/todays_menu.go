package store

import (
	"context"
	"fmt"

	"catering/internal/models"
)

// ListTodaysMenu returns the entries for date with their menu items. With
// availableOnly set, entries switched off for the day and dishes that are no
// longer available are dropped.
func (s *Store) ListTodaysMenu(ctx context.Context, date string, availableOnly bool) ([]models.TodaysMenu, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	db = db.Where("date = ?", date)
	if availableOnly {
		db = db.Where("is_available = ?", true)
	}
	var entries []models.TodaysMenu
	if err := db.Preload("MenuItem").Preload("MenuItem.Category").
		Order("display_order asc, id asc").Find(&entries).Error; err != nil {
		return nil, wrap(err, "failed to list menu for %s", date)
	}

	out := make([]models.TodaysMenu, 0, len(entries))
	for _, entry := range entries {
		// soft deleted dishes come back without a MenuItem
		if entry.MenuItem == nil {
			continue
		}
		if availableOnly && !entry.MenuItem.IsAvailable {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) GetTodaysMenuEntry(ctx context.Context, id uint) (*models.TodaysMenu, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var entry models.TodaysMenu
	if err := db.Preload("MenuItem").Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, wrap(err, "failed to get menu entry %d", id)
	}
	return &entry, nil
}

// AddTodaysMenuEntry puts a dish on the menu for a date. A dish can appear
// once per date.
func (s *Store) AddTodaysMenuEntry(ctx context.Context, entry *models.TodaysMenu) error {
	if err := entry.Validate(); err != nil {
		return invalid(err)
	}
	if _, err := s.GetMenuItem(ctx, entry.MenuItemID); err != nil {
		return err
	}
	return s.Transaction(ctx, func(tx *Store) error {
		exists, err := tx.todaysMenuHas(entry.MenuItemID, entry.Date)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("menu item %d on %s: %w", entry.MenuItemID, entry.Date, ErrConflict)
		}
		return wrap(tx.db.Set("gorm:save_associations", false).Create(entry).Error, "failed to add menu entry")
	})
}

// UpdateTodaysMenuEntry changes availability, note and order of an entry.
// The dish and date are fixed once added.
func (s *Store) UpdateTodaysMenuEntry(ctx context.Context, entry *models.TodaysMenu) error {
	existing, err := s.GetTodaysMenuEntry(ctx, entry.ID)
	if err != nil {
		return err
	}
	if err := s.db.Model(&models.TodaysMenu{}).Where("id = ?", entry.ID).Updates(map[string]interface{}{
		"is_available":  entry.IsAvailable,
		"special_note":  entry.SpecialNote,
		"display_order": entry.DisplayOrder,
	}).Error; err != nil {
		return wrap(err, "failed to update menu entry %d", entry.ID)
	}
	existing.IsAvailable = entry.IsAvailable
	existing.SpecialNote = entry.SpecialNote
	existing.DisplayOrder = entry.DisplayOrder
	*entry = *existing
	return nil
}

func (s *Store) DeleteTodaysMenuEntry(ctx context.Context, id uint) error {
	if _, err := s.GetTodaysMenuEntry(ctx, id); err != nil {
		return err
	}
	return wrap(s.db.Where("id = ?", id).Delete(&models.TodaysMenu{}).Error, "failed to delete menu entry %d", id)
}

// CopyTodaysMenu copies every entry of from onto to, skipping dishes already
// on the target date. It returns how many entries were added.
func (s *Store) CopyTodaysMenu(ctx context.Context, from, to string) (int, error) {
	for _, date := range []string{from, to} {
		if _, err := models.ParseDate(date); err != nil {
			return 0, invalid(err)
		}
	}
	if from == to {
		return 0, invalid(fmt.Errorf("source and target dates are the same"))
	}

	var source []models.TodaysMenu
	if err := s.db.Where("date = ?", from).Order("display_order asc, id asc").Find(&source).Error; err != nil {
		return 0, wrap(err, "failed to read menu for %s", from)
	}

	added := 0
	err := s.Transaction(ctx, func(tx *Store) error {
		for _, entry := range source {
			exists, err := tx.todaysMenuHas(entry.MenuItemID, to)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			copied := models.TodaysMenu{
				MenuItemID:   entry.MenuItemID,
				Date:         to,
				IsAvailable:  entry.IsAvailable,
				SpecialNote:  entry.SpecialNote,
				DisplayOrder: entry.DisplayOrder,
			}
			if err := tx.db.Create(&copied).Error; err != nil {
				return wrap(err, "failed to copy menu entry %d", entry.ID)
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *Store) todaysMenuHas(menuItemID uint, date string) (bool, error) {
	var count int
	if err := s.db.Model(&models.TodaysMenu{}).
		Where("menu_item_id = ? AND date = ?", menuItemID, date).
		Count(&count).Error; err != nil {
		return false, wrap(err, "failed to check menu entry")
	}
	return count > 0, nil
}
