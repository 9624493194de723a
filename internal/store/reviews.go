package store

import (
	"context"
	"fmt"
	"time"

	"catering/internal/models"
)

// ListReviews returns reviews with the dishes they mention, newest first.
// An empty status lists every review.
func (s *Store) ListReviews(ctx context.Context, status models.ReviewStatus) ([]models.Review, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var reviews []models.Review
	if err := db.Preload("MenuItems").Order("created_at desc, id desc").Find(&reviews).Error; err != nil {
		return nil, wrap(err, "failed to list reviews")
	}
	return reviews, nil
}

func (s *Store) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var review models.Review
	if err := db.Preload("MenuItems").Where("id = ?", id).First(&review).Error; err != nil {
		return nil, wrap(err, "failed to get review %d", id)
	}
	return &review, nil
}

// CreateReview stores a review and its join rows in one transaction. New
// reviews always start pending.
func (s *Store) CreateReview(ctx context.Context, review *models.Review, menuItemIDs []uint) error {
	if err := review.Validate(menuItemIDs); err != nil {
		return invalid(err)
	}
	ids := models.UniqueIDs(menuItemIDs)
	review.Status = models.ReviewPending
	review.ReviewedBy = ""
	review.ReviewedAt = nil
	review.MenuItems = nil

	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Set("gorm:save_associations", false).Create(review).Error; err != nil {
			return wrap(err, "failed to create review")
		}
		return tx.replaceReviewItems(ctx, review.ID, ids)
	})
	if err != nil {
		return err
	}

	loaded, err := s.GetReview(ctx, review.ID)
	if err != nil {
		return err
	}
	*review = *loaded
	return nil
}

// SetReviewMenuItems replaces the dishes a review mentions
func (s *Store) SetReviewMenuItems(ctx context.Context, reviewID uint, menuItemIDs []uint) error {
	ids := models.UniqueIDs(menuItemIDs)
	if len(ids) > models.MaxReviewMenuItems {
		return invalid(models.ErrTooManyReviewItems)
	}
	if _, err := s.GetReview(ctx, reviewID); err != nil {
		return err
	}
	return s.Transaction(ctx, func(tx *Store) error {
		return tx.replaceReviewItems(ctx, reviewID, ids)
	})
}

func (s *Store) replaceReviewItems(ctx context.Context, reviewID uint, ids []uint) error {
	found, err := s.CountMenuItems(ctx, ids)
	if err != nil {
		return err
	}
	if found != len(ids) {
		return fmt.Errorf("review mentions unknown menu items: %w", ErrNotFound)
	}
	if err := s.db.Where("review_id = ?", reviewID).Delete(&models.ReviewMenuItem{}).Error; err != nil {
		return wrap(err, "failed to clear menu items of review %d", reviewID)
	}
	for _, id := range ids {
		link := models.ReviewMenuItem{ReviewID: reviewID, MenuItemID: id}
		if err := s.db.Create(&link).Error; err != nil {
			return wrap(err, "failed to link menu item %d to review %d", id, reviewID)
		}
	}
	return nil
}

// SetReviewStatus records a moderation decision
func (s *Store) SetReviewStatus(ctx context.Context, id uint, status models.ReviewStatus, reviewer string, at time.Time) (*models.Review, error) {
	if !status.Valid() {
		return nil, invalid(fmt.Errorf("unknown review status %q", status))
	}
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Review{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewer,
		"reviewed_at": at,
	}).Error; err != nil {
		return nil, wrap(err, "failed to set status of review %d", id)
	}
	review.Status = status
	review.ReviewedBy = reviewer
	review.ReviewedAt = &at
	return review, nil
}

// DeleteReview removes a review and its join rows
func (s *Store) DeleteReview(ctx context.Context, id uint) error {
	if _, err := s.GetReview(ctx, id); err != nil {
		return err
	}
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Where("review_id = ?", id).Delete(&models.ReviewMenuItem{}).Error; err != nil {
			return wrap(err, "failed to unlink review %d", id)
		}
		return wrap(tx.db.Where("id = ?", id).Delete(&models.Review{}).Error, "failed to delete review %d", id)
	})
}
