package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxReviewMenuItems caps how many dishes a single review can mention
const MaxReviewMenuItems = 5

// ErrTooManyReviewItems is returned when a review names more than
// MaxReviewMenuItems dishes.
var ErrTooManyReviewItems = fmt.Errorf("a review can mention at most %d menu items", MaxReviewMenuItems)

// ErrInvalidRating is returned for ratings outside 1..5
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Valid reports whether s is a known review status
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Review is a customer testimonial awaiting or past moderation
type Review struct {
	ID         uint         `gorm:"primary_key" json:"id"`
	FullName   string       `gorm:"not null" json:"full_name"`
	ReviewText string       `gorm:"type:text;not null" json:"review_text"`
	Rating     *int         `json:"rating"`
	Status     ReviewStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedBy string       `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`
	MenuItems  []MenuItem   `gorm:"many2many:review_menu_items;association_autoupdate:false;association_autocreate:false" json:"menu_items"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// TableName sets the table name for Review
func (Review) TableName() string {
	return "reviews"
}

// ReviewMenuItem is the join row between a review and a dish it mentions
type ReviewMenuItem struct {
	ReviewID   uint `gorm:"primary_key;auto_increment:false"`
	MenuItemID uint `gorm:"primary_key;auto_increment:false"`
}

// TableName sets the table name for ReviewMenuItem
func (ReviewMenuItem) TableName() string {
	return "review_menu_items"
}

// Validate validates a review submission and the dishes it mentions
func (r *Review) Validate(menuItemIDs []uint) error {
	if strings.TrimSpace(r.FullName) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.ReviewText) == "" {
		return fmt.Errorf("review text is required")
	}
	if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
		return ErrInvalidRating
	}
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("unknown review status %q", r.Status)
	}
	if len(UniqueIDs(menuItemIDs)) > MaxReviewMenuItems {
		return ErrTooManyReviewItems
	}
	return nil
}

// UniqueIDs drops zero and repeated ids, keeping first-seen order
func UniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
