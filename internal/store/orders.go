package store

import (
	"context"
	"strings"
	"time"

	"catering/internal/models"

	"github.com/jinzhu/gorm"
)

// OrderFilter narrows ListOrders. Dates are inclusive YYYY-MM-DD bounds on
// the delivery date.
type OrderFilter struct {
	Status     models.OrderStatus
	Query      string
	From       string
	To         string
	CustomerID *uint
}

// ListOrders returns orders with their items, newest delivery first
func (s *Store) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		db = db.Where("delivery_date >= ?", filter.From)
	}
	if filter.To != "" {
		db = db.Where("delivery_date <= ?", filter.To)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := likePattern(strings.ToLower(q))
		db = db.Where("LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?",
			pattern, pattern, likePattern(q))
	}

	var orders []models.Order
	if err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Order("delivery_date desc, id desc").Find(&orders).Error; err != nil {
		return nil, wrap(err, "failed to list orders")
	}
	return orders, nil
}

// GetOrder loads an order with its items in insertion order
func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, wrap(err, "failed to get order %d", id)
	}
	return &order, nil
}

// ListOrderItems returns the stored lines of an order
func (s *Store) ListOrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var items []models.OrderItem
	if err := db.Where("order_id = ?", orderID).Order("id asc").Find(&items).Error; err != nil {
		return nil, wrap(err, "failed to list items of order %d", orderID)
	}
	return items, nil
}

// LastOrderNumber returns the highest order number starting with prefix,
// or "" when there is none. Longer numbers rank higher so that _1000
// follows _999.
func (s *Store) LastOrderNumber(ctx context.Context, prefix string) (string, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return "", err
	}
	var numbers []string
	if err := db.Model(&models.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("LENGTH(order_number) desc, order_number desc").
		Limit(1).
		Pluck("order_number", &numbers).Error; err != nil {
		return "", wrap(err, "failed to read last order number")
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// InsertOrder inserts the order row only. Items are written separately.
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return wrap(db.Set("gorm:save_associations", false).Create(order).Error, "failed to insert order")
}

// UpdateOrderHeader saves the order row without touching its items
func (s *Store) UpdateOrderHeader(ctx context.Context, order *models.Order) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return wrap(db.Set("gorm:save_associations", false).Save(order).Error, "failed to update order %d", order.ID)
}

// SetOrderStatus changes the status column only
func (s *Store) SetOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	res := db.Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return wrap(res.Error, "failed to set status of order %d", id)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "failed to set status of order %d", id)
	}
	return nil
}

func (s *Store) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return wrap(db.Create(item).Error, "failed to insert order item")
}

// UpdateOrderItem writes the editable columns of a stored line
func (s *Store) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	res := db.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"item_name":            item.ItemName,
		"quantity":             item.Quantity,
		"unit_price":           item.UnitPrice,
		"total_price":          item.TotalPrice,
		"special_instructions": item.SpecialInstructions,
		"updated_at":           time.Now(),
	})
	if res.Error != nil {
		return wrap(res.Error, "failed to update order item %d", item.ID)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "failed to update order item %d", item.ID)
	}
	return nil
}

func (s *Store) DeleteOrderItem(ctx context.Context, id uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return wrap(db.Where("id = ?", id).Delete(&models.OrderItem{}).Error, "failed to delete order item %d", id)
}

// DeleteOrderItems removes every line of an order
func (s *Store) DeleteOrderItems(ctx context.Context, orderID uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return wrap(db.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error,
		"failed to delete items of order %d", orderID)
}

// DeleteOrder removes the order row. Callers delete the items first.
func (s *Store) DeleteOrder(ctx context.Context, id uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return wrap(res.Error, "failed to delete order %d", id)
	}
	if res.RowsAffected == 0 {
		return wrap(gorm.ErrRecordNotFound, "failed to delete order %d", id)
	}
	return nil
}
