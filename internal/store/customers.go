package store

import (
	"context"
	"strings"

	"catering/internal/models"
)

// ListCustomers returns customers by name. A non-empty query matches name,
// phone digits or email.
func (s *Store) ListCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if q := strings.TrimSpace(query); q != "" {
		pattern := likePattern(strings.ToLower(q))
		conds := "LOWER(name) LIKE ? OR LOWER(email) LIKE ?"
		args := []interface{}{pattern, pattern}
		if digits := models.NormalizePhone(q); digits != "" {
			conds += " OR phone LIKE ?"
			args = append(args, likePattern(digits))
		}
		db = db.Where(conds, args...)
	}
	var customers []models.Customer
	if err := db.Order("name asc").Find(&customers).Error; err != nil {
		return nil, wrap(err, "failed to list customers")
	}
	return customers, nil
}

func (s *Store) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var customer models.Customer
	if err := db.Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, wrap(err, "failed to get customer %d", id)
	}
	return &customer, nil
}

// FindCustomerByPhone matches on the digits of phone
func (s *Store) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var customer models.Customer
	if err := db.Where("phone = ?", models.NormalizePhone(phone)).First(&customer).Error; err != nil {
		return nil, wrap(err, "failed to find customer by phone")
	}
	return &customer, nil
}

// CreateCustomer stores a customer with the phone reduced to its digits
func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := customer.Validate(); err != nil {
		return invalid(err)
	}
	customer.Phone = models.NormalizePhone(customer.Phone)
	return wrap(db.Create(customer).Error, "failed to create customer")
}

// FindOrCreateCustomer returns the customer with this phone, creating one
// named name when there is none. An existing customer's name is left as is.
func (s *Store) FindOrCreateCustomer(ctx context.Context, name, phone string) (*models.Customer, error) {
	customer, err := s.FindCustomerByPhone(ctx, phone)
	if err == nil {
		return customer, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	customer = &models.Customer{Name: strings.TrimSpace(name), Phone: phone}
	if err := s.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := customer.Validate(); err != nil {
		return invalid(err)
	}
	existing, err := s.GetCustomer(ctx, customer.ID)
	if err != nil {
		return err
	}
	customer.Phone = models.NormalizePhone(customer.Phone)
	customer.CreatedAt = existing.CreatedAt
	return wrap(s.db.Save(customer).Error, "failed to update customer %d", customer.ID)
}

// DeleteCustomer removes a customer. Their orders keep the name and phone
// snapshot and lose the link.
func (s *Store) DeleteCustomer(ctx context.Context, id uint) error {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Model(&models.Order{}).Where("customer_id = ?", id).
			UpdateColumn("customer_id", nil).Error; err != nil {
			return wrap(err, "failed to unlink orders of customer %d", id)
		}
		return wrap(tx.db.Delete(customer).Error, "failed to delete customer %d", id)
	})
}
