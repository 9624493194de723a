package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Customer is someone who has ordered. Phone is used to find an existing
// customer when an order is placed.
type Customer struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `gorm:"index" json:"phone"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// Validate validates a customer
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required")
	}
	if NormalizePhone(c.Phone) == "" {
		return fmt.Errorf("customer phone is required")
	}
	if c.Email != nil && *c.Email != "" {
		if _, err := mail.ParseAddress(*c.Email); err != nil {
			return fmt.Errorf("invalid email address")
		}
	}
	return nil
}

// NormalizePhone strips everything but digits so "+1 (555) 010-2000" and
// "15550102000" match.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
