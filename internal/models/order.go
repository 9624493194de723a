package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the possible states of an order. Any status can be
// set from any other; there is no enforced transition graph.
type OrderStatus string

const (
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusPaid      OrderStatus = "paid"
)

// OrderStatuses lists every valid status
var OrderStatuses = []OrderStatus{OrderStatusReceived, OrderStatusDelivered, OrderStatusPaid}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusDelivered, OrderStatusPaid:
		return true
	}
	return false
}

// DiscountType selects how DiscountValue is applied to the subtotal
type DiscountType string

const (
	DiscountNone       DiscountType = ""
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Order is a catering order. CustomerName and CustomerPhone are snapshots
// taken when the order is created and are not refreshed from Customer.
type Order struct {
	ID                  uint            `gorm:"primary_key" json:"id"`
	OrderNumber         string          `gorm:"unique_index;not null" json:"order_number"`
	CustomerID          *uint           `gorm:"index" json:"customer_id"`
	Customer            *Customer       `gorm:"foreignkey:CustomerID" json:"customer,omitempty"`
	CustomerName        string          `gorm:"not null" json:"customer_name"`
	CustomerPhone       string          `json:"customer_phone"`
	DeliveryDate        string          `gorm:"type:varchar(10);index" json:"delivery_date"`
	DeliveryTime        string          `gorm:"type:varchar(5)" json:"delivery_time"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
	Status              OrderStatus     `gorm:"type:varchar(20);not null;default:'received';index" json:"status"`
	SubtotalAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal_amount"`
	DiscountType        DiscountType    `gorm:"type:varchar(20)" json:"discount_type"`
	DiscountValue       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_value"`
	DiscountAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	TipAmount           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"tip_amount"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	Items               []OrderItem     `gorm:"foreignkey:OrderID" json:"items"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName sets the table name for Order
func (Order) TableName() string {
	return "orders"
}

// Validate validates the order header and every line
func (o *Order) Validate() error {
	if strings.TrimSpace(o.CustomerName) == "" {
		return fmt.Errorf("customer name is required")
	}
	if o.Status != "" && !o.Status.Valid() {
		return fmt.Errorf("unknown order status %q", o.Status)
	}
	if o.DeliveryDate != "" {
		if _, err := time.Parse(DateLayout, o.DeliveryDate); err != nil {
			return fmt.Errorf("delivery date must be YYYY-MM-DD")
		}
	}
	if o.DeliveryTime != "" {
		if _, err := time.Parse("15:04", o.DeliveryTime); err != nil {
			return fmt.Errorf("delivery time must be HH:MM")
		}
	}
	switch o.DiscountType {
	case DiscountNone, DiscountFixed:
	case DiscountPercentage:
		if o.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("percentage discount cannot exceed 100")
		}
	default:
		return fmt.Errorf("unknown discount type %q", o.DiscountType)
	}
	if o.DiscountValue.IsNegative() || o.TipAmount.IsNegative() {
		return fmt.Errorf("discount and tip must not be negative")
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("order must have at least one item")
	}
	seen := make(map[LineKey]bool, len(o.Items))
	for i := range o.Items {
		if err := o.Items[i].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
		key := o.Items[i].Key()
		if seen[key] {
			return fmt.Errorf("item %d: %s (%s) is listed twice", i+1, o.Items[i].ItemName, o.Items[i].SizeType)
		}
		seen[key] = true
	}
	return nil
}

// ComputeTotals recomputes every line total and the order amounts from the
// lines. TotalAmount is the sum of line totals; the discount and tip are kept
// beside it and only folded in by AmountDue.
func (o *Order) ComputeTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		o.Items[i].ComputeTotal()
		subtotal = subtotal.Add(o.Items[i].TotalPrice)
	}
	o.SubtotalAmount = subtotal
	o.TotalAmount = subtotal

	switch o.DiscountType {
	case DiscountPercentage:
		o.DiscountAmount = subtotal.Mul(o.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountFixed:
		o.DiscountAmount = decimal.Min(o.DiscountValue, subtotal)
	default:
		o.DiscountAmount = decimal.Zero
	}
}

// AmountDue is what the customer pays: line totals less discount plus tip
func (o *Order) AmountDue() decimal.Decimal {
	return o.TotalAmount.Sub(o.DiscountAmount).Add(o.TipAmount)
}

// IsPaid reports whether the order counts toward revenue
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// Delivery parses the delivery date in loc
func (o *Order) Delivery(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, o.DeliveryDate, loc)
}

// OrderItem represents a line in an order. ItemName is a snapshot of the menu
// item name and MenuItemID may be nil once the menu item is gone.
type OrderItem struct {
	ID                  uint            `gorm:"primary_key" json:"id"`
	OrderID             uint            `gorm:"index;not null" json:"order_id"`
	MenuItemID          *uint           `gorm:"index" json:"menu_item_id"`
	ItemName            string          `gorm:"not null" json:"item_name"`
	SizeType            SizeType        `gorm:"type:varchar(20);not null" json:"size_type"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"unit_price"`
	TotalPrice          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName sets the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// LineKey identifies an order line across edits
type LineKey struct {
	MenuItemID uint
	Name       string
	Size       SizeType
}

// Key returns the line identity: (menu item, size), or (name, size) for lines
// whose menu item is unknown.
func (i *OrderItem) Key() LineKey {
	if i.MenuItemID != nil {
		return LineKey{MenuItemID: *i.MenuItemID, Size: i.SizeType}
	}
	return LineKey{Name: strings.ToLower(strings.TrimSpace(i.ItemName)), Size: i.SizeType}
}

// Validate validates a single order line
func (i *OrderItem) Validate() error {
	if strings.TrimSpace(i.ItemName) == "" {
		return fmt.Errorf("item name is required")
	}
	if !i.SizeType.Valid() {
		return fmt.Errorf("unknown size type %q", i.SizeType)
	}
	if i.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if i.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price must not be negative")
	}
	return nil
}

// ComputeTotal sets TotalPrice to UnitPrice × Quantity
func (i *OrderItem) ComputeTotal() {
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SameContent reports whether two lines carry the same editable values
func (i *OrderItem) SameContent(other *OrderItem) bool {
	return i.Quantity == other.Quantity &&
		i.UnitPrice.Equal(other.UnitPrice) &&
		i.TotalPrice.Equal(other.TotalPrice) &&
		i.SpecialInstructions == other.SpecialInstructions
}
