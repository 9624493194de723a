package events

import (
	"context"
	"errors"
	"time"

	"catering/internal/models"

	"github.com/shopspring/decimal"
)

// Type is the kind of an event and its AMQP routing key
type Type string

const (
	OrderCreated       Type = "order.created"
	OrderUpdated       Type = "order.updated"
	OrderStatusChanged Type = "order.status_changed"
	OrderDeleted       Type = "order.deleted"
	ReviewSubmitted    Type = "review.submitted"
)

// Event is what publishers send. Order fields are empty for review events.
type Event struct {
	Type         Type               `json:"type"`
	OrderID      uint               `json:"order_id,omitempty"`
	OrderNumber  string             `json:"order_number,omitempty"`
	CustomerName string             `json:"customer_name,omitempty"`
	DeliveryDate string             `json:"delivery_date,omitempty"`
	Status       models.OrderStatus `json:"status,omitempty"`
	Total        *decimal.Decimal   `json:"total,omitempty"`
	ReviewID     uint               `json:"review_id,omitempty"`
	RequestID    string             `json:"request_id,omitempty"`
	At           time.Time          `json:"at"`
}

// OrderEvent builds an event describing order
func OrderEvent(t Type, order *models.Order, requestID string) Event {
	total := order.TotalAmount
	return Event{
		Type:         t,
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		DeliveryDate: order.DeliveryDate,
		Status:       order.Status,
		Total:        &total,
		RequestID:    requestID,
		At:           time.Now().UTC(),
	}
}

// Publisher delivers events somewhere. Publishing is best effort: callers
// log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }

// Fanout publishes each event to every publisher in turn and joins their
// errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
