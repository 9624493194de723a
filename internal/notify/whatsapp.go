package notify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"catering/internal/models"

	"github.com/shopspring/decimal"
)

// ErrNoPhone is returned when a link is requested for a phone with no digits
var ErrNoPhone = errors.New("phone number has no digits")

const waBase = "https://wa.me/"

// WhatsAppLink builds a click-to-chat link that opens a chat with phone and
// the message prefilled.
func WhatsAppLink(phone, text string) (string, error) {
	digits := models.NormalizePhone(phone)
	if digits == "" {
		return "", ErrNoPhone
	}
	link := waBase + digits
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link, nil
}

// CartLine is one dish in a customer's cart
type CartLine struct {
	MenuItemID *uint           `json:"menu_item_id"`
	Name       string          `json:"name" binding:"required"`
	Size       models.SizeType `json:"size_type" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,min=1"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// Cart is an unsaved order a customer sends to the business over WhatsApp
type Cart struct {
	CustomerName string     `json:"customer_name" binding:"required"`
	Phone        string     `json:"phone"`
	DeliveryDate string     `json:"delivery_date"`
	DeliveryTime string     `json:"delivery_time"`
	Notes        string     `json:"notes"`
	Items        []CartLine `json:"items" binding:"required,min=1,dive"`
}

// Total sums the cart lines
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// CartMessage renders the message a customer sends to place an order
func CartMessage(businessName string, cart *Cart) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, I'd like to place a catering order.\n\n", businessName)
	fmt.Fprintf(&b, "Name: %s\n", cart.CustomerName)
	if cart.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", cart.Phone)
	}
	writeDelivery(&b, cart.DeliveryDate, cart.DeliveryTime)
	b.WriteString("\nItems:\n")
	for _, line := range cart.Items {
		writeLine(&b, line.Name, line.Size, line.Quantity, line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	fmt.Fprintf(&b, "\nEstimated total: $%s\n", cart.Total().StringFixed(2))
	if cart.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", cart.Notes)
	}
	return strings.TrimRight(b.String(), "\n")
}

// OrderMessage renders an order confirmation for the business to send back
// to the customer.
func OrderMessage(businessName string, order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s, thank you for ordering from %s!\n\n", order.CustomerName, businessName)
	fmt.Fprintf(&b, "Order: %s\n", order.OrderNumber)
	writeDelivery(&b, order.DeliveryDate, order.DeliveryTime)
	b.WriteString("\nItems:\n")
	for _, item := range order.Items {
		writeLine(&b, item.ItemName, item.SizeType, item.Quantity, item.TotalPrice)
	}
	b.WriteString("\n")
	if order.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Subtotal: $%s\n", order.SubtotalAmount.StringFixed(2))
		fmt.Fprintf(&b, "Discount: -$%s\n", order.DiscountAmount.StringFixed(2))
	}
	if order.TipAmount.IsPositive() {
		fmt.Fprintf(&b, "Tip: $%s\n", order.TipAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: $%s\n", order.AmountDue().StringFixed(2))
	fmt.Fprintf(&b, "Status: %s", order.Status)
	return b.String()
}

func writeDelivery(b *strings.Builder, date, clock string) {
	switch {
	case date != "" && clock != "":
		fmt.Fprintf(b, "Delivery: %s at %s\n", date, clock)
	case date != "":
		fmt.Fprintf(b, "Delivery: %s\n", date)
	}
}

func writeLine(b *strings.Builder, name string, size models.SizeType, qty int, total decimal.Decimal) {
	fmt.Fprintf(b, "- %d x %s (%s): $%s\n", qty, name, size.Label(), total.StringFixed(2))
}
