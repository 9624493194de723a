package export

import (
	"fmt"
	"html/template"
	"io"

	"catering/internal/models"

	"github.com/shopspring/decimal"
)

// Business is the letterhead printed on receipts
type Business struct {
	Name  string
	Phone string
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	"size":  func(s models.SizeType) string { return s.Label() },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt {{.Order.OrderNumber}}</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 2em auto; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 4px 6px; border-bottom: 1px solid #ddd; text-align: left; }
td.num, th.num { text-align: right; }
.totals td { border: none; }
@media print { button { display: none; } }
</style>
</head>
<body>
<h1>{{.Business.Name}}</h1>
{{if .Business.Phone}}<p>{{.Business.Phone}}</p>{{end}}
<h2>Order {{.Order.OrderNumber}}</h2>
<p>
<strong>{{.Order.CustomerName}}</strong>{{if .Order.CustomerPhone}} &middot; {{.Order.CustomerPhone}}{{end}}<br>
{{if .Order.DeliveryDate}}Delivery {{.Order.DeliveryDate}}{{if .Order.DeliveryTime}} at {{.Order.DeliveryTime}}{{end}}<br>{{end}}
Status: {{.Order.Status}}
</p>
<table>
<tr><th>Item</th><th>Size</th><th class="num">Qty</th><th class="num">Unit</th><th class="num">Total</th></tr>
{{range .Order.Items}}<tr>
<td>{{.ItemName}}{{if .SpecialInstructions}}<br><small>{{.SpecialInstructions}}</small>{{end}}</td>
<td>{{size .SizeType}}</td>
<td class="num">{{.Quantity}}</td>
<td class="num">{{money .UnitPrice}}</td>
<td class="num">{{money .TotalPrice}}</td>
</tr>{{end}}
</table>
<table class="totals">
<tr><td>Subtotal</td><td class="num">{{money .Order.SubtotalAmount}}</td></tr>
{{if .HasDiscount}}<tr><td>Discount{{if .DiscountLabel}} ({{.DiscountLabel}}){{end}}</td><td class="num">-{{money .Order.DiscountAmount}}</td></tr>{{end}}
{{if .HasTip}}<tr><td>Tip</td><td class="num">{{money .Order.TipAmount}}</td></tr>{{end}}
<tr><td><strong>Amount due</strong></td><td class="num"><strong>{{money .AmountDue}}</strong></td></tr>
</table>
{{if .Order.SpecialInstructions}}<p>Notes: {{.Order.SpecialInstructions}}</p>{{end}}
<button onclick="window.print()">Print</button>
</body>
</html>
`))

type receiptView struct {
	Business      Business
	Order         *models.Order
	AmountDue     decimal.Decimal
	HasDiscount   bool
	HasTip        bool
	DiscountLabel string
}

// Receipt renders a printable HTML receipt for order
func Receipt(w io.Writer, order *models.Order, business Business) error {
	view := receiptView{
		Business:    business,
		Order:       order,
		AmountDue:   order.AmountDue(),
		HasDiscount: order.DiscountAmount.IsPositive(),
		HasTip:      order.TipAmount.IsPositive(),
	}
	if order.DiscountType == models.DiscountPercentage {
		view.DiscountLabel = order.DiscountValue.String() + "%"
	}
	if err := receiptTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render receipt: %w", err)
	}
	return nil
}
