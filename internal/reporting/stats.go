package reporting

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"catering/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultWindow is the moving average window in days
const DefaultWindow = 7

// DefaultTopN is how many customers and items the rankings keep
const DefaultTopN = 5

// DailyStat is one day of business. Orders counts every order of the day;
// Revenue and Tips only the paid ones.
type DailyStat struct {
	Date          string          `json:"date"`
	Revenue       decimal.Decimal `json:"revenue"`
	Tips          decimal.Decimal `json:"tips"`
	Orders        int             `json:"orders"`
	MovingAverage decimal.Decimal `json:"moving_average"`
}

// CustomerTotal is a ranked customer
type CustomerTotal struct {
	CustomerID *uint           `json:"customer_id,omitempty"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone,omitempty"`
	Orders     int             `json:"orders"`
	Total      decimal.Decimal `json:"total"`
}

// ItemTotal is a ranked dish
type ItemTotal struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// OrderDate is the calendar day an order is reported under: its delivery
// date, or the day it was created in loc when no delivery date was given.
func OrderDate(order *models.Order, loc *time.Location) string {
	if order.DeliveryDate != "" {
		return order.DeliveryDate
	}
	if order.CreatedAt.IsZero() {
		return ""
	}
	return order.CreatedAt.In(loc).Format(models.DateLayout)
}

// Filter returns the orders dated inside r. A non-empty status keeps only
// orders with that status.
func Filter(orders []models.Order, r DateRange, status models.OrderStatus) []models.Order {
	loc := r.Start.Location()
	out := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if status != "" && order.Status != status {
			continue
		}
		if !r.Contains(OrderDate(&order, loc)) {
			continue
		}
		out = append(out, order)
	}
	return out
}

// Paid keeps the orders that count toward revenue
func Paid(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if order.IsPaid() {
			out = append(out, order)
		}
	}
	return out
}

// TotalRevenue sums total_amount over paid orders
func TotalRevenue(orders []models.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, order := range orders {
		if order.IsPaid() {
			sum = sum.Add(order.TotalAmount)
		}
	}
	return sum
}

// TotalTips sums tip_amount over paid orders
func TotalTips(orders []models.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, order := range orders {
		if order.IsPaid() {
			sum = sum.Add(order.TipAmount)
		}
	}
	return sum
}

// PendingRevenue sums total_amount over every order that is not paid
func PendingRevenue(orders []models.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, order := range orders {
		if !order.IsPaid() {
			sum = sum.Add(order.TotalAmount)
		}
	}
	return sum
}

// PaidCount counts paid orders
func PaidCount(orders []models.Order) int {
	n := 0
	for _, order := range orders {
		if order.IsPaid() {
			n++
		}
	}
	return n
}

// PendingCount counts orders that are not paid
func PendingCount(orders []models.Order) int {
	return len(orders) - PaidCount(orders)
}

// DailyStats buckets the orders of r by day, ascending. For the 7 day period
// every day of the range is present, zero filled; other periods list only
// days with at least one order, paid or not.
func DailyStats(orders []models.Order, r DateRange, period Period) []DailyStat {
	loc := r.Start.Location()
	buckets := make(map[string]*DailyStat)
	for _, order := range orders {
		date := OrderDate(&order, loc)
		if !r.Contains(date) {
			continue
		}
		stat, ok := buckets[date]
		if !ok {
			stat = &DailyStat{Date: date, Revenue: decimal.Zero, Tips: decimal.Zero}
			buckets[date] = stat
		}
		stat.Orders++
		if order.IsPaid() {
			stat.Revenue = stat.Revenue.Add(order.TotalAmount)
			stat.Tips = stat.Tips.Add(order.TipAmount)
		}
	}

	if period == Period7Days {
		days := r.Days()
		stats := make([]DailyStat, 0, len(days))
		for _, day := range days {
			if stat, ok := buckets[day]; ok {
				stats = append(stats, *stat)
				continue
			}
			stats = append(stats, DailyStat{Date: day, Revenue: decimal.Zero, Tips: decimal.Zero})
		}
		return stats
	}

	stats := make([]DailyStat, 0, len(buckets))
	for _, stat := range buckets {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Date < stats[j].Date
	})
	return stats
}

// MovingAverage returns the trailing mean of values over window points. The
// window shrinks at the start of the series instead of padding with zeros.
// A window below 1 uses DefaultWindow.
func MovingAverage(values []decimal.Decimal, window int) []decimal.Decimal {
	if window < 1 {
		window = DefaultWindow
	}
	out := make([]decimal.Decimal, len(values))
	sum := decimal.Zero
	for i, v := range values {
		sum = sum.Add(v)
		if i >= window {
			sum = sum.Sub(values[i-window])
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	return out
}

// WithMovingAverage fills MovingAverage on each stat from the revenue series
func WithMovingAverage(stats []DailyStat, window int) []DailyStat {
	revenue := make([]decimal.Decimal, len(stats))
	for i, stat := range stats {
		revenue[i] = stat.Revenue
	}
	for i, avg := range MovingAverage(revenue, window) {
		stats[i].MovingAverage = avg
	}
	return stats
}

// TopCustomers ranks customers by the sum of their orders' total_amount.
// Orders are grouped by customer id, falling back to phone and then name for
// orders without a linked customer.
func TopCustomers(orders []models.Order, n int) []CustomerTotal {
	if n < 1 {
		n = DefaultTopN
	}
	totals := make(map[string]*CustomerTotal)
	var keys []string
	for _, order := range orders {
		key := customerKey(&order)
		total, ok := totals[key]
		if !ok {
			total = &CustomerTotal{
				CustomerID: order.CustomerID,
				Name:       order.CustomerName,
				Phone:      order.CustomerPhone,
				Total:      decimal.Zero,
			}
			totals[key] = total
			keys = append(keys, key)
		}
		total.Orders++
		total.Total = total.Total.Add(order.TotalAmount)
	}

	ranked := make([]CustomerTotal, 0, len(keys))
	for _, key := range keys {
		ranked = append(ranked, *totals[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total.GreaterThan(ranked[j].Total)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func customerKey(order *models.Order) string {
	if order.CustomerID != nil {
		return "id:" + strconv.FormatUint(uint64(*order.CustomerID), 10)
	}
	if phone := models.NormalizePhone(order.CustomerPhone); phone != "" {
		return "phone:" + phone
	}
	return "name:" + strings.ToLower(strings.TrimSpace(order.CustomerName))
}

// TopItems ranks dishes by the sum of their lines' total_price, grouped by
// item name.
func TopItems(orders []models.Order, n int) []ItemTotal {
	if n < 1 {
		n = DefaultTopN
	}
	totals := make(map[string]*ItemTotal)
	var keys []string
	for _, order := range orders {
		for _, item := range order.Items {
			key := strings.ToLower(strings.TrimSpace(item.ItemName))
			total, ok := totals[key]
			if !ok {
				total = &ItemTotal{Name: item.ItemName, Total: decimal.Zero}
				totals[key] = total
				keys = append(keys, key)
			}
			total.Quantity += item.Quantity
			total.Total = total.Total.Add(item.TotalPrice)
		}
	}

	ranked := make([]ItemTotal, 0, len(keys))
	for _, key := range keys {
		ranked = append(ranked, *totals[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total.GreaterThan(ranked[j].Total)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
