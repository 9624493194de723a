package reporting

import (
	"time"

	"catering/internal/models"

	"github.com/shopspring/decimal"
)

// Options tunes Summarize. Zero values fall back to the defaults.
type Options struct {
	Window int
	TopN   int
}

// Summary is the dashboard view of one period
type Summary struct {
	Period            Period          `json:"period"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	OrderCount        int             `json:"order_count"`
	PaidCount         int             `json:"paid_count"`
	PendingCount      int             `json:"pending_count"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalTips         decimal.Decimal `json:"total_tips"`
	PendingRevenue    decimal.Decimal `json:"pending_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	Daily             []DailyStat     `json:"daily"`
	TopCustomers      []CustomerTotal `json:"top_customers"`
	TopItems          []ItemTotal     `json:"top_items"`
}

// Summarize resolves the period and computes every dashboard figure from
// orders. Revenue, tips, daily buckets and rankings use paid orders only;
// pending figures cover the rest of the range.
func Summarize(orders []models.Order, period Period, now time.Time, customStart, customEnd string, opts Options) (*Summary, error) {
	r, err := ResolveDateRange(period, now, customStart, customEnd)
	if err != nil {
		return nil, err
	}

	inRange := Filter(orders, r, "")
	paid := Paid(inRange)

	summary := &Summary{
		Period:            period,
		StartDate:         r.StartDate(),
		EndDate:           r.EndDate(),
		OrderCount:        len(inRange),
		PaidCount:         len(paid),
		PendingCount:      PendingCount(inRange),
		TotalRevenue:      TotalRevenue(inRange),
		TotalTips:         TotalTips(inRange),
		PendingRevenue:    PendingRevenue(inRange),
		AverageOrderValue: decimal.Zero,
		Daily:             WithMovingAverage(DailyStats(inRange, r, period), opts.Window),
		TopCustomers:      TopCustomers(paid, opts.TopN),
		TopItems:          TopItems(paid, opts.TopN),
	}
	if len(paid) > 0 {
		summary.AverageOrderValue = summary.TotalRevenue.Div(decimal.NewFromInt(int64(len(paid)))).Round(2)
	}
	return summary, nil
}
