package reporting

import (
	"errors"
	"fmt"
	"time"

	"catering/internal/models"
)

// Period names a reporting window relative to today
type Period string

const (
	PeriodToday       Period = "today"
	Period7Days       Period = "7d"
	Period30Days      Period = "30d"
	PeriodThisMonth   Period = "thisMonth"
	PeriodLastMonth   Period = "lastMonth"
	PeriodThisQuarter Period = "thisQuarter"
	PeriodThisYear    Period = "thisYear"
	PeriodQuarter     Period = "quarter"
	PeriodYear        Period = "year"
	PeriodCustom      Period = "custom"
)

// Periods lists every period in menu order
var Periods = []Period{
	PeriodToday, Period7Days, Period30Days, PeriodThisMonth, PeriodLastMonth,
	PeriodThisQuarter, PeriodThisYear, PeriodQuarter, PeriodYear, PeriodCustom,
}

var (
	ErrUnknownPeriod = errors.New("unknown reporting period")
	ErrInvalidRange  = errors.New("invalid custom date range")
)

// DateRange is an inclusive span of calendar days. Start and End are
// midnight in the reporting location.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// StartDate returns the first day as YYYY-MM-DD
func (r DateRange) StartDate() string {
	return r.Start.Format(models.DateLayout)
}

// EndDate returns the last day as YYYY-MM-DD
func (r DateRange) EndDate() string {
	return r.End.Format(models.DateLayout)
}

// Contains reports whether the YYYY-MM-DD date falls in the range
func (r DateRange) Contains(date string) bool {
	return date >= r.StartDate() && date <= r.EndDate()
}

// Days lists every date in the range in ascending order
func (r DateRange) Days() []string {
	var days []string
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(models.DateLayout))
	}
	return days
}

func (r DateRange) String() string {
	return r.StartDate() + ".." + r.EndDate()
}

// ResolveDateRange turns a period into the days it covers, relative to the
// calendar day of now in now's location. customStart and customEnd are only
// read for PeriodCustom.
func ResolveDateRange(period Period, now time.Time, customStart, customEnd string) (DateRange, error) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch period {
	case PeriodToday:
		return DateRange{Start: today, End: today}, nil
	case Period7Days:
		return DateRange{Start: today.AddDate(0, 0, -6), End: today}, nil
	case Period30Days:
		return DateRange{Start: today.AddDate(0, 0, -29), End: today}, nil
	case PeriodThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return DateRange{Start: start, End: start.AddDate(0, 1, -1)}, nil
	case PeriodLastMonth:
		start := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, loc)
		return DateRange{Start: start, End: start.AddDate(0, 1, -1)}, nil
	case PeriodThisQuarter:
		firstMonth := time.Month((int(today.Month())-1)/3*3 + 1)
		start := time.Date(today.Year(), firstMonth, 1, 0, 0, 0, 0, loc)
		return DateRange{Start: start, End: start.AddDate(0, 3, -1)}, nil
	case PeriodThisYear:
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return DateRange{Start: start, End: time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, loc)}, nil
	case PeriodQuarter:
		return DateRange{Start: today.AddDate(0, -3, 0), End: today}, nil
	case PeriodYear:
		return DateRange{Start: today.AddDate(-1, 0, 0), End: today}, nil
	case PeriodCustom:
		return customRange(customStart, customEnd, loc)
	}
	return DateRange{}, fmt.Errorf("%w %q", ErrUnknownPeriod, period)
}

func customRange(startDate, endDate string, loc *time.Location) (DateRange, error) {
	if startDate == "" || endDate == "" {
		return DateRange{}, fmt.Errorf("%w: start and end are required", ErrInvalidRange)
	}
	start, err := time.ParseInLocation(models.DateLayout, startDate, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start must be YYYY-MM-DD", ErrInvalidRange)
	}
	end, err := time.ParseInLocation(models.DateLayout, endDate, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end must be YYYY-MM-DD", ErrInvalidRange)
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange, endDate, startDate)
	}
	return DateRange{Start: start, End: end}, nil
}
