package pricing

import (
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/shopspring/decimal"
)

const secondsPerDay = 24 * 60 * 60

// DefaultWeekendMultiplier applies to every rental day falling on Saturday or Sunday.
var DefaultWeekendMultiplier = decimal.RequireFromString("1.25")

type Calculator interface {
	Calculate(dailyRate decimal.Decimal, pickup, dropoff time.Time) (decimal.Decimal, error)
}

type WeekendCalculator struct {
	WeekendMultiplier decimal.Decimal
}

func NewWeekendCalculator(multiplier decimal.Decimal) *WeekendCalculator {
	if multiplier.IsZero() {
		multiplier = DefaultWeekendMultiplier
	}
	return &WeekendCalculator{WeekendMultiplier: multiplier}
}

// Calculate prices every started 24h block of the window at dailyRate,
// using the calendar day the block starts on to pick the weekend rate.
func (c *WeekendCalculator) Calculate(dailyRate decimal.Decimal, pickup, dropoff time.Time) (decimal.Decimal, error) {
	if !pickup.Before(dropoff) {
		return decimal.Zero, domain.ErrInvalidWindow
	}
	if dailyRate.IsNegative() {
		return decimal.Zero, domain.InvalidInput("daily rate must not be negative")
	}

	total := decimal.Zero
	for i := 0; i < Days(pickup, dropoff); i++ {
		day := pickup.AddDate(0, 0, i)
		total = total.Add(dailyRate.Mul(c.multiplier(day)))
	}
	return total, nil
}

func (c *WeekendCalculator) multiplier(day time.Time) decimal.Decimal {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return c.WeekendMultiplier
	default:
		return decimal.NewFromInt(1)
	}
}

// Days is ceil(elapsed time / 24h) with a floor of one day. It counts in whole
// seconds so windows longer than time.Duration can hold are not clamped.
func Days(pickup, dropoff time.Time) int {
	secs := dropoff.Unix() - pickup.Unix()
	if dropoff.Nanosecond() > pickup.Nanosecond() {
		secs++
	}
	if secs <= 0 {
		return 1
	}
	return int((secs + secondsPerDay - 1) / secondsPerDay)
}

var _ Calculator = (*WeekendCalculator)(nil)
