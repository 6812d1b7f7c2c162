package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Processor charges an amount. A false result with a nil error means the charge
// was declined and the caller may try again.
type Processor interface {
	ProcessPayment(ctx context.Context, amount decimal.Decimal) (bool, error)
}

type ProcessorFunc func(ctx context.Context, amount decimal.Decimal) (bool, error)

func (f ProcessorFunc) ProcessPayment(ctx context.Context, amount decimal.Decimal) (bool, error) {
	return f(ctx, amount)
}

// Simulated approves every charge up to MaxAmount when Approve is set.
// A zero MaxAmount means no limit.
type Simulated struct {
	Approve   bool
	MaxAmount decimal.Decimal
}

func NewSimulated(approve bool, maxAmount decimal.Decimal) *Simulated {
	return &Simulated{Approve: approve, MaxAmount: maxAmount}
}

func (s *Simulated) ProcessPayment(ctx context.Context, amount decimal.Decimal) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !s.Approve || amount.IsNegative() {
		return false, nil
	}
	if s.MaxAmount.IsPositive() && amount.GreaterThan(s.MaxAmount) {
		return false, nil
	}
	return true, nil
}

var (
	_ Processor = ProcessorFunc(nil)
	_ Processor = (*Simulated)(nil)
)
