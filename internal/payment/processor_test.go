package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSimulated_ProcessPayment(t *testing.T) {
	tests := []struct {
		name   string
		proc   *Simulated
		amount decimal.Decimal
		want   bool
	}{
		{"approve without limit", NewSimulated(true, decimal.Zero), decimal.NewFromInt(1000), true},
		{"approve under limit", NewSimulated(true, decimal.NewFromInt(500)), decimal.NewFromInt(500), true},
		{"decline over limit", NewSimulated(true, decimal.NewFromInt(500)), decimal.NewFromFloat(500.01), false},
		{"decline all", NewSimulated(false, decimal.Zero), decimal.NewFromInt(1), false},
		{"decline negative", NewSimulated(true, decimal.Zero), decimal.NewFromInt(-1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := tt.proc.ProcessPayment(context.Background(), tt.amount)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestSimulated_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := NewSimulated(true, decimal.Zero).ProcessPayment(ctx, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestProcessorFunc(t *testing.T) {
	var got decimal.Decimal
	p := ProcessorFunc(func(_ context.Context, amount decimal.Decimal) (bool, error) {
		got = amount
		return true, nil
	})

	ok, err := p.ProcessPayment(context.Background(), decimal.NewFromInt(42))
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(42)))
}
