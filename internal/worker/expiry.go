package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/metrics"
)

const DefaultSweepInterval = 5 * time.Second

type Expirer interface {
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

// ExpiryMonitor periodically cancels bookings that stayed PENDING for too long.
// It is the only component that cancels bookings because time has passed.
type ExpiryMonitor struct {
	expirer  Expirer
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewExpiryMonitor(expirer Expirer, interval time.Duration, logger *slog.Logger) *ExpiryMonitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryMonitor{expirer: expirer, interval: interval, logger: logger}
}

// Run sweeps on every tick until ctx is cancelled. Cancellation interrupts the
// wait between ticks immediately.
func (m *ExpiryMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("expiry monitor started", slog.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("expiry monitor stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep runs one expiry pass and returns how many bookings it cancelled.
func (m *ExpiryMonitor) Sweep(ctx context.Context) int {
	metrics.ExpirySweeps.Inc()
	expired, err := m.expirer.ExpirePendingBookings(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return len(expired)
		}
		m.logger.Error("expiry sweep failed", slog.String("error", err.Error()))
	}
	if len(expired) > 0 {
		m.logger.Info("expired pending bookings", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// Start runs the monitor in the background. It is a no-op when already running.
func (m *ExpiryMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		m.Run(ctx)
	}(m.done)
}

// Stop cancels the background loop and waits for it to exit or for ctx to end.
func (m *ExpiryMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
