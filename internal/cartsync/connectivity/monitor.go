// Package connectivity probes the backend and reports when it comes back.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
)

const (
	DefaultInterval        = 30 * time.Second
	DefaultOfflineInterval = 5 * time.Second
)

// Prober answers whether the backend is reachable right now.
type Prober interface {
	Probe(ctx context.Context) bool
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) bool

func (f ProberFunc) Probe(ctx context.Context) bool { return f(ctx) }

type Config struct {
	// Interval between probes while online, and the cap of the offline backoff.
	Interval time.Duration
	// OfflineInterval is the first delay after going offline.
	OfflineInterval time.Duration
}

// Monitor probes on a timer. Online failures are only logged; reaching the
// backend while offline calls onReconnect.
type Monitor struct {
	prober      Prober
	cfg         Config
	mode        func() domain.Mode
	onReconnect func(ctx context.Context)
	log         *slog.Logger

	wake chan struct{}

	mu       sync.Mutex
	lastMode domain.Mode
	delay    time.Duration
}

func NewMonitor(prober Prober, cfg Config, mode func() domain.Mode, onReconnect func(ctx context.Context), log *slog.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.OfflineInterval <= 0 {
		cfg.OfflineInterval = DefaultOfflineInterval
	}
	if cfg.OfflineInterval > cfg.Interval {
		cfg.OfflineInterval = cfg.Interval
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Monitor{
		prober:      prober,
		cfg:         cfg,
		mode:        mode,
		onReconnect: onReconnect,
		log:         log,
		wake:        make(chan struct{}, 1),
		lastMode:    domain.Online,
		delay:       cfg.Interval,
	}
}

// Wake re-reads the mode and restarts the wait. Call it after the mode changes.
func (m *Monitor) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	timer := time.NewTimer(m.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
			m.tick(ctx)
		}
		timer.Reset(m.nextDelay())
	}
}

// nextDelay resets the schedule when the mode flipped since the last call.
func (m *Monitor) nextDelay() time.Duration {
	mode := m.mode()

	m.mu.Lock()
	defer m.mu.Unlock()

	if mode != m.lastMode {
		m.lastMode = mode
		if mode == domain.Offline {
			m.delay = m.cfg.OfflineInterval
		} else {
			m.delay = m.cfg.Interval
		}
	}
	return m.delay
}

func (m *Monitor) tick(ctx context.Context) {
	ok := m.prober.Probe(ctx)
	if ctx.Err() != nil {
		return
	}

	if m.mode() == domain.Online {
		if !ok {
			m.log.Warn("backend probe failed while online")
		}
		return
	}

	if !ok {
		m.mu.Lock()
		m.delay = min(m.delay*2, m.cfg.Interval)
		next := m.delay
		m.mu.Unlock()
		m.log.Debug("backend still unreachable", slog.Duration("retry_in", next))
		return
	}

	m.log.Info("backend reachable again")
	m.onReconnect(ctx)
}
