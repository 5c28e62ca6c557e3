package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
)

type modeBox struct {
	mu   sync.Mutex
	mode domain.Mode
}

func (b *modeBox) get() domain.Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

func (b *modeBox) set(m domain.Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = m
}

func runMonitor(t *testing.T, m *Monitor) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestOfflineProbeSuccessReconnects(t *testing.T) {
	defer goleak.VerifyNone(t)

	mode := &modeBox{mode: domain.Offline}
	var reachable atomic.Bool
	var reconnects atomic.Int32

	m := NewMonitor(
		ProberFunc(func(context.Context) bool { return reachable.Load() }),
		Config{Interval: 200 * time.Millisecond, OfflineInterval: 10 * time.Millisecond},
		mode.get,
		func(context.Context) {
			reconnects.Add(1)
			mode.set(domain.Online)
		},
		nil,
	)
	stop := runMonitor(t, m)
	defer stop()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, reconnects.Load())

	reachable.Store(true)
	m.Wake()
	require.Eventually(t, func() bool { return reconnects.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), reconnects.Load(), "online probes do not reconnect")
}

func TestOnlineFailureDoesNotChangeMode(t *testing.T) {
	defer goleak.VerifyNone(t)

	mode := &modeBox{mode: domain.Online}
	var probes atomic.Int32

	m := NewMonitor(
		ProberFunc(func(context.Context) bool {
			probes.Add(1)
			return false
		}),
		Config{Interval: 5 * time.Millisecond},
		mode.get,
		func(context.Context) { t.Error("unexpected reconnect") },
		nil,
	)
	stop := runMonitor(t, m)

	require.Eventually(t, func() bool { return probes.Load() >= 3 }, time.Second, time.Millisecond)
	stop()
	assert.Equal(t, domain.Online, mode.get())
}

func TestOfflineBackoffDoublesUpToInterval(t *testing.T) {
	mode := &modeBox{mode: domain.Offline}
	m := NewMonitor(
		ProberFunc(func(context.Context) bool { return false }),
		Config{Interval: 30 * time.Second, OfflineInterval: 5 * time.Second},
		mode.get,
		func(context.Context) {},
		nil,
	)

	ctx := context.Background()
	assert.Equal(t, 5*time.Second, m.nextDelay())

	var got []time.Duration
	for range 4 {
		m.tick(ctx)
		got = append(got, m.nextDelay())
	}
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second, 30 * time.Second}, got)

	mode.set(domain.Online)
	assert.Equal(t, 30*time.Second, m.nextDelay())
	mode.set(domain.Offline)
	assert.Equal(t, 5*time.Second, m.nextDelay(), "going offline again restarts the backoff")
}
