package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cartdomain "github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/infra/localstore"
	orderdomain "github.com/dwikikusuma/cart-sync/internal/order/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeGateway struct {
	mu sync.Mutex

	server    []cartdomain.CartItem
	reachable bool
	calls     []string

	fetchErr    error
	setErr      error
	removeErr   error
	clearErr    error
	checkoutErr error
	order       orderdomain.Order
}

func newFakeGateway(items ...cartdomain.CartItem) *fakeGateway {
	return &fakeGateway{server: items, reachable: true, order: orderdomain.Order{ID: 42, Status: orderdomain.StatusPending}}
}

func (g *fakeGateway) record(call string) {
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) count(prefix string) int {
	n := 0
	for _, c := range g.Calls() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (g *fakeGateway) set(fn func(g *fakeGateway)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g)
}

func (g *fakeGateway) FetchCart(ctx context.Context) ([]cartdomain.CartItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("fetch")
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	out := make([]cartdomain.CartItem, 0, len(g.server))
	for _, it := range g.server {
		out = append(out, it.Clone())
	}
	return out, nil
}

func (g *fakeGateway) AddItem(ctx context.Context, productID int64, qty int) (cartdomain.CartItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(fmt.Sprintf("add %d %d", productID, qty))
	it := item(int64(len(g.server)+100), qty)
	it.ProductID = productID
	g.server = append(g.server, it)
	return it, nil
}

func (g *fakeGateway) SetQuantity(ctx context.Context, itemID int64, qty int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(fmt.Sprintf("set %d %d", itemID, qty))
	if g.setErr != nil {
		return g.setErr
	}
	for i := range g.server {
		if g.server[i].ID == itemID {
			g.server[i].Quantity = qty
		}
	}
	return nil
}

func (g *fakeGateway) RemoveItem(ctx context.Context, itemID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(fmt.Sprintf("remove %d", itemID))
	return g.removeErr
}

func (g *fakeGateway) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("clear")
	if g.clearErr != nil {
		return g.clearErr
	}
	g.server = nil
	return nil
}

func (g *fakeGateway) Checkout(ctx context.Context) (orderdomain.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("checkout")
	if g.checkoutErr != nil {
		return orderdomain.Order{}, g.checkoutErr
	}
	g.order.TotalPrice = cartdomain.Total(g.server)
	g.server = nil
	return g.order, nil
}

func (g *fakeGateway) Probe(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reachable
}

func item(id int64, qty int) cartdomain.CartItem {
	return cartdomain.CartItem{
		ID:        id,
		ProductID: 1,
		Quantity:  qty,
		Product:   &cartdomain.Product{ID: 1, Name: "Smoked salmon", Price: 250},
	}
}

func unreachable(op string) error {
	return &domain.SyncError{Kind: domain.KindUnreachable, Op: op, Err: fmt.Errorf("dial tcp: connection refused")}
}

func rejected(op string, status int, msg string) error {
	return &domain.SyncError{Kind: domain.KindServerRejected, Op: op, Status: status, Message: msg}
}

type harness struct {
	engine *Engine
	gw     *fakeGateway
	store  *localstore.FileStore
	badge  *counter
	nav    chan orderdomain.Order
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// testConfig keeps timers out of the way; tests that need them shorten them.
func testConfig() Config {
	return Config{
		MaxQuantity:          99,
		DebounceWindow:       time.Hour,
		ProbeInterval:        time.Hour,
		OfflineProbeInterval: time.Hour,
		LoadRetries:          3,
		LoadBackoff:          time.Millisecond,
	}
}

// newHarness builds an engine over gw and an in-memory file store. It is
// not started.
func newHarness(t *testing.T, gw *fakeGateway, cfg Config) *harness {
	t.Helper()

	h := &harness{
		gw:    gw,
		store: localstore.NewFileStore(afero.NewMemMapFs(), "/cartsync/test", cfg.MaxQuantity, nil),
		badge: &counter{},
		nav:   make(chan orderdomain.Order, 1),
	}
	h.engine = New(gw, h.store, nil, cfg, Hooks{
		RefreshBadge: h.badge.inc,
		Navigate:     func(o orderdomain.Order) { h.nav <- o },
	}, nil)
	t.Cleanup(h.engine.Close)
	return h
}

func startHarness(t *testing.T, gw *fakeGateway) *harness {
	t.Helper()
	h := newHarness(t, gw, testConfig())
	v := h.engine.Start(context.Background())
	require.Equal(t, domain.Ready{In: domain.Online}, v.Status)
	return h
}

func (h *harness) quantity(t *testing.T, id int64) int {
	t.Helper()
	it, ok := h.engine.View().Item(id)
	require.True(t, ok, "item %d missing", id)
	return it.Quantity
}

func (h *harness) stored(id int64) (cartdomain.CartItem, bool) {
	for _, it := range h.store.Load(context.Background()) {
		if it.ID == id {
			return it, true
		}
	}
	return cartdomain.CartItem{}, false
}
