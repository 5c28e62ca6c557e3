// Package app owns the client-side cart: optimistic edits, reconciliation
// with the server, and the online/offline mode.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cartdomain "github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/connectivity"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/debounce"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
	orderdomain "github.com/dwikikusuma/cart-sync/internal/order/domain"
	"github.com/dwikikusuma/cart-sync/pkg/logger"
)

var (
	ErrItemNotFound    = errors.New("item not in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOffline         = errors.New("not available offline")
	ErrBusy            = errors.New("cart is busy")
	ErrNotConfirmed    = errors.New("not confirmed")
)

const (
	msgOffline       = "You are offline. Showing the cart saved on this device."
	msgMinQuantity   = "Quantity must be at least 1."
	msgEmptyCart     = "Your cart is empty."
	msgCheckoutNeeds = "Checkout needs a connection. Try again when you are back online."
)

type Config struct {
	MaxQuantity          int
	DebounceWindow       time.Duration
	ProbeInterval        time.Duration
	OfflineProbeInterval time.Duration
	LoadRetries          int
	LoadBackoff          time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxQuantity < 1 {
		c.MaxQuantity = cartdomain.DefaultMaxQuantity
	}
	if c.LoadRetries < 0 {
		c.LoadRetries = 0
	}
	if c.LoadBackoff <= 0 {
		c.LoadBackoff = 1500 * time.Millisecond
	}
	return c
}

// Engine is the only writer of cart state. Network calls never run under mu;
// local store writes do, so snapshots land in order.
type Engine struct {
	gw     Gateway
	store  LocalStore
	prober connectivity.Prober
	cfg    Config
	hooks  Hooks
	log    *slog.Logger

	queue   *debounce.Queue
	monitor *connectivity.Monitor

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	closeOnce sync.Once

	mu       sync.Mutex
	status   domain.Status
	items    map[int64]cartdomain.CartItem
	advisory *domain.Advisory

	reconnecting bool
}

// New wires the engine. prober may be nil, in which case the gateway probes.
func New(gw Gateway, store LocalStore, prober connectivity.Prober, cfg Config, hooks Hooks, log *slog.Logger) *Engine {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if prober == nil {
		prober = gw
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		gw:     gw,
		store:  store,
		prober: prober,
		cfg:    cfg,
		hooks:  hooks,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		status: domain.Loading{},
		items:  make(map[int64]cartdomain.CartItem),
	}
	e.queue = debounce.New(cfg.DebounceWindow, e.sendQuantity)
	e.monitor = connectivity.NewMonitor(prober, connectivity.Config{
		Interval:        cfg.ProbeInterval,
		OfflineInterval: cfg.OfflineProbeInterval,
	}, e.mode, e.reconnect, logger.Component(log, "connectivity"))
	return e
}

// Start runs the initial load and then the connectivity monitor. Later calls
// only return the current view.
func (e *Engine) Start(ctx context.Context) domain.View {
	e.startOnce.Do(func() {
		e.initialLoad(ctx)

		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.monitor.Run(e.ctx)
		}()
	})
	return e.View()
}

// Close stops the monitor and drops pending debounced writes. It waits for
// anything already in flight.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.cancel()
		e.queue.Stop()
		e.wg.Wait()
	})
}

// Flush sends pending debounced writes now.
func (e *Engine) Flush() {
	e.queue.Flush()
}

func (e *Engine) View() domain.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) mode() domain.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status.Mode()
}

func (e *Engine) initialLoad(ctx context.Context) {
	sticky := e.store.Mode(ctx)

	e.mu.Lock()
	e.status = domain.Loading{Assumed: sticky}
	e.mu.Unlock()

	if sticky == domain.Offline {
		e.log.Info("starting offline", slog.String("reason", "sticky mode"))
		e.loadLocal(ctx, domain.EventLoadedLocal)
		return
	}

	for attempt := 1; ; attempt++ {
		items, err := e.gw.FetchCart(ctx)
		if err == nil {
			e.replace(ctx, items, domain.EventLoaded)
			return
		}

		if domain.KindOf(err) == domain.KindUnreachable {
			e.log.Warn("backend unreachable, using local cart", slog.String("err", err.Error()))
			e.loadLocal(ctx, domain.EventWentOffline)
			return
		}

		if attempt > e.cfg.LoadRetries {
			e.failLoad(err)
			return
		}

		wait := e.cfg.LoadBackoff * time.Duration(attempt)
		e.log.Warn("cart load failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", wait),
			slog.String("err", err.Error()),
		)
		if !sleep(ctx, e.ctx, wait) {
			e.failLoad(err)
			return
		}
	}
}

// loadLocal shows the local snapshot and settles in Offline.
func (e *Engine) loadLocal(ctx context.Context, ev domain.Event) {
	items := e.store.Load(ctx)

	e.mu.Lock()
	e.items = keyed(items)
	e.transitionLocked(ev)
	if err := e.store.SetMode(ctx, domain.Offline); err != nil {
		e.log.Warn("persist mode failed", slog.String("err", err.Error()))
	}
	e.advisory = &domain.Advisory{Kind: domain.KindUnreachable, Message: msgOffline}
	view := e.viewLocked()
	e.mu.Unlock()

	e.monitor.Wake()
	e.emit(view, true)
}

// failLoad shows an empty cart and leaves the local snapshot alone.
func (e *Engine) failLoad(err error) {
	e.log.Error("cart load gave up", slog.String("err", err.Error()))

	e.mu.Lock()
	e.items = make(map[int64]cartdomain.CartItem)
	e.transitionLocked(domain.EventLoadFailed)
	e.advisory = &domain.Advisory{
		Kind:    domain.KindOf(err),
		Message: "Could not load your cart: " + domain.MessageOf(err),
	}
	view := e.viewLocked()
	e.mu.Unlock()

	e.emit(view, true)
}

// replace makes a server fetch the whole truth: memory and local store are
// overwritten, quantities clamped on the way in.
func (e *Engine) replace(ctx context.Context, items []cartdomain.CartItem, ev domain.Event) {
	clamped, n := cartdomain.ClampItems(items, e.cfg.MaxQuantity)

	e.mu.Lock()
	e.items = keyed(clamped)
	e.transitionLocked(ev)
	e.advisory = nil
	if n > 0 {
		e.log.Warn("server cart had out of range quantities", slog.Int("lines", n))
		e.advisory = e.clampAdvisory()
	}
	e.persistLocked(ctx)
	if err := e.store.SetMode(ctx, domain.Online); err != nil {
		e.log.Warn("persist mode failed", slog.String("err", err.Error()))
	}
	view := e.viewLocked()
	e.mu.Unlock()

	e.emit(view, true)
}

// Reconcile fetches the server cart and replaces local state with it.
func (e *Engine) Reconcile(ctx context.Context) error {
	items, err := e.gw.FetchCart(ctx)
	if err != nil {
		e.fail(ctx, "load cart", err)
		return err
	}
	e.replace(ctx, items, domain.EventLoaded)
	return nil
}

// reconnect runs when a probe succeeds while offline. Offline edits are
// dropped: the single fetch below is authoritative. The engine stays
// offline until that fetch lands, so a failed refetch is retried on the
// next offline probe.
func (e *Engine) reconnect(ctx context.Context) {
	e.mu.Lock()
	ready, ok := e.status.(domain.Ready)
	if !ok || ready.In == domain.Online || e.reconnecting {
		e.mu.Unlock()
		return
	}
	e.reconnecting = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.reconnecting = false
		e.mu.Unlock()
	}()

	e.log.Info("backend reachable, refetching cart")
	items, err := e.gw.FetchCart(ctx)
	if err != nil {
		e.fail(ctx, "load cart", err)
		return
	}
	e.replace(ctx, items, domain.EventReconnected)
}

// Recheck probes right away when offline instead of waiting for the
// monitor. It reports whether the engine is online afterwards.
func (e *Engine) Recheck(ctx context.Context) bool {
	if e.mode() == domain.Online {
		return true
	}
	if !e.prober.Probe(ctx) {
		return false
	}
	e.reconnect(ctx)
	return e.mode() == domain.Online
}

// RequestQuantity applies qty locally right away. Online, the server write
// is debounced per item.
func (e *Engine) RequestQuantity(ctx context.Context, itemID int64, qty int) error {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	it, ok := e.items[itemID]
	if !ok {
		e.mu.Unlock()
		return ErrItemNotFound
	}

	if qty < 1 {
		e.advisory = &domain.Advisory{Kind: domain.KindValidationFailed, Message: msgMinQuantity}
		view := e.viewLocked()
		e.mu.Unlock()
		e.emit(view, false)
		return ErrInvalidQuantity
	}

	var clamped bool
	it.Quantity, clamped = cartdomain.ClampQuantity(qty, e.cfg.MaxQuantity)
	e.items[itemID] = it
	e.advisory = nil
	if clamped {
		e.advisory = e.clampAdvisory()
	}
	e.persistLocked(ctx)
	if e.status.Mode() == domain.Online {
		e.queue.Schedule(itemID, it.Quantity)
	}
	view := e.viewLocked()
	e.mu.Unlock()

	e.emit(view, true)
	return nil
}

// sendQuantity is the debounce callback. A failure other than Unreachable
// is reported but the local value stays.
func (e *Engine) sendQuantity(itemID int64, qty int) {
	if e.mode() != domain.Online {
		return
	}

	e.log.Debug("sending quantity", slog.Int64("item_id", itemID), slog.Int("qty", qty))
	err := e.gw.SetQuantity(e.ctx, itemID, qty)
	if err == nil || e.ctx.Err() != nil {
		return
	}
	e.fail(e.ctx, "update quantity", err)
}

// RemoveItem drops the line locally first. A server rejection puts it back.
func (e *Engine) RemoveItem(ctx context.Context, itemID int64) error {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	removed, ok := e.items[itemID]
	if !ok {
		e.mu.Unlock()
		return ErrItemNotFound
	}
	delete(e.items, itemID)
	e.queue.Cancel(itemID)
	e.advisory = nil
	e.persistLocked(ctx)
	online := e.status.Mode() == domain.Online
	view := e.viewLocked()
	e.mu.Unlock()

	e.emit(view, true)
	if !online {
		return nil
	}

	err := e.gw.RemoveItem(ctx, itemID)
	if err == nil {
		return nil
	}

	switch domain.KindOf(err) {
	case domain.KindUnreachable:
		e.wentOffline(ctx, err)
		return nil
	case domain.KindServerRejected:
		e.log.Warn("remove rejected, restoring item",
			slog.Int64("item_id", itemID),
			slog.String("err", err.Error()),
		)
		e.mu.Lock()
		if _, exists := e.items[itemID]; !exists {
			e.items[itemID] = removed
		}
		e.advisory = &domain.Advisory{
			Kind:    domain.KindServerRejected,
			Message: "Could not remove item: " + domain.MessageOf(err),
		}
		e.persistLocked(ctx)
		view := e.viewLocked()
		e.mu.Unlock()
		e.emit(view, true)
		return err
	default:
		e.fail(ctx, "remove item", err)
		return err
	}
}

// AddItem needs the server to assign the line id, so it is online only.
func (e *Engine) AddItem(ctx context.Context, productID int64, qty int) (cartdomain.CartItem, error) {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return cartdomain.CartItem{}, err
	}
	if e.status.Mode() == domain.Offline {
		e.advisory = &domain.Advisory{Kind: domain.KindUnreachable, Message: "Adding items needs a connection."}
		view := e.viewLocked()
		e.mu.Unlock()
		e.emit(view, false)
		return cartdomain.CartItem{}, ErrOffline
	}
	e.mu.Unlock()

	requested := qty
	qty, clamped := cartdomain.ClampQuantity(qty, e.cfg.MaxQuantity)
	item, err := e.gw.AddItem(ctx, productID, qty)
	if err != nil {
		e.fail(ctx, "add item", err)
		return cartdomain.CartItem{}, err
	}

	// The server may have merged into an existing line.
	if err := e.Reconcile(ctx); err != nil || !clamped {
		return item, nil
	}

	e.mu.Lock()
	if requested < 1 {
		e.advisory = &domain.Advisory{Kind: domain.KindValidationFailed, Message: msgMinQuantity}
	} else {
		e.advisory = e.clampAdvisory()
	}
	view := e.viewLocked()
	e.mu.Unlock()
	e.emit(view, false)
	return item, nil
}

// Checkout flushes pending quantity writes, places the order and reloads.
func (e *Engine) Checkout(ctx context.Context) (orderdomain.Order, error) {
	e.queue.Flush()

	e.mu.Lock()
	if len(e.items) == 0 {
		e.advisory = &domain.Advisory{Kind: domain.KindValidationFailed, Message: msgEmptyCart}
		view := e.viewLocked()
		e.mu.Unlock()
		e.emit(view, false)
		return orderdomain.Order{}, ErrEmptyCart
	}
	if e.status.Mode() == domain.Offline {
		e.advisory = &domain.Advisory{Kind: domain.KindUnreachable, Message: msgCheckoutNeeds}
		view := e.viewLocked()
		e.mu.Unlock()
		e.emit(view, false)
		return orderdomain.Order{}, ErrOffline
	}
	if !e.transitionLocked(domain.EventCheckoutStarted) {
		e.mu.Unlock()
		return orderdomain.Order{}, ErrBusy
	}
	e.advisory = nil
	view := e.viewLocked()
	e.mu.Unlock()
	e.emit(view, false)

	order, err := e.gw.Checkout(ctx)
	if err != nil {
		if domain.KindOf(err) == domain.KindUnreachable {
			e.wentOffline(ctx, err)
			return orderdomain.Order{}, err
		}

		e.mu.Lock()
		e.transitionLocked(domain.EventCheckoutFinished)
		e.advisory = &domain.Advisory{
			Kind:    domain.KindOf(err),
			Message: "Checkout failed: " + domain.MessageOf(err) + ". Please try again.",
		}
		view := e.viewLocked()
		e.mu.Unlock()
		e.emit(view, false)
		return orderdomain.Order{}, err
	}

	e.log.Info("order placed", slog.Int64("order_id", order.ID), slog.Float64("total", order.TotalPrice))

	// The server empties the cart with the order.
	e.mu.Lock()
	e.items = make(map[int64]cartdomain.CartItem)
	e.transitionLocked(domain.EventCheckoutFinished)
	e.persistLocked(ctx)
	view = e.viewLocked()
	e.mu.Unlock()
	e.emit(view, true)

	_ = e.Reconcile(ctx)

	if e.hooks.Navigate != nil {
		e.hooks.Navigate(order)
	}
	return order, nil
}

// Clear empties the cart once confirm returns true. Offline the clear is
// local only; the refetch on reconnect decides what survives.
func (e *Engine) Clear(ctx context.Context, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}

	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	if e.status.Mode() == domain.Offline {
		e.emptyLocked(ctx)
		view := e.viewLocked()
		e.mu.Unlock()
		e.emit(view, true)
		return nil
	}
	e.mu.Unlock()

	// Pending quantity writes go out first so a failed clear leaves the
	// server matching what is shown.
	e.queue.Flush()
	if e.mode() == domain.Offline {
		return e.Clear(ctx, func() bool { return true })
	}

	if err := e.gw.Clear(ctx); err != nil {
		e.fail(ctx, "clear cart", err)
		return err
	}

	e.mu.Lock()
	e.emptyLocked(ctx)
	view := e.viewLocked()
	e.mu.Unlock()
	e.emit(view, true)
	return nil
}

// fail routes a gateway error: Unreachable goes offline, anything else
// becomes an advisory.
func (e *Engine) fail(ctx context.Context, op string, err error) {
	if domain.KindOf(err) == domain.KindUnreachable {
		e.wentOffline(ctx, err)
		return
	}

	e.log.Warn(op+" failed", slog.String("err", err.Error()))

	e.mu.Lock()
	e.advisory = &domain.Advisory{
		Kind:    domain.KindOf(err),
		Message: fmt.Sprintf("Could not %s: %s", op, domain.MessageOf(err)),
	}
	view := e.viewLocked()
	e.mu.Unlock()
	e.emit(view, false)
}

func (e *Engine) wentOffline(ctx context.Context, err error) {
	e.log.Warn("backend unreachable, switching to offline", slog.String("err", err.Error()))

	e.mu.Lock()
	e.transitionLocked(domain.EventWentOffline)
	e.cancelPendingLocked()
	if serr := e.store.SetMode(ctx, domain.Offline); serr != nil {
		e.log.Warn("persist mode failed", slog.String("err", serr.Error()))
	}
	e.advisory = &domain.Advisory{Kind: domain.KindUnreachable, Message: msgOffline}
	view := e.viewLocked()
	e.mu.Unlock()

	e.monitor.Wake()
	e.emit(view, false)
}

// transitionLocked applies ev, logging and ignoring illegal transitions.
func (e *Engine) transitionLocked(ev domain.Event) bool {
	next, err := domain.Next(e.status, ev)
	if err != nil {
		e.log.Warn("ignored transition", slog.String("err", err.Error()))
		return false
	}
	if next != e.status {
		e.log.Debug("status changed", slog.String("from", e.status.String()), slog.String("to", next.String()))
	}
	e.status = next
	return true
}

func (e *Engine) editableLocked() error {
	switch e.status.(type) {
	case domain.Ready:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrBusy, e.status)
	}
}

func (e *Engine) emptyLocked(ctx context.Context) {
	e.cancelPendingLocked()
	e.items = make(map[int64]cartdomain.CartItem)
	e.advisory = nil
	e.persistLocked(ctx)
}

func (e *Engine) cancelPendingLocked() {
	for id := range e.items {
		e.queue.Cancel(id)
	}
}

func (e *Engine) persistLocked(ctx context.Context) {
	items := make([]cartdomain.CartItem, 0, len(e.items))
	for _, it := range e.items {
		items = append(items, it)
	}
	if err := e.store.Save(ctx, items); err != nil {
		e.log.Warn("save local cart failed", slog.String("err", err.Error()))
	}
}

func (e *Engine) clampAdvisory() *domain.Advisory {
	return &domain.Advisory{
		Kind:    domain.KindValidationFailed,
		Message: fmt.Sprintf("Quantity is limited to %d per item.", e.cfg.MaxQuantity),
	}
}

func (e *Engine) viewLocked() domain.View {
	return domain.NewView(e.status, e.items, e.advisory)
}

func (e *Engine) emit(v domain.View, countChanged bool) {
	if countChanged && e.hooks.RefreshBadge != nil {
		e.hooks.RefreshBadge()
	}
	if e.hooks.OnChange != nil {
		e.hooks.OnChange(v)
	}
}

func keyed(items []cartdomain.CartItem) map[int64]cartdomain.CartItem {
	m := make(map[int64]cartdomain.CartItem, len(items))
	for _, it := range items {
		m[it.ID] = it.Clone()
	}
	return m
}

// sleep waits d unless either context ends first.
func sleep(a, b context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-a.Done():
		return false
	case <-b.Done():
		return false
	}
}
