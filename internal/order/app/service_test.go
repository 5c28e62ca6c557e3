package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dwikikusuma/cart-sync/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (f *fakeRepo) CreateOrderTx(ctx context.Context, o domain.Order) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = int64(len(f.orders) + 1)
	o.CreatedAt = time.Now()
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeRepo) List(ctx context.Context, userID int64) ([]domain.Order, error) {
	return f.orders, nil
}

type fakeCart struct {
	lines    []CartLine
	cleared  bool
	clearErr error
}

func (f *fakeCart) GetCart(ctx context.Context, userID int64) ([]CartLine, error) {
	return f.lines, nil
}

func (f *fakeCart) ClearCart(ctx context.Context, userID int64) error {
	f.cleared = f.clearErr == nil
	return f.clearErr
}

type fakeCatalog map[int64]Product

func (f fakeCatalog) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, ok := f[id]
	if !ok {
		return Product{}, errors.New("no such product")
	}
	return p, nil
}

var catalog = fakeCatalog{
	1: {ID: 1, Name: "Smoked salmon", Price: 250},
	2: {ID: 2, Name: "Herring", Price: 120},
}

func TestCreateFromCart(t *testing.T) {
	repo := &fakeRepo{}
	cart := &fakeCart{lines: []CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 3}}}
	svc := NewService(repo, cart, catalog, 2, nil)

	order, err := svc.CreateFromCart(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.InDelta(t, 2*250+3*120, order.TotalPrice, 1e-9)
	assert.Len(t, order.Items, 2)
	assert.True(t, cart.cleared)
}

func TestCreateFromCartEmpty(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeCart{}, catalog, 0, nil)

	_, err := svc.CreateFromCart(context.Background(), 1)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, repo.orders)
}

func TestCreateFromCartUnknownProduct(t *testing.T) {
	repo := &fakeRepo{}
	cart := &fakeCart{lines: []CartLine{{ProductID: 9, Quantity: 1}}}
	svc := NewService(repo, cart, catalog, 0, nil)

	_, err := svc.CreateFromCart(context.Background(), 1)
	require.Error(t, err)
	assert.Empty(t, repo.orders)
	assert.False(t, cart.cleared)
}

func TestCreateFromCartClearFailureKeepsOrder(t *testing.T) {
	repo := &fakeRepo{}
	cart := &fakeCart{lines: []CartLine{{ProductID: 1, Quantity: 1}}, clearErr: errors.New("locked")}
	svc := NewService(repo, cart, catalog, 0, nil)

	order, err := svc.CreateFromCart(context.Background(), 1)
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
}
