package app

import (
	"context"

	cartdomain "github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
	orderdomain "github.com/dwikikusuma/cart-sync/internal/order/domain"
)

// Gateway is the remote cart API. Failures are *domain.SyncError.
type Gateway interface {
	FetchCart(ctx context.Context) ([]cartdomain.CartItem, error)
	AddItem(ctx context.Context, productID int64, qty int) (cartdomain.CartItem, error)
	SetQuantity(ctx context.Context, itemID int64, qty int) error
	RemoveItem(ctx context.Context, itemID int64) error
	Clear(ctx context.Context) error
	Checkout(ctx context.Context) (orderdomain.Order, error)
	Probe(ctx context.Context) bool
}

// LocalStore holds the last reconciled cart and the sticky mode.
type LocalStore interface {
	Load(ctx context.Context) []cartdomain.CartItem
	Save(ctx context.Context, items []cartdomain.CartItem) error
	Mode(ctx context.Context) domain.Mode
	SetMode(ctx context.Context, m domain.Mode) error
}

// Hooks are called outside the engine lock, possibly from timer goroutines.
// Any of them may be nil.
type Hooks struct {
	RefreshBadge func()
	Navigate     func(order orderdomain.Order)
	OnChange     func(v domain.View)
}
