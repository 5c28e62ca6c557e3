package app

import (
	"context"

	"github.com/dwikikusuma/cart-sync/internal/cart/domain"
)

type CartRepo interface {
	List(ctx context.Context, userID int64) ([]domain.CartItem, error)
	// AddOrIncrement inserts a line for the product or adds qty to the existing
	// one. It fails with ErrQuantityLimit when the merged quantity exceeds max.
	AddOrIncrement(ctx context.Context, userID, productID int64, qty, max int) (domain.CartItem, error)
	SetQuantity(ctx context.Context, userID, itemID int64, qty int) (domain.CartItem, error)
	Remove(ctx context.Context, userID, itemID int64) error
	Clear(ctx context.Context, userID int64) error
	Count(ctx context.Context, userID int64) (int64, error)
}

type ProductReader interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
}
