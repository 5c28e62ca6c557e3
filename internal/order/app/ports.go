package app

import (
	"context"

	"github.com/dwikikusuma/cart-sync/internal/order/domain"
)

type OrderRepo interface {
	CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)
	List(ctx context.Context, userID int64) ([]domain.Order, error)
}

type CartLine struct {
	ProductID int64
	Quantity  int
}

type CartReader interface {
	GetCart(ctx context.Context, userID int64) ([]CartLine, error)
	ClearCart(ctx context.Context, userID int64) error
}

type Product struct {
	ID    int64
	Name  string
	Price float64
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID int64) (Product, error)
}
