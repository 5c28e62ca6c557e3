package app

import (
	"context"

	"github.com/dwikikusuma/cart-sync/internal/catalog/domain"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Count(ctx context.Context) (int64, error)
}
