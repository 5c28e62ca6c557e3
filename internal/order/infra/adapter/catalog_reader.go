package adapter

import (
	"context"

	catalogapp "github.com/dwikikusuma/cart-sync/internal/catalog/app"
	orderapp "github.com/dwikikusuma/cart-sync/internal/order/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID int64) (orderapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return orderapp.Product{}, err
	}

	return orderapp.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
	}, nil
}
