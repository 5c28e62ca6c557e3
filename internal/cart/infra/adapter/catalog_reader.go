package adapter

import (
	"context"
	"errors"

	cartapp "github.com/dwikikusuma/cart-sync/internal/cart/app"
	"github.com/dwikikusuma/cart-sync/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/cart-sync/internal/catalog/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if errors.Is(err, catalogapp.ErrNotFound) || errors.Is(err, catalogapp.ErrInvalidInput) {
		return domain.Product{}, cartapp.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Weight:      p.Weight,
		CategoryID:  p.CategoryID,
	}, nil
}
