package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/cart-sync/internal/cart/app"
	orderapp "github.com/dwikikusuma/cart-sync/internal/order/app"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(ctx context.Context, userID int64) ([]orderapp.CartLine, error) {
	items, err := r.svc.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]orderapp.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, orderapp.CartLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return lines, nil
}

func (r *CartServiceReader) ClearCart(ctx context.Context, userID int64) error {
	return r.svc.ClearCart(ctx, userID)
}
