package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/cart-sync/internal/order/domain"
)

type Service struct {
	repo    OrderRepo
	cart    CartReader
	catalog CatalogReader
	log     *slog.Logger

	maxConcurrent int
}

func NewService(repo OrderRepo, cart CartReader, catalog CatalogReader, maxConcurrent int, log *slog.Logger) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		repo:          repo,
		cart:          cart,
		catalog:       catalog,
		log:           log,
		maxConcurrent: maxConcurrent,
	}
}

// CreateFromCart turns the user's cart into a pending order and empties the
// cart. The order is persisted first; a failed clear is logged and the order
// is still returned.
func (s *Service) CreateFromCart(ctx context.Context, userID int64) (domain.Order, error) {
	quote, err := s.Quote(ctx, userID)
	if err != nil {
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, 0, len(quote.Lines))
	for _, ln := range quote.Lines {
		items = append(items, domain.OrderItem{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			Quantity:  ln.Quantity,
			Price:     ln.UnitPrice,
		})
	}

	order := domain.Order{
		UserID:     userID,
		Status:     domain.StatusPending,
		TotalPrice: quote.Total,
		Items:      items,
	}

	created, err := s.repo.CreateOrderTx(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	if err := s.cart.ClearCart(ctx, userID); err != nil {
		s.log.Error("order created but cart not cleared",
			slog.Int64("order_id", created.ID), slog.Any("err", err))
		return created, nil
	}

	return created, nil
}

func (s *Service) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.List(ctx, userID)
}
