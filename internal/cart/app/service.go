package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwikikusuma/cart-sync/internal/cart/domain"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
	ErrQuantityLimit   = errors.New("quantity limit exceeded")
)

type Service struct {
	repo     CartRepo
	products ProductReader

	maxQuantity int
}

func NewService(repo CartRepo, products ProductReader, maxQuantity int) *Service {
	if maxQuantity <= 0 {
		maxQuantity = domain.DefaultMaxQuantity
	}

	return &Service{
		repo:        repo,
		products:    products,
		maxQuantity: maxQuantity,
	}
}

func (s *Service) MaxQuantity() int {
	return s.maxQuantity
}

func (s *Service) GetCart(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) AddItem(ctx context.Context, userID int64, req domain.AddItemRequest) (domain.CartItem, error) {
	if req.ProductID <= 0 {
		return domain.CartItem{}, fmt.Errorf("%w: product_id must be positive", ErrInvalidInput)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if req.Quantity > s.maxQuantity {
		return domain.CartItem{}, fmt.Errorf("%w: quantity cannot exceed %d", ErrQuantityLimit, s.maxQuantity)
	}

	if _, err := s.products.GetProduct(ctx, req.ProductID); err != nil {
		return domain.CartItem{}, err
	}

	return s.repo.AddOrIncrement(ctx, userID, req.ProductID, req.Quantity, s.maxQuantity)
}

func (s *Service) SetItemQuantity(ctx context.Context, userID, itemID int64, qty int) (domain.CartItem, error) {
	if qty < 1 {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if qty > s.maxQuantity {
		return domain.CartItem{}, fmt.Errorf("%w: quantity cannot exceed %d", ErrQuantityLimit, s.maxQuantity)
	}
	return s.repo.SetQuantity(ctx, userID, itemID, qty)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return s.repo.Remove(ctx, userID, itemID)
}

func (s *Service) ClearCart(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

func (s *Service) Count(ctx context.Context, userID int64) (int64, error) {
	return s.repo.Count(ctx, userID)
}
