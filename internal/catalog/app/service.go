package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/cart-sync/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("product not found")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)

	if len(p.Name) < 2 || p.Price <= 0 {
		return domain.Product{}, ErrInvalidInput
	}

	return s.repo.Create(ctx, p)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

// SeedIfEmpty inserts products only when the catalog has none, so restarts
// of a demo server do not duplicate rows.
func (s *Service) SeedIfEmpty(ctx context.Context, products []domain.Product) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	for i, p := range products {
		if _, err := s.CreateProduct(ctx, p); err != nil {
			return i, err
		}
	}
	return len(products), nil
}

// DemoProducts is the catalog seeded by cartd when SEED_DEMO is set.
func DemoProducts() []domain.Product {
	return []domain.Product{
		{Name: "Smoked salmon", Description: "Cold smoked, sliced", Price: 250, Weight: "200 g", CategoryID: 1},
		{Name: "Herring fillet", Description: "Lightly salted", Price: 120, Weight: "300 g", CategoryID: 1},
		{Name: "Red caviar", Price: 890, Weight: "100 g", CategoryID: 2},
		{Name: "Cod liver", Price: 210, Weight: "120 g", CategoryID: 3},
	}
}
