package app

import (
	"context"
	"testing"

	"github.com/dwikikusuma/cart-sync/internal/catalog/domain"
)

type fakeRepo struct {
	created []domain.Product
	count   int64
}

func (f *fakeRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, p)
	return p, nil
}
func (f *fakeRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	return domain.Product{}, ErrNotFound
}
func (f *fakeRepo) Count(ctx context.Context) (int64, error) { return f.count, nil }

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	t.Run("empty name -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.Product{Name: "   ", Price: 10})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("zero price -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.Product{Name: "Herring", Price: 0})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("non-positive id -> invalid", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), 0)
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSeedIfEmpty(t *testing.T) {
	t.Run("empty catalog is seeded", func(t *testing.T) {
		repo := &fakeRepo{}
		n, err := NewService(repo).SeedIfEmpty(context.Background(), DemoProducts())
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		if n != len(DemoProducts()) || len(repo.created) != n {
			t.Fatalf("seeded %d, created %d", n, len(repo.created))
		}
	})

	t.Run("non-empty catalog untouched", func(t *testing.T) {
		repo := &fakeRepo{count: 3}
		n, err := NewService(repo).SeedIfEmpty(context.Background(), DemoProducts())
		if err != nil || n != 0 || len(repo.created) != 0 {
			t.Fatalf("got n=%d err=%v created=%d", n, err, len(repo.created))
		}
	})
}
