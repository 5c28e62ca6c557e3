// Package server assembles the cart HTTP API from its bounded contexts.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	cartapp "github.com/dwikikusuma/cart-sync/internal/cart/app"
	carthttp "github.com/dwikikusuma/cart-sync/internal/cart/httpapi"
	cartadapter "github.com/dwikikusuma/cart-sync/internal/cart/infra/adapter"
	cartsqlite "github.com/dwikikusuma/cart-sync/internal/cart/infra/sqlite"
	catalogapp "github.com/dwikikusuma/cart-sync/internal/catalog/app"
	catalogsqlite "github.com/dwikikusuma/cart-sync/internal/catalog/infra/sqlite"
	orderapp "github.com/dwikikusuma/cart-sync/internal/order/app"
	orderhttp "github.com/dwikikusuma/cart-sync/internal/order/httpapi"
	orderadapter "github.com/dwikikusuma/cart-sync/internal/order/infra/adapter"
	ordersqlite "github.com/dwikikusuma/cart-sync/internal/order/infra/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

type Options struct {
	MaxQuantity int
	SeedDemo    bool
}

type Server struct {
	Catalog *catalogapp.Service
	Cart    *cartapp.Service
	Orders  *orderapp.Service

	handler http.Handler
	ready   atomic.Bool
}

// New migrates the schema, wires the services and builds the router.
func New(ctx context.Context, db *gorm.DB, opts Options, log *slog.Logger) (*Server, error) {
	if err := catalogsqlite.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	if err := cartsqlite.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate cart: %w", err)
	}
	if err := ordersqlite.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate orders: %w", err)
	}

	// Catalog
	catalogSvc := catalogapp.NewService(catalogsqlite.NewProductRepo(db))
	if opts.SeedDemo {
		n, err := catalogSvc.SeedIfEmpty(ctx, catalogapp.DemoProducts())
		if err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		log.Info("catalog seeded", slog.Int("products", n))
	}

	// Cart
	cartSvc := cartapp.NewService(
		cartsqlite.NewCartRepo(db),
		cartadapter.NewCatalogServiceReader(catalogSvc),
		opts.MaxQuantity,
	)

	// Orders (adapters)
	orderSvc := orderapp.NewService(
		ordersqlite.NewOrderRepo(db),
		orderadapter.NewCartServiceReader(cartSvc),
		orderadapter.NewCatalogServiceReader(catalogSvc),
		10,
		log,
	)

	s := &Server{
		Catalog: catalogSvc,
		Cart:    cartSvc,
		Orders:  orderSvc,
	}
	s.ready.Store(true)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)
	r.Mount("/cart", carthttp.NewHandler(cartSvc, log).Routes())
	r.Mount("/orders", orderhttp.NewHandler(orderSvc, log).Routes())
	s.handler = r

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// SetReady flips /readyz; cartd marks itself unready while draining.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
