package sqlite

import (
	"context"
	"errors"

	"github.com/dwikikusuma/cart-sync/internal/catalog/app"
	"github.com/dwikikusuma/cart-sync/internal/catalog/domain"
	"gorm.io/gorm"
)

// ProductRow maps the products table.
type ProductRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"index"`
	Description string
	Price       float64
	ImageURL    string
	Weight      string
	CategoryID  int64
}

func (ProductRow) TableName() string { return "products" }

type ProductRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ProductRow{})
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := ProductRow{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Weight:      p.Weight,
		CategoryID:  p.CategoryID,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Product{}, err
	}
	return toDomain(row), nil
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var row ProductRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return toDomain(row), nil
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ProductRow{}).Count(&n).Error
	return n, err
}

func toDomain(row ProductRow) domain.Product {
	return domain.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		ImageURL:    row.ImageURL,
		Weight:      row.Weight,
		CategoryID:  row.CategoryID,
	}
}
