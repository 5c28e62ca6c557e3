package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwikikusuma/cart-sync/internal/cart/app"
	"github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"gorm.io/gorm"
)

// CartRow maps the cart table; one row per (user, product).
type CartRow struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	UserID    int64 `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int   `gorm:"not null;default:1"`
}

func (CartRow) TableName() string { return "cart" }

// itemRow is a cart line joined with its product columns.
type itemRow struct {
	ID                 int64
	UserID             int64
	ProductID          int64
	Quantity           int
	ProductName        *string
	ProductDescription string
	ProductPrice       float64
	ProductImageURL    string
	ProductWeight      string
	ProductCategoryID  int64
}

const itemColumns = `cart.id, cart.user_id, cart.product_id, cart.quantity,
	products.name AS product_name,
	COALESCE(products.description, '') AS product_description,
	COALESCE(products.price, 0) AS product_price,
	COALESCE(products.image_url, '') AS product_image_url,
	COALESCE(products.weight, '') AS product_weight,
	COALESCE(products.category_id, 0) AS product_category_id`

type CartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) *CartRepo {
	return &CartRepo{db: db}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&CartRow{})
}

func (r *CartRepo) items(tx *gorm.DB) *gorm.DB {
	return tx.Table("cart").
		Select(itemColumns).
		Joins("LEFT JOIN products ON products.id = cart.product_id")
}

func (r *CartRepo) List(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	var rows []itemRow
	err := r.items(r.db.WithContext(ctx)).
		Where("cart.user_id = ?", userID).
		Order("cart.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDomain(row))
	}
	return items, nil
}

func (r *CartRepo) get(tx *gorm.DB, userID, itemID int64) (domain.CartItem, error) {
	var rows []itemRow
	err := r.items(tx).
		Where("cart.user_id = ? AND cart.id = ?", userID, itemID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return domain.CartItem{}, err
	}
	if len(rows) == 0 {
		return domain.CartItem{}, app.ErrNotFound
	}
	return toDomain(rows[0]), nil
}

func (r *CartRepo) AddOrIncrement(ctx context.Context, userID, productID int64, qty, max int) (domain.CartItem, error) {
	var row CartRow

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = CartRow{UserID: userID, ProductID: productID, Quantity: qty}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		if row.Quantity+qty > max {
			return fmt.Errorf("%w: total quantity cannot exceed %d", app.ErrQuantityLimit, max)
		}
		row.Quantity += qty
		return tx.Model(&CartRow{}).Where("id = ?", row.ID).Update("quantity", row.Quantity).Error
	})
	if err != nil {
		return domain.CartItem{}, err
	}

	return r.get(r.db.WithContext(ctx), userID, row.ID)
}

func (r *CartRepo) SetQuantity(ctx context.Context, userID, itemID int64, qty int) (domain.CartItem, error) {
	res := r.db.WithContext(ctx).
		Model(&CartRow{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", qty)
	if res.Error != nil {
		return domain.CartItem{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.CartItem{}, app.ErrNotFound
	}

	return r.get(r.db.WithContext(ctx), userID, itemID)
}

func (r *CartRepo) Remove(ctx context.Context, userID, itemID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&CartRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartRow{}).Error
}

func (r *CartRepo) Count(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&CartRow{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func toDomain(row itemRow) domain.CartItem {
	item := domain.CartItem{
		ID:        row.ID,
		UserID:    row.UserID,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
	}
	if row.ProductName != nil {
		item.Product = &domain.Product{
			ID:          row.ProductID,
			Name:        *row.ProductName,
			Description: row.ProductDescription,
			Price:       row.ProductPrice,
			ImageURL:    row.ProductImageURL,
			Weight:      row.ProductWeight,
			CategoryID:  row.ProductCategoryID,
		}
	}
	return item
}
