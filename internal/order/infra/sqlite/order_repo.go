package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/dwikikusuma/cart-sync/internal/order/domain"
	"gorm.io/gorm"
)

type OrderRow struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"`
	UserID     int64   `gorm:"not null;index"`
	TotalPrice float64 `gorm:"not null"`
	Status     string  `gorm:"not null;default:pending"`
	CreatedAt  time.Time
	Items      []OrderItemRow `gorm:"foreignKey:OrderID"`
}

func (OrderRow) TableName() string { return "orders" }

type OrderItemRow struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	OrderID   int64 `gorm:"not null;index"`
	ProductID int64 `gorm:"not null"`
	Name      string
	Quantity  int     `gorm:"not null"`
	Price     float64 `gorm:"not null"`
}

func (OrderItemRow) TableName() string { return "order_items" }

type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&OrderRow{}, &OrderItemRow{})
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	var created OrderRow

	err := r.execTX(ctx, func(tx *gorm.DB) error {
		row := OrderRow{
			UserID:     order.UserID,
			TotalPrice: order.TotalPrice,
			Status:     order.Status,
		}
		if err := tx.Omit("Items").Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i, item := range order.Items {
			itemRow := OrderItemRow{
				OrderID:   row.ID,
				ProductID: item.ProductID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
			if err := tx.Create(&itemRow).Error; err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}
			row.Items = append(row.Items, itemRow)
		}

		created = row
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return toDomain(created), nil
}

func (r *OrderRepo) List(ctx context.Context, userID int64) ([]domain.Order, error) {
	var rows []OrderRow
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

func toDomain(row OrderRow) domain.Order {
	items := make([]domain.OrderItem, 0, len(row.Items))
	for _, it := range row.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return domain.Order{
		ID:         row.ID,
		UserID:     row.UserID,
		TotalPrice: row.TotalPrice,
		Status:     row.Status,
		CreatedAt:  row.CreatedAt,
		Items:      items,
	}
}
