package domain

import "time"

const StatusPending = "pending"

type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	TotalPrice float64     `json:"total_price"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	Items      []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// QuoteLine prices one cart line at the current catalog price.
type QuoteLine struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice float64
	LineTotal float64
}

type Quote struct {
	Lines []QuoteLine
	Total float64
}
