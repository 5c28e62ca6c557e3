package domain

// DefaultMaxQuantity is the per-line ceiling used when none is configured.
const DefaultMaxQuantity = 99

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	Weight      string  `json:"weight,omitempty"`
	CategoryID  int64   `json:"category_id,omitempty"`
}

// CartItem is one cart line with a denormalized product snapshot.
type CartItem struct {
	ID        int64    `json:"id"`
	UserID    int64    `json:"user_id,omitempty"`
	ProductID int64    `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// LineTotal is price times quantity, zero when no snapshot is attached.
func (i CartItem) LineTotal() float64 {
	if i.Product == nil {
		return 0
	}
	return i.Product.Price * float64(i.Quantity)
}

// Clone returns a copy that does not share the product snapshot.
func (i CartItem) Clone() CartItem {
	if i.Product != nil {
		p := *i.Product
		i.Product = &p
	}
	return i
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Total sums the line totals of items.
func Total(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}
