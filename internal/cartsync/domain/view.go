package domain

import (
	"sort"

	cartdomain "github.com/dwikikusuma/cart-sync/internal/cart/domain"
)

// Advisory is the user-visible message attached to the current status.
type Advisory struct {
	Kind    Kind
	Message string
}

// View is an immutable snapshot of the engine state.
type View struct {
	Status   Status
	Items    []cartdomain.CartItem
	Advisory *Advisory
	Total    float64
}

func (v View) Mode() Mode {
	if v.Status == nil {
		return Online
	}
	return v.Status.Mode()
}

func (v View) Item(id int64) (cartdomain.CartItem, bool) {
	for _, it := range v.Items {
		if it.ID == id {
			return it, true
		}
	}
	return cartdomain.CartItem{}, false
}

// Count is the number of distinct lines, what the badge shows.
func (v View) Count() int {
	return len(v.Items)
}

// NewView copies items out of the keyed map in id order.
func NewView(s Status, items map[int64]cartdomain.CartItem, adv *Advisory) View {
	out := make([]cartdomain.CartItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	var a *Advisory
	if adv != nil {
		c := *adv
		a = &c
	}

	return View{
		Status:   s,
		Items:    out,
		Advisory: a,
		Total:    cartdomain.Total(out),
	}
}
