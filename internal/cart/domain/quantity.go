package domain

// ClampQuantity forces q into [1, max]. The bool reports whether q changed.
func ClampQuantity(q, max int) (int, bool) {
	if max < 1 {
		max = DefaultMaxQuantity
	}
	switch {
	case q < 1:
		return 1, true
	case q > max:
		return max, true
	default:
		return q, false
	}
}

// ClampItems returns a copy of items with every quantity clamped and the
// number of lines that had to change.
func ClampItems(items []CartItem, max int) ([]CartItem, int) {
	out := make([]CartItem, 0, len(items))
	clamped := 0
	for _, it := range items {
		c := it.Clone()
		var changed bool
		c.Quantity, changed = ClampQuantity(c.Quantity, max)
		if changed {
			clamped++
		}
		out = append(out, c)
	}
	return out, clamped
}
