// Package localstore persists the last known cart on the device so it can be
// shown while the backend is unreachable.
package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"

	cartdomain "github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
)

const (
	itemsKey = "cart_items"
	modeKey  = "sync_mode"
)

// encodeItems clamps every quantity before marshalling.
func encodeItems(items []cartdomain.CartItem, maxQty int) ([]byte, error) {
	clamped, _ := cartdomain.ClampItems(items, maxQty)
	data, err := json.Marshal(clamped)
	if err != nil {
		return nil, fmt.Errorf("encode cart items: %w", err)
	}
	return data, nil
}

// decodeItems never fails: unreadable snapshots are logged and treated as empty.
func decodeItems(data []byte, maxQty int, log *slog.Logger) []cartdomain.CartItem {
	if len(data) == 0 {
		return []cartdomain.CartItem{}
	}

	var items []cartdomain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn("discarding corrupt local cart", slog.String("err", err.Error()))
		return []cartdomain.CartItem{}
	}
	if items == nil {
		return []cartdomain.CartItem{}
	}

	out, clamped := cartdomain.ClampItems(items, maxQty)
	if clamped > 0 {
		log.Warn("clamped quantities in local cart", slog.Int("lines", clamped))
	}
	return out
}

func decodeMode(data []byte, log *slog.Logger) domain.Mode {
	if len(data) == 0 {
		return domain.Online
	}
	m, err := domain.ParseMode(string(data))
	if err != nil {
		log.Warn("ignoring unreadable sync mode", slog.String("err", err.Error()))
		return domain.Online
	}
	return m
}
