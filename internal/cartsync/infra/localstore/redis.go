package localstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	cartdomain "github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
)

// RedisStore keeps the snapshot under prefix-scoped keys. Keys have no TTL:
// the snapshot must survive until the next successful fetch.
type RedisStore struct {
	client *redis.Client
	prefix string
	maxQty int
	log    *slog.Logger
}

func NewRedisStore(client *redis.Client, prefix string, maxQty int, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RedisStore{client: client, prefix: prefix, maxQty: maxQty, log: log}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Load(ctx context.Context) []cartdomain.CartItem {
	data, err := s.client.Get(ctx, s.key(itemsKey)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("read local cart failed", slog.String("err", err.Error()))
		}
		return []cartdomain.CartItem{}
	}
	return decodeItems(data, s.maxQty, s.log)
}

func (s *RedisStore) Save(ctx context.Context, items []cartdomain.CartItem) error {
	data, err := encodeItems(items, s.maxQty)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(itemsKey), data, 0).Err(); err != nil {
		return fmt.Errorf("save cart items: %w", err)
	}
	return nil
}

func (s *RedisStore) Mode(ctx context.Context) domain.Mode {
	data, err := s.client.Get(ctx, s.key(modeKey)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("read sync mode failed", slog.String("err", err.Error()))
		}
		return domain.Online
	}
	return decodeMode(data, s.log)
}

func (s *RedisStore) SetMode(ctx context.Context, m domain.Mode) error {
	if err := s.client.Set(ctx, s.key(modeKey), m.String(), 0).Err(); err != nil {
		return fmt.Errorf("save sync mode: %w", err)
	}
	return nil
}
