package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	cartdomain "github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
)

// FileStore keeps one file per key under dir. Writes go through a temp file
// and a rename so a crash never leaves a half-written snapshot.
type FileStore struct {
	fs     afero.Fs
	dir    string
	maxQty int
	log    *slog.Logger

	mu sync.Mutex
}

func NewFileStore(fsys afero.Fs, dir string, maxQty int, log *slog.Logger) *FileStore {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &FileStore{fs: fsys, dir: dir, maxQty: maxQty, log: log}
}

func (s *FileStore) Load(ctx context.Context) []cartdomain.CartItem {
	data, err := s.read(itemsKey)
	if err != nil {
		s.log.Warn("read local cart failed", slog.String("err", err.Error()))
		return []cartdomain.CartItem{}
	}
	return decodeItems(data, s.maxQty, s.log)
}

func (s *FileStore) Save(ctx context.Context, items []cartdomain.CartItem) error {
	data, err := encodeItems(items, s.maxQty)
	if err != nil {
		return err
	}
	return s.write(itemsKey, data)
}

func (s *FileStore) Mode(ctx context.Context) domain.Mode {
	data, err := s.read(modeKey)
	if err != nil {
		s.log.Warn("read sync mode failed", slog.String("err", err.Error()))
		return domain.Online
	}
	return decodeMode(data, s.log)
}

func (s *FileStore) SetMode(ctx context.Context, m domain.Mode) error {
	return s.write(modeKey, []byte(m.String()))
}

// read returns nil data when the key was never written.
func (s *FileStore) read(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (s *FileStore) write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	path := filepath.Join(s.dir, key)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}
