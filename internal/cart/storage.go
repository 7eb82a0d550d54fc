package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ss-uniforms/internal/models"

	"github.com/redis/go-redis/v9"
)

var ErrInvalidCartID = errors.New("cart: invalid cart id")

func checkID(id string) error {
	if id == "" || id == "." || id == ".." || filepath.Base(id) != id {
		return ErrInvalidCartID
	}
	return nil
}

// FileStorage keeps each cart as <Dir>/<cart id>/ss-uniforms-cart.json.
type FileStorage struct {
	Dir string
}

func (f FileStorage) path(id string) string {
	return filepath.Join(f.Dir, id, StorageKey+".json")
}

func (f FileStorage) Load(_ context.Context, id string) ([]models.CartLine, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("cart: decode %s: %w", f.path(id), err)
	}
	return lines, nil
}

func (f FileStorage) Save(_ context.Context, id string, lines []models.CartLine) error {
	if err := checkID(id); err != nil {
		return err
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	path := f.path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// RedisStorage keeps each cart under "ss-uniforms-cart:<cart id>".
type RedisStorage struct {
	Client *redis.Client
	TTL    time.Duration // 0 keeps carts forever
}

func (r RedisStorage) key(id string) string {
	return StorageKey + ":" + id
}

func (r RedisStorage) Load(ctx context.Context, id string) ([]models.CartLine, error) {
	val, err := r.Client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []models.CartLine
	if err := json.Unmarshal(val, &lines); err != nil {
		return nil, fmt.Errorf("cart: decode %s: %w", r.key(id), err)
	}
	return lines, nil
}

func (r RedisStorage) Save(ctx context.Context, id string, lines []models.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.key(id), data, r.TTL).Err()
}

// MemoryStorage is a process-local Storage.
type MemoryStorage struct {
	mu    sync.Mutex
	carts map[string][]models.CartLine
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string][]models.CartLine)}
}

func (m *MemoryStorage) Load(_ context.Context, id string) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.carts[id]
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out, nil
}

func (m *MemoryStorage) Save(_ context.Context, id string, lines []models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]models.CartLine, len(lines))
	copy(stored, lines)
	m.carts[id] = stored
	return nil
}
