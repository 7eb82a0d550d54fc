// Package cart keeps a shopper's (item, size, quantity, price) lines and persists
// them after every mutation. Storage failures are logged and never surface: a cart
// that cannot be loaded starts empty, and a cart that cannot be saved keeps its
// in-memory state.
package cart

import (
	"context"
	"fmt"
	"sync"

	"ss-uniforms/internal/metrics"
	"ss-uniforms/internal/models"
	"ss-uniforms/internal/money"
	"ss-uniforms/internal/notify"

	log "github.com/sirupsen/logrus"
)

// StorageKey is the fixed key the line collection is persisted under.
const StorageKey = "ss-uniforms-cart"

// Storage persists a cart's lines.
type Storage interface {
	Load(ctx context.Context, cartID string) ([]models.CartLine, error)
	Save(ctx context.Context, cartID string, lines []models.CartLine) error
}

type Store struct {
	mu      sync.RWMutex
	id      string
	lines   []models.CartLine
	storage Storage
}

// Open loads the cart identified by id. A load failure yields an empty cart.
func Open(ctx context.Context, id string, storage Storage) *Store {
	s := &Store{id: id, storage: storage}
	lines, err := storage.Load(ctx, id)
	if err != nil {
		log.WithError(err).WithField("cart_id", id).Error("Error loading cart from storage")
		lines = nil
	}
	s.lines = lines
	return s
}

func (s *Store) ID() string { return s.id }

// LineID is the synthesized id of the line for (itemID, size).
func LineID(itemID, size string) string {
	return itemID + "-" + size
}

// AddItem adds quantity units of (item, size) at unitPrice. A repeat add for the
// same (item, size) increments the existing line. Quantities below 1 count as 1.
func (s *Store) AddItem(ctx context.Context, item models.Item, size string, unitPrice float64, quantity int) models.CartLine {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID, size); i >= 0 {
		s.lines[i].Quantity += quantity
		line := s.lines[i]
		s.persist(ctx, "update")
		notify.Success(ctx, "Cart Updated", fmt.Sprintf("%s (%s) quantity updated to %d", item.Name, size, line.Quantity))
		return line
	}

	line := models.CartLine{
		ID:       LineID(item.ID, size),
		Item:     item,
		Size:     size,
		Price:    unitPrice,
		Quantity: quantity,
	}
	s.lines = append(s.lines, line)
	s.persist(ctx, "add")
	notify.Success(ctx, "Added to Cart", fmt.Sprintf("%s (%s) added to cart", item.Name, size))
	return line
}

// RemoveItem deletes the (itemID, size) line. Removing an absent line is a no-op
// that still notifies.
func (s *Store) RemoveItem(ctx context.Context, itemID, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(ctx, itemID, size)
}

func (s *Store) remove(ctx context.Context, itemID, size string) {
	if i := s.indexOf(itemID, size); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	s.persist(ctx, "remove")
	notify.Info(ctx, "Removed from Cart", "Item removed from cart")
}

// UpdateQuantity overwrites a line's quantity; zero or negative removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, itemID, size string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(ctx, itemID, size)
		return
	}
	if i := s.indexOf(itemID, size); i >= 0 {
		s.lines[i].Quantity = quantity
	}
	s.persist(ctx, "set_quantity")
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist(ctx, "clear")
	notify.Info(ctx, "Cart Cleared", "All items removed from cart")
}

func (s *Store) IsInCart(itemID, size string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(itemID, size) >= 0
}

// Quantity returns the line's quantity, 0 when absent.
func (s *Store) Quantity(itemID, size string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(itemID, size); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

func (s *Store) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return money.Total(s.lines,
		func(l models.CartLine) float64 { return l.Price },
		func(l models.CartLine) int { return l.Quantity })
}

func (s *Store) indexOf(itemID, size string) int {
	for i, l := range s.lines {
		if l.Item.ID == itemID && l.Size == size {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context, op string) {
	metrics.CartMutations.WithLabelValues(op).Inc()

	snapshot := make([]models.CartLine, len(s.lines))
	copy(snapshot, s.lines)
	if err := s.storage.Save(ctx, s.id, snapshot); err != nil {
		log.WithError(err).WithFields(log.Fields{"cart_id": s.id, "op": op}).Error("Error saving cart to storage")
	}
}

// Manager opens carts by id and serialises access to each one.
type Manager struct {
	storage Storage

	mu    sync.Mutex
	locks map[string]*cartLock
}

// cartLock is dropped from the map once no caller holds or waits on it.
type cartLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(storage Storage) *Manager {
	return &Manager{storage: storage, locks: make(map[string]*cartLock)}
}

// Do opens the cart and runs fn while holding that cart's lock.
func (m *Manager) Do(ctx context.Context, id string, fn func(*Store)) {
	l := m.acquire(id)
	l.mu.Lock()
	defer m.release(id, l)

	fn(Open(ctx, id, m.storage))
}

func (m *Manager) acquire(id string) *cartLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &cartLock{}
		m.locks[id] = l
	}
	l.refs++
	return l
}

func (m *Manager) release(id string, l *cartLock) {
	l.mu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.refs--; l.refs == 0 {
		delete(m.locks, id)
	}
}

// held is the number of cart ids with a live lock entry.
func (m *Manager) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
