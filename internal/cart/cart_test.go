package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ss-uniforms/internal/models"
	"ss-uniforms/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	shirt = models.Item{ID: "shirt-1", Name: "Summer Shirt", Price: 100}
	tie   = models.Item{ID: "tie-1", Name: "House Tie", Price: 50}
)

func newCart(t *testing.T) *Store {
	t.Helper()
	return Open(context.Background(), "c1", NewMemoryStorage())
}

func TestAddSameItemAndSizeMergesLines(t *testing.T) {
	ctx := notify.WithCollector(context.Background())
	c := newCart(t)

	c.AddItem(ctx, shirt, "M", 100, 2)
	c.AddItem(ctx, shirt, "M", 100, 3)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "shirt-1-M", lines[0].ID)

	notes := notify.Drain(ctx)
	require.Len(t, notes, 2)
	assert.Equal(t, "Added to Cart", notes[0].Title)
	assert.Equal(t, "Cart Updated", notes[1].Title)
	assert.Equal(t, "Summer Shirt (M) quantity updated to 5", notes[1].Message)
}

func TestDifferentSizesAreSeparateLines(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)

	c.AddItem(ctx, shirt, "M", 100, 1)
	c.AddItem(ctx, shirt, "L", 110, 1)

	assert.Len(t, c.Lines(), 2)
	assert.True(t, c.IsInCart("shirt-1", "L"))
	assert.False(t, c.IsInCart("shirt-1", "S"))
}

func TestAddDefaultsToOneUnit(t *testing.T) {
	c := newCart(t)
	c.AddItem(context.Background(), tie, "Free", 50, 0)
	assert.Equal(t, 1, c.Quantity("tie-1", "Free"))
}

func TestUpdateQuantityZeroOrNegativeRemoves(t *testing.T) {
	for _, q := range []int{0, -1, -10} {
		ctx := context.Background()
		c := newCart(t)
		c.AddItem(ctx, shirt, "M", 100, 2)

		c.UpdateQuantity(ctx, "shirt-1", "M", q)

		assert.Empty(t, c.Lines(), "quantity %d", q)
		assert.Equal(t, 0, c.Quantity("shirt-1", "M"))
	}
}

func TestUpdateQuantityOverwrites(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)
	c.AddItem(ctx, shirt, "M", 100, 2)

	c.UpdateQuantity(ctx, "shirt-1", "M", 7)

	assert.Equal(t, 7, c.Quantity("shirt-1", "M"))
}

func TestRemoveAbsentLineStillNotifies(t *testing.T) {
	ctx := notify.WithCollector(context.Background())
	c := newCart(t)

	c.RemoveItem(ctx, "missing", "M")

	notes := notify.Drain(ctx)
	require.Len(t, notes, 1)
	assert.Equal(t, "Removed from Cart", notes[0].Title)
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)
	c.AddItem(ctx, shirt, "M", 100, 2)
	c.AddItem(ctx, tie, "Free", 50, 1)

	assert.Equal(t, 3, c.TotalItems())
	assert.Equal(t, 250.0, c.TotalPrice())

	c.Clear(ctx)
	assert.Equal(t, 0, c.TotalItems())
	assert.Equal(t, 0.0, c.TotalPrice())
}

func TestFileStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := FileStorage{Dir: t.TempDir()}

	c := Open(ctx, "c1", storage)
	c.AddItem(ctx, shirt, "M", 100, 2)
	c.AddItem(ctx, tie, "Free", 45.5, 1)

	reloaded := Open(ctx, "c1", storage)

	type key struct {
		item, size string
		qty        int
		price      float64
	}
	collect := func(lines []models.CartLine) []key {
		var out []key
		for _, l := range lines {
			out = append(out, key{l.Item.ID, l.Size, l.Quantity, l.Price})
		}
		return out
	}
	assert.ElementsMatch(t, collect(c.Lines()), collect(reloaded.Lines()))
	assert.Equal(t, "Summer Shirt", reloaded.Lines()[0].Item.Name)
}

func TestFileStorageRejectsPathTraversal(t *testing.T) {
	storage := FileStorage{Dir: t.TempDir()}
	_, err := storage.Load(context.Background(), "../etc")
	assert.ErrorIs(t, err, ErrInvalidCartID)
}

type brokenStorage struct{}

func (brokenStorage) Load(context.Context, string) ([]models.CartLine, error) {
	return nil, errors.New("disk unavailable")
}

func (brokenStorage) Save(context.Context, string, []models.CartLine) error {
	return errors.New("disk unavailable")
}

func TestStorageFailuresDegradeToEmpty(t *testing.T) {
	ctx := context.Background()
	c := Open(ctx, "c1", brokenStorage{})
	assert.Empty(t, c.Lines())

	c.AddItem(ctx, shirt, "M", 100, 1)
	assert.Equal(t, 1, c.TotalItems())
}

func TestManagerPersistsBetweenOpens(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStorage())

	m.Do(ctx, "c1", func(s *Store) { s.AddItem(ctx, shirt, "M", 100, 2) })
	m.Do(ctx, "c1", func(s *Store) { s.AddItem(ctx, shirt, "M", 100, 1) })

	var qty int
	m.Do(ctx, "c1", func(s *Store) { qty = s.Quantity("shirt-1", "M") })
	assert.Equal(t, 3, qty)
}

func TestManagerDropsLocksOfIdleCarts(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStorage())

	for i := 0; i < 1000; i++ {
		m.Do(ctx, fmt.Sprintf("cart-%d", i), func(s *Store) { _ = s.TotalItems() })
	}
	assert.Equal(t, 0, m.held())
}

func TestManagerSerialisesSameCart(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStorage())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Do(ctx, "shared", func(s *Store) { s.AddItem(ctx, shirt, "M", 100, 1) })
		}()
	}
	wg.Wait()

	var qty int
	m.Do(ctx, "shared", func(s *Store) { qty = s.Quantity("shirt-1", "M") })
	assert.Equal(t, 50, qty)
	assert.Equal(t, 0, m.held())
}
