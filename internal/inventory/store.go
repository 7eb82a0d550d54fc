// Package inventory owns the in-memory mirror of catalogues, items, size variants
// and sales, the writes against them, and every aggregate derived from them.
//
// Writes go to the Repository first and are followed by a full refetch; the
// mirrors are never patched locally. Every failure is logged, reported as an
// error notification on the request context, and returned to the caller.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ss-uniforms/internal/format"
	"ss-uniforms/internal/metrics"
	"ss-uniforms/internal/models"
	"ss-uniforms/internal/money"
	"ss-uniforms/internal/notify"

	log "github.com/sirupsen/logrus"
)

var (
	ErrUnauthenticated = errors.New("inventory: user not authenticated")
	ErrInvalidSection  = errors.New("inventory: invalid section type")
	ErrEmptySale       = errors.New("inventory: sale has no items")
	ErrInvalidSaleLine = errors.New("inventory: invalid sale line")
)

type CatalogueInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Order       int    `json:"order"`
}

type SizeInput struct {
	Size  string  `json:"size" binding:"required"`
	Price float64 `json:"price" binding:"gte=0"`
	Stock *int    `json:"stock" binding:"omitempty,gte=0"`
}

// ItemInput creates or updates an item. On update a nil Sizes leaves the
// existing size variants untouched; an empty slice removes them.
type ItemInput struct {
	CatalogueID string             `json:"catalogue_id" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	Material    string             `json:"material"`
	Location    string             `json:"location"`
	Stock       int                `json:"stock" binding:"gte=0"`
	Price       float64            `json:"price" binding:"gte=0"`
	Image       string             `json:"image"`
	SectionType models.SectionType `json:"section_type" binding:"required,section"`
	Sizes       []SizeInput        `json:"sizes" binding:"omitempty,dive"`
}

type SaleInput struct {
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	Items         []models.CartLine `json:"items" binding:"required,min=1,dive"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for calendar aggregates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the time zone calendar aggregates are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

func WithBestSellerMetric(m BestSellerMetric) Option {
	return func(s *Store) { s.metric = m }
}

type Store struct {
	repo   Repository
	now    func() time.Time
	loc    *time.Location
	metric BestSellerMetric

	loading atomic.Int32
	catSeq  atomic.Uint64
	saleSeq atomic.Uint64

	mu          sync.RWMutex
	catApplied  uint64
	saleApplied uint64
	catalogues  []models.Catalogue
	sales       []models.Sale
	snapshot    Snapshot
}

func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:       repo,
		now:        time.Now,
		loc:        time.Local,
		metric:     BestSellerByStock,
		catalogues: []models.Catalogue{},
		sales:      []models.Sale{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot = Compute(nil, nil, s.clock(), s.metric)
	return s
}

func (s *Store) clock() time.Time {
	return s.now().In(s.loc)
}

// Refresh loads both mirrors.
func (s *Store) Refresh(ctx context.Context) error {
	errCat := s.FetchCatalogues(ctx)
	errSales := s.FetchSales(ctx)
	return errors.Join(errCat, errSales)
}

// FetchCatalogues reads catalogues, items and sizes and rebuilds the nested tree.
// A failed read leaves the previous tree in place. A result is discarded when a
// fetch that started later has already been applied.
func (s *Store) FetchCatalogues(ctx context.Context) error {
	gen := s.catSeq.Add(1)
	s.loading.Add(1)
	defer s.loading.Add(-1)

	cats, err := s.repo.ListCatalogues(ctx)
	var items []models.Item
	if err == nil {
		items, err = s.repo.ListItems(ctx)
	}
	var sizes []models.ItemSize
	if err == nil {
		sizes, err = s.repo.ListItemSizes(ctx)
	}
	if err != nil {
		s.fail(ctx, "fetch_catalogues", "Failed to fetch catalogues", err, nil)
		return fmt.Errorf("inventory: fetch catalogues: %w", err)
	}

	tree := Assemble(cats, items, sizes)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.catApplied {
		log.WithField("generation", gen).Debug("Discarding stale catalogue fetch")
		return nil
	}
	s.catApplied = gen
	s.catalogues = tree
	s.recompute()
	return nil
}

// Assemble nests items under their catalogue's four fixed sections and sizes
// under their item. Items with an unknown section tag are dropped.
func Assemble(cats []models.Catalogue, items []models.Item, sizes []models.ItemSize) []models.Catalogue {
	sizesByItem := make(map[string][]models.ItemSize)
	for _, sz := range sizes {
		sizesByItem[sz.ItemID] = append(sizesByItem[sz.ItemID], sz)
	}
	itemsByCat := make(map[string][]models.Item)
	for _, it := range items {
		itemsByCat[it.CatalogueID] = append(itemsByCat[it.CatalogueID], it)
	}

	out := make([]models.Catalogue, 0, len(cats))
	for _, c := range cats {
		sections := make([]models.Section, len(models.Sections))
		index := make(map[models.SectionType]int, len(models.Sections))
		for i, name := range models.Sections {
			sections[i] = models.Section{ID: c.ID + "-" + string(name), Name: name, Items: []models.Item{}}
			index[name] = i
		}
		for _, it := range itemsByCat[c.ID] {
			i, ok := index[it.SectionType]
			if !ok {
				log.WithFields(log.Fields{"item_id": it.ID, "section_type": it.SectionType}).Warn("Item has unknown section type, skipping")
				continue
			}
			it.Sizes = sizesByItem[it.ID]
			if it.Sizes == nil {
				it.Sizes = []models.ItemSize{}
			}
			sections[i].Items = append(sections[i].Items, it)
		}
		c.Sections = sections
		out = append(out, c)
	}
	return out
}

// FetchSales reloads the sales list, newest first. Failures are only logged.
func (s *Store) FetchSales(ctx context.Context) error {
	gen := s.saleSeq.Add(1)

	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("fetch_sales").Inc()
		log.WithError(err).Error("Error fetching sales")
		return fmt.Errorf("inventory: fetch sales: %w", err)
	}
	if sales == nil {
		sales = []models.Sale{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.saleApplied {
		return nil
	}
	s.saleApplied = gen
	s.sales = sales
	s.recompute()
	return nil
}

func (s *Store) AddCatalogue(ctx context.Context, in CatalogueInput) (string, error) {
	c := models.Catalogue{
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		SortOrder:   in.Order,
	}
	if err := s.repo.CreateCatalogue(ctx, &c); err != nil {
		s.fail(ctx, "add_catalogue", "Failed to add catalogue", err, nil)
		return "", err
	}
	s.FetchCatalogues(ctx)
	notify.Success(ctx, "Success", "Catalogue added successfully")
	return c.ID, nil
}

func (s *Store) UpdateCatalogue(ctx context.Context, id string, in CatalogueInput) error {
	fields := map[string]interface{}{
		"name":        in.Name,
		"description": in.Description,
		"image":       in.Image,
		"order":       in.Order,
	}
	if err := s.repo.UpdateCatalogue(ctx, id, fields); err != nil {
		s.fail(ctx, "update_catalogue", "Failed to update catalogue", err, log.Fields{"catalogue_id": id})
		return err
	}
	s.FetchCatalogues(ctx)
	notify.Success(ctx, "Success", "Catalogue updated successfully")
	return nil
}

// DeleteCatalogue removes the catalogue and cascades to its items and sizes.
func (s *Store) DeleteCatalogue(ctx context.Context, id string) error {
	if err := s.repo.DeleteCatalogue(ctx, id); err != nil {
		s.fail(ctx, "delete_catalogue", "Failed to delete catalogue", err, log.Fields{"catalogue_id": id})
		return err
	}
	s.FetchCatalogues(ctx)
	notify.Success(ctx, "Success", "Catalogue deleted successfully")
	return nil
}

// AddItem writes the item and its sizes in one transaction.
func (s *Store) AddItem(ctx context.Context, in ItemInput) (string, error) {
	if !in.SectionType.Valid() {
		s.fail(ctx, "add_item", "Failed to add item", ErrInvalidSection, log.Fields{"section_type": in.SectionType})
		return "", ErrInvalidSection
	}
	item := models.Item{
		CatalogueID: in.CatalogueID,
		Name:        in.Name,
		Material:    in.Material,
		Location:    in.Location,
		Stock:       in.Stock,
		Price:       in.Price,
		Image:       in.Image,
		SectionType: in.SectionType,
	}
	if err := s.repo.CreateItem(ctx, &item, sizeRows(in.Sizes)); err != nil {
		s.fail(ctx, "add_item", "Failed to add item", err, nil)
		return "", err
	}
	s.FetchCatalogues(ctx)
	notify.Success(ctx, "Success", "Item added successfully")
	return item.ID, nil
}

// UpdateItem rewrites the item's fields and, when in.Sizes is non-nil, replaces
// its size variants. Both happen in one transaction.
func (s *Store) UpdateItem(ctx context.Context, id string, in ItemInput) error {
	if !in.SectionType.Valid() {
		s.fail(ctx, "update_item", "Failed to update item", ErrInvalidSection, log.Fields{"item_id": id})
		return ErrInvalidSection
	}
	fields := map[string]interface{}{
		"name":         in.Name,
		"material":     in.Material,
		"location":     in.Location,
		"stock":        in.Stock,
		"price":        in.Price,
		"image":        in.Image,
		"section_type": in.SectionType,
	}
	if in.CatalogueID != "" {
		fields["catalogue_id"] = in.CatalogueID
	}
	var sizes []models.ItemSize
	if in.Sizes != nil {
		sizes = sizeRows(in.Sizes)
	}
	if err := s.repo.UpdateItem(ctx, id, fields, sizes); err != nil {
		s.fail(ctx, "update_item", "Failed to update item", err, log.Fields{"item_id": id})
		return err
	}
	s.FetchCatalogues(ctx)
	notify.Success(ctx, "Success", "Item updated successfully")
	return nil
}

func sizeRows(in []SizeInput) []models.ItemSize {
	out := make([]models.ItemSize, 0, len(in))
	for _, sz := range in {
		out = append(out, models.ItemSize{Size: sz.Size, Price: sz.Price, Stock: sz.Stock})
	}
	return out
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		s.fail(ctx, "delete_item", "Failed to delete item", err, log.Fields{"item_id": id})
		return err
	}
	s.FetchCatalogues(ctx)
	notify.Success(ctx, "Success", "Item deleted successfully")
	return nil
}

// UpdateStock lowers an item's stock by n, never below zero. A missing item is
// logged and treated as done.
func (s *Store) UpdateStock(ctx context.Context, itemID string, n int) error {
	found, err := s.repo.DecrementStock(ctx, itemID, n)
	if err != nil {
		metrics.StockDecrements.WithLabelValues("failed").Inc()
		metrics.StoreFailures.WithLabelValues("update_stock").Inc()
		log.WithError(err).WithField("item_id", itemID).Error("Error updating stock")
		return err
	}
	if found {
		metrics.StockDecrements.WithLabelValues("applied").Inc()
	} else {
		metrics.StockDecrements.WithLabelValues("missing").Inc()
		log.WithField("item_id", itemID).Warn("Stock update for unknown item")
	}
	s.FetchCatalogues(ctx)
	return nil
}

// AddSale records a sale by employeeID and decrements stock for every line, all
// in one transaction. The total is fixed at creation.
func (s *Store) AddSale(ctx context.Context, employeeID string, in SaleInput) (string, error) {
	if employeeID == "" {
		notify.Error(ctx, "Error", "User not authenticated")
		return "", ErrUnauthenticated
	}
	if len(in.Items) == 0 {
		notify.Error(ctx, "Error", "Cart is empty")
		return "", ErrEmptySale
	}
	for i, l := range in.Items {
		if l.Item.ID == "" || l.Quantity < 1 || l.Price < 0 {
			log.WithFields(log.Fields{"line": i, "item_id": l.Item.ID, "quantity": l.Quantity, "price": l.Price}).
				Warn("Rejected sale line")
			notify.Error(ctx, "Error", "Every item needs a quantity of at least 1 and a valid price")
			return "", fmt.Errorf("%w: line %d", ErrInvalidSaleLine, i+1)
		}
	}

	total := money.Total(in.Items,
		func(l models.CartLine) float64 { return l.Price },
		func(l models.CartLine) int { return l.Quantity })

	sale := models.Sale{
		EmployeeID:    employeeID,
		CustomerName:  optional(in.CustomerName),
		CustomerPhone: optional(in.CustomerPhone),
		TotalAmount:   total,
		Items:         make([]models.SaleLine, 0, len(in.Items)),
	}
	decrements := make(map[string]int)
	for _, l := range in.Items {
		sale.Items = append(sale.Items, models.SaleLine{
			ID:       l.ID,
			ItemID:   l.Item.ID,
			Name:     l.Item.Name,
			Size:     l.Size,
			Price:    l.Price,
			Quantity: l.Quantity,
		})
		decrements[l.Item.ID] += l.Quantity
	}

	missing, err := s.repo.CreateSale(ctx, &sale, decrements)
	if err != nil {
		s.fail(ctx, "add_sale", "Failed to record sale", err, log.Fields{"employee_id": employeeID})
		return "", err
	}
	metrics.StockDecrements.WithLabelValues("applied").Add(float64(len(decrements) - len(missing)))
	for _, id := range missing {
		metrics.StockDecrements.WithLabelValues("missing").Inc()
		log.WithFields(log.Fields{"sale_id": sale.ID, "item_id": id}).Warn("Sold item no longer exists, stock not adjusted")
	}
	metrics.SalesRecorded.Inc()
	metrics.SalesRevenue.Add(total)
	log.WithFields(log.Fields{"sale_id": sale.ID, "employee_id": employeeID, "total": total}).Info("Sale recorded")

	s.FetchCatalogues(ctx)
	s.FetchSales(ctx)
	notify.Success(ctx, "Sale Complete", "Sale recorded successfully. Total: "+format.Price(total))
	return sale.ID, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// CalculateDashboardStats recomputes every aggregate from the current mirrors.
func (s *Store) CalculateDashboardStats() DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recompute()
	return s.snapshot.Stats
}

// recompute must be called with mu held.
func (s *Store) recompute() {
	s.snapshot = Compute(s.catalogues, s.sales, s.clock(), s.metric)
}

func (s *Store) fail(ctx context.Context, op, message string, err error, fields log.Fields) {
	metrics.StoreFailures.WithLabelValues(op).Inc()
	log.WithError(err).WithFields(fields).WithField("op", op).Error(message)
	notify.Error(ctx, "Error", message)
}

func (s *Store) Catalogues() []models.Catalogue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogues
}

func (s *Store) Sales() []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sales
}

// Snapshot returns every derived aggregate at once.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Store) DashboardStats() DashboardStats { return s.Snapshot().Stats }
func (s *Store) SalesAnalytics() SalesAnalytics { return s.Snapshot().Analytics }
func (s *Store) BestSellers() []models.Item     { return s.Snapshot().BestSellers }
func (s *Store) LowStockItems() []models.Item   { return s.Snapshot().LowStockItems }

// Loading reports whether a catalogue fetch is in flight.
func (s *Store) Loading() bool {
	return s.loading.Load() > 0
}

// FindItem looks an item up in the current tree.
func (s *Store) FindItem(id string) (models.Item, models.Catalogue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.catalogues {
		for _, sec := range c.Sections {
			for _, it := range sec.Items {
				if it.ID == id {
					return it, c, true
				}
			}
		}
	}
	return models.Item{}, models.Catalogue{}, false
}

// Now is the store's clock in its configured location.
func (s *Store) Now() time.Time {
	return s.clock()
}
