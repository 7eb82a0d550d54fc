package inventory

import (
	"context"
	"errors"
	"sort"

	"ss-uniforms/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("inventory: record not found")

// Repository is the data store the inventory Store mirrors.
type Repository interface {
	ListCatalogues(ctx context.Context) ([]models.Catalogue, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	ListItemSizes(ctx context.Context) ([]models.ItemSize, error)
	ListSales(ctx context.Context) ([]models.Sale, error)

	CreateCatalogue(ctx context.Context, c *models.Catalogue) error
	UpdateCatalogue(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteCatalogue(ctx context.Context, id string) error

	CreateItem(ctx context.Context, item *models.Item, sizes []models.ItemSize) error
	// UpdateItem replaces the item's sizes when sizes is non-nil.
	UpdateItem(ctx context.Context, id string, fields map[string]interface{}, sizes []models.ItemSize) error
	DeleteItem(ctx context.Context, id string) error

	// DecrementStock lowers stock by n, clamped at zero. found is false when no item has id.
	DecrementStock(ctx context.Context, id string, n int) (found bool, err error)
	// CreateSale inserts the sale and applies every decrement in one transaction.
	// It returns the ids of sold items that no longer exist.
	CreateSale(ctx context.Context, sale *models.Sale, decrements map[string]int) (missing []string, err error)
}

// GormRepository implements Repository over any gorm dialect.
type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) ListCatalogues(ctx context.Context) ([]models.Catalogue, error) {
	var out []models.Catalogue
	err := r.DB.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order("created_at").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	var out []models.Item
	err := r.DB.WithContext(ctx).Order("created_at").Find(&out).Error
	return out, err
}

func (r *GormRepository) ListItemSizes(ctx context.Context) ([]models.ItemSize, error) {
	var out []models.ItemSize
	err := r.DB.WithContext(ctx).Order("created_at").Find(&out).Error
	return out, err
}

func (r *GormRepository) ListSales(ctx context.Context) ([]models.Sale, error) {
	var out []models.Sale
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *GormRepository) CreateCatalogue(ctx context.Context, c *models.Catalogue) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepository) UpdateCatalogue(ctx context.Context, id string, fields map[string]interface{}) error {
	db := r.DB.WithContext(ctx)
	res := db.Model(&models.Catalogue{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return mustExist(db, &models.Catalogue{}, id)
	}
	return nil
}

// mustExist returns ErrNotFound when no row of model has id. Some drivers report
// zero affected rows for an update that changed nothing.
func mustExist(tx *gorm.DB, model interface{}, id string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCatalogue removes the catalogue together with its items and their sizes.
func (r *GormRepository) DeleteCatalogue(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		itemIDs := tx.Model(&models.Item{}).Select("id").Where("catalogue_id = ?", id)
		if err := tx.Where("item_id IN (?)", itemIDs).Delete(&models.ItemSize{}).Error; err != nil {
			return err
		}
		if err := tx.Where("catalogue_id = ?", id).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Catalogue{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormRepository) CreateItem(ctx context.Context, item *models.Item, sizes []models.ItemSize) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return insertSizes(tx, item.ID, sizes)
	})
}

func (r *GormRepository) UpdateItem(ctx context.Context, id string, fields map[string]interface{}, sizes []models.ItemSize) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Item{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := mustExist(tx, &models.Item{}, id); err != nil {
				return err
			}
		}
		if sizes == nil {
			return nil
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.ItemSize{}).Error; err != nil {
			return err
		}
		return insertSizes(tx, id, sizes)
	})
}

func insertSizes(tx *gorm.DB, itemID string, sizes []models.ItemSize) error {
	if len(sizes) == 0 {
		return nil
	}
	rows := make([]models.ItemSize, len(sizes))
	for i, s := range sizes {
		s.ID = ""
		s.ItemID = itemID
		rows[i] = s
	}
	return tx.Create(&rows).Error
}

func (r *GormRepository) DeleteItem(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.ItemSize{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Item{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormRepository) DecrementStock(ctx context.Context, id string, n int) (bool, error) {
	return decrement(r.DB.WithContext(ctx), id, n)
}

// decrement is a single UPDATE so concurrent sales never lose an adjustment.
func decrement(tx *gorm.DB, id string, n int) (bool, error) {
	res := tx.Model(&models.Item{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", n, n))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	if err := mustExist(tx, &models.Item{}, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *GormRepository) CreateSale(ctx context.Context, sale *models.Sale, decrements map[string]int) ([]string, error) {
	ids := make([]string, 0, len(decrements))
	for id := range decrements {
		ids = append(ids, id)
	}
	// Fixed order keeps two concurrent sales from locking rows in opposite order.
	sort.Strings(ids)

	var missing []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		missing = missing[:0]
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		for _, id := range ids {
			found, err := decrement(tx, id, decrements[id])
			if err != nil {
				return err
			}
			if !found {
				missing = append(missing, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return missing, nil
}
