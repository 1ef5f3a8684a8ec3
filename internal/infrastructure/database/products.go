package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/go-storefront-api/internal/domain"
)

type ProductRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewProductRepo returns a repository whose calls are each bounded by timeout.
func NewProductRepo(db *gorm.DB, timeout time.Duration) *ProductRepo {
	return &ProductRepo{db: db, timeout: timeout}
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	var products []domain.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, dbError("list products", err)
	}
	return products, nil
}

// StockLevels returns the stock quantity of each existing product in ids.
// Unknown ids are absent from the map.
func (r *ProductRepo) StockLevels(ctx context.Context, ids []uint) (map[uint]int, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	var rows []struct {
		ID            uint
		StockQuantity int
	}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Select("id", "stock_quantity").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, dbError("stock levels", err)
	}
	levels := make(map[uint]int, len(rows))
	for _, row := range rows {
		levels[row.ID] = row.StockQuantity
	}
	return levels, nil
}
