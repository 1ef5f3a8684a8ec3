package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/go-storefront-api/internal/domain"
)

type OrderRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewOrderRepo returns a repository whose calls are each bounded by timeout.
func NewOrderRepo(db *gorm.DB, timeout time.Duration) *OrderRepo {
	return &OrderRepo{db: db, timeout: timeout}
}

// PlaceOrder writes the order, its items and the matching stock decrements
// in one transaction. Stock is taken with a conditional UPDATE so two
// concurrent orders can never both consume the last unit; if any item
// cannot be fulfilled the whole transaction is rolled back and an
// *domain.InsufficientStockError names the item.
func (r *OrderRepo) PlaceOrder(ctx context.Context, order *domain.Order) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return dbError("create order", err)
		}

		for i := range items {
			item := &items[i]
			if err := takeStock(tx, item); err != nil {
				return err
			}
			item.OrderID = order.ID
			if err := tx.Create(item).Error; err != nil {
				return dbError("create order item", err)
			}
		}
		return nil
	})
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) || errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrStorage) {
			return err
		}
		return dbError("place order", err)
	}
	return nil
}

func takeStock(tx *gorm.DB, item *domain.OrderItem) error {
	short := &domain.InsufficientStockError{
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Requested:   item.Quantity,
	}

	var exists int64
	if err := tx.Model(&domain.Product{}).Where("id = ?", item.ProductID).Count(&exists).Error; err != nil {
		return dbError("find product", err)
	}
	if exists == 0 {
		return short
	}

	res := tx.Model(&domain.Product{}).
		Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
	if res.Error != nil {
		return dbError("decrement stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return short
	}
	return nil
}

func (r *OrderRepo) CountByEmailSince(ctx context.Context, email string, since time.Time) (int64, error) {
	return r.countSince(ctx, "customer_email", email, since)
}

func (r *OrderRepo) CountByPhoneSince(ctx context.Context, phone string, since time.Time) (int64, error) {
	return r.countSince(ctx, "customer_phone", phone, since)
}

func (r *OrderRepo) countSince(ctx context.Context, column, value string, since time.Time) (int64, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where(column+" = ? AND created_at >= ?", value, since.UTC()).
		Count(&n).Error; err != nil {
		return 0, dbError("count orders", err)
	}
	return n, nil
}

// GetWithItems loads an order and its line items.
func (r *OrderRepo) GetWithItems(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		return nil, dbError("get order", err)
	}
	return &o, nil
}
