package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/go-storefront-api/internal/domain"
)

type AccountRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewAccountRepo returns a repository whose calls are each bounded by timeout.
func NewAccountRepo(db *gorm.DB, timeout time.Duration) *AccountRepo {
	return &AccountRepo{db: db, timeout: timeout}
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return dbError("create account", err)
	}
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, id string) (*domain.Account, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	var a domain.Account
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, dbError("get account", err)
	}
	return &a, nil
}

// MarkVerified sets is_verified and verified_at on the account.
func (r *AccountRepo) MarkVerified(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_verified": true, "verified_at": at.UTC()})
	if res.Error != nil {
		return dbError("mark account verified", res.Error)
	}
	if res.RowsAffected == 0 {
		return dbError("mark account verified", gorm.ErrRecordNotFound)
	}
	return nil
}
