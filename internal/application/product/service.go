package product

import (
	"context"
	"fmt"
	"time"

	"github.com/go-storefront-api/internal/domain"
)

// Listing is the catalogue view of a product. Stock is reported under both
// stock_quantity and stock for older storefront clients.
type Listing struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	Stock         int       `json:"stock"`
	InStock       bool      `json:"inStock"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Material      string    `json:"material"`
	Color         string    `json:"color"`
	CreatedAt     time.Time `json:"created_at"`
}

type StockCheckRequest struct {
	ProductIDs []uint `json:"productIds"`
}

type Store interface {
	List(ctx context.Context) ([]domain.Product, error)
	StockLevels(ctx context.Context, ids []uint) (map[uint]int, error)
}

type Service interface {
	List(ctx context.Context) ([]Listing, error)
	// StockCheck maps every requested id to its stock; unknown ids map to 0.
	StockCheck(ctx context.Context, ids []uint) (map[uint]int, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]Listing, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, len(products))
	for _, p := range products {
		out = append(out, Listing{
			ID:            p.ID,
			Name:          p.Name,
			Price:         p.Price.InexactFloat64(),
			StockQuantity: p.StockQuantity,
			Stock:         p.StockQuantity,
			InStock:       p.StockQuantity > 0,
			Description:   p.Description,
			Category:      p.Category,
			Material:      p.Material,
			Color:         p.Color,
			CreatedAt:     p.CreatedAt,
		})
	}
	return out, nil
}

func (s *service) StockCheck(ctx context.Context, ids []uint) (map[uint]int, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("product IDs required: %w", domain.ErrBadRequest)
	}
	levels, err := s.store.StockLevels(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int, len(ids))
	for _, id := range ids {
		out[id] = levels[id]
	}
	return out, nil
}
