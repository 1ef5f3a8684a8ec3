package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/go-storefront-api/internal/domain"
)

func seedCatalogue() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Beaded Necklace", Price: decimal.RequireFromString("1500.00"), StockQuantity: 12,
			Description: "Hand-strung glass bead necklace", Category: "jewelry", Material: "glass", Color: "red"},
		{ID: 2, Name: "Kiondo Bag", Price: decimal.RequireFromString("3200.00"), StockQuantity: 5,
			Description: "Woven sisal handbag with leather straps", Category: "bags", Material: "sisal", Color: "natural"},
		{ID: 3, Name: "Kitenge Dress", Price: decimal.RequireFromString("4500.00"), StockQuantity: 8,
			Description: "Wax print midi dress", Category: "clothing", Material: "cotton", Color: "multi"},
		{ID: 4, Name: "Brass Earrings", Price: decimal.RequireFromString("800.00"), StockQuantity: 20,
			Description: "Hammered brass drop earrings", Category: "jewelry", Material: "brass", Color: "gold"},
		{ID: 5, Name: "Maasai Shuka", Price: decimal.RequireFromString("2000.00"), StockQuantity: 0,
			Description: "Checked cotton blanket", Category: "home", Material: "cotton", Color: "red"},
	}
}

// SeedProducts inserts a small development catalogue. Rows that already
// exist are left untouched.
func SeedProducts(ctx context.Context, db *gorm.DB) error {
	products := seedCatalogue()
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}
