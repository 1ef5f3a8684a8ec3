package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const OrderStatusPending OrderStatus = "pending"

const (
	VerificationMethodAccount = "account"
	VerificationMethodGuest   = "guest"
)

// Order snapshots the customer's contact fields; guest orders have no AccountID.
type Order struct {
	ID                 string          `json:"id" gorm:"primaryKey;size:26"`
	OrderNumber        string          `json:"order_number" gorm:"uniqueIndex;size:50;not null"`
	AccountID          *string         `json:"account_id" gorm:"size:64;index"`
	CustomerEmail      string          `json:"customer_email" gorm:"size:120;index;not null"`
	CustomerPhone      string          `json:"customer_phone" gorm:"size:20;index;not null"`
	CustomerName       string          `json:"customer_name" gorm:"size:100;not null"`
	TotalAmount        decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Status             OrderStatus     `json:"status" gorm:"size:50;not null;default:pending"`
	IsGuestOrder       bool            `json:"is_guest_order" gorm:"not null;default:false"`
	UserVerified       bool            `json:"user_verified" gorm:"not null;default:false"`
	VerificationMethod string          `json:"verification_method" gorm:"size:50"`
	CreatedAt          time.Time       `json:"created_at" gorm:"index"`
	Items              []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem references a product by id only; name, price, size and color are
// copied at order time so later product edits do not rewrite history.
type OrderItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     string          `json:"order_id" gorm:"size:26;index;not null"`
	ProductID   uint            `json:"product_id" gorm:"not null"`
	ProductName string          `json:"product_name" gorm:"size:200;not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Size        *string         `json:"size" gorm:"size:50"`
	Color       *string         `json:"color" gorm:"size:50"`
}
