// Package order places account and guest orders and reports guest order
// volume.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/go-storefront-api/internal/domain"
	"github.com/go-storefront-api/internal/pkg/id"
	"github.com/go-storefront-api/internal/pkg/metrics"
)

// Guest limit thresholds over the trailing LimitWindow.
const (
	LimitWindow          = 24 * time.Hour
	TooManyOrdersAt      = 3
	SuspiciousActivityAt = 5
)

type CustomerInfo struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Phone    string `json:"phone" validate:"required,max=20"`
	FullName string `json:"fullName" validate:"required,max=100"`
}

type ItemInput struct {
	ID       uint            `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required,max=200"`
	Quantity int             `json:"quantity" validate:"required,min=1"`
	Price    decimal.Decimal `json:"price"`
	Size     *string         `json:"size" validate:"omitempty,max=50"`
	Color    *string         `json:"color" validate:"omitempty,max=50"`
}

type PlaceOrderRequest struct {
	OrderNumber  string          `json:"orderNumber" validate:"required,max=50"`
	CustomerInfo CustomerInfo    `json:"customerInfo"`
	Items        []ItemInput     `json:"items" validate:"required,min=1,dive"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// Placed identifies a committed order.
type Placed struct {
	OrderID     string
	OrderNumber string
}

type LimitsRequest struct {
	Email string `json:"email" validate:"omitempty,max=120"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

type GuestLimits struct {
	TooManyOrders      bool    `json:"tooManyOrders"`
	SuspiciousActivity bool    `json:"suspiciousActivity"`
	Field              *string `json:"field"`
	EmailOrderCount    int64   `json:"emailOrderCount"`
	PhoneOrderCount    int64   `json:"phoneOrderCount"`
}

type OrderStore interface {
	PlaceOrder(ctx context.Context, o *domain.Order) error
	CountByEmailSince(ctx context.Context, email string, since time.Time) (int64, error)
	CountByPhoneSince(ctx context.Context, phone string, since time.Time) (int64, error)
}

type AccountStore interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
}

// GuestVerifier reports whether a guest email has a verified session.
type GuestVerifier interface {
	GuestVerified(ctx context.Context, email string) (bool, error)
}

type Service interface {
	PlaceAccountOrder(ctx context.Context, accountID string, req PlaceOrderRequest) (*Placed, error)
	PlaceGuestOrder(ctx context.Context, req PlaceOrderRequest) (*Placed, error)
	CheckGuestLimits(ctx context.Context, req LimitsRequest) (*GuestLimits, error)
}

// ServiceDeps holds the dependencies for the order service.
type ServiceDeps struct {
	Orders   OrderStore
	Accounts AccountStore
	Guests   GuestVerifier
	Log      *zap.Logger
	Now      func() time.Time
}

type service struct {
	orders   OrderStore
	accounts AccountStore
	guests   GuestVerifier
	log      *zap.Logger
	now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		orders:   deps.Orders,
		accounts: deps.Accounts,
		guests:   deps.Guests,
		log:      deps.Log,
		now:      deps.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) PlaceAccountOrder(ctx context.Context, accountID string, req PlaceOrderRequest) (*Placed, error) {
	placed, err := s.placeAccountOrder(ctx, accountID, req)
	metrics.OrdersTotal.WithLabelValues(domain.VerificationMethodAccount, outcome(err)).Inc()
	return placed, err
}

func (s *service) placeAccountOrder(ctx context.Context, accountID string, req PlaceOrderRequest) (*Placed, error) {
	if err := checkAmounts(req); err != nil {
		return nil, err
	}
	acct, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.IsVerified {
		return nil, fmt.Errorf("account verification required to place orders: %w", domain.ErrVerificationRequired)
	}

	o := newOrder(req)
	o.AccountID = &acct.ID
	o.IsGuestOrder = false
	o.VerificationMethod = domain.VerificationMethodAccount
	return s.place(ctx, o)
}

func (s *service) PlaceGuestOrder(ctx context.Context, req PlaceOrderRequest) (*Placed, error) {
	placed, err := s.placeGuestOrder(ctx, req)
	metrics.OrdersTotal.WithLabelValues(domain.VerificationMethodGuest, outcome(err)).Inc()
	return placed, err
}

func (s *service) placeGuestOrder(ctx context.Context, req PlaceOrderRequest) (*Placed, error) {
	if err := checkAmounts(req); err != nil {
		return nil, err
	}
	verified, err := s.guests.GuestVerified(ctx, strings.TrimSpace(req.CustomerInfo.Email))
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, fmt.Errorf("guest identity verification required: %w", domain.ErrVerificationRequired)
	}

	o := newOrder(req)
	o.IsGuestOrder = true
	o.VerificationMethod = domain.VerificationMethodGuest
	return s.place(ctx, o)
}

func (s *service) place(ctx context.Context, o *domain.Order) (*Placed, error) {
	if err := s.orders.PlaceOrder(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Bool("guest", o.IsGuestOrder),
		zap.Int("items", len(o.Items)))
	return &Placed{OrderID: o.ID, OrderNumber: o.OrderNumber}, nil
}

func newOrder(req PlaceOrderRequest) *domain.Order {
	items := make([]domain.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.OrderItem{
			ProductID:   it.ID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Size:        it.Size,
			Color:       it.Color,
		}
	}
	return &domain.Order{
		ID:            id.New(),
		OrderNumber:   strings.TrimSpace(req.OrderNumber),
		CustomerEmail: strings.TrimSpace(req.CustomerInfo.Email),
		CustomerPhone: strings.TrimSpace(req.CustomerInfo.Phone),
		CustomerName:  strings.TrimSpace(req.CustomerInfo.FullName),
		TotalAmount:   req.TotalAmount,
		Status:        domain.OrderStatusPending,
		UserVerified:  true,
		Items:         items,
	}
}

func checkAmounts(req PlaceOrderRequest) error {
	if req.TotalAmount.IsNegative() {
		return fmt.Errorf("totalAmount must not be negative: %w", domain.ErrBadRequest)
	}
	for _, it := range req.Items {
		if it.Price.IsNegative() {
			return fmt.Errorf("price of %s must not be negative: %w", it.Name, domain.ErrBadRequest)
		}
	}
	return nil
}

func (s *service) CheckGuestLimits(ctx context.Context, req LimitsRequest) (*GuestLimits, error) {
	email, phone := strings.TrimSpace(req.Email), strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return nil, fmt.Errorf("email or phone required: %w", domain.ErrBadRequest)
	}

	since := s.now().UTC().Add(-LimitWindow)
	var limits GuestLimits
	var err error
	if email != "" {
		if limits.EmailOrderCount, err = s.orders.CountByEmailSince(ctx, email, since); err != nil {
			return nil, err
		}
	}
	if phone != "" {
		if limits.PhoneOrderCount, err = s.orders.CountByPhoneSince(ctx, phone, since); err != nil {
			return nil, err
		}
	}

	limits.TooManyOrders = limits.EmailOrderCount >= TooManyOrdersAt || limits.PhoneOrderCount >= TooManyOrdersAt
	limits.SuspiciousActivity = limits.EmailOrderCount >= SuspiciousActivityAt || limits.PhoneOrderCount >= SuspiciousActivityAt
	switch {
	case limits.EmailOrderCount >= TooManyOrdersAt:
		f := "email"
		limits.Field = &f
	case limits.PhoneOrderCount >= TooManyOrdersAt:
		f := "phone"
		limits.Field = &f
	}
	return &limits, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "placed"
	case errors.Is(err, domain.ErrVerificationRequired):
		return "verification_required"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "error"
	}
}
