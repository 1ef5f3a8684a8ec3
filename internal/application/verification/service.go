// Package verification implements the one-time-code session lifecycle for
// guests and accounts: NONE -> PENDING -> VERIFIED.
package verification

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/go-storefront-api/internal/domain"
	"github.com/go-storefront-api/internal/pkg/code"
	"github.com/go-storefront-api/internal/pkg/metrics"
)

const (
	// CodeTTL is the lifetime of a pending session. Every failed submission
	// re-stores the session with a fresh CodeTTL.
	CodeTTL = 600 * time.Second
	// VerifiedTTL is how long a verified guest session stays usable for
	// placing an order.
	VerifiedTTL = 3600 * time.Second
	// MaxAttempts is the number of wrong submissions that ends a session.
	MaxAttempts = 5
)

const (
	flowGuest   = "guest"
	flowAccount = "account"
)

type GuestCodeRequest struct {
	Method domain.Channel `json:"method" validate:"omitempty,oneof=email phone"`
	Email  string         `json:"email" validate:"omitempty,email,max=120"`
	Phone  string         `json:"phone" validate:"omitempty,max=20"`
}

type GuestSubmitRequest struct {
	Code   string         `json:"code" validate:"required"`
	Method domain.Channel `json:"method" validate:"omitempty,oneof=email phone"`
	Email  string         `json:"email" validate:"omitempty,email,max=120"`
	Phone  string         `json:"phone" validate:"omitempty,max=20"`
}

type AccountCodeRequest struct {
	Method domain.Channel `json:"method" validate:"omitempty,oneof=email phone"`
}

type AccountSubmitRequest struct {
	Code   string         `json:"code" validate:"required"`
	Method domain.Channel `json:"method" validate:"omitempty,oneof=email phone"`
}

// Store is the verification session store.
type Store interface {
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type AccountStore interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
	MarkVerified(ctx context.Context, id string, at time.Time) error
}

// Dispatcher delivers a code over a channel.
type Dispatcher interface {
	Send(ctx context.Context, ch domain.Channel, destination, code string) error
}

type Service interface {
	// RequestGuestCode issues a code to the guest's email or phone and
	// returns the channel used.
	RequestGuestCode(ctx context.Context, req GuestCodeRequest) (domain.Channel, error)
	SubmitGuestCode(ctx context.Context, req GuestSubmitRequest) error
	RequestAccountCode(ctx context.Context, accountID string, req AccountCodeRequest) (domain.Channel, error)
	SubmitAccountCode(ctx context.Context, accountID string, req AccountSubmitRequest) error
	// GuestVerified reports whether a verified email session exists.
	GuestVerified(ctx context.Context, email string) (bool, error)
}

// ServiceDeps holds the dependencies for the verification service.
// Now and GenerateCode default to time.Now and code.Generate.
type ServiceDeps struct {
	Store        Store
	Accounts     AccountStore
	Dispatcher   Dispatcher
	Log          *zap.Logger
	Now          func() time.Time
	GenerateCode func() (string, error)
}

type service struct {
	store      Store
	accounts   AccountStore
	dispatcher Dispatcher
	log        *zap.Logger
	now        func() time.Time
	generate   func() (string, error)
	locks      *keyLocks
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:      deps.Store,
		accounts:   deps.Accounts,
		dispatcher: deps.Dispatcher,
		log:        deps.Log,
		now:        deps.Now,
		generate:   deps.GenerateCode,
		locks:      newKeyLocks(),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.generate == nil {
		s.generate = code.Generate
	}
	return s
}

func guestKey(ch domain.Channel, identity string) string {
	return "guest_verify:" + string(ch) + ":" + identity
}

func accountKey(accountID string, ch domain.Channel) string {
	return "account_verify:" + accountID + ":" + string(ch)
}

// method applies the email default for an omitted method.
func method(m domain.Channel) domain.Channel {
	if m == "" {
		return domain.ChannelEmail
	}
	return m
}

// guestDestination picks the identity addressed by the method.
func guestDestination(m domain.Channel, email, phone string) (string, error) {
	email, phone = strings.TrimSpace(email), strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return "", fmt.Errorf("email or phone required: %w", domain.ErrBadRequest)
	}
	switch m {
	case domain.ChannelEmail:
		if email == "" {
			return "", fmt.Errorf("email required for method email: %w", domain.ErrBadRequest)
		}
		return email, nil
	case domain.ChannelPhone:
		if phone == "" {
			return "", fmt.Errorf("phone required for method phone: %w", domain.ErrBadRequest)
		}
		return phone, nil
	default:
		return "", fmt.Errorf("invalid verification method %q: %w", m, domain.ErrBadRequest)
	}
}

func (s *service) RequestGuestCode(ctx context.Context, req GuestCodeRequest) (domain.Channel, error) {
	m := method(req.Method)
	dest, err := guestDestination(m, req.Email, req.Phone)
	if err != nil {
		return "", err
	}
	err = s.issue(ctx, guestKey(m, dest), m, dest)
	metrics.CodeRequestsTotal.WithLabelValues(flowGuest, string(m), outcome(err)).Inc()
	return m, err
}

func (s *service) RequestAccountCode(ctx context.Context, accountID string, req AccountCodeRequest) (domain.Channel, error) {
	m := method(req.Method)
	if m != domain.ChannelEmail && m != domain.ChannelPhone {
		return "", fmt.Errorf("invalid verification method %q: %w", m, domain.ErrBadRequest)
	}
	acct, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return "", err
	}

	dest := acct.Email
	if m == domain.ChannelPhone {
		if acct.Phone == nil || strings.TrimSpace(*acct.Phone) == "" {
			return "", fmt.Errorf("phone number not available for this account: %w", domain.ErrBadRequest)
		}
		dest = *acct.Phone
	}

	err = s.issue(ctx, accountKey(accountID, m), m, dest)
	metrics.CodeRequestsTotal.WithLabelValues(flowAccount, string(m), outcome(err)).Inc()
	return m, err
}

// issue stores a fresh PENDING session, replacing any existing one, then
// dispatches the code. The session is kept even when dispatch fails so the
// code stays valid for its window.
func (s *service) issue(ctx context.Context, key string, ch domain.Channel, dest string) error {
	c, err := s.generate()
	if err != nil {
		return err
	}

	unlock := s.locks.lock(key)
	err = s.save(ctx, key, &domain.VerificationSession{Code: c}, CodeTTL)
	unlock()
	if err != nil {
		return err
	}

	return s.dispatcher.Send(ctx, ch, dest, c)
}

func (s *service) SubmitGuestCode(ctx context.Context, req GuestSubmitRequest) error {
	m := method(req.Method)
	dest, err := guestDestination(m, req.Email, req.Phone)
	if err != nil {
		return err
	}
	key := guestKey(m, dest)

	err = s.submit(ctx, key, req.Code, func(sess *domain.VerificationSession) error {
		sess.Verified = true
		return s.save(ctx, key, sess, VerifiedTTL)
	})
	metrics.CodeSubmissionsTotal.WithLabelValues(flowGuest, submitOutcome(err)).Inc()
	return err
}

func (s *service) SubmitAccountCode(ctx context.Context, accountID string, req AccountSubmitRequest) error {
	m := method(req.Method)
	if m != domain.ChannelEmail && m != domain.ChannelPhone {
		return fmt.Errorf("invalid verification method %q: %w", m, domain.ErrBadRequest)
	}
	key := accountKey(accountID, m)

	err := s.submit(ctx, key, req.Code, func(*domain.VerificationSession) error {
		if err := s.accounts.MarkVerified(ctx, accountID, s.now().UTC()); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, key); err != nil {
			// The account is verified; a lingering session only expires.
			s.log.Warn("failed to delete verification session", zap.String("key", key), zap.Error(err))
		}
		return nil
	})
	metrics.CodeSubmissionsTotal.WithLabelValues(flowAccount, submitOutcome(err)).Inc()
	return err
}

// submit runs the attempt-counting check for one session under its key lock.
// onMatch is called with the loaded session when the code matches.
func (s *service) submit(ctx context.Context, key, submitted string, onMatch func(*domain.VerificationSession) error) error {
	unlock := s.locks.lock(key)
	defer unlock()

	sess, err := s.load(ctx, key)
	if err != nil {
		return err
	}

	if sess.Attempts >= MaxAttempts {
		s.drop(ctx, key)
		return fmt.Errorf("request a new code: %w", domain.ErrTooManyAttempts)
	}

	if subtle.ConstantTimeCompare([]byte(sess.Code), []byte(submitted)) == 1 {
		return onMatch(sess)
	}

	sess.Attempts++
	if sess.Attempts >= MaxAttempts {
		s.drop(ctx, key)
		return fmt.Errorf("request a new code: %w", domain.ErrTooManyAttempts)
	}
	if err := s.save(ctx, key, sess, CodeTTL); err != nil {
		return err
	}
	return domain.ErrInvalidCode
}

func (s *service) GuestVerified(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	sess, err := s.load(ctx, guestKey(domain.ChannelEmail, email))
	if errors.Is(err, domain.ErrSessionExpired) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sess.Verified, nil
}

// load reads a session. A missing, expired or unreadable session is
// reported as ErrSessionExpired.
func (s *service) load(ctx context.Context, key string) (*domain.VerificationSession, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w: %w", domain.ErrStorage, err)
	}
	var sess domain.VerificationSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.log.Warn("discarding unreadable verification session", zap.String("key", key), zap.Error(err))
		s.drop(ctx, key)
		return nil, domain.ErrSessionExpired
	}
	return &sess, nil
}

func (s *service) save(ctx context.Context, key string, sess *domain.VerificationSession, ttl time.Duration) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.SetWithExpiry(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("save session: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func (s *service) drop(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete verification session", zap.String("key", key), zap.Error(err))
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, domain.ErrDispatch):
		return "dispatch_failed"
	default:
		return "error"
	}
}

func submitOutcome(err error) string {
	switch {
	case err == nil:
		return "verified"
	case errors.Is(err, domain.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "too_many_attempts"
	case errors.Is(err, domain.ErrSessionExpired):
		return "expired"
	default:
		return "error"
	}
}
