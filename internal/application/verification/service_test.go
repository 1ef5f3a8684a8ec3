package verification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-storefront-api/internal/domain"
	"github.com/go-storefront-api/internal/infrastructure/kvstore"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Get(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountStore) MarkVerified(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Send(ctx context.Context, ch domain.Channel, dest, code string) error {
	return m.Called(ctx, ch, dest, code).Error(0)
}

// recordingStore wraps the in-process store and remembers the last TTL
// written per key.
type recordingStore struct {
	*kvstore.MemoryStore
	mu   sync.Mutex
	ttls map[string]time.Duration
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: kvstore.NewMemoryStore(), ttls: map[string]time.Duration{}}
}

func (r *recordingStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.mu.Lock()
	r.ttls[key] = ttl
	r.mu.Unlock()
	return r.MemoryStore.SetWithExpiry(ctx, key, value, ttl)
}

func (r *recordingStore) ttl(key string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttls[key]
}

func (r *recordingStore) session(t *testing.T, key string) (*domain.VerificationSession, bool) {
	t.Helper()
	raw, err := r.Get(context.Background(), key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false
	}
	require.NoError(t, err)
	var s domain.VerificationSession
	require.NoError(t, json.Unmarshal(raw, &s))
	return &s, true
}

func (r *recordingStore) put(t *testing.T, key string, s domain.VerificationSession) {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, r.SetWithExpiry(context.Background(), key, raw, CodeTTL))
}

// --- builder ---

var fixedNow = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func newService(store Store, accounts AccountStore, d Dispatcher) *service {
	return NewService(ServiceDeps{
		Store:        store,
		Accounts:     accounts,
		Dispatcher:   d,
		Now:          func() time.Time { return fixedNow },
		GenerateCode: func() (string, error) { return "012345", nil },
	}).(*service)
}

func strPtr(s string) *string { return &s }

// --- RequestGuestCode ---

func TestRequestGuestCode_StoresAndDispatches(t *testing.T) {
	store := newRecordingStore()
	d := &mockDispatcher{}
	d.On("Send", mock.Anything, domain.ChannelEmail, "a@b.com", "012345").Return(nil)
	svc := newService(store, nil, d)

	ch, err := svc.RequestGuestCode(context.Background(), GuestCodeRequest{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelEmail, ch, "method defaults to email")

	sess, ok := store.session(t, "guest_verify:email:a@b.com")
	require.True(t, ok)
	assert.Equal(t, domain.VerificationSession{Code: "012345"}, *sess)
	assert.Equal(t, CodeTTL, store.ttl("guest_verify:email:a@b.com"))
	d.AssertExpectations(t)
}

func TestRequestGuestCode_Phone(t *testing.T) {
	store := newRecordingStore()
	d := &mockDispatcher{}
	d.On("Send", mock.Anything, domain.ChannelPhone, "0712345678", "012345").Return(nil)
	svc := newService(store, nil, d)

	_, err := svc.RequestGuestCode(context.Background(), GuestCodeRequest{Method: domain.ChannelPhone, Phone: "0712345678"})
	require.NoError(t, err)
	_, ok := store.session(t, "guest_verify:phone:0712345678")
	assert.True(t, ok)
}

func TestRequestGuestCode_Validation(t *testing.T) {
	cases := map[string]GuestCodeRequest{
		"nothing":             {},
		"email without email": {Method: domain.ChannelEmail, Phone: "0712345678"},
		"phone without phone": {Method: domain.ChannelPhone, Email: "a@b.com"},
		"unknown method":      {Method: "fax", Email: "a@b.com"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			store := newRecordingStore()
			svc := newService(store, nil, &mockDispatcher{})
			_, err := svc.RequestGuestCode(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrBadRequest)
			assert.Zero(t, store.Len(), "no session may be written on invalid input")
		})
	}
}

func TestRequestGuestCode_DispatchFailureKeepsSession(t *testing.T) {
	store := newRecordingStore()
	d := &mockDispatcher{}
	d.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrDispatch)
	svc := newService(store, nil, d)

	_, err := svc.RequestGuestCode(context.Background(), GuestCodeRequest{Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrDispatch)

	_, ok := store.session(t, "guest_verify:email:a@b.com")
	assert.True(t, ok)
}

func TestRequestGuestCode_OverwritesExistingSession(t *testing.T) {
	store := newRecordingStore()
	store.put(t, "guest_verify:email:a@b.com", domain.VerificationSession{Code: "999999", Attempts: 3})
	d := &mockDispatcher{}
	d.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := newService(store, nil, d)

	_, err := svc.RequestGuestCode(context.Background(), GuestCodeRequest{Email: "a@b.com"})
	require.NoError(t, err)
	sess, _ := store.session(t, "guest_verify:email:a@b.com")
	assert.Equal(t, "012345", sess.Code)
	assert.Zero(t, sess.Attempts)
}

// --- SubmitGuestCode ---

func TestSubmitGuestCode_Success(t *testing.T) {
	store := newRecordingStore()
	store.put(t, "guest_verify:email:a@b.com", domain.VerificationSession{Code: "012345", Attempts: 2})
	svc := newService(store, nil, nil)

	require.NoError(t, svc.SubmitGuestCode(context.Background(), GuestSubmitRequest{Code: "012345", Email: "a@b.com"}))

	sess, ok := store.session(t, "guest_verify:email:a@b.com")
	require.True(t, ok)
	assert.True(t, sess.Verified)
	assert.Equal(t, VerifiedTTL, store.ttl("guest_verify:email:a@b.com"))

	verified, err := svc.GuestVerified(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestSubmitGuestCode_NoSession(t *testing.T) {
	svc := newService(newRecordingStore(), nil, nil)
	err := svc.SubmitGuestCode(context.Background(), GuestSubmitRequest{Code: "012345", Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestSubmitGuestCode_MissingIdentity(t *testing.T) {
	svc := newService(newRecordingStore(), nil, nil)
	err := svc.SubmitGuestCode(context.Background(), GuestSubmitRequest{Code: "012345", Method: domain.ChannelPhone, Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestSubmitGuestCode_ReportsMissingDestination(t *testing.T) {
	svc := newService(newRecordingStore(), nil, nil)
	err := svc.SubmitGuestCode(context.Background(), GuestSubmitRequest{Code: "012345", Method: domain.ChannelEmail, Phone: "0712345678"})
	require.ErrorIs(t, err, domain.ErrBadRequest)
	assert.EqualError(t, err, "email required for method email: bad request")

	err = svc.SubmitGuestCode(context.Background(), GuestSubmitRequest{Code: "012345", Method: "fax", Email: "a@b.com"})
	require.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Contains(t, err.Error(), "invalid verification method")
}

func TestSubmitGuestCode_WrongCodesThenLockout(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	key := "guest_verify:email:a@b.com"
	store.put(t, key, domain.VerificationSession{Code: "012345"})
	svc := newService(store, nil, nil)
	wrong := GuestSubmitRequest{Code: "000000", Email: "a@b.com"}

	for i := 1; i <= MaxAttempts-1; i++ {
		err := svc.SubmitGuestCode(ctx, wrong)
		require.ErrorIs(t, err, domain.ErrInvalidCode, "attempt %d", i)
		sess, ok := store.session(t, key)
		require.True(t, ok)
		assert.Equal(t, i, sess.Attempts)
		assert.Equal(t, CodeTTL, store.ttl(key))
	}

	err := svc.SubmitGuestCode(ctx, wrong)
	require.ErrorIs(t, err, domain.ErrTooManyAttempts)
	_, ok := store.session(t, key)
	assert.False(t, ok, "session deleted on lockout")

	// Even the right code is now too late.
	err = svc.SubmitGuestCode(ctx, GuestSubmitRequest{Code: "012345", Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestSubmitGuestCode_ExhaustedSessionIsDeleted(t *testing.T) {
	store := newRecordingStore()
	key := "guest_verify:email:a@b.com"
	store.put(t, key, domain.VerificationSession{Code: "012345", Attempts: MaxAttempts})
	svc := newService(store, nil, nil)

	err := svc.SubmitGuestCode(context.Background(), GuestSubmitRequest{Code: "012345", Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)
	_, ok := store.session(t, key)
	assert.False(t, ok)
}

func TestSubmitGuestCode_ConcurrentWrongCodes(t *testing.T) {
	store := newRecordingStore()
	store.put(t, "guest_verify:email:a@b.com", domain.VerificationSession{Code: "012345"})
	svc := newService(store, nil, nil)

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.SubmitGuestCode(context.Background(), GuestSubmitRequest{Code: "999999", Email: "a@b.com"})
		}(i)
	}
	wg.Wait()

	var invalid, tooMany, expired int
	for _, err := range errs {
		switch {
		case errors.Is(err, domain.ErrInvalidCode):
			invalid++
		case errors.Is(err, domain.ErrTooManyAttempts):
			tooMany++
		case errors.Is(err, domain.ErrSessionExpired):
			expired++
		}
	}
	assert.Equal(t, MaxAttempts-1, invalid)
	assert.Equal(t, 1, tooMany)
	assert.Equal(t, n-MaxAttempts, expired)
	assert.Zero(t, svc.locks.size())
}

func TestGuestVerified_PendingSession(t *testing.T) {
	store := newRecordingStore()
	store.put(t, "guest_verify:email:a@b.com", domain.VerificationSession{Code: "012345"})
	svc := newService(store, nil, nil)

	ok, err := svc.GuestVerified(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.GuestVerified(context.Background(), "nobody@b.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad_UnreadableSessionIsExpired(t *testing.T) {
	store := newRecordingStore()
	require.NoError(t, store.SetWithExpiry(context.Background(), "guest_verify:email:a@b.com", []byte("{"), CodeTTL))
	svc := newService(store, nil, nil)

	err := svc.SubmitGuestCode(context.Background(), GuestSubmitRequest{Code: "012345", Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Zero(t, store.Len())
}

// --- account flow ---

func TestRequestAccountCode_Email(t *testing.T) {
	store := newRecordingStore()
	accounts := &mockAccountStore{}
	accounts.On("Get", mock.Anything, "u1").Return(&domain.Account{ID: "u1", Email: "u1@b.com"}, nil)
	d := &mockDispatcher{}
	d.On("Send", mock.Anything, domain.ChannelEmail, "u1@b.com", "012345").Return(nil)
	svc := newService(store, accounts, d)

	ch, err := svc.RequestAccountCode(context.Background(), "u1", AccountCodeRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelEmail, ch)
	_, ok := store.session(t, "account_verify:u1:email")
	assert.True(t, ok)
	d.AssertExpectations(t)
}

func TestRequestAccountCode_PhoneMissing(t *testing.T) {
	store := newRecordingStore()
	accounts := &mockAccountStore{}
	accounts.On("Get", mock.Anything, "u1").Return(&domain.Account{ID: "u1", Email: "u1@b.com"}, nil)
	svc := newService(store, accounts, &mockDispatcher{})

	_, err := svc.RequestAccountCode(context.Background(), "u1", AccountCodeRequest{Method: domain.ChannelPhone})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Zero(t, store.Len())
}

func TestRequestAccountCode_Phone(t *testing.T) {
	store := newRecordingStore()
	accounts := &mockAccountStore{}
	accounts.On("Get", mock.Anything, "u1").
		Return(&domain.Account{ID: "u1", Email: "u1@b.com", Phone: strPtr("0712345678")}, nil)
	d := &mockDispatcher{}
	d.On("Send", mock.Anything, domain.ChannelPhone, "0712345678", "012345").Return(nil)
	svc := newService(store, accounts, d)

	_, err := svc.RequestAccountCode(context.Background(), "u1", AccountCodeRequest{Method: domain.ChannelPhone})
	require.NoError(t, err)
	_, ok := store.session(t, "account_verify:u1:phone")
	assert.True(t, ok)
}

func TestRequestAccountCode_UnknownAccount(t *testing.T) {
	accounts := &mockAccountStore{}
	accounts.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	svc := newService(newRecordingStore(), accounts, &mockDispatcher{})

	_, err := svc.RequestAccountCode(context.Background(), "ghost", AccountCodeRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitAccountCode_SuccessDeletesSession(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	store.put(t, "account_verify:u1:email", domain.VerificationSession{Code: "012345"})
	accounts := &mockAccountStore{}
	accounts.On("MarkVerified", mock.Anything, "u1", fixedNow).Return(nil).Once()
	svc := newService(store, accounts, nil)

	require.NoError(t, svc.SubmitAccountCode(ctx, "u1", AccountSubmitRequest{Code: "012345"}))
	_, ok := store.session(t, "account_verify:u1:email")
	assert.False(t, ok)

	err := svc.SubmitAccountCode(ctx, "u1", AccountSubmitRequest{Code: "012345"})
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	accounts.AssertExpectations(t)
}

func TestSubmitAccountCode_PersistFailureKeepsSession(t *testing.T) {
	store := newRecordingStore()
	store.put(t, "account_verify:u1:email", domain.VerificationSession{Code: "012345"})
	accounts := &mockAccountStore{}
	accounts.On("MarkVerified", mock.Anything, "u1", fixedNow).Return(domain.ErrStorage)
	svc := newService(store, accounts, nil)

	err := svc.SubmitAccountCode(context.Background(), "u1", AccountSubmitRequest{Code: "012345"})
	assert.ErrorIs(t, err, domain.ErrStorage)
	_, ok := store.session(t, "account_verify:u1:email")
	assert.True(t, ok)
}

func TestSubmitAccountCode_WrongCode(t *testing.T) {
	store := newRecordingStore()
	store.put(t, "account_verify:u1:phone", domain.VerificationSession{Code: "012345"})
	accounts := &mockAccountStore{}
	svc := newService(store, accounts, nil)

	err := svc.SubmitAccountCode(context.Background(), "u1", AccountSubmitRequest{Code: "1", Method: domain.ChannelPhone})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	sess, _ := store.session(t, "account_verify:u1:phone")
	assert.Equal(t, 1, sess.Attempts)
	accounts.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestKeyLocks_ReleaseDropsEntry(t *testing.T) {
	l := newKeyLocks()
	unlock := l.lock("k")
	assert.Equal(t, 1, l.size())
	unlock()
	assert.Zero(t, l.size())
}
