package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-storefront-api/internal/domain"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]domain.Product)
	return p, args.Error(1)
}

func (m *mockStore) StockLevels(ctx context.Context, ids []uint) (map[uint]int, error) {
	args := m.Called(ctx, ids)
	l, _ := args.Get(0).(map[uint]int)
	return l, args.Error(1)
}

func TestStockCheck_MissingIDsAreZero(t *testing.T) {
	st := &mockStore{}
	st.On("StockLevels", mock.Anything, []uint{1, 2, 999}).Return(map[uint]int{1: 4, 2: 0}, nil)

	got, err := NewService(st).StockCheck(context.Background(), []uint{1, 2, 999})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{1: 4, 2: 0, 999: 0}, got)
}

func TestStockCheck_EmptyIDs(t *testing.T) {
	_, err := NewService(&mockStore{}).StockCheck(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestStockCheck_StoreError(t *testing.T) {
	st := &mockStore{}
	st.On("StockLevels", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	_, err := NewService(st).StockCheck(context.Background(), []uint{1})
	assert.Error(t, err)
}

func TestList_MapsListing(t *testing.T) {
	st := &mockStore{}
	st.On("List", mock.Anything).Return([]domain.Product{
		{ID: 1, Name: "Necklace", Price: decimal.RequireFromString("1500.50"), StockQuantity: 3, Category: "jewelry"},
		{ID: 2, Name: "Shuka", Price: decimal.NewFromInt(2000), StockQuantity: 0},
	}, nil)

	got, err := NewService(st).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1500.5, got[0].Price)
	assert.Equal(t, 3, got[0].Stock)
	assert.True(t, got[0].InStock)
	assert.False(t, got[1].InStock)
}
