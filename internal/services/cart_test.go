package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/farmhub-ng/farm-marketplace/internal/cache"
	apperrors "github.com/farmhub-ng/farm-marketplace/internal/errors"
	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"github.com/farmhub-ng/farm-marketplace/internal/repositories/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memCache is an in-process stand-in for the redis cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string, value any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(raw, value)
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()

	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()

	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func yamProduct() *models.Product {
	return &models.Product{
		ID:            "prod-1",
		FarmerID:      "seller-1",
		Name:          "Yam Tubers",
		Price:         decimal.NewFromInt(1200),
		StockQuantity: 5,
	}
}

func storedCart(quantity int) *models.Cart {
	return &models.Cart{
		OwnerID: "owner-1",
		Lines: []models.CartLine{
			{ProductID: "prod-1", Name: "Yam Tubers", UnitPrice: decimal.NewFromInt(1200), Quantity: quantity},
		},
	}
}

func TestGetCart(t *testing.T) {

	t.Run("Success - Lazy Empty Cart", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(nil, sql.ErrNoRows).Once()
		svc := NewCartService(mockCartRepo, new(mocks.MockProductRepository), newMemCache())

		// Act
		cart, err := svc.GetCart(context.Background(), "owner-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "owner-1", cart.OwnerID)
		assert.True(t, cart.IsEmpty())
		mockCartRepo.AssertExpectations(t)
	})

	t.Run("Success - Second Read Served From Cache", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(storedCart(2), nil).Once()
		svc := NewCartService(mockCartRepo, new(mocks.MockProductRepository), newMemCache())

		_, err := svc.GetCart(context.Background(), "owner-1")
		require.NoError(t, err)

		// Act
		cart, err := svc.GetCart(context.Background(), "owner-1")

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Lines, 1)
		mockCartRepo.AssertNumberOfCalls(t, "GetCartByOwnerID", 1)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(nil, sql.ErrConnDone).Once()
		svc := NewCartService(mockCartRepo, new(mocks.MockProductRepository), newMemCache())

		// Act
		_, err := svc.GetCart(context.Background(), "owner-1")

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
	})
}

func TestCartAddItem(t *testing.T) {

	t.Run("Success - New Line", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(nil, sql.ErrNoRows).Once()
		mockCartRepo.On("UpsertCart", mock.Anything, mock.Anything).Return(nil).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, "prod-1").Return(yamProduct(), nil).Once()

		svc := NewCartService(mockCartRepo, mockProductRepo, newMemCache())

		// Act
		cart, err := svc.AddItem(context.Background(), "owner-1", "prod-1", 2)

		// Assert
		require.NoError(t, err)
		line, ok := cart.Line("prod-1")
		require.True(t, ok)
		assert.Equal(t, 2, line.Quantity)
		assert.Equal(t, "Yam Tubers", line.Name)
		assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(1200)))
		mockCartRepo.AssertExpectations(t)
	})

	t.Run("Success - Existing Line Merges Quantities", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(storedCart(2), nil).Once()
		mockCartRepo.On("UpsertCart", mock.Anything, mock.Anything).Return(nil).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, "prod-1").Return(yamProduct(), nil).Once()

		svc := NewCartService(mockCartRepo, mockProductRepo, newMemCache())

		// Act
		cart, err := svc.AddItem(context.Background(), "owner-1", "prod-1", 3)

		// Assert
		require.NoError(t, err)
		line, _ := cart.Line("prod-1")
		assert.Equal(t, 5, line.Quantity)
		assert.Len(t, cart.Lines, 1)
	})

	t.Run("Failure - Merged Quantity Exceeds Stock", func(t *testing.T) {

		// Arrange: 2 in the cart + 4 requested > 5 in stock.
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(storedCart(2), nil).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, "prod-1").Return(yamProduct(), nil).Once()

		svc := NewCartService(mockCartRepo, mockProductRepo, newMemCache())

		// Act
		_, err := svc.AddItem(context.Background(), "owner-1", "prod-1", 4)

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeOutOfStock))
		assert.Contains(t, err.Error(), "Only 5 of Yam Tubers left in stock")
		mockCartRepo.AssertNotCalled(t, "UpsertCart", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Unknown Product", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(nil, sql.ErrNoRows).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, "prod-404").Return(nil, sql.ErrNoRows).Once()

		svc := NewCartService(mockCartRepo, mockProductRepo, newMemCache())

		// Act
		_, err := svc.AddItem(context.Background(), "owner-1", "prod-404", 1)

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})

	t.Run("Failure - Invalid Quantity", func(t *testing.T) {

		// Arrange
		svc := NewCartService(new(mocks.MockCartRepository), new(mocks.MockProductRepository), newMemCache())

		// Act
		_, err := svc.AddItem(context.Background(), "owner-1", "prod-1", 0)

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	})
}

func TestApplyDelta(t *testing.T) {

	t.Run("Success - Increment", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(storedCart(2), nil).Once()
		mockCartRepo.On("UpsertCart", mock.Anything, mock.Anything).Return(nil).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, "prod-1").Return(yamProduct(), nil).Once()

		svc := NewCartService(mockCartRepo, mockProductRepo, newMemCache())

		// Act
		cart, err := svc.ApplyDelta(context.Background(), "owner-1", "prod-1", models.DeltaAdd)

		// Assert
		require.NoError(t, err)
		line, _ := cart.Line("prod-1")
		assert.Equal(t, 3, line.Quantity)
	})

	t.Run("Success - Decrement To Zero Removes The Line", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(storedCart(1), nil).Once()
		mockCartRepo.On("UpsertCart", mock.Anything, mock.Anything).Return(nil).Once()

		svc := NewCartService(mockCartRepo, new(mocks.MockProductRepository), newMemCache())

		// Act
		cart, err := svc.ApplyDelta(context.Background(), "owner-1", "prod-1", models.DeltaRemove)

		// Assert
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
	})

	t.Run("Failure - Increment Beyond Stock", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(storedCart(5), nil).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, "prod-1").Return(yamProduct(), nil).Once()

		svc := NewCartService(mockCartRepo, mockProductRepo, newMemCache())

		// Act
		_, err := svc.ApplyDelta(context.Background(), "owner-1", "prod-1", models.DeltaAdd)

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeOutOfStock))
	})

	t.Run("Failure - Line Not In Cart", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(storedCart(2), nil).Once()

		svc := NewCartService(mockCartRepo, new(mocks.MockProductRepository), newMemCache())

		// Act
		_, err := svc.ApplyDelta(context.Background(), "owner-1", "prod-9", models.DeltaRemove)

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})

	t.Run("Failure - Unknown Action", func(t *testing.T) {

		// Arrange
		svc := NewCartService(new(mocks.MockCartRepository), new(mocks.MockProductRepository), newMemCache())

		// Act
		_, err := svc.ApplyDelta(context.Background(), "owner-1", "prod-1", "double")

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	})
}

func TestCartRemoveItem(t *testing.T) {

	t.Run("Success", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(storedCart(2), nil).Once()
		mockCartRepo.On("UpsertCart", mock.Anything, mock.Anything).Return(nil).Once()

		svc := NewCartService(mockCartRepo, new(mocks.MockProductRepository), newMemCache())

		// Act
		cart, err := svc.RemoveItem(context.Background(), "owner-1", "prod-1")

		// Assert
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
		mockCartRepo.AssertExpectations(t)
	})

	t.Run("Success - Absent Line Is A No-Op", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(storedCart(2), nil).Once()

		svc := NewCartService(mockCartRepo, new(mocks.MockProductRepository), newMemCache())

		// Act
		cart, err := svc.RemoveItem(context.Background(), "owner-1", "prod-9")

		// Assert
		require.NoError(t, err)
		assert.Len(t, cart.Lines, 1)
		mockCartRepo.AssertNotCalled(t, "UpsertCart", mock.Anything, mock.Anything)
	})
}
