package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	apperrors "github.com/farmhub-ng/farm-marketplace/internal/errors"
	"github.com/farmhub-ng/farm-marketplace/internal/models"
	repository "github.com/farmhub-ng/farm-marketplace/internal/repositories"
	"github.com/farmhub-ng/farm-marketplace/internal/repositories/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) SendOrderConfirmation(ctx context.Context, toEmail string, order *models.Order) error {
	args := m.Called(ctx, toEmail, order)
	return args.Error(0)
}

func checkoutCart() *models.Cart {
	return &models.Cart{
		OwnerID: "owner-1",
		Lines: []models.CartLine{
			{ProductID: "prod-1", Name: "Yam Tubers", UnitPrice: decimal.NewFromInt(1200), Quantity: 2},
			{ProductID: "prod-2", Name: "Palm Oil 1L", UnitPrice: decimal.NewFromInt(1800), Quantity: 1},
		},
	}
}

func TestPlaceOrder(t *testing.T) {

	t.Run("Success", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(checkoutCart(), nil).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, "prod-1").
			Return(&models.Product{ID: "prod-1", Name: "Yam Tubers", StockQuantity: 5}, nil).Once()
		mockProductRepo.On("GetProductByID", mock.Anything, "prod-2").
			Return(&models.Product{ID: "prod-2", Name: "Palm Oil 1L", StockQuantity: 3}, nil).Once()

		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("CheckoutOrder", mock.Anything, mock.Anything).Return(nil).Once()

		mockEmail := new(mockEmailService)
		mockEmail.On("SendOrderConfirmation", mock.Anything, "adaeze@example.com", mock.Anything).Return(nil).Once()

		svc := NewOrderService(mockOrderRepo, mockCartRepo, mockProductRepo, newMemCache(), mockEmail)

		// Act
		order, err := svc.PlaceOrder(context.Background(), "owner-1", "Adaeze", "adaeze@example.com")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, "owner-1", order.BuyerID)
		assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(4200)), "expected 4200, got %s", order.TotalPrice)
		mockCartRepo.AssertExpectations(t)
		mockOrderRepo.AssertExpectations(t)
		mockProductRepo.AssertExpectations(t)
		mockEmail.AssertExpectations(t)
	})

	t.Run("Success - Email Failure Does Not Void The Order", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(checkoutCart(), nil).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, mock.Anything).
			Return(&models.Product{StockQuantity: 10}, nil)

		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("CheckoutOrder", mock.Anything, mock.Anything).Return(nil).Once()

		mockEmail := new(mockEmailService)
		mockEmail.On("SendOrderConfirmation", mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError).Once()

		svc := NewOrderService(mockOrderRepo, mockCartRepo, mockProductRepo, newMemCache(), mockEmail)

		// Act
		order, err := svc.PlaceOrder(context.Background(), "owner-1", "Adaeze", "adaeze@example.com")

		// Assert
		require.NoError(t, err)
		require.NotNil(t, order)
	})

	t.Run("Failure - Empty Cart", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(nil, sql.ErrNoRows).Once()

		svc := NewOrderService(new(mocks.MockOrderRepository), mockCartRepo,
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		_, err := svc.PlaceOrder(context.Background(), "owner-1", "Adaeze", "")

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest))
		assert.Contains(t, err.Error(), "Cannot place an order with an empty cart")
	})

	t.Run("Failure - Insufficient Stock In Pre-Check", func(t *testing.T) {

		// Arrange
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(checkoutCart(), nil).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, "prod-1").
			Return(&models.Product{ID: "prod-1", Name: "Yam Tubers", StockQuantity: 1}, nil).Once()

		mockOrderRepo := new(mocks.MockOrderRepository)

		svc := NewOrderService(mockOrderRepo, mockCartRepo, mockProductRepo, newMemCache(), nil)

		// Act
		_, err := svc.PlaceOrder(context.Background(), "owner-1", "Adaeze", "")

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeOutOfStock))
		mockOrderRepo.AssertNotCalled(t, "CheckoutOrder", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Stock Raced Away During Checkout", func(t *testing.T) {

		// Arrange: the checkout transaction loses the race after the
		// pre-check passed and rolls the whole order back.
		mockCartRepo := new(mocks.MockCartRepository)
		mockCartRepo.On("GetCartByOwnerID", mock.Anything, "owner-1").Return(checkoutCart(), nil).Once()

		mockProductRepo := new(mocks.MockProductRepository)
		mockProductRepo.On("GetProductByID", mock.Anything, mock.Anything).
			Return(&models.Product{StockQuantity: 10}, nil)

		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("CheckoutOrder", mock.Anything, mock.Anything).
			Return(fmt.Errorf("Yam Tubers: %w", repository.ErrInsufficientStock)).Once()

		svc := NewOrderService(mockOrderRepo, mockCartRepo, mockProductRepo, newMemCache(), nil)

		// Act
		order, err := svc.PlaceOrder(context.Background(), "owner-1", "Adaeze", "")

		// Assert
		require.Error(t, err)
		require.Nil(t, order)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeOutOfStock))
	})
}

func TestBatchUpdateStatus(t *testing.T) {

	orderID := uuid.New()
	otherID := uuid.New()

	t.Run("Success", func(t *testing.T) {

		// Arrange
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("GetOrderStatus", mock.Anything, orderID).Return(models.OrderStatusPending, nil).Once()
		mockOrderRepo.On("GetOrderStatus", mock.Anything, otherID).Return(models.OrderStatusShipped, nil).Once()
		mockOrderRepo.On("UpdateOrderStatuses", mock.Anything, []repository.StatusChange{
			{OrderID: orderID, Status: models.OrderStatusShipped},
			{OrderID: otherID, Status: models.OrderStatusDelivered},
		}).Return(nil).Once()

		svc := NewOrderService(mockOrderRepo, new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		err := svc.BatchUpdateStatus(context.Background(), []models.StatusUpdate{
			{OrderID: orderID.String(), Status: models.OrderStatusShipped},
			{OrderID: otherID.String(), Status: models.OrderStatusDelivered},
		})

		// Assert
		require.NoError(t, err)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("Success - Unchanged Status Is Skipped", func(t *testing.T) {

		// Arrange
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("GetOrderStatus", mock.Anything, orderID).Return(models.OrderStatusShipped, nil).Once()

		svc := NewOrderService(mockOrderRepo, new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		err := svc.BatchUpdateStatus(context.Background(), []models.StatusUpdate{
			{OrderID: orderID.String(), Status: models.OrderStatusShipped},
		})

		// Assert
		require.NoError(t, err)
		mockOrderRepo.AssertNotCalled(t, "UpdateOrderStatuses", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Invalid Transition Rejects The Whole Batch", func(t *testing.T) {

		// Arrange: the first update is fine, the second walks backwards.
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("GetOrderStatus", mock.Anything, orderID).Return(models.OrderStatusPending, nil).Once()
		mockOrderRepo.On("GetOrderStatus", mock.Anything, otherID).Return(models.OrderStatusDelivered, nil).Once()

		svc := NewOrderService(mockOrderRepo, new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		err := svc.BatchUpdateStatus(context.Background(), []models.StatusUpdate{
			{OrderID: orderID.String(), Status: models.OrderStatusShipped},
			{OrderID: otherID.String(), Status: models.OrderStatusPending},
		})

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidStatus))
		mockOrderRepo.AssertNotCalled(t, "UpdateOrderStatuses", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Database Error Applies Nothing", func(t *testing.T) {

		// Arrange: the whole batch goes down in one repository call, so a
		// failure there cannot leave a prefix of it applied.
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("GetOrderStatus", mock.Anything, orderID).Return(models.OrderStatusPending, nil).Once()
		mockOrderRepo.On("GetOrderStatus", mock.Anything, otherID).Return(models.OrderStatusShipped, nil).Once()
		mockOrderRepo.On("UpdateOrderStatuses", mock.Anything, mock.Anything).Return(sql.ErrConnDone).Once()

		svc := NewOrderService(mockOrderRepo, new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		err := svc.BatchUpdateStatus(context.Background(), []models.StatusUpdate{
			{OrderID: orderID.String(), Status: models.OrderStatusShipped},
			{OrderID: otherID.String(), Status: models.OrderStatusDelivered},
		})

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
		mockOrderRepo.AssertNumberOfCalls(t, "UpdateOrderStatuses", 1)
	})

	t.Run("Failure - Order Deleted Between Validation And Apply", func(t *testing.T) {

		// Arrange
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("GetOrderStatus", mock.Anything, orderID).Return(models.OrderStatusPending, nil).Once()
		mockOrderRepo.On("UpdateOrderStatuses", mock.Anything, mock.Anything).Return(sql.ErrNoRows).Once()

		svc := NewOrderService(mockOrderRepo, new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		err := svc.BatchUpdateStatus(context.Background(), []models.StatusUpdate{
			{OrderID: orderID.String(), Status: models.OrderStatusShipped},
		})

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})

	t.Run("Failure - Unknown Order", func(t *testing.T) {

		// Arrange
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("GetOrderStatus", mock.Anything, orderID).
			Return(models.OrderStatus(""), sql.ErrNoRows).Once()

		svc := NewOrderService(mockOrderRepo, new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		err := svc.BatchUpdateStatus(context.Background(), []models.StatusUpdate{
			{OrderID: orderID.String(), Status: models.OrderStatusShipped},
		})

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})

	t.Run("Failure - Malformed Order ID", func(t *testing.T) {

		// Arrange
		svc := NewOrderService(new(mocks.MockOrderRepository), new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		err := svc.BatchUpdateStatus(context.Background(), []models.StatusUpdate{
			{OrderID: "not-a-uuid", Status: models.OrderStatusShipped},
		})

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	})
}

func TestListOrders(t *testing.T) {

	t.Run("Success", func(t *testing.T) {

		// Arrange
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("ListOrdersByBuyer", mock.Anything, "owner-1").
			Return([]models.Order{{BuyerID: "owner-1", Status: models.OrderStatusPending}}, nil).Once()

		svc := NewOrderService(mockOrderRepo, new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		orders, err := svc.ListOrders(context.Background(), "owner-1")

		// Assert
		require.NoError(t, err)
		require.Len(t, orders, 1)
	})
}

func TestSellerFeed(t *testing.T) {

	t.Run("Success", func(t *testing.T) {

		// Arrange
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("SellerFeed", mock.Anything, "seller-1").
			Return([]models.OrderLine{{OrderID: "order-1", ProductID: "prod-1"}}, nil).Once()

		svc := NewOrderService(mockOrderRepo, new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		lines, err := svc.SellerFeed(context.Background(), "seller-1")

		// Assert
		require.NoError(t, err)
		require.Len(t, lines, 1)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {

		// Arrange
		mockOrderRepo := new(mocks.MockOrderRepository)
		mockOrderRepo.On("SellerFeed", mock.Anything, "seller-1").Return(nil, sql.ErrConnDone).Once()

		svc := NewOrderService(mockOrderRepo, new(mocks.MockCartRepository),
			new(mocks.MockProductRepository), newMemCache(), nil)

		// Act
		_, err := svc.SellerFeed(context.Background(), "seller-1")

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
	})
}
