package mocks

import (
	"context"

	"github.com/farmhub-ng/farm-marketplace/internal/models"
	repository "github.com/farmhub-ng/farm-marketplace/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetCartByOwnerID(ctx context.Context, ownerID string) (*models.Cart, error) {
	args := m.Called(ctx, ownerID)
	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartRepository) UpsertCart(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CheckoutOrder(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	args := m.Called(ctx, buyerID)
	if orders, ok := args.Get(0).([]models.Order); ok {
		return orders, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) SellerFeed(ctx context.Context, farmerID string) ([]models.OrderLine, error) {
	args := m.Called(ctx, farmerID)
	if lines, ok := args.Get(0).([]models.OrderLine); ok {
		return lines, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetOrderStatus(ctx context.Context, id uuid.UUID) (models.OrderStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.OrderStatus), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatuses(ctx context.Context, changes []repository.StatusChange) error {
	args := m.Called(ctx, changes)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}
	return nil, args.Error(1)
}
