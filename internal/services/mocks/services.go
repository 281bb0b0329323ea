package mocks

import (
	"context"

	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"github.com/stretchr/testify/mock"
)

type CartService struct {
	mock.Mock
}

func (m *CartService) GetCart(ctx context.Context, ownerID string) (*models.Cart, error) {
	args := m.Called(ctx, ownerID)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartService) AddItem(ctx context.Context, ownerID, productID string, quantity int) (*models.Cart, error) {
	args := m.Called(ctx, ownerID, productID, quantity)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartService) ApplyDelta(ctx context.Context, ownerID, productID string, action models.DeltaAction) (*models.Cart, error) {
	args := m.Called(ctx, ownerID, productID, action)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *CartService) RemoveItem(ctx context.Context, ownerID, productID string) (*models.Cart, error) {
	args := m.Called(ctx, ownerID, productID)

	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

type OrderService struct {
	mock.Mock
}

func (m *OrderService) PlaceOrder(ctx context.Context, ownerID, buyerName, buyerEmail string) (*models.Order, error) {
	args := m.Called(ctx, ownerID, buyerName, buyerEmail)

	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *OrderService) ListOrders(ctx context.Context, buyerID string) ([]models.Order, error) {
	args := m.Called(ctx, buyerID)

	if orders, ok := args.Get(0).([]models.Order); ok {
		return orders, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *OrderService) SellerFeed(ctx context.Context, farmerID string) ([]models.OrderLine, error) {
	args := m.Called(ctx, farmerID)

	if lines, ok := args.Get(0).([]models.OrderLine); ok {
		return lines, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *OrderService) BatchUpdateStatus(ctx context.Context, updates []models.StatusUpdate) error {
	args := m.Called(ctx, updates)

	return args.Error(0)
}
