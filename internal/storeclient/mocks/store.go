package mocks

import (
	"context"

	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FetchCart(ctx context.Context, ownerID string) (*models.Cart, error) {
	args := m.Called(ctx, ownerID)
	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) AddItem(ctx context.Context, ownerID, productID string, quantity int) error {
	args := m.Called(ctx, ownerID, productID, quantity)
	return args.Error(0)
}

func (m *MockStore) DeltaQuantity(ctx context.Context, ownerID, productID string, action models.DeltaAction) error {
	args := m.Called(ctx, ownerID, productID, action)
	return args.Error(0)
}

func (m *MockStore) RemoveItem(ctx context.Context, ownerID, productID string) error {
	args := m.Called(ctx, ownerID, productID)
	return args.Error(0)
}

func (m *MockStore) PlaceOrder(ctx context.Context, ownerID string) (*models.Order, error) {
	args := m.Called(ctx, ownerID)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) FetchOrders(ctx context.Context, ownerID string) ([]models.Order, error) {
	args := m.Called(ctx, ownerID)
	if orders, ok := args.Get(0).([]models.Order); ok {
		return orders, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) FetchOrderFeed(ctx context.Context, sellerID string) ([]models.OrderLine, error) {
	args := m.Called(ctx, sellerID)
	if lines, ok := args.Get(0).([]models.OrderLine); ok {
		return lines, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateStatuses(ctx context.Context, updates []models.StatusUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}
