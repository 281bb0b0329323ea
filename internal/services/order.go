package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/farmhub-ng/farm-marketplace/internal/cache"
	apperrors "github.com/farmhub-ng/farm-marketplace/internal/errors"
	"github.com/farmhub-ng/farm-marketplace/internal/models"
	repository "github.com/farmhub-ng/farm-marketplace/internal/repositories"
	sendGrid "github.com/farmhub-ng/farm-marketplace/pkg/sendGrid"
	"github.com/google/uuid"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, ownerID, buyerName, buyerEmail string) (*models.Order, error)
	ListOrders(ctx context.Context, buyerID string) ([]models.Order, error)
	SellerFeed(ctx context.Context, farmerID string) ([]models.OrderLine, error)
	BatchUpdateStatus(ctx context.Context, updates []models.StatusUpdate) error
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cache       cache.Cache
	email       sendGrid.EmailService
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository,
	productRepo repository.ProductRepository, cartCache cache.Cache, email sendGrid.EmailService) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cache:       cartCache,
		email:       email,
	}
}

// PlaceOrder converts the current cart into an order and clears the cart.
// Lines are snapshotted with their prices frozen at order time.
func (s *orderService) PlaceOrder(ctx context.Context, ownerID, buyerName, buyerEmail string) (*models.Order, error) {

	cart, err := s.cartRepo.GetCartByOwnerID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.BadRequestError("Cannot place an order with an empty cart")
		}
		return nil, apperrors.DatabaseError("Failed to load cart").WithError(err)
	}

	if cart.IsEmpty() {
		return nil, apperrors.BadRequestError("Cannot place an order with an empty cart")
	}

	// Check availability before committing anything.
	for _, line := range cart.Lines {

		product, err := s.productRepo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.NotFoundError("Product no longer available: " + line.Name)
			}
			return nil, apperrors.DatabaseError("Failed to look up product").WithError(err)
		}

		if product.StockQuantity < line.Quantity {
			return nil, apperrors.OutOfStockError("Insufficient stock for " + line.Name)
		}
	}

	order := &models.Order{
		ID:         uuid.New(),
		BuyerID:    ownerID,
		BuyerName:  buyerName,
		Lines:      append([]models.CartLine(nil), cart.Lines...),
		Status:     models.OrderStatusPending,
		TotalPrice: cart.GrandTotal(),
		OrderedAt:  time.Now(),
	}

	// One transaction covers the order row, the stock decrements, and the
	// cart delete; a stock race after the pre-check leaves nothing behind.
	if err := s.orderRepo.CheckoutOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, apperrors.OutOfStockError("An item in your cart just sold out")
		}
		return nil, apperrors.DatabaseError("Failed to place order").WithError(err)
	}

	if err := s.cache.Delete(ctx, cache.Key(cache.CartKeyPrefix, ownerID)); err != nil {
		slog.Warn("Failed to invalidate cart cache", slog.String("error", err.Error()))
	}

	// Confirmation email is best-effort; the order stands either way.
	if s.email != nil && buyerEmail != "" {
		if err := s.email.SendOrderConfirmation(ctx, buyerEmail, order); err != nil {
			slog.Warn("Failed to send order confirmation",
				slog.String("orderId", order.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, buyerID string) ([]models.Order, error) {

	orders, err := s.orderRepo.ListOrdersByBuyer(ctx, buyerID)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) SellerFeed(ctx context.Context, farmerID string) ([]models.OrderLine, error) {

	lines, err := s.orderRepo.SellerFeed(ctx, farmerID)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to fetch order feed").WithError(err)
	}

	return lines, nil
}

// BatchUpdateStatus validates the whole batch before touching anything,
// then applies it in one repository transaction. A rejected or failed
// batch leaves every order exactly as it was.
func (s *orderService) BatchUpdateStatus(ctx context.Context, updates []models.StatusUpdate) error {

	changes := make([]repository.StatusChange, 0, len(updates))

	for _, update := range updates {

		id, err := uuid.Parse(update.OrderID)
		if err != nil {
			return apperrors.ValidationError("Invalid order id: " + update.OrderID)
		}

		if !update.Status.Valid() {
			return apperrors.ValidationError("Invalid status: " + string(update.Status))
		}

		current, err := s.orderRepo.GetOrderStatus(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NotFoundError("Order not found: " + update.OrderID)
			}
			return apperrors.DatabaseError("Failed to look up order").WithError(err)
		}

		if !models.ValidTransition(current, update.Status) {
			return apperrors.InvalidStatusError("Cannot move order " + update.OrderID +
				" from " + string(current) + " to " + string(update.Status))
		}

		if current != update.Status {
			changes = append(changes, repository.StatusChange{OrderID: id, Status: update.Status})
		}
	}

	if len(changes) == 0 {
		return nil
	}

	if err := s.orderRepo.UpdateOrderStatuses(ctx, changes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFoundError("An order in the batch no longer exists")
		}
		return apperrors.DatabaseError("Failed to update order statuses").WithError(err)
	}

	return nil
}
