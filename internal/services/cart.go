package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/farmhub-ng/farm-marketplace/internal/cache"
	apperrors "github.com/farmhub-ng/farm-marketplace/internal/errors"
	"github.com/farmhub-ng/farm-marketplace/internal/models"
	repository "github.com/farmhub-ng/farm-marketplace/internal/repositories"
)

const cartCacheTTL = 5 * time.Minute

type CartService interface {
	GetCart(ctx context.Context, ownerID string) (*models.Cart, error)
	AddItem(ctx context.Context, ownerID, productID string, quantity int) (*models.Cart, error)
	ApplyDelta(ctx context.Context, ownerID, productID string, action models.DeltaAction) (*models.Cart, error)
	RemoveItem(ctx context.Context, ownerID, productID string) (*models.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cache       cache.Cache
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, cartCache cache.Cache) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo, cache: cartCache}
}

// GetCart returns the visitor's cart, creating the empty view lazily. A
// visitor who never added anything simply has an empty cart, not an error.
func (s *cartService) GetCart(ctx context.Context, ownerID string) (*models.Cart, error) {

	cacheKey := cache.Key(cache.CartKeyPrefix, ownerID)

	cached := &models.Cart{}
	if found, err := s.cache.Get(ctx, cacheKey, cached); err == nil && found {
		return cached, nil
	}

	cart, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, cart, cartCacheTTL); err != nil {
		slog.Warn("Failed to cache cart", slog.String("error", err.Error()))
	}

	return cart, nil
}

// AddItem upserts a line. If the product is already in the cart the
// quantities are merged here, server-side; clients never merge locally.
func (s *cartService) AddItem(ctx context.Context, ownerID, productID string, quantity int) (*models.Cart, error) {

	if quantity < 1 {
		return nil, apperrors.ValidationError("Quantity must be at least 1")
	}

	cart, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundError("Product not found")
		}
		return nil, apperrors.DatabaseError("Failed to look up product").WithError(err)
	}

	requested := quantity
	if line, ok := cart.Line(productID); ok {
		requested += line.Quantity
	}

	if requested > product.StockQuantity {
		return nil, apperrors.OutOfStockError(fmt.Sprintf("Only %d of %s left in stock", product.StockQuantity, product.Name))
	}

	merged := false

	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Quantity = requested
			// Display data is re-denormalized on every add.
			cart.Lines[i].Name = product.Name
			cart.Lines[i].ThumbnailURL = product.ThumbnailURL
			cart.Lines[i].UnitPrice = product.Price
			merged = true

			break
		}
	}

	if !merged {
		cart.Lines = append(cart.Lines, models.CartLine{
			ProductID:    productID,
			Name:         product.Name,
			ThumbnailURL: product.ThumbnailURL,
			UnitPrice:    product.Price,
			Quantity:     quantity,
		})
	}

	return cart, s.saveCart(ctx, cart)
}

// ApplyDelta applies a single +1/-1 step to an existing line. A line that
// reaches zero is removed entirely, never stored at quantity zero.
func (s *cartService) ApplyDelta(ctx context.Context, ownerID, productID string, action models.DeltaAction) (*models.Cart, error) {

	if !action.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("Unknown action %q", action))
	}

	cart, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	idx := -1

	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			idx = i

			break
		}
	}

	if idx == -1 {
		return nil, apperrors.NotFoundError("Item not in cart")
	}

	switch action {
	case models.DeltaAdd:

		product, err := s.productRepo.GetProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.NotFoundError("Product not found")
			}
			return nil, apperrors.DatabaseError("Failed to look up product").WithError(err)
		}

		if cart.Lines[idx].Quantity+1 > product.StockQuantity {
			return nil, apperrors.OutOfStockError(fmt.Sprintf("Only %d of %s left in stock", product.StockQuantity, product.Name))
		}

		cart.Lines[idx].Quantity++

	case models.DeltaRemove:

		cart.Lines[idx].Quantity--

		if cart.Lines[idx].Quantity < 1 {
			cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
		}
	}

	return cart, s.saveCart(ctx, cart)
}

// RemoveItem deletes a line. Removing a line that is not there is a
// successful no-op.
func (s *cartService) RemoveItem(ctx context.Context, ownerID, productID string) (*models.Cart, error) {

	cart, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)

			return cart, s.saveCart(ctx, cart)
		}
	}

	return cart, nil
}

func (s *cartService) loadCart(ctx context.Context, ownerID string) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByOwnerID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Cart{OwnerID: ownerID}, nil
		}
		return nil, apperrors.DatabaseError("Failed to load cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) saveCart(ctx context.Context, cart *models.Cart) error {

	if err := s.cartRepo.UpsertCart(ctx, cart); err != nil {
		return apperrors.DatabaseError("Failed to save cart").WithError(err)
	}

	cacheKey := cache.Key(cache.CartKeyPrefix, cart.OwnerID)

	if err := s.cache.Set(ctx, cacheKey, cart, cartCacheTTL); err != nil {
		slog.Warn("Failed to refresh cart cache", slog.String("error", err.Error()))
	}

	return nil
}
