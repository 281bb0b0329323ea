package handlers

import (
	"log/slog"
	"net/http"

	"github.com/farmhub-ng/farm-marketplace/internal/api/middleware"
	apperrors "github.com/farmhub-ng/farm-marketplace/internal/errors"
	"github.com/farmhub-ng/farm-marketplace/internal/models"
	service "github.com/farmhub-ng/farm-marketplace/internal/services"
	"github.com/farmhub-ng/farm-marketplace/internal/utils"
	"github.com/farmhub-ng/farm-marketplace/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// CartHandler serves the cart side of the store contract. Success bodies
// follow the wire shapes the storefront expects ({products}, {success,
// message}, {}), not the general API envelope.
type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, err := middleware.RequireOwner(r, "ownerId")
		if err != nil {
			logger.Warn("Rejected cart fetch", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.OwnerID)
		if err != nil {
			logger.Error("Failed to fetch cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, models.CartResponse{Products: cart.Lines})
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, err := middleware.RequireOwner(r, "ownerId")
		if err != nil {
			logger.Warn("Rejected add to cart", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		productID := r.PathValue("productId")
		if productID == "" {
			response.Error(w, apperrors.BadRequestError("Product ID is required"))
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add item input")
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), claims.OwnerID, productID, req.Quantity)
		if err != nil {

			// Stock exhaustion is a business answer, not a protocol failure:
			// report it inside the add response body.
			if apperrors.IsCode(err, apperrors.ErrCodeOutOfStock) {
				appErr, _ := apperrors.IsAppError(err)
				response.WriteJson(w, http.StatusOK, models.AddItemResponse{Success: false, Message: appErr.Message})
				return
			}

			logger.Error("Failed to add item", slog.String("productId", productID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart",
			slog.String("productId", productID),
			slog.Int("lines", len(cart.Lines)))
		response.WriteJson(w, http.StatusOK, models.AddItemResponse{Success: true, Message: "Item added to cart"})
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, err := middleware.RequireOwner(r, "ownerId")
		if err != nil {
			logger.Warn("Rejected quantity update", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		productID := r.PathValue("productId")
		action := models.DeltaAction(r.PathValue("action"))

		if productID == "" {
			response.Error(w, apperrors.BadRequestError("Product ID is required"))
			return
		}

		if !action.Valid() {
			response.Error(w, apperrors.ValidationError("Action must be add or remove"))
			return
		}

		if _, err := h.cartService.ApplyDelta(r.Context(), claims.OwnerID, productID, action); err != nil {
			logger.Error("Failed to apply quantity delta",
				slog.String("productId", productID),
				slog.String("action", string(action)),
				slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, struct{}{})
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, err := middleware.RequireOwner(r, "ownerId")
		if err != nil {
			logger.Warn("Rejected item removal", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		productID := r.PathValue("productId")
		if productID == "" {
			response.Error(w, apperrors.BadRequestError("Product ID is required"))
			return
		}

		if _, err := h.cartService.RemoveItem(r.Context(), claims.OwnerID, productID); err != nil {
			logger.Error("Failed to remove item", slog.String("productId", productID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, struct{}{})
	}
}
