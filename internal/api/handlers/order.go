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

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

func (h *OrderHandler) PlaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, err := middleware.RequireOwner(r, "ownerId")
		if err != nil {
			logger.Warn("Rejected order placement", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		order, err := h.orderService.PlaceOrder(r.Context(), claims.OwnerID, claims.Name, claims.Email)
		if err != nil {
			logger.Error("Failed to place order", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order placed", slog.String("orderId", order.ID.String()))
		response.WriteJson(w, http.StatusOK, models.PlaceOrderResponse{
			Message: "Order placed successfully",
			Order:   order,
		})
	}
}

func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, err := middleware.RequireOwner(r, "ownerId")
		if err != nil {
			logger.Warn("Rejected order list", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		orders, err := h.orderService.ListOrders(r.Context(), claims.OwnerID)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, models.OrdersResponse{Orders: orders})
	}
}

func (h *OrderHandler) SellerFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, err := middleware.RequireOwner(r, "sellerId")
		if err != nil {
			logger.Warn("Rejected seller feed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		lines, err := h.orderService.SellerFeed(r.Context(), claims.OwnerID)
		if err != nil {
			logger.Error("Failed to fetch seller feed", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, models.OrderFeedResponse{Lines: lines})
	}
}

func (h *OrderHandler) BatchUpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims); !ok {
			logger.Warn("Unauthenticated status update attempt")
			response.Error(w, apperrors.NotAuthenticatedError("Authentication required"))
			return
		}

		var req models.BatchStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid batch status input")
			return
		}

		if err := h.orderService.BatchUpdateStatus(r.Context(), req.Updates); err != nil {
			logger.Error("Failed to update statuses", slog.Int("count", len(req.Updates)), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order statuses updated", slog.Int("count", len(req.Updates)))
		response.WriteJson(w, http.StatusOK, struct{}{})
	}
}
