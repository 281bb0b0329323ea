package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}

	return false
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ValidTransition enforces Pending -> Shipped -> Delivered, with Cancelled
// reachable from any non-terminal status. Setting the same status again is
// allowed so a full board save is not rejected for untouched groups.
func ValidTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}

	if from.Terminal() {
		return false
	}

	switch to {
	case OrderStatusCancelled:
		return true
	case OrderStatusShipped:
		return from == OrderStatusPending
	case OrderStatusDelivered:
		return from == OrderStatusShipped
	}

	return false
}

// Order is a snapshot of a cart at checkout time. Lines and prices are
// frozen; only the status and delivery timestamps change afterwards.
type Order struct {
	ID          uuid.UUID       `json:"id"`
	BuyerID     string          `json:"buyer_id"`
	BuyerName   string          `json:"buyer_name,omitempty"`
	Lines       []CartLine      `json:"lines"`
	Status      OrderStatus     `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	OrderedAt   time.Time       `json:"ordered_at"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty"`
}

// OrderLine is one row of the flat seller feed: a single product of a
// single order, with the order's status repeated on every row.
type OrderLine struct {
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	BuyerName   string          `json:"buyer_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Status      OrderStatus     `json:"status"`
	OrderedAt   time.Time       `json:"ordered_at"`
}

// PlaceOrderResponse is the wire shape of POST /orders/place/{ownerId}.
type PlaceOrderResponse struct {
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
}

// OrdersResponse is the wire shape of GET /orders/{ownerId}.
type OrdersResponse struct {
	Orders []Order `json:"orders"`
}

// OrderFeedResponse is the wire shape of GET /orders/feed/{sellerId}.
type OrderFeedResponse struct {
	Lines []OrderLine `json:"lines"`
}

type StatusUpdate struct {
	OrderID string      `json:"orderId" validate:"required"`
	Status  OrderStatus `json:"status" validate:"required,oneof=Pending Shipped Delivered Cancelled"`
}

// BatchStatusRequest is the wire shape of PUT /orders/status.
type BatchStatusRequest struct {
	Updates []StatusUpdate `json:"updates" validate:"required,min=1,dive"`
}
