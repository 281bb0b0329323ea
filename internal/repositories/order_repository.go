package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"github.com/farmhub-ng/farm-marketplace/internal/utils"
	"github.com/google/uuid"
)

// ErrInsufficientStock reports a checkout that lost the race for stock
// after its availability pre-check passed.
var ErrInsufficientStock = errors.New("insufficient stock")

// StatusChange is one validated order status update, ready to apply.
type StatusChange struct {
	OrderID uuid.UUID
	Status  models.OrderStatus
}

type OrderRepository interface {
	CheckoutOrder(ctx context.Context, order *models.Order) error
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	SellerFeed(ctx context.Context, farmerID string) ([]models.OrderLine, error)
	GetOrderStatus(ctx context.Context, id uuid.UUID) (models.OrderStatus, error)
	UpdateOrderStatuses(ctx context.Context, changes []StatusChange) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CheckoutOrder persists the order, takes its stock, and empties the buyer's
// cart in a single transaction. A failed stock decrement rolls back the
// whole checkout, so no order row survives without its inventory.
func (r *orderRepository) CheckoutOrder(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (id, buyer_id, buyer_name, status, total_price, ordered_at)
		VALUES($1, $2, $3, $4, $5, $6)
	`

	if _, err := tx.ExecContext(dbCtx, orderQuery,
		order.ID, order.BuyerID, order.BuyerName, order.Status, order.TotalPrice, order.OrderedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	// Price is frozen at order time; each line carries its own copy.
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, thumbnail_url, farmer_id, quantity, unit_price)
		SELECT $1, $2, $3, $4, p.farmer_id, $5, $6
		FROM products p
		WHERE p.id = $2
	`

	for _, line := range order.Lines {
		if _, err := tx.ExecContext(dbCtx, itemQuery,
			order.ID, line.ProductID, line.Name, line.ThumbnailURL, line.Quantity, line.UnitPrice); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	// Guarded so the stock level never goes negative under concurrent
	// checkouts; zero rows means another order got there first.
	stockQuery := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
	`

	for _, line := range order.Lines {

		result, err := tx.ExecContext(dbCtx, stockQuery, line.ProductID, line.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		updatedRows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get updated rows: %w", err)
		}

		if updatedRows == 0 {
			return fmt.Errorf("%s: %w", line.Name, ErrInsufficientStock)
		}
	}

	cartQuery := `
		DELETE FROM carts
		WHERE owner_id = $1
	`

	if _, err := tx.ExecContext(dbCtx, cartQuery, order.BuyerID); err != nil {
		return fmt.Errorf("failed to clear the cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

func (r *orderRepository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, buyer_id, buyer_name, status, total_price, ordered_at, delivered_at
		FROM orders
		WHERE buyer_id = $1
		ORDER BY ordered_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order

	for rows.Next() {

		var order models.Order

		if err := rows.Scan(&order.ID, &order.BuyerID, &order.BuyerName, &order.Status,
			&order.TotalPrice, &order.OrderedAt, &order.DeliveredAt); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}

		lines, err := r.orderLines(dbCtx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Lines = lines

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) orderLines(ctx context.Context, orderID uuid.UUID) ([]models.CartLine, error) {

	query := `
		SELECT product_id, product_name, thumbnail_url, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var lines []models.CartLine

	for rows.Next() {

		var line models.CartLine

		if err := rows.Scan(&line.ProductID, &line.Name, &line.ThumbnailURL, &line.UnitPrice, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// SellerFeed flattens every order touching the farmer's products into
// per-line records, one status per row.
func (r *orderRepository) SellerFeed(ctx context.Context, farmerID string) ([]models.OrderLine, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT o.id, i.product_id, i.product_name, o.buyer_name, i.quantity, i.unit_price, o.status, o.ordered_at
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE i.farmer_id = $1
		ORDER BY o.ordered_at DESC, i.product_id
	`

	rows, err := r.DB.QueryContext(dbCtx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("querying seller feed: %w", err)
	}
	defer rows.Close()

	var lines []models.OrderLine

	for rows.Next() {

		var line models.OrderLine

		if err := rows.Scan(&line.OrderID, &line.ProductID, &line.ProductName, &line.BuyerName,
			&line.Quantity, &line.UnitPrice, &line.Status, &line.OrderedAt); err != nil {
			return nil, fmt.Errorf("scanning feed line: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (r *orderRepository) GetOrderStatus(ctx context.Context, id uuid.UUID) (models.OrderStatus, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT status
		FROM orders
		WHERE id = $1
	`

	var status models.OrderStatus

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("querying order status: %w", err)
	}

	return status, nil
}

// UpdateOrderStatuses applies every change in one transaction; a failure
// anywhere rolls them all back, so the batch lands whole or not at all.
func (r *orderRepository) UpdateOrderStatuses(ctx context.Context, changes []StatusChange) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE orders
		SET status = $1, delivered_at = CASE WHEN $1 = 'Delivered' THEN NOW() ELSE delivered_at END
		WHERE id = $2
	`

	for _, change := range changes {

		result, err := tx.ExecContext(dbCtx, query, change.Status, change.OrderID)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		updatedRows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get updated rows: %w", err)
		}

		if updatedRows == 0 {
			return sql.ErrNoRows
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status updates: %w", err)
	}

	return nil
}
