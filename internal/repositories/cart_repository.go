package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"github.com/farmhub-ng/farm-marketplace/internal/utils"
)

type CartRepository interface {
	GetCartByOwnerID(ctx context.Context, ownerID string) (*models.Cart, error)
	UpsertCart(ctx context.Context, cart *models.Cart) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

func (r *cartRepository) GetCartByOwnerID(ctx context.Context, ownerID string) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT owner_id, lines
		FROM carts
		WHERE owner_id = $1
	`

	cart := &models.Cart{}

	var linesJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, ownerID).Scan(&cart.OwnerID, &linesJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	if err := json.Unmarshal(linesJSON, &cart.Lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart lines: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) UpsertCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	linesJSON, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart lines: %w", err)
	}

	query := `
		INSERT INTO carts (owner_id, lines, updated_at)
		VALUES($1, $2, $3)
		ON CONFLICT (owner_id)
		DO UPDATE SET lines = $2, updated_at = $3
	`

	if _, err := r.DB.ExecContext(dbCtx, query, cart.OwnerID, linesJSON, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert the cart: %w", err)
	}

	return nil
}
