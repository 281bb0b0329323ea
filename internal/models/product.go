package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog view the cart needs: display data for
// denormalizing lines plus the stock level the store checks against.
// Catalog management itself lives with the farmers' tooling, not here.
type Product struct {
	ID            string          `json:"id"`
	FarmerID      string          `json:"farmer_id"`
	Name          string          `json:"name"`
	ThumbnailURL  string          `json:"thumbnail_url,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
