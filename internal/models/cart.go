package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The store transmits prices as plain JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DeltaAction discriminates a relative quantity change. The store only
// accepts single +1/-1 steps, never an absolute target quantity.
type DeltaAction string

const (
	DeltaAdd    DeltaAction = "add"
	DeltaRemove DeltaAction = "remove"
)

func (a DeltaAction) Valid() bool {
	return a == DeltaAdd || a == DeltaRemove
}

// CartLine is one product's presence in a cart. Name, thumbnail and unit
// price are denormalized from the catalog at add/refresh time. Quantity is
// always >= 1; a line that reaches zero is removed, never kept.
type CartLine struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	ThumbnailURL string          `json:"thumbnail_url,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
}

// LineTotal is derived, never stored.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	OwnerID string     `json:"owner_id"`
	Lines   []CartLine `json:"lines"`
}

func (c *Cart) GrandTotal() decimal.Decimal {
	total := decimal.Zero

	for _, line := range c.Lines {
		total = total.Add(line.LineTotal())
	}

	return total
}

func (c *Cart) Line(productID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}

	return CartLine{}, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

type AddItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartResponse is the wire shape of GET /cart/{ownerId}.
type CartResponse struct {
	Products []CartLine `json:"products"`
}

// AddItemResponse is the wire shape of POST /cart/add/{ownerId}/{productId}.
type AddItemResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
