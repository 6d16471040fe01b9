// Package cart keeps shopping carts for guests (device-scoped, in Redis) and users (in Postgres).
package cart

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps a single line; adds that would push a line past it are rejected.
const MaxLineQuantity = 999

// Line is one product in a cart with the snapshot it is priced from.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   catalog.Product `json:"product"`
}

// Total is price x quantity.
func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart totals are derived from Lines by NewCart and never set directly.
type Cart struct {
	Owner      identity.Identity
	Lines      []Line
	TotalItems int
	Subtotal   decimal.Decimal
}

// NewCart derives totals from lines.
func NewCart(owner identity.Identity, lines []Line) Cart {
	if lines == nil {
		lines = []Line{}
	}
	c := Cart{Owner: owner, Lines: lines, Subtotal: decimal.Zero}
	for _, line := range lines {
		c.TotalItems += line.Quantity
		c.Subtotal = c.Subtotal.Add(line.Total())
	}
	return c
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line for productID, if present.
func (c Cart) Line(productID uuid.UUID) (Line, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return Line{}, false
}

// Entry is the persisted form of a line. Snapshot is only kept by the guest store.
type Entry struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Snapshot  *catalog.Product `json:"snapshot,omitempty"`
	AddedAt   time.Time        `json:"added_at"`
}
