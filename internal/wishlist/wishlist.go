// Package wishlist keeps saved products for guests (in Redis) and users (in Postgres).
package wishlist

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	"github.com/google/uuid"
)

// Item is a saved product; a wishlist holds at most one per product.
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	AddedAt   time.Time       `json:"added_at"`
	Product   catalog.Product `json:"product"`
}

// Wishlist lists items newest first.
type Wishlist struct {
	Owner identity.Identity
	Items []Item
}

func (w Wishlist) Contains(productID uuid.UUID) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Entry is the persisted form of an item. Snapshot is only kept by the guest store.
type Entry struct {
	ProductID uuid.UUID        `json:"product_id"`
	AddedAt   time.Time        `json:"added_at"`
	Snapshot  *catalog.Product `json:"snapshot,omitempty"`
}
