// Package catalog is the read side of the product catalog plus the small admin surface that maintains it.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Flags are the merchandising badges shown on product cards.
type Flags struct {
	IsNew        bool `json:"is_new"`
	IsFeatured   bool `json:"is_featured"`
	IsOnSale     bool `json:"is_on_sale"`
	IsBestseller bool `json:"is_bestseller"`
}

// Product is the shopper-facing catalog entry. Carts and wishlists keep copies of it as snapshots.
type Product struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Brand       string           `json:"brand"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	OldPrice    *decimal.Decimal `json:"old_price,omitempty"`
	Description string           `json:"description"`
	Rating      float64          `json:"rating"`
	ReviewCount int              `json:"review_count"`
	Images      []string         `json:"images"`
	Tags        []string         `json:"tags"`
	Flags       Flags            `json:"flags"`
	Stock       int              `json:"stock"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Has reports whether the product carries the given badge.
func (p Product) Has(flag enums.ProductFlag) bool {
	switch flag {
	case enums.ProductFlagNew:
		return p.Flags.IsNew
	case enums.ProductFlagFeatured:
		return p.Flags.IsFeatured
	case enums.ProductFlagSale:
		return p.Flags.IsOnSale
	case enums.ProductFlagBestseller:
		return p.Flags.IsBestseller
	}
	return false
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// Validate reports every broken invariant at once.
func (p Product) Validate() error {
	var err error
	if p.ID == uuid.Nil {
		err = multierr.Append(err, errors.New("id is empty"))
	}
	if strings.TrimSpace(p.Name) == "" {
		err = multierr.Append(err, errors.New("name is empty"))
	}
	if p.Price.IsNegative() {
		err = multierr.Append(err, fmt.Errorf("price %s is negative", p.Price))
	}
	if p.Stock < 0 {
		err = multierr.Append(err, fmt.Errorf("stock %d is negative", p.Stock))
	}
	if p.OldPrice != nil && !p.OldPrice.GreaterThan(p.Price) {
		err = multierr.Append(err, fmt.Errorf("old price %s must exceed price %s", p.OldPrice, p.Price))
	}
	return err
}
