package catalog

import (
	"sort"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ListFilter drives the storefront listing pages and their filter panel.
type ListFilter struct {
	Category string
	Flag     enums.ProductFlag
	Sort     enums.ProductSort
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
	OnSale   bool
}

func (f ListFilter) matches(p Product) bool {
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStock && !p.InStock() {
		return false
	}
	if f.OnSale && !p.Flags.IsOnSale {
		return false
	}
	return true
}

func applyFilter(products []Product, f ListFilter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// sortProducts orders in place; ties keep their incoming (newest first) order.
func sortProducts(products []Product, by enums.ProductSort) {
	var less func(a, b Product) bool
	switch by {
	case enums.ProductSortPriceAsc:
		less = func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case enums.ProductSortPriceDesc:
		less = func(a, b Product) bool { return a.Price.GreaterThan(b.Price) }
	case enums.ProductSortRating:
		less = func(a, b Product) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.ReviewCount > b.ReviewCount
		}
	default:
		less = func(a, b Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}
