package catalog

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// fromModel converts a persisted row, refusing rows that violate product invariants.
func fromModel(m models.Product) (Product, error) {
	p := Product{
		ID:          m.ID,
		Name:        m.Name,
		Brand:       m.Brand,
		Category:    m.Category,
		Price:       m.Price,
		Description: m.Description,
		Rating:      m.Rating,
		ReviewCount: m.ReviewCount,
		Images:      nonNil(m.Images),
		Tags:        nonNil(m.Tags),
		Flags: Flags{
			IsNew:        m.IsNew,
			IsFeatured:   m.IsFeatured,
			IsOnSale:     m.IsOnSale,
			IsBestseller: m.IsBestseller,
		},
		Stock:     m.Stock,
		CreatedAt: m.CreatedAt,
	}
	if m.OldPrice.Valid {
		old := m.OldPrice.Decimal
		p.OldPrice = &old
	}
	if err := p.Validate(); err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("product %s is malformed", m.ID))
	}
	return p, nil
}

func fromModels(rows []models.Product) ([]Product, error) {
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		p, err := fromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toModel(p Product) models.Product {
	m := models.Product{
		ID:           p.ID,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Price:        p.Price.Round(2),
		Description:  p.Description,
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
		Images:       nonNil(p.Images),
		Tags:         nonNil(p.Tags),
		IsNew:        p.Flags.IsNew,
		IsFeatured:   p.Flags.IsFeatured,
		IsOnSale:     p.Flags.IsOnSale,
		IsBestseller: p.Flags.IsBestseller,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt,
	}
	if p.OldPrice != nil {
		m.OldPrice = decimal.NewNullDecimal(p.OldPrice.Round(2))
	}
	return m
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
