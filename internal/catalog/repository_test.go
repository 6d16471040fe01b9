package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, repo *Repository, mutate func(*models.Product)) models.Product {
	t.Helper()
	row := models.Product{
		ID:          uuid.New(),
		Name:        "Classic Tee",
		Brand:       "Northwind",
		Category:    "apparel",
		Price:       decimal.RequireFromString("19.99"),
		Description: "Soft cotton tee",
		Rating:      4.2,
		ReviewCount: 10,
		Images:      []string{"https://cdn.example.com/tee.jpg"},
		Tags:        []string{"cotton"},
		Stock:       5,
		CreatedAt:   baseTime,
	}
	if mutate != nil {
		mutate(&row)
	}
	require.NoError(t, repo.Create(context.Background(), &row))
	return row
}

func TestRepositoryFindByIDs(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	a := seedProduct(t, repo, nil)
	b := seedProduct(t, repo, func(p *models.Product) { p.Name = "Hoodie" })

	rows, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, []string{"cotton"}, found.Tags)
	assert.False(t, found.OldPrice.Valid)
}

func TestRepositoryListFiltersByCategoryAndFlag(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	older := seedProduct(t, repo, func(p *models.Product) { p.Name = "Older"; p.IsOnSale = true; p.OldPrice = decimal.NewNullDecimal(decimal.RequireFromString("25.00")) })
	newer := seedProduct(t, repo, func(p *models.Product) { p.Name = "Newer"; p.CreatedAt = baseTime.Add(time.Hour) })
	seedProduct(t, repo, func(p *models.Product) { p.Name = "Mug"; p.Category = "kitchen" })

	rows, err := repo.List(ctx, ListQuery{Category: "Apparel"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)

	rows, err = repo.List(ctx, ListQuery{Flag: enums.ProductFlagSale})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, older.ID, rows[0].ID)

	all, err := repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repo.List(ctx, ListQuery{Flag: "limited"})
	assert.ErrorIs(t, err, gorm.ErrInvalidValue)
}

func TestRepositorySearchMatchesAnyTokenAnywhere(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	shoe := seedProduct(t, repo, func(p *models.Product) {
		p.Name = "Trail Running Shoe"
		p.Brand = "Acme"
		p.Category = "footwear"
	})
	mat := seedProduct(t, repo, func(p *models.Product) {
		p.Name = "Yoga Mat"
		p.Category = "fitness"
		p.Description = "Non-slip surface"
	})
	seedProduct(t, repo, func(p *models.Product) { p.Name = "Desk Lamp"; p.Category = "home"; p.Description = "Warm light" })

	rows, err := repo.Search(ctx, []string{"RUNNING", "mat"}, 10)
	require.NoError(t, err)
	ids := []uuid.UUID{}
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{shoe.ID, mat.ID}, ids)

	rows, err = repo.Search(ctx, []string{"acme"}, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, shoe.ID, rows[0].ID)

	rows, err = repo.Search(ctx, []string{"non-slip"}, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = repo.Search(ctx, []string{"100%"}, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositorySearchHonoursLimit(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	for i := 0; i < 12; i++ {
		seedProduct(t, repo, func(p *models.Product) { p.Name = fmt.Sprintf("Widget %02d", i) })
	}
	rows, err := repo.Search(context.Background(), []string{"widget"}, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 10)
	assert.Equal(t, "Widget 00", rows[0].Name)
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	row := seedProduct(t, repo, nil)

	row.Name = "Renamed"
	row.Stock = 0
	require.NoError(t, repo.Update(ctx, &row))

	found, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)
	assert.Equal(t, 0, found.Stock)

	missing := models.Product{ID: uuid.New(), Name: "ghost", Category: "x"}
	assert.ErrorIs(t, repo.Update(ctx, &missing), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, row.ID))
	assert.ErrorIs(t, repo.Delete(ctx, row.ID), gorm.ErrRecordNotFound)
}
