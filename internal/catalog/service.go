package catalog

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const searchLimit = 10

// ProductInput is the admin-editable part of a product.
type ProductInput struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Brand       string           `json:"brand" validate:"max=120"`
	Category    string           `json:"category" validate:"required,max=120"`
	Price       decimal.Decimal  `json:"price"`
	OldPrice    *decimal.Decimal `json:"old_price"`
	Description string           `json:"description" validate:"max=5000"`
	Rating      float64          `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount int              `json:"review_count" validate:"gte=0"`
	Images      []string         `json:"images" validate:"dive,required"`
	Tags        []string         `json:"tags" validate:"dive,required"`
	Flags       Flags            `json:"flags"`
	Stock       int              `json:"stock"`
}

// Service exposes catalog reads and admin writes.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// Reader is the subset of Service the cart, wishlist and checkout depend on.
type Reader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	if id == uuid.Nil {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, mapRepoError(err, "load product")
	}
	return fromModel(*row)
}

// GetProducts omits ids that do not resolve.
func (s *service) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, mapRepoError(err, "load products")
	}
	products, err := fromModels(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	if filter.Flag != "" && !filter.Flag.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product flag").WithDetails(map[string]any{"field": "flag"})
	}
	if filter.Sort != "" && !filter.Sort.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort").WithDetails(map[string]any{"field": "sort"})
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min price exceeds max price").WithDetails(map[string]any{"field": "min_price"})
	}

	rows, err := s.repo.List(ctx, ListQuery{Category: filter.Category, Flag: filter.Flag})
	if err != nil {
		return nil, mapRepoError(err, "list products")
	}
	products, err := fromModels(rows)
	if err != nil {
		return nil, err
	}
	products = applyFilter(products, filter)
	sortProducts(products, filter.Sort)
	return products, nil
}

// Search does substring matching only; an empty query matches nothing.
func (s *service) Search(ctx context.Context, query string) ([]Product, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return []Product{}, nil
	}
	rows, err := s.repo.Search(ctx, tokens, searchLimit)
	if err != nil {
		return nil, mapRepoError(err, "search products")
	}
	return fromModels(rows)
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	product, err := buildProduct(uuid.New(), input)
	if err != nil {
		return Product{}, err
	}
	row := toModel(product)
	if err := s.repo.Create(ctx, &row); err != nil {
		return Product{}, mapRepoError(err, "create product")
	}
	return fromModel(row)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (Product, error) {
	if id == uuid.Nil {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := buildProduct(id, input)
	if err != nil {
		return Product{}, err
	}
	row := toModel(product)
	if err := s.repo.Update(ctx, &row); err != nil {
		return Product{}, mapRepoError(err, "update product")
	}
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete product")
	}
	return nil
}

func buildProduct(id uuid.UUID, input ProductInput) (Product, error) {
	if err := validation.Struct(input); err != nil {
		field, tag, _ := validation.FirstFailure(err)
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product").
			WithDetails(map[string]any{"field": field, "rule": tag})
	}
	product := Product{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Brand:       strings.TrimSpace(input.Brand),
		Category:    strings.TrimSpace(input.Category),
		Price:       input.Price.Round(2),
		OldPrice:    roundPtr(input.OldPrice),
		Description: input.Description,
		Rating:      input.Rating,
		ReviewCount: input.ReviewCount,
		Images:      input.Images,
		Tags:        input.Tags,
		Flags:       input.Flags,
		Stock:       input.Stock,
	}
	if err := product.Validate(); err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product").
			WithDetails(map[string]any{"violations": err.Error()})
	}
	return product, nil
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
	}
	if errors.Is(err, gorm.ErrInvalidValue) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, action)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	rounded := d.Round(2)
	return &rounded
}
