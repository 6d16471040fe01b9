package catalog

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var flagColumns = map[enums.ProductFlag]string{
	enums.ProductFlagNew:        "is_new",
	enums.ProductFlagFeatured:   "is_featured",
	enums.ProductFlagSale:       "is_on_sale",
	enums.ProductFlagBestseller: "is_bestseller",
}

var searchColumns = []string{"name", "category", "description", "brand"}

// ListQuery narrows the rows loaded for a listing; zero values mean "any".
type ListQuery struct {
	Category string
	Flag     enums.ProductFlag
}

// Repository wraps product persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads one product row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the rows that exist among ids.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns matching products, newest first.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if category := strings.TrimSpace(q.Category); category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if q.Flag != "" {
		column, ok := flagColumns[q.Flag]
		if !ok {
			return nil, gorm.ErrInvalidValue
		}
		query = query.Where(column+" = ?", true)
	}

	var rows []models.Product
	if err := query.Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Search ORs every token across the text columns, case-insensitively.
func (r *Repository) Search(ctx context.Context, tokens []string, limit int) ([]models.Product, error) {
	if len(tokens) == 0 {
		return []models.Product{}, nil
	}

	clauses := make([]string, 0, len(tokens)*len(searchColumns))
	args := make([]any, 0, len(tokens)*len(searchColumns))
	for _, token := range tokens {
		pattern := "%" + escapeLike(strings.ToLower(token)) + "%"
		for _, column := range searchColumns {
			clauses = append(clauses, "LOWER("+column+`) LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
	}

	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where(strings.Join(clauses, " OR "), args...).
		Order("name").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update overwrites every mutable column; a missing row yields gorm.ErrRecordNotFound.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{ID: product.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(product)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a product row; a missing row yields gorm.ErrRecordNotFound.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
