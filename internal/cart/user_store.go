package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserStore keeps an authenticated user's cart in cart_items, one row per product.
type UserStore struct {
	db     *gorm.DB
	userID uuid.UUID
}

func (s *UserStore) Backend() string { return BackendRemote }

func (s *UserStore) Entries(ctx context.Context) ([]Entry, error) {
	var rows []models.CartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", s.userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{ProductID: row.ProductID, Quantity: row.Quantity, AddedAt: row.CreatedAt})
	}
	return entries, nil
}

// Increment is a single upsert so concurrent adds for the same product both land.
func (s *UserStore) Increment(ctx context.Context, productID uuid.UUID, delta int, _ catalog.Product) error {
	return upsertIncrement(s.db.WithContext(ctx), s.userID, productID, delta)
}

func (s *UserStore) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	return s.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", s.userID, productID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()}).
		Error
}

func (s *UserStore) Remove(ctx context.Context, productID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", s.userID, productID).
		Delete(&models.CartItem{}).
		Error
}

func (s *UserStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", s.userID).
		Delete(&models.CartItem{}).
		Error
}

// Absorb increments every entry inside one transaction; either all land or none do.
func (s *UserStore) Absorb(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if err := upsertIncrement(tx, s.userID, entry.ProductID, entry.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertIncrement(db *gorm.DB, userID, productID uuid.UUID, delta int) error {
	now := time.Now().UTC()
	row := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  delta,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&row).Error
}
