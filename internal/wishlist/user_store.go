package wishlist

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserStore keeps an authenticated user's wishlist in wishlist_items.
type UserStore struct {
	db     *gorm.DB
	userID uuid.UUID
}

func (s *UserStore) Backend() string { return BackendRemote }

func (s *UserStore) Entries(ctx context.Context) ([]Entry, error) {
	var rows []models.WishlistItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", s.userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{ProductID: row.ProductID, AddedAt: row.CreatedAt})
	}
	return entries, nil
}

func (s *UserStore) Add(ctx context.Context, productID uuid.UUID, _ catalog.Product) error {
	return insertIgnore(s.db.WithContext(ctx), s.userID, productID, time.Now().UTC())
}

func (s *UserStore) Remove(ctx context.Context, productID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", s.userID, productID).
		Delete(&models.WishlistItem{}).
		Error
}

func (s *UserStore) Has(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", s.userID, productID).
		Count(&count).Error
	return count > 0, err
}

func (s *UserStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", s.userID).
		Delete(&models.WishlistItem{}).
		Error
}

// Absorb unions entries into the user's wishlist in one transaction, keeping their original add times.
func (s *UserStore) Absorb(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			addedAt := entry.AddedAt
			if addedAt.IsZero() {
				addedAt = time.Now().UTC()
			}
			if err := insertIgnore(tx, s.userID, entry.ProductID, addedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertIgnore(db *gorm.DB, userID, productID uuid.UUID, addedAt time.Time) error {
	row := models.WishlistItem{UserID: userID, ProductID: productID, CreatedAt: addedAt}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&row).Error
}
