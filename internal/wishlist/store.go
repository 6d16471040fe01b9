package wishlist

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Store persists one identity's wishlist entries.
type Store interface {
	Backend() string
	// Entries are returned newest first.
	Entries(ctx context.Context) ([]Entry, error)
	// Add ignores products already present.
	Add(ctx context.Context, productID uuid.UUID, snapshot catalog.Product) error
	Remove(ctx context.Context, productID uuid.UUID) error
	Has(ctx context.Context, productID uuid.UUID) (bool, error)
	Clear(ctx context.Context) error
}

// Stores hands out the store matching an identity.
type Stores struct {
	db       *gorm.DB
	blobs    redis.BlobStore
	guestTTL time.Duration
}

func NewStores(db *gorm.DB, blobs redis.BlobStore, guestTTL time.Duration) *Stores {
	return &Stores{db: db, blobs: blobs, guestTTL: guestTTL}
}

func (s *Stores) For(owner identity.Identity) Store {
	if owner.IsAuthenticated() {
		return s.User(owner.ID)
	}
	return s.Guest(owner.ID)
}

func (s *Stores) User(userID uuid.UUID) *UserStore {
	return &UserStore{db: s.db, userID: userID}
}

func (s *Stores) Guest(deviceID uuid.UUID) *GuestStore {
	return &GuestStore{blobs: s.blobs, key: redis.GuestKey(deviceID.String(), redis.CollectionWishlist), ttl: s.guestTTL}
}
