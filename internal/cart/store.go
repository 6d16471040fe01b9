package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Backend labels used in logs and metrics.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Store persists one identity's cart entries.
type Store interface {
	Backend() string
	Entries(ctx context.Context) ([]Entry, error)
	// Increment adds delta to an existing entry or creates it.
	Increment(ctx context.Context, productID uuid.UUID, delta int, snapshot catalog.Product) error
	// SetQuantity is a no-op when the product is absent.
	SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error
	Remove(ctx context.Context, productID uuid.UUID) error
	Clear(ctx context.Context) error
}

// Stores hands out the store matching an identity.
type Stores struct {
	db       *gorm.DB
	blobs    redis.BlobStore
	guestTTL time.Duration
}

// NewStores wires both backends.
func NewStores(db *gorm.DB, blobs redis.BlobStore, guestTTL time.Duration) *Stores {
	return &Stores{db: db, blobs: blobs, guestTTL: guestTTL}
}

// For picks the backend once per request: guests get the local blob, users the remote table.
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
	return &GuestStore{blobs: s.blobs, key: redis.GuestKey(deviceID.String(), redis.CollectionCart), ttl: s.guestTTL}
}
