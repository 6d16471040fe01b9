package wishlist

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
)

type guestBlob struct {
	Entries []Entry `json:"entries"`
}

// GuestStore keeps a device's wishlist as one JSON blob, newest entry first.
type GuestStore struct {
	blobs redis.BlobStore
	key   string
	ttl   time.Duration
}

func (s *GuestStore) Backend() string { return BackendLocal }

func (s *GuestStore) Entries(ctx context.Context) ([]Entry, error) {
	blob, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return blob.Entries, nil
}

func (s *GuestStore) Add(ctx context.Context, productID uuid.UUID, snapshot catalog.Product) error {
	blob, err := s.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(blob.Entries, productID) >= 0 {
		return nil
	}
	entry := Entry{ProductID: productID, AddedAt: time.Now().UTC(), Snapshot: &snapshot}
	blob.Entries = append([]Entry{entry}, blob.Entries...)
	return s.blobs.SetJSON(ctx, s.key, blob, s.ttl)
}

func (s *GuestStore) Remove(ctx context.Context, productID uuid.UUID) error {
	blob, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(blob.Entries, productID)
	if idx < 0 {
		return nil
	}
	blob.Entries = append(blob.Entries[:idx], blob.Entries[idx+1:]...)
	return s.blobs.SetJSON(ctx, s.key, blob, s.ttl)
}

func (s *GuestStore) Has(ctx context.Context, productID uuid.UUID) (bool, error) {
	blob, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(blob.Entries, productID) >= 0, nil
}

func (s *GuestStore) Clear(ctx context.Context) error {
	return s.blobs.Del(ctx, s.key)
}

func (s *GuestStore) load(ctx context.Context) (guestBlob, error) {
	var blob guestBlob
	if _, err := s.blobs.GetJSON(ctx, s.key, &blob); err != nil {
		return guestBlob{}, err
	}
	if blob.Entries == nil {
		blob.Entries = []Entry{}
	}
	return blob, nil
}

func indexOf(entries []Entry, productID uuid.UUID) int {
	for i, entry := range entries {
		if entry.ProductID == productID {
			return i
		}
	}
	return -1
}
