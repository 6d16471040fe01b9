package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
)

// guestBlob is the whole device cart, rewritten on every mutation.
type guestBlob struct {
	Entries []Entry `json:"entries"`
}

// GuestStore keeps a device's cart as one JSON blob whose TTL is refreshed on every write.
// Concurrent writers for the same device race and the last write wins.
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

func (s *GuestStore) Increment(ctx context.Context, productID uuid.UUID, delta int, snapshot catalog.Product) error {
	blob, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range blob.Entries {
		if blob.Entries[i].ProductID == productID {
			blob.Entries[i].Quantity += delta
			blob.Entries[i].Snapshot = &snapshot
			return s.save(ctx, blob)
		}
	}
	blob.Entries = append(blob.Entries, Entry{
		ProductID: productID,
		Quantity:  delta,
		Snapshot:  &snapshot,
		AddedAt:   time.Now().UTC(),
	})
	return s.save(ctx, blob)
}

func (s *GuestStore) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	blob, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range blob.Entries {
		if blob.Entries[i].ProductID == productID {
			blob.Entries[i].Quantity = quantity
			return s.save(ctx, blob)
		}
	}
	return nil
}

func (s *GuestStore) Remove(ctx context.Context, productID uuid.UUID) error {
	blob, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := blob.Entries[:0]
	for _, entry := range blob.Entries {
		if entry.ProductID != productID {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(blob.Entries) {
		return nil
	}
	blob.Entries = kept
	return s.save(ctx, blob)
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

func (s *GuestStore) save(ctx context.Context, blob guestBlob) error {
	return s.blobs.SetJSON(ctx, s.key, blob, s.ttl)
}
