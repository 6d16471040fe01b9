package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeBlobs struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	setErr error
	getErr error
	delErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeBlobs) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if f.getErr != nil {
		return false, f.getErr
	}
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeBlobs) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	f.ttls[key] = ttl
	return nil
}

func (f *fakeBlobs) Del(_ context.Context, keys ...string) error {
	if f.delErr != nil {
		return f.delErr
	}
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

var errRedisDown = errors.New("redis: connection refused")

type stubCatalog struct {
	products map[uuid.UUID]catalog.Product
}

func newStubCatalog(products ...catalog.Product) *stubCatalog {
	c := &stubCatalog{products: map[uuid.UUID]catalog.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *stubCatalog) GetProduct(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

func (c *stubCatalog) GetProducts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error) {
	out := map[uuid.UUID]catalog.Product{}
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func product(name, price string) catalog.Product {
	return catalog.Product{
		ID:       uuid.New(),
		Name:     name,
		Category: "apparel",
		Price:    decimal.RequireFromString(price),
		Stock:    10,
		Images:   []string{},
		Tags:     []string{},
	}
}
