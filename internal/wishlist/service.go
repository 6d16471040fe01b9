package wishlist

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
)

// Service is the wishlist aggregate.
type Service interface {
	Load(ctx context.Context, owner identity.Identity) (Wishlist, error)
	AddItem(ctx context.Context, owner identity.Identity, productID uuid.UUID) (Wishlist, error)
	RemoveItem(ctx context.Context, owner identity.Identity, productID uuid.UUID) (Wishlist, error)
	Contains(ctx context.Context, owner identity.Identity, productID uuid.UUID) (bool, error)
	Clear(ctx context.Context, owner identity.Identity) (Wishlist, error)
	MergeGuest(ctx context.Context, guestID, userID uuid.UUID) (Wishlist, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Stores  *Stores
	Catalog catalog.Reader
	Metrics *metrics.CollectionMetrics
	Logger  *logger.Logger
}

type service struct {
	stores  *Stores
	catalog catalog.Reader
	metrics *metrics.CollectionMetrics
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist stores are required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		stores:  params.Stores,
		catalog: params.Catalog,
		metrics: params.Metrics,
		logg:    logg,
	}, nil
}

func (s *service) Load(ctx context.Context, owner identity.Identity) (Wishlist, error) {
	if err := owner.Validate(); err != nil {
		return Wishlist{}, err
	}
	return s.load(ctx, owner, s.stores.For(owner))
}

func (s *service) AddItem(ctx context.Context, owner identity.Identity, productID uuid.UUID) (Wishlist, error) {
	if err := owner.Validate(); err != nil {
		return Wishlist{}, err
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return Wishlist{}, err
	}

	store := s.stores.For(owner)
	err = store.Add(ctx, productID, product)
	s.metrics.WishlistMutation("add", store.Backend(), err)
	if err != nil {
		return Wishlist{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return s.load(ctx, owner, store)
}

func (s *service) RemoveItem(ctx context.Context, owner identity.Identity, productID uuid.UUID) (Wishlist, error) {
	if err := owner.Validate(); err != nil {
		return Wishlist{}, err
	}

	store := s.stores.For(owner)
	err := store.Remove(ctx, productID)
	s.metrics.WishlistMutation("remove", store.Backend(), err)
	if err != nil {
		return Wishlist{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return s.load(ctx, owner, store)
}

func (s *service) Contains(ctx context.Context, owner identity.Identity, productID uuid.UUID) (bool, error) {
	if err := owner.Validate(); err != nil {
		return false, err
	}
	found, err := s.stores.For(owner).Has(ctx, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read wishlist")
	}
	return found, nil
}

func (s *service) Clear(ctx context.Context, owner identity.Identity) (Wishlist, error) {
	if err := owner.Validate(); err != nil {
		return Wishlist{}, err
	}

	store := s.stores.For(owner)
	err := store.Clear(ctx)
	s.metrics.WishlistMutation("clear", store.Backend(), err)
	if err != nil {
		return Wishlist{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear wishlist")
	}
	return Wishlist{Owner: owner, Items: []Item{}}, nil
}

// MergeGuest unions a device wishlist into the user's and then drops the device copy.
func (s *service) MergeGuest(ctx context.Context, guestID, userID uuid.UUID) (Wishlist, error) {
	if guestID == uuid.Nil || userID == uuid.Nil {
		return Wishlist{}, pkgerrors.New(pkgerrors.CodeValidation, "guest and user ids are required")
	}
	user := identity.User(userID, "")
	guestStore := s.stores.Guest(guestID)
	userStore := s.stores.User(userID)

	entries, err := guestStore.Entries(ctx)
	if err != nil {
		return Wishlist{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest wishlist")
	}
	if len(entries) == 0 {
		return s.load(ctx, user, userStore)
	}

	products, err := s.catalog.GetProducts(ctx, entryIDs(entries))
	if err != nil {
		return Wishlist{}, err
	}
	live := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := products[entry.ProductID]; ok {
			live = append(live, entry)
		}
	}

	err = userStore.Absorb(ctx, live)
	s.metrics.WishlistMutation("merge", userStore.Backend(), err)
	if err != nil {
		return Wishlist{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge guest wishlist")
	}
	if err := guestStore.Clear(ctx); err != nil {
		s.logg.Error(ctx, "failed to clear merged guest wishlist", err)
	}
	return s.load(ctx, user, userStore)
}

func (s *service) load(ctx context.Context, owner identity.Identity, store Store) (Wishlist, error) {
	entries, err := store.Entries(ctx)
	if err != nil {
		return Wishlist{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	items := make([]Item, 0, len(entries))
	if store.Backend() == BackendLocal {
		for _, entry := range entries {
			if entry.Snapshot == nil {
				continue
			}
			items = append(items, Item{ProductID: entry.ProductID, AddedAt: entry.AddedAt, Product: *entry.Snapshot})
		}
		return Wishlist{Owner: owner, Items: items}, nil
	}

	products, err := s.catalog.GetProducts(ctx, entryIDs(entries))
	if err != nil {
		return Wishlist{}, err
	}
	for _, entry := range entries {
		product, ok := products[entry.ProductID]
		if !ok {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", entry.ProductID.String()), "wishlist references a product that no longer exists")
			continue
		}
		items = append(items, Item{ProductID: entry.ProductID, AddedAt: entry.AddedAt, Product: product})
	}
	return Wishlist{Owner: owner, Items: items}, nil
}

func entryIDs(entries []Entry) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ProductID)
	}
	return ids
}
