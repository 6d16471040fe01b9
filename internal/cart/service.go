package cart

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
)

// Service is the cart aggregate. Every mutation persists first and returns the reloaded cart.
type Service interface {
	Load(ctx context.Context, owner identity.Identity) (Cart, error)
	AddItem(ctx context.Context, owner identity.Identity, productID uuid.UUID, quantity int) (Cart, error)
	UpdateQuantity(ctx context.Context, owner identity.Identity, productID uuid.UUID, quantity int) (Cart, error)
	RemoveItem(ctx context.Context, owner identity.Identity, productID uuid.UUID) (Cart, error)
	Clear(ctx context.Context, owner identity.Identity) (Cart, error)
	MergeGuest(ctx context.Context, guestID, userID uuid.UUID) (Cart, error)
}

// ServiceParams groups dependencies for the cart service.
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

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart stores are required")
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

func (s *service) Load(ctx context.Context, owner identity.Identity) (Cart, error) {
	if err := owner.Validate(); err != nil {
		return Cart{}, err
	}
	return s.load(ctx, owner, s.stores.For(owner))
}

func (s *service) AddItem(ctx context.Context, owner identity.Identity, productID uuid.UUID, quantity int) (Cart, error) {
	if err := owner.Validate(); err != nil {
		return Cart{}, err
	}
	if err := requireQuantity(quantity); err != nil {
		return Cart{}, err
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}

	store := s.stores.For(owner)
	entries, err := store.Entries(ctx)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if existing := quantityOf(entries, productID); existing+quantity > MaxLineQuantity {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the per-line maximum").
			WithDetails(map[string]any{"field": "quantity", "max": MaxLineQuantity, "current": existing})
	}
	err = store.Increment(ctx, productID, quantity, product)
	s.metrics.CartMutation("add", store.Backend(), err)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return s.load(ctx, owner, store)
}

// UpdateQuantity rejects 0; removal goes through RemoveItem.
func (s *service) UpdateQuantity(ctx context.Context, owner identity.Identity, productID uuid.UUID, quantity int) (Cart, error) {
	if err := owner.Validate(); err != nil {
		return Cart{}, err
	}
	if err := requireQuantity(quantity); err != nil {
		return Cart{}, err
	}

	store := s.stores.For(owner)
	err := store.SetQuantity(ctx, productID, quantity)
	s.metrics.CartMutation("update", store.Backend(), err)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return s.load(ctx, owner, store)
}

func (s *service) RemoveItem(ctx context.Context, owner identity.Identity, productID uuid.UUID) (Cart, error) {
	if err := owner.Validate(); err != nil {
		return Cart{}, err
	}

	store := s.stores.For(owner)
	err := store.Remove(ctx, productID)
	s.metrics.CartMutation("remove", store.Backend(), err)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.load(ctx, owner, store)
}

func (s *service) Clear(ctx context.Context, owner identity.Identity) (Cart, error) {
	if err := owner.Validate(); err != nil {
		return Cart{}, err
	}

	store := s.stores.For(owner)
	err := store.Clear(ctx)
	s.metrics.CartMutation("clear", store.Backend(), err)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return NewCart(owner, nil), nil
}

// MergeGuest folds a device cart into the user's cart with add semantics, then drops the device cart.
// If the user-side write fails the device cart is left untouched so the merge can be retried.
func (s *service) MergeGuest(ctx context.Context, guestID, userID uuid.UUID) (Cart, error) {
	if guestID == uuid.Nil || userID == uuid.Nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "guest and user ids are required")
	}
	user := identity.User(userID, "")
	guestStore := s.stores.Guest(guestID)
	userStore := s.stores.User(userID)

	entries, err := guestStore.Entries(ctx)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart")
	}
	if len(entries) == 0 {
		return s.load(ctx, user, userStore)
	}

	products, err := s.catalog.GetProducts(ctx, entryIDs(entries))
	if err != nil {
		return Cart{}, err
	}
	current, err := userStore.Entries(ctx)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	live := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		entryCtx := s.logg.WithField(ctx, "product_id", entry.ProductID.String())
		if _, ok := products[entry.ProductID]; !ok {
			s.logg.Warn(entryCtx, "dropping vanished product from guest cart merge")
			continue
		}
		room := MaxLineQuantity - quantityOf(current, entry.ProductID)
		if entry.Quantity > room {
			s.logg.Warn(entryCtx, "capping merged cart line at the per-line maximum")
			entry.Quantity = room
		}
		if entry.Quantity < 1 {
			continue
		}
		live = append(live, entry)
	}

	err = userStore.Absorb(ctx, live)
	s.metrics.CartMutation("merge", userStore.Backend(), err)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge guest cart")
	}

	if err := guestStore.Clear(ctx); err != nil {
		s.logg.Error(ctx, "failed to clear merged guest cart", err)
	}
	return s.load(ctx, user, userStore)
}

func (s *service) load(ctx context.Context, owner identity.Identity, store Store) (Cart, error) {
	entries, err := store.Entries(ctx)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if store.Backend() == BackendLocal {
		return NewCart(owner, linesFromSnapshots(entries)), nil
	}

	products, err := s.catalog.GetProducts(ctx, entryIDs(entries))
	if err != nil {
		return Cart{}, err
	}
	lines := make([]Line, 0, len(entries))
	for _, entry := range entries {
		product, ok := products[entry.ProductID]
		if !ok {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", entry.ProductID.String()), "cart references a product that no longer exists")
			continue
		}
		lines = append(lines, Line{ProductID: entry.ProductID, Quantity: entry.Quantity, Product: product})
	}
	return NewCart(owner, lines), nil
}

func linesFromSnapshots(entries []Entry) []Line {
	lines := make([]Line, 0, len(entries))
	for _, entry := range entries {
		if entry.Snapshot == nil || entry.Quantity < 1 {
			continue
		}
		lines = append(lines, Line{ProductID: entry.ProductID, Quantity: entry.Quantity, Product: *entry.Snapshot})
	}
	return lines
}

func entryIDs(entries []Entry) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ProductID)
	}
	return ids
}

func quantityOf(entries []Entry, productID uuid.UUID) int {
	for _, entry := range entries {
		if entry.ProductID == productID {
			return entry.Quantity
		}
	}
	return 0
}

func requireQuantity(quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"field": "quantity"})
	}
	if quantity > MaxLineQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the per-line maximum").
			WithDetails(map[string]any{"field": "quantity", "max": MaxLineQuantity})
	}
	return nil
}
