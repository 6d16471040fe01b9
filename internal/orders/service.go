package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service covers order placement, tracking and the admin status workflow.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (Order, error)
	PlaceFromCart(ctx context.Context, input PlaceInput) (Order, error)
	Track(ctx context.Context, userID uuid.UUID, reference string) (Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error)
	AdminList(ctx context.Context, status string, params pagination.Params) (Page, error)
	AdminUpdateStatus(ctx context.Context, reference, status string) (Order, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
	now      func() time.Time
}

var errCartConsumed = errors.New("cart has no rows left to order")

func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg, now: time.Now}, nil
}

func (s *service) Place(ctx context.Context, input PlaceInput) (Order, error) {
	row, err := s.newRow(input)
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return Order{}, placeError(err)
	}
	s.logPlaced(ctx, row)
	return fromModel(*row), nil
}

// PlaceFromCart records the order and deletes the user's cart rows in one transaction.
// When no cart rows remain a concurrent confirmation already consumed the cart, and
// nothing is written.
func (s *service) PlaceFromCart(ctx context.Context, input PlaceInput) (Order, error) {
	row, err := s.newRow(input)
	if err != nil {
		return Order{}, err
	}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		consumed, err := repo.DeleteCartItems(ctx, input.UserID)
		if err != nil {
			return err
		}
		if consumed == 0 {
			return errCartConsumed
		}
		return repo.Create(ctx, row)
	})
	if errors.Is(err, errCartConsumed) {
		return Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart was already checked out").
			WithDetails(map[string]any{"reason": "cart_consumed"})
	}
	if err != nil {
		return Order{}, placeError(err)
	}
	s.logPlaced(ctx, row)
	return fromModel(*row), nil
}

func (s *service) newRow(input PlaceInput) (*models.Order, error) {
	if err := validatePlaceInput(input); err != nil {
		return nil, err
	}
	row := toModel(input)
	row.Status = enums.OrderStatusPlaced
	now := s.now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	return row, nil
}

func placeError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order reference already used")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
}

func (s *service) logPlaced(ctx context.Context, row *models.Order) {
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_reference": row.Reference,
		"user_id":         row.UserID.String(),
	}), "order placed")
}

// Track returns the caller's own order. Another user's order is reported as not found.
func (s *service) Track(ctx context.Context, userID uuid.UUID, reference string) (Order, error) {
	if userID == uuid.Nil {
		return Order{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to track orders")
	}
	row, err := s.findByReference(ctx, reference)
	if err != nil {
		return Order{}, err
	}
	if row.UserID != userID {
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return fromModel(*row), nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error) {
	if userID == uuid.Nil {
		return Page{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to list orders")
	}
	return s.list(ctx, ListQuery{UserID: userID}, params)
}

func (s *service) AdminList(ctx context.Context, status string, params pagination.Params) (Page, error) {
	q := ListQuery{}
	if status = strings.TrimSpace(status); status != "" {
		parsed, err := enums.ParseOrderStatus(strings.ToLower(status))
		if err != nil {
			return Page{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
				WithDetails(map[string]any{"field": "status"})
		}
		q.Status = parsed
	}
	return s.list(ctx, q, params)
}

// AdminUpdateStatus applies one lifecycle step. Illegal or concurrent transitions are state conflicts.
func (s *service) AdminUpdateStatus(ctx context.Context, reference, status string) (Order, error) {
	next, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]any{"field": "status"})
	}
	row, err := s.findByReference(ctx, reference)
	if err != nil {
		return Order{}, err
	}
	if !row.Status.CanTransitionTo(next) {
		return Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal order status transition").
			WithDetails(map[string]any{"from": row.Status, "to": next})
	}

	updated, err := s.repo.UpdateStatus(ctx, row.ID, row.Status, next)
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !updated {
		return Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently").
			WithDetails(map[string]any{"from": row.Status, "to": next})
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_reference": row.Reference,
		"from":            string(row.Status),
		"to":              string(next),
	}), "order status updated")

	reloaded, err := s.findByReference(ctx, row.Reference)
	if err != nil {
		return Order{}, err
	}
	return fromModel(*reloaded), nil
}

func (s *service) findByReference(ctx context.Context, reference string) (*models.Order, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference is required").
			WithDetails(map[string]any{"field": "reference"})
	}
	row, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return row, nil
}

func (s *service) list(ctx context.Context, q ListQuery, params pagination.Params) (Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]any{"field": "cursor"})
	}
	q.Cursor = cursor
	q.Limit = pagination.LimitWithBuffer(params.Limit)

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page, next := pagination.Trim(rows, params.Limit, func(row models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return Page{Orders: fromModels(page), NextCursor: next}, nil
}

func validatePlaceInput(input PlaceInput) error {
	switch {
	case strings.TrimSpace(input.Reference) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "reference is required")
	case input.UserID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	case !input.ShippingMethod.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping method is invalid")
	case len(input.Lines) == 0:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "an order needs at least one line")
	case input.Total.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "total cannot be negative")
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
	}
	return nil
}
