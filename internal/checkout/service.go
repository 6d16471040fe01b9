package checkout

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// CartSource is the slice of the cart aggregate checkout depends on.
type CartSource interface {
	Load(ctx context.Context, owner identity.Identity) (cart.Cart, error)
}

// OrderPlacer records confirmed checkouts and consumes the user's cart rows with the order.
type OrderPlacer interface {
	PlaceFromCart(ctx context.Context, input orders.PlaceInput) (orders.Order, error)
}

// Summary is the view of a checkout returned by every operation.
type Summary struct {
	Step       enums.CheckoutStep `json:"step"`
	Cart       cart.Cart          `json:"cart"`
	Shipping   *ShippingDetails   `json:"shipping,omitempty"`
	CouponCode string             `json:"coupon_code,omitempty"`
	Totals     Totals             `json:"totals"`
	Reference  string             `json:"reference,omitempty"`
}

// Service runs the checkout wizard for authenticated users.
type Service interface {
	Start(ctx context.Context, owner identity.Identity) (Summary, error)
	Get(ctx context.Context, owner identity.Identity) (Summary, error)
	ProceedToShipping(ctx context.Context, owner identity.Identity) (Summary, error)
	SubmitShipping(ctx context.Context, owner identity.Identity, details ShippingDetails) (Summary, error)
	SubmitPayment(ctx context.Context, owner identity.Identity, details PaymentDetails) (Summary, error)
	Back(ctx context.Context, owner identity.Identity) (Summary, error)
	ApplyCoupon(ctx context.Context, owner identity.Identity, code string) (Summary, error)
	RemoveCoupon(ctx context.Context, owner identity.Identity) (Summary, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Cart       CartSource
	Orders     OrderPlacer
	Sessions   SessionStore
	References ReferenceGenerator
	Metrics    *metrics.CheckoutMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	cart       CartSource
	orders     OrderPlacer
	sessions   SessionStore
	references ReferenceGenerator
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Cart == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	case params.Orders == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders service is required")
	case params.Sessions == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session store is required")
	case params.References == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference generator is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		cart:       params.Cart,
		orders:     params.Orders,
		sessions:   params.Sessions,
		references: params.References,
		metrics:    params.Metrics,
		logg:       logg,
		now:        now,
	}, nil
}

// Start begins a fresh checkout at the cart step, discarding any previous session.
func (s *service) Start(ctx context.Context, owner identity.Identity) (Summary, error) {
	if err := requireUser(owner); err != nil {
		return Summary{}, err
	}
	c, err := s.cart.Load(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	w := NewWorkflow(owner.ID, s.now().UTC())
	if err := s.save(ctx, w); err != nil {
		return Summary{}, err
	}
	return summarize(w, c), nil
}

func (s *service) Get(ctx context.Context, owner identity.Identity) (Summary, error) {
	w, c, err := s.current(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	return summarize(w, c), nil
}

func (s *service) ProceedToShipping(ctx context.Context, owner identity.Identity) (Summary, error) {
	w, c, err := s.current(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	from := w.Step
	err = s.transition(ctx, w, c, func(now time.Time) error {
		return w.advance(enums.CheckoutStepCart, now)
	})
	s.metrics.Transition(string(from), string(enums.CheckoutStepShipping), err)
	if err != nil {
		return Summary{}, err
	}
	return summarize(w, c), nil
}

// SubmitShipping stores the shipping form and moves on to payment. Shipping details can also
// be resubmitted from the payment step to change the method; the step is then kept.
func (s *service) SubmitShipping(ctx context.Context, owner identity.Identity, details ShippingDetails) (Summary, error) {
	w, c, err := s.current(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	from := w.Step
	err = s.transition(ctx, w, c, func(now time.Time) error {
		if w.Step != enums.CheckoutStepShipping && w.Step != enums.CheckoutStepPayment {
			return stepConflict(w.Step, enums.CheckoutStepPayment)
		}
		if err := w.SetShipping(details, now); err != nil {
			return err
		}
		if w.Step == enums.CheckoutStepShipping {
			return w.advance(enums.CheckoutStepShipping, now)
		}
		return nil
	})
	s.metrics.Transition(string(from), string(enums.CheckoutStepPayment), err)
	if err != nil {
		return Summary{}, err
	}
	return summarize(w, c), nil
}

// SubmitPayment confirms the checkout. The order and the cart rows it consumes are written
// in one transaction, so a second concurrent confirmation fails with STATE_CONFLICT.
func (s *service) SubmitPayment(ctx context.Context, owner identity.Identity, details PaymentDetails) (Summary, error) {
	w, c, err := s.current(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	from := w.Step
	summary, err := s.confirm(ctx, owner, w, c, details)
	s.metrics.Transition(string(from), string(enums.CheckoutStepConfirmation), err)
	return summary, err
}

func (s *service) confirm(ctx context.Context, owner identity.Identity, w *Workflow, c cart.Cart, details PaymentDetails) (Summary, error) {
	if w.Step != enums.CheckoutStepPayment {
		return Summary{}, stepConflict(w.Step, enums.CheckoutStepConfirmation)
	}
	if err := validatePayment(details); err != nil {
		return Summary{}, err
	}
	if err := requireLines(c); err != nil {
		return Summary{}, err
	}
	if w.Shipping == nil {
		return Summary{}, stepConflict(w.Step, enums.CheckoutStepConfirmation)
	}

	now := s.now().UTC()
	reference, err := s.references.Next(now)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order reference")
	}
	totals := w.Totals(c.Subtotal)
	if _, err := s.orders.PlaceFromCart(ctx, orderInput(reference, w, c, totals)); err != nil {
		return Summary{}, pkgerrors.Passthrough(pkgerrors.CodeDependency, err, "place order")
	}
	if err := w.advance(enums.CheckoutStepPayment, now); err != nil {
		return Summary{}, err
	}

	ctx = s.logg.WithField(ctx, "order_reference", reference)
	if err := s.sessions.Delete(ctx, owner.ID); err != nil {
		s.logg.Error(ctx, "failed to delete checkout session", err)
	}
	s.logg.Info(ctx, "checkout confirmed")

	summary := summarize(w, c)
	summary.Reference = reference
	return summary, nil
}

func (s *service) Back(ctx context.Context, owner identity.Identity) (Summary, error) {
	w, c, err := s.current(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	from := w.Step
	err = w.Back(s.now().UTC())
	if err == nil {
		err = s.save(ctx, w)
	}
	s.metrics.Transition(string(from), string(w.Step), err)
	if err != nil {
		return Summary{}, err
	}
	return summarize(w, c), nil
}

func (s *service) ApplyCoupon(ctx context.Context, owner identity.Identity, code string) (Summary, error) {
	w, c, err := s.current(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	if err := w.ApplyCoupon(code, s.now().UTC()); err != nil {
		return Summary{}, err
	}
	if err := s.save(ctx, w); err != nil {
		return Summary{}, err
	}
	return summarize(w, c), nil
}

func (s *service) RemoveCoupon(ctx context.Context, owner identity.Identity) (Summary, error) {
	w, c, err := s.current(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	w.RemoveCoupon(s.now().UTC())
	if err := s.save(ctx, w); err != nil {
		return Summary{}, err
	}
	return summarize(w, c), nil
}

// transition applies a forward move guarded by a non-empty cart and persists it.
// The session is untouched when the guard or the move fails.
func (s *service) transition(ctx context.Context, w *Workflow, c cart.Cart, move func(time.Time) error) error {
	if err := requireLines(c); err != nil {
		return err
	}
	if err := move(s.now().UTC()); err != nil {
		return err
	}
	return s.save(ctx, w)
}

func (s *service) current(ctx context.Context, owner identity.Identity) (*Workflow, cart.Cart, error) {
	if err := requireUser(owner); err != nil {
		return nil, cart.Cart{}, err
	}
	w, found, err := s.sessions.Load(ctx, owner.ID)
	if err != nil {
		return nil, cart.Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	if !found {
		return nil, cart.Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	c, err := s.cart.Load(ctx, owner)
	if err != nil {
		return nil, cart.Cart{}, err
	}
	return w, c, nil
}

func (s *service) save(ctx context.Context, w *Workflow) error {
	if err := s.sessions.Save(ctx, w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}
	return nil
}

func summarize(w *Workflow, c cart.Cart) Summary {
	return Summary{
		Step:       w.Step,
		Cart:       c,
		Shipping:   w.Shipping,
		CouponCode: w.CouponCode,
		Totals:     w.Totals(c.Subtotal),
	}
}

func orderInput(reference string, w *Workflow, c cart.Cart, totals Totals) orders.PlaceInput {
	lines := make([]orders.Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, orders.Line{
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			UnitPrice:   line.Product.Price,
			Quantity:    line.Quantity,
			LineTotal:   line.Total(),
		})
	}
	ship := w.Shipping
	return orders.PlaceInput{
		Reference: reference,
		UserID:    w.UserID,
		ShipTo: orders.Address{
			FullName: ship.FullName,
			Address:  ship.Address,
			City:     ship.City,
			State:    ship.State,
			Zip:      ship.Zip,
			Country:  ship.Country,
			Phone:    ship.Phone,
		},
		ShippingMethod: ship.Method,
		ShippingFee:    totals.ShippingFee,
		CouponCode:     w.CouponCode,
		Discount:       totals.Discount,
		Subtotal:       totals.Subtotal,
		Total:          totals.Total,
		Lines:          lines,
	}
}

func requireUser(owner identity.Identity) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if !owner.IsAuthenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out").
			WithDetails(map[string]any{"redirect": "sign_in"})
	}
	return nil
}

func requireLines(c cart.Cart) error {
	if c.IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty").
			WithDetails(map[string]any{"reason": "empty_cart"})
	}
	return nil
}
