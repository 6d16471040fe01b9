package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
)

type fakeCart struct {
	lines []cart.Line
}

func (f *fakeCart) Load(_ context.Context, owner identity.Identity) (cart.Cart, error) {
	return cart.NewCart(owner, f.lines), nil
}

// fakeOrders consumes the fake cart with each order, like the transactional repository does.
type fakeOrders struct {
	cart   *fakeCart
	placed []orders.PlaceInput
	err    error
}

func (f *fakeOrders) PlaceFromCart(_ context.Context, input orders.PlaceInput) (orders.Order, error) {
	if f.err != nil {
		return orders.Order{}, f.err
	}
	if len(f.cart.lines) == 0 {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart was already checked out")
	}
	f.cart.lines = nil
	f.placed = append(f.placed, input)
	return orders.Order{Reference: input.Reference, Status: enums.OrderStatusPlaced}, nil
}

type fakeBlobs struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	setErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeBlobs) GetJSON(_ context.Context, key string, dest any) (bool, error) {
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
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type fixedReferences struct{ next string }

func (f fixedReferences) Next(time.Time) (string, error) { return f.next, nil }

type fixture struct {
	svc    Service
	cart   *fakeCart
	orders *fakeOrders
	blobs  *fakeBlobs
	user   identity.Identity
}

func setup(t *testing.T, lines ...cart.Line) fixture {
	t.Helper()
	f := fixture{
		cart:  &fakeCart{lines: lines},
		blobs: newFakeBlobs(),
		user:  identity.User(uuid.New(), ""),
	}
	f.orders = &fakeOrders{cart: f.cart}
	svc, err := NewService(ServiceParams{
		Cart:       f.cart,
		Orders:     f.orders,
		Sessions:   NewRedisSessionStore(f.blobs, 30*time.Minute),
		References: fixedReferences{next: "ORD-TESTREF1"},
		Now:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func line(name, price string, qty int) cart.Line {
	p := catalog.Product{ID: uuid.New(), Name: name, Category: "gear", Price: dec(price), Stock: 5}
	return cart.Line{ProductID: p.ID, Quantity: qty, Product: p}
}

func payment() PaymentDetails {
	return PaymentDetails{CardHolder: "Ada", CardNumber: "4242 4242 4242 4242", Expiry: "12/30", CVV: "123"}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatalf("expected error without dependencies")
	}
}

func TestGuestIsRedirectedToSignIn(t *testing.T) {
	f := setup(t, line("Tee", "10.00", 1))
	_, err := f.svc.Start(context.Background(), identity.Guest(uuid.New()))
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	details, _ := pkgerrors.As(err).Details().(map[string]any)
	if details["redirect"] != "sign_in" {
		t.Fatalf("expected sign_in redirect, got %#v", details)
	}
}

func TestEmptyCartNeverLeavesCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	if _, err := f.svc.Start(ctx, f.user); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.ProceedToShipping(ctx, f.user); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict for empty cart, got %v", err)
	}
	summary, err := f.svc.Get(ctx, f.user)
	if err != nil || summary.Step != enums.CheckoutStepCart {
		t.Fatalf("expected to stay at cart, got %s err=%v", summary.Step, err)
	}
}

func TestCartEmptiedMidFlowBlocksPayment(t *testing.T) {
	f := setup(t, line("Tee", "10.00", 1))
	ctx := context.Background()
	mustStep(t, func() (Summary, error) { return f.svc.Start(ctx, f.user) }, enums.CheckoutStepCart)
	mustStep(t, func() (Summary, error) { return f.svc.ProceedToShipping(ctx, f.user) }, enums.CheckoutStepShipping)

	f.cart.lines = nil
	_, err := f.svc.SubmitShipping(ctx, f.user, validShipping(enums.ShippingMethodStandard))
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	summary, _ := f.svc.Get(ctx, f.user)
	if summary.Step != enums.CheckoutStepShipping {
		t.Fatalf("must not reach payment with an empty cart, at %s", summary.Step)
	}
}

func TestHappyPathPlacesOrder(t *testing.T) {
	f := setup(t, line("Tee", "30.00", 2), line("Cap", "40.00", 1))
	ctx := context.Background()

	mustStep(t, func() (Summary, error) { return f.svc.Start(ctx, f.user) }, enums.CheckoutStepCart)
	mustStep(t, func() (Summary, error) { return f.svc.ProceedToShipping(ctx, f.user) }, enums.CheckoutStepShipping)

	_, err := f.svc.SubmitShipping(ctx, f.user, ShippingDetails{FullName: "Ada", Method: enums.ShippingMethodStandard})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) || detailField(t, err) != "address" {
		t.Fatalf("expected address to be reported, got %v", err)
	}

	summary := mustStep(t, func() (Summary, error) {
		return f.svc.SubmitShipping(ctx, f.user, validShipping(enums.ShippingMethodStandard))
	}, enums.CheckoutStepPayment)
	if !summary.Totals.Total.Equal(dec("104.99")) {
		t.Fatalf("expected 100 + 4.99, got %s", summary.Totals.Total)
	}

	summary, err = f.svc.ApplyCoupon(ctx, f.user, "freeship")
	if err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	if !summary.Totals.Total.Equal(dec("100.00")) {
		t.Fatalf("subtotal 100 + standard with FREESHIP should total 100.00, got %s", summary.Totals.Total)
	}

	incomplete := payment()
	incomplete.CardNumber = ""
	if _, err := f.svc.SubmitPayment(ctx, f.user, incomplete); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.orders.placed) != 0 {
		t.Fatalf("no order may be placed with incomplete payment")
	}

	summary = mustStep(t, func() (Summary, error) { return f.svc.SubmitPayment(ctx, f.user, payment()) }, enums.CheckoutStepConfirmation)
	if summary.Reference != "ORD-TESTREF1" {
		t.Fatalf("unexpected reference %q", summary.Reference)
	}
	if len(summary.Cart.Lines) != 2 {
		t.Fatalf("confirmation should show the purchased lines, got %+v", summary.Cart.Lines)
	}
	if len(f.orders.placed) != 1 {
		t.Fatalf("expected one order, got %d", len(f.orders.placed))
	}
	placed := f.orders.placed[0]
	if placed.CouponCode != "FREESHIP" || !placed.Total.Equal(dec("100.00")) || len(placed.Lines) != 2 {
		t.Fatalf("unexpected order input %+v", placed)
	}
	if !placed.Lines[0].LineTotal.Equal(dec("60.00")) {
		t.Fatalf("expected line total 60.00, got %s", placed.Lines[0].LineTotal)
	}
	if len(f.cart.lines) != 0 {
		t.Fatalf("cart should be consumed by the order, got %d lines", len(f.cart.lines))
	}
	if _, ok := f.blobs.data[redis.CheckoutKey(f.user.ID.String())]; ok {
		t.Fatalf("session should be deleted after confirmation")
	}
	if _, err := f.svc.Get(ctx, f.user); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected no checkout in progress, got %v", err)
	}
}

func TestOrderFailureKeepsPaymentStep(t *testing.T) {
	f := setup(t, line("Tee", "10.00", 1))
	ctx := context.Background()
	mustStep(t, func() (Summary, error) { return f.svc.Start(ctx, f.user) }, enums.CheckoutStepCart)
	mustStep(t, func() (Summary, error) { return f.svc.ProceedToShipping(ctx, f.user) }, enums.CheckoutStepShipping)
	mustStep(t, func() (Summary, error) {
		return f.svc.SubmitShipping(ctx, f.user, validShipping(enums.ShippingMethodExpress))
	}, enums.CheckoutStepPayment)

	f.orders.err = errors.New("db down")
	if _, err := f.svc.SubmitPayment(ctx, f.user, payment()); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(f.cart.lines) != 1 {
		t.Fatalf("cart must survive a failed order")
	}
	summary, err := f.svc.Get(ctx, f.user)
	if err != nil || summary.Step != enums.CheckoutStepPayment {
		t.Fatalf("expected to stay at payment, got %s err=%v", summary.Step, err)
	}
}

func TestConfirmationAfterCartConsumedIsConflict(t *testing.T) {
	f := setup(t, line("Tee", "10.00", 1))
	ctx := context.Background()
	mustStep(t, func() (Summary, error) { return f.svc.Start(ctx, f.user) }, enums.CheckoutStepCart)
	mustStep(t, func() (Summary, error) { return f.svc.ProceedToShipping(ctx, f.user) }, enums.CheckoutStepShipping)
	mustStep(t, func() (Summary, error) {
		return f.svc.SubmitShipping(ctx, f.user, validShipping(enums.ShippingMethodStandard))
	}, enums.CheckoutStepPayment)

	// A concurrent confirmation committed between this request's cart load and its order write.
	f.orders.err = pkgerrors.New(pkgerrors.CodeStateConflict, "cart was already checked out")
	if _, err := f.svc.SubmitPayment(ctx, f.user, payment()); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(f.orders.placed) != 0 {
		t.Fatalf("no second order may be recorded, got %d", len(f.orders.placed))
	}
}

func TestBackAndResubmitShipping(t *testing.T) {
	f := setup(t, line("Tee", "10.00", 1))
	ctx := context.Background()
	mustStep(t, func() (Summary, error) { return f.svc.Start(ctx, f.user) }, enums.CheckoutStepCart)
	if _, err := f.svc.Back(ctx, f.user); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("cannot go back from cart, got %v", err)
	}
	mustStep(t, func() (Summary, error) { return f.svc.ProceedToShipping(ctx, f.user) }, enums.CheckoutStepShipping)
	mustStep(t, func() (Summary, error) {
		return f.svc.SubmitShipping(ctx, f.user, validShipping(enums.ShippingMethodStandard))
	}, enums.CheckoutStepPayment)

	summary := mustStep(t, func() (Summary, error) {
		return f.svc.SubmitShipping(ctx, f.user, validShipping(enums.ShippingMethodOvernight))
	}, enums.CheckoutStepPayment)
	if !summary.Totals.ShippingFee.Equal(dec("19.99")) {
		t.Fatalf("expected overnight fee, got %s", summary.Totals.ShippingFee)
	}

	mustStep(t, func() (Summary, error) { return f.svc.Back(ctx, f.user) }, enums.CheckoutStepShipping)
	summary = mustStep(t, func() (Summary, error) { return f.svc.Back(ctx, f.user) }, enums.CheckoutStepCart)
	if summary.Shipping == nil {
		t.Fatalf("going back keeps the entered shipping details")
	}
	if _, err := f.svc.SubmitPayment(ctx, f.user, payment()); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("cannot pay from cart, got %v", err)
	}
}

func TestSessionSavedWithTTL(t *testing.T) {
	f := setup(t, line("Tee", "10.00", 1))
	if _, err := f.svc.Start(context.Background(), f.user); err != nil {
		t.Fatalf("start: %v", err)
	}
	key := redis.CheckoutKey(f.user.ID.String())
	if f.blobs.ttls[key] != 30*time.Minute {
		t.Fatalf("expected session ttl, got %s", f.blobs.ttls[key])
	}

	f.blobs.setErr = errors.New("redis down")
	if _, err := f.svc.ProceedToShipping(context.Background(), f.user); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGetWithoutSession(t *testing.T) {
	f := setup(t)
	if _, err := f.svc.Get(context.Background(), f.user); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func mustStep(t *testing.T, call func() (Summary, error), want enums.CheckoutStep) Summary {
	t.Helper()
	summary, err := call()
	if err != nil {
		t.Fatalf("expected step %s, got error %v", want, err)
	}
	if summary.Step != want {
		t.Fatalf("step = %s, want %s", summary.Step, want)
	}
	return summary
}
