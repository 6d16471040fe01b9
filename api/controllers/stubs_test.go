package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/wishlist"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

func newRequest(method, target, body string, owner *identity.Identity) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if owner != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *owner))
	}
	return req
}

func testProduct(price string) catalog.Product {
	return catalog.Product{
		ID:       uuid.New(),
		Name:     "Desk Lamp",
		Category: "home",
		Price:    decimal.RequireFromString(price),
		Stock:    3,
	}
}

type stubCatalog struct {
	product    catalog.Product
	products   []catalog.Product
	err        error
	lastFilter catalog.ListFilter
	lastQuery  string
	lastInput  catalog.ProductInput
	deleted    uuid.UUID
}

func (s *stubCatalog) GetProduct(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	if s.err != nil {
		return catalog.Product{}, s.err
	}
	return s.product, nil
}

func (s *stubCatalog) GetProducts(context.Context, []uuid.UUID) (map[uuid.UUID]catalog.Product, error) {
	return map[uuid.UUID]catalog.Product{}, s.err
}

func (s *stubCatalog) ListProducts(_ context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	s.lastFilter = filter
	return s.products, s.err
}

func (s *stubCatalog) Search(_ context.Context, query string) ([]catalog.Product, error) {
	s.lastQuery = query
	return s.products, s.err
}

func (s *stubCatalog) CreateProduct(_ context.Context, input catalog.ProductInput) (catalog.Product, error) {
	s.lastInput = input
	return s.product, s.err
}

func (s *stubCatalog) UpdateProduct(_ context.Context, _ uuid.UUID, input catalog.ProductInput) (catalog.Product, error) {
	s.lastInput = input
	return s.product, s.err
}

func (s *stubCatalog) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

type stubCart struct {
	cart         cart.Cart
	err          error
	lastOwner    identity.Identity
	lastQuantity int
	mergedGuest  uuid.UUID
}

func (s *stubCart) Load(_ context.Context, owner identity.Identity) (cart.Cart, error) {
	s.lastOwner = owner
	return s.cart, s.err
}

func (s *stubCart) AddItem(_ context.Context, owner identity.Identity, _ uuid.UUID, quantity int) (cart.Cart, error) {
	s.lastOwner = owner
	s.lastQuantity = quantity
	return s.cart, s.err
}

func (s *stubCart) UpdateQuantity(_ context.Context, owner identity.Identity, _ uuid.UUID, quantity int) (cart.Cart, error) {
	s.lastOwner = owner
	s.lastQuantity = quantity
	return s.cart, s.err
}

func (s *stubCart) RemoveItem(_ context.Context, owner identity.Identity, _ uuid.UUID) (cart.Cart, error) {
	s.lastOwner = owner
	return s.cart, s.err
}

func (s *stubCart) Clear(_ context.Context, owner identity.Identity) (cart.Cart, error) {
	s.lastOwner = owner
	return cart.NewCart(owner, nil), s.err
}

func (s *stubCart) MergeGuest(_ context.Context, guestID, _ uuid.UUID) (cart.Cart, error) {
	s.mergedGuest = guestID
	return s.cart, s.err
}

type stubWishlist struct {
	wishlist    wishlist.Wishlist
	contains    bool
	err         error
	mergedGuest uuid.UUID
}

func (s *stubWishlist) Load(context.Context, identity.Identity) (wishlist.Wishlist, error) {
	return s.wishlist, s.err
}

func (s *stubWishlist) AddItem(context.Context, identity.Identity, uuid.UUID) (wishlist.Wishlist, error) {
	return s.wishlist, s.err
}

func (s *stubWishlist) RemoveItem(context.Context, identity.Identity, uuid.UUID) (wishlist.Wishlist, error) {
	return s.wishlist, s.err
}

func (s *stubWishlist) Contains(context.Context, identity.Identity, uuid.UUID) (bool, error) {
	return s.contains, s.err
}

func (s *stubWishlist) Clear(context.Context, identity.Identity) (wishlist.Wishlist, error) {
	return s.wishlist, s.err
}

func (s *stubWishlist) MergeGuest(_ context.Context, guestID, _ uuid.UUID) (wishlist.Wishlist, error) {
	s.mergedGuest = guestID
	return s.wishlist, s.err
}

type stubCheckout struct {
	summary      checkout.Summary
	err          error
	lastShipping checkout.ShippingDetails
	lastPayment  checkout.PaymentDetails
	lastCoupon   string
}

func (s *stubCheckout) Start(context.Context, identity.Identity) (checkout.Summary, error) {
	return s.summary, s.err
}

func (s *stubCheckout) Get(context.Context, identity.Identity) (checkout.Summary, error) {
	return s.summary, s.err
}

func (s *stubCheckout) ProceedToShipping(context.Context, identity.Identity) (checkout.Summary, error) {
	return s.summary, s.err
}

func (s *stubCheckout) SubmitShipping(_ context.Context, _ identity.Identity, details checkout.ShippingDetails) (checkout.Summary, error) {
	s.lastShipping = details
	return s.summary, s.err
}

func (s *stubCheckout) SubmitPayment(_ context.Context, _ identity.Identity, details checkout.PaymentDetails) (checkout.Summary, error) {
	s.lastPayment = details
	return s.summary, s.err
}

func (s *stubCheckout) Back(context.Context, identity.Identity) (checkout.Summary, error) {
	return s.summary, s.err
}

func (s *stubCheckout) ApplyCoupon(_ context.Context, _ identity.Identity, code string) (checkout.Summary, error) {
	s.lastCoupon = code
	return s.summary, s.err
}

func (s *stubCheckout) RemoveCoupon(context.Context, identity.Identity) (checkout.Summary, error) {
	return s.summary, s.err
}

type stubOrders struct {
	order         orders.Order
	page          orders.Page
	err           error
	lastUser      uuid.UUID
	lastReference string
	lastStatus    string
	lastParams    pagination.Params
}

func (s *stubOrders) Place(context.Context, orders.PlaceInput) (orders.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) PlaceFromCart(context.Context, orders.PlaceInput) (orders.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) Track(_ context.Context, userID uuid.UUID, reference string) (orders.Order, error) {
	s.lastUser = userID
	s.lastReference = reference
	return s.order, s.err
}

func (s *stubOrders) ListForUser(_ context.Context, userID uuid.UUID, params pagination.Params) (orders.Page, error) {
	s.lastUser = userID
	s.lastParams = params
	return s.page, s.err
}

func (s *stubOrders) AdminList(_ context.Context, status string, params pagination.Params) (orders.Page, error) {
	s.lastStatus = status
	s.lastParams = params
	return s.page, s.err
}

func (s *stubOrders) AdminUpdateStatus(_ context.Context, reference, status string) (orders.Order, error) {
	s.lastReference = reference
	s.lastStatus = status
	return s.order, s.err
}
