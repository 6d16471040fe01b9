package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/wishlist"
)

// money renders amounts with two decimals so clients never see "4.9900" or "5".
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type productResponse struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Brand       string        `json:"brand"`
	Category    string        `json:"category"`
	Price       string        `json:"price"`
	OldPrice    *string       `json:"old_price,omitempty"`
	Description string        `json:"description"`
	Rating      float64       `json:"rating"`
	ReviewCount int           `json:"review_count"`
	Images      []string      `json:"images"`
	Tags        []string      `json:"tags"`
	Flags       catalog.Flags `json:"flags"`
	Stock       int           `json:"stock"`
	InStock     bool          `json:"in_stock"`
}

func newProductResponse(p catalog.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Price:       money(p.Price),
		Description: p.Description,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Images:      nonNil(p.Images),
		Tags:        nonNil(p.Tags),
		Flags:       p.Flags,
		Stock:       p.Stock,
		InStock:     p.InStock(),
	}
	if p.OldPrice != nil {
		old := money(*p.OldPrice)
		resp.OldPrice = &old
	}
	return resp
}

func newProductList(products []catalog.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

type cartLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	LineTotal string          `json:"line_total"`
	Product   productResponse `json:"product"`
}

type cartResponse struct {
	Lines      []cartLineResponse `json:"lines"`
	TotalItems int                `json:"total_items"`
	Subtotal   string             `json:"subtotal"`
}

func newCartResponse(c cart.Cart) cartResponse {
	lines := make([]cartLineResponse, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, cartLineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			LineTotal: money(line.Total()),
			Product:   newProductResponse(line.Product),
		})
	}
	return cartResponse{Lines: lines, TotalItems: c.TotalItems, Subtotal: money(c.Subtotal)}
}

type wishlistItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	AddedAt   time.Time       `json:"added_at"`
	Product   productResponse `json:"product"`
}

type wishlistResponse struct {
	Items []wishlistItemResponse `json:"items"`
	Count int                    `json:"count"`
}

func newWishlistResponse(wl wishlist.Wishlist) wishlistResponse {
	items := make([]wishlistItemResponse, 0, len(wl.Items))
	for _, item := range wl.Items {
		items = append(items, wishlistItemResponse{
			ProductID: item.ProductID,
			AddedAt:   item.AddedAt,
			Product:   newProductResponse(item.Product),
		})
	}
	return wishlistResponse{Items: items, Count: len(items)}
}

type totalsResponse struct {
	Subtotal    string `json:"subtotal"`
	ShippingFee string `json:"shipping_fee"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
}

type checkoutResponse struct {
	Step       string                    `json:"step"`
	Cart       cartResponse              `json:"cart"`
	Shipping   *checkout.ShippingDetails `json:"shipping,omitempty"`
	CouponCode string                    `json:"coupon_code,omitempty"`
	Totals     totalsResponse            `json:"totals"`
	Reference  string                    `json:"reference,omitempty"`
}

func newCheckoutResponse(s checkout.Summary) checkoutResponse {
	return checkoutResponse{
		Step:       string(s.Step),
		Cart:       newCartResponse(s.Cart),
		Shipping:   s.Shipping,
		CouponCode: s.CouponCode,
		Totals: totalsResponse{
			Subtotal:    money(s.Totals.Subtotal),
			ShippingFee: money(s.Totals.ShippingFee),
			Discount:    money(s.Totals.Discount),
			Total:       money(s.Totals.Total),
		},
		Reference: s.Reference,
	}
}

type orderLineResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   string    `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   string    `json:"line_total"`
}

type orderResponse struct {
	Reference      string              `json:"reference"`
	Status         string              `json:"status"`
	ShipTo         orders.Address      `json:"ship_to"`
	ShippingMethod string              `json:"shipping_method"`
	ShippingFee    string              `json:"shipping_fee"`
	CouponCode     string              `json:"coupon_code,omitempty"`
	Discount       string              `json:"discount"`
	Subtotal       string              `json:"subtotal"`
	Total          string              `json:"total"`
	Lines          []orderLineResponse `json:"lines"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func newOrderResponse(o orders.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, orderLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   money(line.UnitPrice),
			Quantity:    line.Quantity,
			LineTotal:   money(line.LineTotal),
		})
	}
	return orderResponse{
		Reference:      o.Reference,
		Status:         string(o.Status),
		ShipTo:         o.ShipTo,
		ShippingMethod: string(o.ShippingMethod),
		ShippingFee:    money(o.ShippingFee),
		CouponCode:     o.CouponCode,
		Discount:       money(o.Discount),
		Subtotal:       money(o.Subtotal),
		Total:          money(o.Total),
		Lines:          lines,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

type orderPageResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func newOrderPageResponse(page orders.Page) orderPageResponse {
	out := make([]orderResponse, 0, len(page.Orders))
	for _, o := range page.Orders {
		out = append(out, newOrderResponse(o))
	}
	return orderPageResponse{Orders: out, NextCursor: page.NextCursor}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
