// Package orders records placed checkouts and drives their fulfilment status.
package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Address struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// Line freezes the product name and unit price at purchase time.
type Line struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID             uuid.UUID            `json:"id"`
	Reference      string               `json:"reference"`
	UserID         uuid.UUID            `json:"user_id"`
	Status         enums.OrderStatus    `json:"status"`
	ShipTo         Address              `json:"ship_to"`
	ShippingMethod enums.ShippingMethod `json:"shipping_method"`
	ShippingFee    decimal.Decimal      `json:"shipping_fee"`
	CouponCode     string               `json:"coupon_code,omitempty"`
	Discount       decimal.Decimal      `json:"discount"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	Total          decimal.Decimal      `json:"total"`
	Lines          []Line               `json:"lines"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// PlaceInput is what checkout hands over on confirmation.
type PlaceInput struct {
	Reference      string
	UserID         uuid.UUID
	ShipTo         Address
	ShippingMethod enums.ShippingMethod
	ShippingFee    decimal.Decimal
	CouponCode     string
	Discount       decimal.Decimal
	Subtotal       decimal.Decimal
	Total          decimal.Decimal
	Lines          []Line
}

// Page is one cursor page of orders, newest first.
type Page struct {
	Orders     []Order `json:"orders"`
	NextCursor string  `json:"next_cursor,omitempty"`
}
