package checkout

import (
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type CouponKind string

const (
	CouponPercentage   CouponKind = "percentage"
	CouponFreeShipping CouponKind = "free_shipping"
	CouponFlat         CouponKind = "flat"
)

type Coupon struct {
	Code  string
	Kind  CouponKind
	Value decimal.Decimal
}

var couponTable = map[string]Coupon{
	"ECO20":     {Code: "ECO20", Kind: CouponPercentage, Value: decimal.NewFromInt(20)},
	"FREESHIP":  {Code: "FREESHIP", Kind: CouponFreeShipping},
	"WELCOME10": {Code: "WELCOME10", Kind: CouponFlat, Value: decimal.NewFromInt(10)},
}

var hundred = decimal.NewFromInt(100)

// LookupCoupon matches a code case-insensitively after trimming.
func LookupCoupon(code string) (Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, "code is required").
			WithDetails(map[string]any{"field": "code"})
	}
	coupon, ok := couponTable[normalized]
	if !ok {
		return Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown coupon code").
			WithDetails(map[string]any{"field": "code"})
	}
	return coupon, nil
}

// Discount is rounded to cents.
func (c Coupon) Discount(subtotal, shippingFee decimal.Decimal) decimal.Decimal {
	switch c.Kind {
	case CouponPercentage:
		return subtotal.Mul(c.Value).Div(hundred).Round(2)
	case CouponFreeShipping:
		return shippingFee
	case CouponFlat:
		return c.Value
	default:
		return decimal.Zero
	}
}
