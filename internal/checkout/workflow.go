// Package checkout drives the cart -> shipping -> payment -> confirmation wizard.
package checkout

import (
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingDetails is the shipping form. Fields are checked in declaration order.
type ShippingDetails struct {
	FullName string               `json:"full_name" validate:"required"`
	Address  string               `json:"address" validate:"required"`
	City     string               `json:"city" validate:"required"`
	State    string               `json:"state" validate:"required"`
	Zip      string               `json:"zip" validate:"required"`
	Country  string               `json:"country" validate:"required"`
	Phone    string               `json:"phone" validate:"required"`
	Method   enums.ShippingMethod `json:"method" validate:"required,oneof=standard express overnight"`
}

func (d ShippingDetails) normalized() ShippingDetails {
	return ShippingDetails{
		FullName: strings.TrimSpace(d.FullName),
		Address:  strings.TrimSpace(d.Address),
		City:     strings.TrimSpace(d.City),
		State:    strings.TrimSpace(d.State),
		Zip:      strings.TrimSpace(d.Zip),
		Country:  strings.TrimSpace(d.Country),
		Phone:    strings.TrimSpace(d.Phone),
		Method:   enums.ShippingMethod(strings.ToLower(strings.TrimSpace(string(d.Method)))),
	}
}

// PaymentDetails is checked for presence only and is never persisted.
type PaymentDetails struct {
	CardHolder string `json:"card_holder" validate:"required"`
	CardNumber string `json:"card_number" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

func (p PaymentDetails) normalized() PaymentDetails {
	return PaymentDetails{
		CardHolder: strings.TrimSpace(p.CardHolder),
		CardNumber: strings.TrimSpace(p.CardNumber),
		Expiry:     strings.TrimSpace(p.Expiry),
		CVV:        strings.TrimSpace(p.CVV),
	}
}

var shippingFees = map[enums.ShippingMethod]decimal.Decimal{
	enums.ShippingMethodStandard:  decimal.RequireFromString("4.99"),
	enums.ShippingMethodExpress:   decimal.RequireFromString("9.99"),
	enums.ShippingMethodOvernight: decimal.RequireFromString("19.99"),
}

// ShippingFee returns the flat fee for a method, zero when none is chosen yet.
func ShippingFee(method enums.ShippingMethod) decimal.Decimal {
	if fee, ok := shippingFees[method]; ok {
		return fee
	}
	return decimal.Zero
}

// Totals is the derived price breakdown of a checkout.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// Workflow is the persisted wizard state. It never holds cart lines or payment data.
type Workflow struct {
	UserID     uuid.UUID          `json:"user_id"`
	Step       enums.CheckoutStep `json:"step"`
	Shipping   *ShippingDetails   `json:"shipping,omitempty"`
	CouponCode string             `json:"coupon_code,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func NewWorkflow(userID uuid.UUID, now time.Time) *Workflow {
	return &Workflow{
		UserID:    userID,
		Step:      enums.CheckoutStepCart,
		StartedAt: now,
		UpdatedAt: now,
	}
}

var forward = map[enums.CheckoutStep]enums.CheckoutStep{
	enums.CheckoutStepCart:     enums.CheckoutStepShipping,
	enums.CheckoutStepShipping: enums.CheckoutStepPayment,
	enums.CheckoutStepPayment:  enums.CheckoutStepConfirmation,
}

var backward = map[enums.CheckoutStep]enums.CheckoutStep{
	enums.CheckoutStepShipping: enums.CheckoutStepCart,
	enums.CheckoutStepPayment:  enums.CheckoutStepShipping,
}

// advance moves one step forward if the workflow is currently at from.
func (w *Workflow) advance(from enums.CheckoutStep, now time.Time) error {
	if w.Step != from {
		return stepConflict(w.Step, forward[from])
	}
	w.Step = forward[from]
	w.UpdatedAt = now
	return nil
}

// Back returns to the previous step. Cart and confirmation have no previous step.
func (w *Workflow) Back(now time.Time) error {
	prev, ok := backward[w.Step]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot go back from "+string(w.Step)).
			WithDetails(map[string]any{"step": w.Step})
	}
	w.Step = prev
	w.UpdatedAt = now
	return nil
}

// SetShipping validates and stores the shipping form without changing the step.
func (w *Workflow) SetShipping(details ShippingDetails, now time.Time) error {
	clean := details.normalized()
	if err := firstMissing(clean); err != nil {
		return err
	}
	w.Shipping = &clean
	w.UpdatedAt = now
	return nil
}

// ApplyCoupon replaces the current coupon. An unknown code leaves the workflow unchanged.
func (w *Workflow) ApplyCoupon(code string, now time.Time) error {
	if w.Step == enums.CheckoutStepConfirmation {
		return stepConflict(w.Step, w.Step)
	}
	coupon, err := LookupCoupon(code)
	if err != nil {
		return err
	}
	w.CouponCode = coupon.Code
	w.UpdatedAt = now
	return nil
}

func (w *Workflow) RemoveCoupon(now time.Time) {
	w.CouponCode = ""
	w.UpdatedAt = now
}

func (w *Workflow) ShippingMethod() enums.ShippingMethod {
	if w.Shipping == nil {
		return ""
	}
	return w.Shipping.Method
}

// Totals computes subtotal + fee - discount for the given cart subtotal.
// The discount is capped so the total never drops below zero.
func (w *Workflow) Totals(subtotal decimal.Decimal) Totals {
	fee := ShippingFee(w.ShippingMethod())
	discount := decimal.Zero
	if coupon, ok := couponTable[w.CouponCode]; ok {
		discount = coupon.Discount(subtotal, fee)
	}
	gross := subtotal.Add(fee)
	if discount.GreaterThan(gross) {
		discount = gross
	}
	return Totals{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Discount:    discount,
		Total:       gross.Sub(discount),
	}
}

func validatePayment(details PaymentDetails) error {
	return firstMissing(details.normalized())
}

func firstMissing(form any) error {
	err := validation.Struct(form)
	if err == nil {
		return nil
	}
	field, tag, ok := validation.FirstFailure(err)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate checkout form")
	}
	msg := field + " is required"
	if tag != "required" {
		msg = field + " is invalid"
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

func stepConflict(current, target enums.CheckoutStep) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is at "+string(current)).
		WithDetails(map[string]any{"step": current, "target": target})
}
