package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type applyCouponRequest struct {
	Code string `json:"code"`
}

type checkoutStep func(ctx context.Context, owner identity.Identity, r *http.Request) (checkout.Summary, error)

// checkoutHandler shares the identity and envelope plumbing of every wizard route.
func checkoutHandler(svc checkout.Service, logg *logger.Logger, status int, step checkoutStep) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		owner, err := requestIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := step(ctx, owner, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, newCheckoutResponse(summary))
	}
}

// CheckoutStart opens a fresh wizard at the cart step.
func CheckoutStart(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, http.StatusCreated, func(ctx context.Context, owner identity.Identity, _ *http.Request) (checkout.Summary, error) {
		return svc.Start(ctx, owner)
	})
}

func CheckoutGet(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, http.StatusOK, func(ctx context.Context, owner identity.Identity, _ *http.Request) (checkout.Summary, error) {
		return svc.Get(ctx, owner)
	})
}

// CheckoutProceed moves cart -> shipping.
func CheckoutProceed(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, http.StatusOK, func(ctx context.Context, owner identity.Identity, _ *http.Request) (checkout.Summary, error) {
		return svc.ProceedToShipping(ctx, owner)
	})
}

// CheckoutSubmitShipping moves shipping -> payment, or edits the shipping form while on payment.
// Field errors name the first missing field, so the body is decoded without tag validation.
func CheckoutSubmitShipping(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, http.StatusOK, func(ctx context.Context, owner identity.Identity, r *http.Request) (checkout.Summary, error) {
		var details checkout.ShippingDetails
		if err := validators.DecodeJSON(r, &details); err != nil {
			return checkout.Summary{}, err
		}
		return svc.SubmitShipping(ctx, owner, details)
	})
}

// CheckoutSubmitPayment confirms the order. Card data is checked for presence and then dropped.
func CheckoutSubmitPayment(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, http.StatusOK, func(ctx context.Context, owner identity.Identity, r *http.Request) (checkout.Summary, error) {
		var details checkout.PaymentDetails
		if err := validators.DecodeJSON(r, &details); err != nil {
			return checkout.Summary{}, err
		}
		return svc.SubmitPayment(ctx, owner, details)
	})
}

func CheckoutBack(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, http.StatusOK, func(ctx context.Context, owner identity.Identity, _ *http.Request) (checkout.Summary, error) {
		return svc.Back(ctx, owner)
	})
}

func CheckoutApplyCoupon(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, http.StatusOK, func(ctx context.Context, owner identity.Identity, r *http.Request) (checkout.Summary, error) {
		var req applyCouponRequest
		if err := validators.DecodeJSON(r, &req); err != nil {
			return checkout.Summary{}, err
		}
		return svc.ApplyCoupon(ctx, owner, req.Code)
	})
}

func CheckoutRemoveCoupon(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutHandler(svc, logg, http.StatusOK, func(ctx context.Context, owner identity.Identity, _ *http.Request) (checkout.Summary, error) {
		return svc.RemoveCoupon(ctx, owner)
	})
}
