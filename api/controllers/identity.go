package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	"github.com/angelmondragon/storefront-backend/internal/wishlist"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

func requestIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return identity.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity missing")
	}
	return id, nil
}

type mergeResponse struct {
	Cart     cartResponse     `json:"cart"`
	Wishlist wishlistResponse `json:"wishlist"`
}

// IdentityMerge folds the guest cart and wishlist named by X-Guest-Id into the signed-in user's
// collections. It is called once by the client right after sign-in.
func IdentityMerge(carts cart.Service, wishlists wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if carts == nil || wishlists == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collection services unavailable"))
			return
		}

		owner, err := requestIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !owner.IsAuthenticated() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required").
				WithDetails(map[string]any{"redirect": "sign_in"}))
			return
		}

		guestID, err := middleware.GuestIDFromHeader(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if guestID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "guest id header is required").
				WithDetails(map[string]any{"header": middleware.GuestIDHeader}))
			return
		}

		mergedCart, err := carts.MergeGuest(ctx, guestID, owner.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		mergedWishlist, err := wishlists.MergeGuest(ctx, guestID, owner.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithGuestID(ctx, guestID.String()), "identity.merged")
		}
		responses.WriteSuccess(w, mergeResponse{
			Cart:     newCartResponse(mergedCart),
			Wishlist: newWishlistResponse(mergedWishlist),
		})
	}
}
