package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// GuestIDHeader carries the device id of anonymous shoppers in both directions.
const GuestIDHeader = "X-Guest-Id"

// Identity resolves who the request acts for. A bearer token wins over the guest header; a request
// with neither is issued a fresh guest id, echoed back in GuestIDHeader.
func Identity(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid credentials"))
				return
			}

			var id identity.Identity
			if token != "" {
				claims, err := pkgAuth.ParseAccessToken(cfg, token)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}
				userID, err := claims.ResolveUserID()
				if err != nil || userID == uuid.Nil {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token subject missing"))
					return
				}
				id = identity.User(userID, claims.EffectiveRole())
			} else {
				guestID, err := GuestIDFromHeader(r)
				if err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				if guestID == uuid.Nil {
					guestID = uuid.New()
					w.Header().Set(GuestIDHeader, guestID.String())
				}
				id = identity.Guest(guestID)
			}

			if logg != nil {
				if id.IsGuest() {
					ctx = logg.WithGuestID(ctx, id.ID.String())
				} else {
					ctx = logg.WithFields(ctx, map[string]any{
						"user_id":    id.ID.String(),
						"actor_role": string(id.Role),
					})
				}
			}
			ctx = WithIdentity(ctx, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GuestIDFromHeader returns the device id sent by the client, uuid.Nil when absent.
func GuestIDFromHeader(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(GuestIDHeader))
	if raw == "" {
		return uuid.Nil, nil
	}
	guestID, err := uuid.Parse(raw)
	if err != nil || guestID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id must be a uuid").
			WithDetails(map[string]any{"header": GuestIDHeader})
	}
	return guestID, nil
}
