package auth

import (
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT presented by shoppers.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id,omitempty"`
	Role   enums.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ResolveUserID resolves the user id from the user_id claim, falling back to sub.
func (c *AccessTokenClaims) ResolveUserID() (uuid.UUID, error) {
	if c.UserID != uuid.Nil {
		return c.UserID, nil
	}
	return uuid.Parse(c.RegisteredClaims.Subject)
}

// EffectiveRole defaults tokens without a role claim to customer.
func (c *AccessTokenClaims) EffectiveRole() enums.UserRole {
	if c.Role == "" {
		return enums.UserRoleCustomer
	}
	return c.Role
}
