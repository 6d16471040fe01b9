// Package identity models who a storefront request acts for: an anonymous device or a signed-in user.
package identity

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

type Kind string

const (
	KindGuest Kind = "guest"
	KindUser  Kind = "user"
)

// Identity is resolved once per request and selects which collection store is used.
type Identity struct {
	Kind Kind
	ID   uuid.UUID
	Role enums.UserRole
}

// Guest scopes state to a device id.
func Guest(deviceID uuid.UUID) Identity {
	return Identity{Kind: KindGuest, ID: deviceID}
}

// User scopes state to an authenticated account.
func User(userID uuid.UUID, role enums.UserRole) Identity {
	if role == "" {
		role = enums.UserRoleCustomer
	}
	return Identity{Kind: KindUser, ID: userID, Role: role}
}

func (i Identity) IsGuest() bool {
	return i.Kind == KindGuest
}

func (i Identity) IsAuthenticated() bool {
	return i.Kind == KindUser
}

func (i Identity) IsAdmin() bool {
	return i.IsAuthenticated() && i.Role == enums.UserRoleAdmin
}

// Key is a stable string form used for log fields and cache keys.
func (i Identity) Key() string {
	return fmt.Sprintf("%s:%s", i.Kind, i.ID)
}

// Validate rejects zero-valued or unknown identities.
func (i Identity) Validate() error {
	if i.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "identity id is required")
	}
	switch i.Kind {
	case KindGuest:
		return nil
	case KindUser:
		if !i.Role.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "identity role is invalid")
		}
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "identity kind is invalid")
	}
}
