// File: internal/shared/token.go
package shared

import (
	"estatehub_backend/internal/common"

	"github.com/google/uuid"
)

// Claims carries the identity the middleware extracts from a verified token.
// The core trusts the role label unconditionally; it is the identity store's
// job to keep it accurate.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   common.Role
}

// TokenService abstracts token issuance and verification so the middleware
// does not depend on the auth package (which depends on user, which the
// middleware consumers also import).
type TokenService interface {
	GenerateToken(userID uuid.UUID, email string, role common.Role) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}
