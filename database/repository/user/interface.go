package userRepo

import "knead/models"

// UserRepository defines the interface for user data access, including the
// idempotent capability operations backing authorization.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error

	// GrantCapability adds cap to the user's capability set. Granting an
	// already-held capability is a no-op success.
	GrantCapability(id string, cap string) error

	// RevokeCapability removes cap from the user's capability set. Revoking
	// an ungranted capability is a no-op success.
	RevokeCapability(id string, cap string) error
}
