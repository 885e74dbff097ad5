package auth

import (
	"fmt"

	userRepo "knead/database/repository/user"
	"knead/models"
)

// Context is the authorization context of one authenticated session. It is
// resolved once, at sign-in or token validation, and answers capability
// queries from then on; call sites never read raw role strings.
type Context struct {
	UserID       string
	Email        string
	capabilities map[string]struct{}
}

// HasCapability reports whether the session holds the named capability.
func (c *Context) HasCapability(capability string) bool {
	if c == nil {
		return false
	}
	_, ok := c.capabilities[capability]
	return ok
}

// IsProvider reports whether the session may act as a masseur.
func (c *Context) IsProvider() bool {
	return c.HasCapability(models.CapabilityProvider)
}

// IsAdmin reports whether the session may perform administrative actions.
func (c *Context) IsAdmin() bool {
	return c.HasCapability(models.CapabilityAdmin)
}

// NewContext builds an authorization context from a resolved user.
func NewContext(user *models.User) *Context {
	caps := make(map[string]struct{}, len(user.Capabilities))
	for _, c := range user.Capabilities {
		caps[c] = struct{}{}
	}
	return &Context{UserID: user.ID, Email: user.Email, capabilities: caps}
}

// SystemContext returns the context used by internal jobs such as the
// completion sweep. It carries every capability checked in this codebase.
func SystemContext() *Context {
	return &Context{
		UserID: "system",
		capabilities: map[string]struct{}{
			models.CapabilityProvider: {},
			models.CapabilityAdmin:    {},
		},
	}
}

// Resolve loads the user's current capability set and builds the session
// context.
func Resolve(repo userRepo.UserRepository, userID string) (*Context, error) {
	user, err := repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authorization context for %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("no such user: %s", userID)
	}
	return NewContext(user), nil
}
