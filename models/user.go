package models

import "time"

// Capability names granted to user accounts. Authorization checks query
// capabilities through the AuthorizationContext, never raw role strings.
const (
	CapabilityProvider = "provider"
	CapabilityAdmin    = "admin"
)

// User represents an account in the marketplace. Customers and masseurs share
// the same account type; the provider capability distinguishes them.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name,omitempty"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Capabilities []string  `bson:"capabilities" json:"capabilities,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// HasCapability reports whether the capability set contains cap.
func (u User) HasCapability(cap string) bool {
	for _, c := range u.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}
