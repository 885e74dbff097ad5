package models

import "time"

// ApplicationStatus enumerates the provider-application lifecycle states.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// MasseurProfile holds the customer-facing profile of a masseur.
type MasseurProfile struct {
	DisplayName    string   `bson:"displayName" json:"displayName,omitempty"`
	Bio            string   `bson:"bio" json:"bio,omitempty"`
	Address        string   `bson:"address" json:"address,omitempty"`
	LocationGeo    GeoPoint `bson:"locationGeo" json:"locationGeo"`
	MassageTypeIDs []string `bson:"massageTypeIds" json:"massageTypeIds,omitempty"` // Offered service types
	Rating         float64  `bson:"rating" json:"rating,omitempty"`
}

// MasseurApplication is the approval record for one masseur identity.
// At most one application per masseur is current; a rejected application may
// be superseded by a fresh one, restarting the cycle at pending.
type MasseurApplication struct {
	ID        string            `bson:"id" json:"id"`
	MasseurID string            `bson:"masseur_id" json:"masseur_id"` // The applying user's identity
	Status    ApplicationStatus `bson:"status" json:"status"`
	Profile   MasseurProfile    `bson:"profile" json:"profile"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at" json:"updated_at"`
}

// Discoverable reports whether customers may see this masseur.
// Discoverability is gated solely by approval.
func (a MasseurApplication) Discoverable() bool {
	return a.Status == ApplicationApproved
}
