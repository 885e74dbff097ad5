package models

// MassageType is a catalog entry for an offered service.
type MassageType struct {
	ID              string  `bson:"id" json:"id"`
	Name            string  `bson:"name" json:"name"`                       // e.g., "Deep tissue", "Swedish"
	DefaultDuration int     `bson:"defaultDuration" json:"defaultDuration"` // Minutes
	BasePrice       float64 `bson:"basePrice" json:"basePrice"`
}
