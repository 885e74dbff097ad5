package models

import "time"

// BookingStatus enumerates the booking lifecycle states.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingDeclined  BookingStatus = "declined"
	BookingCompleted BookingStatus = "completed"
)

// Terminal reports whether a client-visible transition away from this status exists.
// Completed is reached only by the system sweep, never by a client.
func (s BookingStatus) Terminal() bool {
	return s == BookingConfirmed || s == BookingDeclined || s == BookingCompleted
}

// Booking represents a single reservation record.
// The store holds the one authoritative status per id; clients never commit
// a status locally — every transition round-trips through the store.
type Booking struct {
	ID              string        `bson:"id" json:"id"`                             // Unique booking identifier (UUID, assigned on insert)
	CustomerID      string        `bson:"customer_id" json:"customer_id"`           // Customer who made the booking
	MasseurID       string        `bson:"masseur_id" json:"masseur_id"`             // Masseur the booking is assigned to
	MassageTypeID   string        `bson:"massage_type_id" json:"massage_type_id"`   // Catalog reference
	ScheduledTime   time.Time     `bson:"scheduled_time" json:"scheduled_time"`     // Absolute instant, immutable after creation
	DurationMinutes int           `bson:"duration_minutes" json:"duration_minutes"` // Positive, fixed at creation
	Status          BookingStatus `bson:"status" json:"status"`
	CreatedAt       time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updated_at"`
}

// ScheduledEnd returns the instant the booked session is due to finish.
func (b Booking) ScheduledEnd() time.Time {
	return b.ScheduledTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}
