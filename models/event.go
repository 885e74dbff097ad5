package models

// MutationType identifies the kind of row mutation a change event describes.
type MutationType string

const (
	MutationInsert MutationType = "insert"
	MutationUpdate MutationType = "update"
	MutationDelete MutationType = "delete"
)

// ChangeEvent is one entry of the booking store's change feed. The payload
// carries the full new row so consumers can overwrite local state wholesale;
// duplicate or replayed events are therefore harmless.
type ChangeEvent struct {
	Mutation MutationType `bson:"mutation" json:"mutation"`
	Booking  Booking      `bson:"booking" json:"booking"`
}
