package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"knead/database"
	"knead/models"
	"knead/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoBookingRepo implements BookingRepository using MongoDB. Its change
// feed is the collection's change stream.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to create booking indexes", zap.Error(err))
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "masseur_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_time", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduled_time", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Insert persists a new booking, assigning its id on the way in.
func (r *MongoBookingRepo) Insert(booking *models.Booking) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	booking.ID = uuid.New().String()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	return booking, nil
}

// UpdateStatus overwrites the booking's status. Last write wins.
func (r *MongoBookingRepo) UpdateStatus(id string, status models.BookingStatus) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return 0, fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	return result.ModifiedCount, nil
}

// GetByID retrieves a booking by its unique id.
func (r *MongoBookingRepo) GetByID(id string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// WorkingSet returns the actionable bookings for a masseur, soonest first.
func (r *MongoBookingRepo) WorkingSet(masseurID string, now time.Time) ([]models.Booking, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{
		"masseur_id":     masseurID,
		"status":         bson.M{"$in": bson.A{models.BookingPending, models.BookingConfirmed}},
		"scheduled_time": bson.M{"$gte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_time", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query working set for masseur %s: %w", masseurID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode working set: %w", err)
	}
	return bookings, nil
}

// OverdueConfirmed returns confirmed bookings whose scheduled end precedes the cutoff.
// The end instant is derived client-side from scheduled_time + duration, so the
// query over-selects on scheduled_time and filters the remainder in memory.
func (r *MongoBookingRepo) OverdueConfirmed(cutoff time.Time) ([]models.Booking, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{
		"status":         models.BookingConfirmed,
		"scheduled_time": bson.M{"$lt": cutoff},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []models.Booking
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode overdue bookings: %w", err)
	}

	var overdue []models.Booking
	for _, b := range candidates {
		if b.ScheduledEnd().Before(cutoff) {
			overdue = append(overdue, b)
		}
	}
	return overdue, nil
}

// Watch tails the bookings collection change stream and converts each entry
// into a ChangeEvent carrying the full new row. The channel closes when the
// stream errors or ctx is cancelled; callers resubscribe.
func (r *MongoBookingRepo) Watch(ctx context.Context) (<-chan models.ChangeEvent, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	out := make(chan models.ChangeEvent, 64)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		logger := utils.GetLogger()
		for stream.Next(ctx) {
			var raw struct {
				OperationType string         `bson:"operationType"`
				FullDocument  models.Booking `bson:"fullDocument"`
			}
			if err := stream.Decode(&raw); err != nil {
				logger.Warn("failed to decode change stream entry", zap.Error(err))
				continue
			}

			ev := models.ChangeEvent{Booking: raw.FullDocument}
			switch raw.OperationType {
			case "insert":
				ev.Mutation = models.MutationInsert
			case "delete":
				ev.Mutation = models.MutationDelete
			default:
				ev.Mutation = models.MutationUpdate
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			logger.Warn("change stream terminated", zap.Error(err))
		}
	}()

	return out, nil
}
