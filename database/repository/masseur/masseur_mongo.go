package masseurRepo

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

// MongoMasseurRepo implements MasseurRepository using MongoDB. One document
// per masseur holds the current application; superseding replaces it.
type MongoMasseurRepo struct {
	coll *mongo.Collection
}

// NewMongoMasseurRepo creates a new instance of MasseurRepository using MongoDB.
func NewMongoMasseurRepo() MasseurRepository {
	coll := database.Collection("masseur_applications")
	repo := &MongoMasseurRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to create masseur indexes", zap.Error(err))
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoMasseurRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "masseur_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// CreateApplication upserts the masseur's current application back to pending.
func (r *MongoMasseurRepo) CreateApplication(app *models.MasseurApplication) (*models.MasseurApplication, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	app.ID = uuid.New().String()
	app.Status = models.ApplicationPending
	app.CreatedAt = now
	app.UpdatedAt = now

	filter := bson.M{"masseur_id": app.MasseurID}
	update := bson.M{"$set": app}
	opts := options.Update().SetUpsert(true)

	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return nil, fmt.Errorf("failed to create application for masseur %s: %w", app.MasseurID, err)
	}
	return app, nil
}

func (r *MongoMasseurRepo) GetCurrent(masseurID string) (*models.MasseurApplication, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var app models.MasseurApplication
	if err := r.coll.FindOne(ctx, bson.M{"masseur_id": masseurID}).Decode(&app); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch application for masseur %s: %w", masseurID, err)
	}
	return &app, nil
}

func (r *MongoMasseurRepo) SetStatus(masseurID string, status models.ApplicationStatus) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"masseur_id": masseurID}, update)
	if err != nil {
		return 0, fmt.Errorf("failed to set status for masseur %s: %w", masseurID, err)
	}
	return result.ModifiedCount, nil
}

func (r *MongoMasseurRepo) ListByStatus(status models.ApplicationStatus) ([]models.MasseurApplication, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by status %s: %w", status, err)
	}
	defer cursor.Close(ctx)

	var apps []models.MasseurApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	return apps, nil
}

func (r *MongoMasseurRepo) ListDiscoverable() ([]models.MasseurApplication, error) {
	return r.ListByStatus(models.ApplicationApproved)
}
