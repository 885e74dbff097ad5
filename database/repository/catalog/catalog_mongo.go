package catalogRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"knead/database"
	"knead/models"
	"knead/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const catalogCacheTTL = 10 * time.Minute

// MongoCatalogRepo implements CatalogRepository using MongoDB with a Redis
// read-through cache. The catalog changes rarely and is read on every
// booking creation.
type MongoCatalogRepo struct {
	coll  *mongo.Collection
	cache *redis.Client
}

// NewMongoCatalogRepo creates a new instance of CatalogRepository using MongoDB.
func NewMongoCatalogRepo() CatalogRepository {
	coll := database.Collection("massage_types")
	repo := &MongoCatalogRepo{coll: coll, cache: utils.GetCacheClient()}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to create catalog indexes", zap.Error(err))
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoCatalogRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func cacheKey(id string) string {
	return "catalog:massage_type:" + id
}

// GetByID retrieves a massage type, serving from the cache when possible.
func (r *MongoCatalogRepo) GetByID(id string) (*models.MassageType, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if cached, err := r.cache.Get(ctx, cacheKey(id)).Result(); err == nil {
		var mt models.MassageType
		if err := json.Unmarshal([]byte(cached), &mt); err == nil {
			return &mt, nil
		}
	}

	var mt models.MassageType
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&mt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch massage type %s: %w", id, err)
	}

	if data, err := json.Marshal(mt); err == nil {
		r.cache.Set(ctx, cacheKey(id), data, catalogCacheTTL)
	}
	return &mt, nil
}

// GetAll retrieves the full catalog.
func (r *MongoCatalogRepo) GetAll() ([]models.MassageType, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve catalog: %w", err)
	}
	defer cursor.Close(ctx)

	var types []models.MassageType
	if err := cursor.All(ctx, &types); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return types, nil
}

// Create inserts a catalog entry and invalidates its cache slot.
func (r *MongoCatalogRepo) Create(mt *models.MassageType) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if mt.ID == "" {
		mt.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, mt); err != nil {
		return fmt.Errorf("failed to create massage type: %w", err)
	}
	r.cache.Del(ctx, cacheKey(mt.ID))
	return nil
}
