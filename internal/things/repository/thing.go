package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	thingserrors "bookable/internal/things/errors"
	"bookable/pkg/config"
	"bookable/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Things"
)

type mongoThingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type ThingRepository interface {
	Create(ctx context.Context, thing *model.Thing) error
	FindByID(ctx context.Context, id string) (*model.Thing, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Thing, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	Update(ctx context.Context, id string, thing *model.Thing) error
	Deactivate(ctx context.Context, id string) error
}

func NewMongoThingRepository(cfg *config.Config) ThingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoThingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoThingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoThingRepository) Create(ctx context.Context, thing *model.Thing) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	thing.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, thing)
	if err != nil {
		return fmt.Errorf("failed to create thing: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		thing.ID = oid.Hex()
	}
	return nil
}

func (r *mongoThingRepository) FindByID(ctx context.Context, id string) (*model.Thing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", thingserrors.ErrInvalidID, id)
	}

	var thing model.Thing
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&thing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, thingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find thing: %w", err)
	}

	return &thing, nil
}

func (r *mongoThingRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Thing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find things: %w", err)
	}
	defer cursor.Close(ctx)

	var things []*model.Thing
	if err = cursor.All(ctx, &things); err != nil {
		return nil, fmt.Errorf("failed to decode things: %w", err)
	}

	return things, nil
}

func (r *mongoThingRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count things: %w", err)
	}

	return count, nil
}

func (r *mongoThingRepository) Update(ctx context.Context, id string, thing *model.Thing) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", thingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":            thing.Name,
			"icon":            thing.Icon,
			"time_zone":       thing.TimeZone,
			"avail_start":     thing.AvailStart,
			"avail_end":       thing.AvailEnd,
			"avail_weekends":  thing.AvailWeekends,
			"max_length_mins": thing.MaxLengthMins,
			"book_ahead_days": thing.BookAheadDays,
			"max_concurrent":  thing.MaxConcurrent,
			"buffer_mins":     thing.BufferMins,
			"instructions":    thing.Instructions,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update thing: %w", err)
	}

	if result.MatchedCount == 0 {
		return thingserrors.ErrNotFound
	}

	return nil
}

// Deactivate flips is_active off. Existing reservations stay untouched; the
// thing just stops admitting new ones.
func (r *mongoThingRepository) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", thingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate thing: %w", err)
	}

	if result.MatchedCount == 0 {
		return thingserrors.ErrNotFound
	}

	return nil
}
