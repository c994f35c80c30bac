package repository

import (
	"context"
	"fmt"
	"time"

	reservationserrors "bookable/internal/reservations/errors"
	"bookable/pkg/config"
	"bookable/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SlotClaimCollectionName = "SlotClaims"
)

// SlotClaimRepository is the write path of the storage-level exclusion
// constraint. Claims are keyed by (thing, half-hour) in their _id, so the
// collection's primary index rejects any second active reservation touching
// a claimed half-hour.
type SlotClaimRepository interface {
	CreateMany(ctx context.Context, claims []*model.SlotClaim) error
	DeleteByReservation(ctx context.Context, reservationID string) error
}

type mongoSlotClaimRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotClaimRepository(cfg *config.Config) SlotClaimRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotClaimRepository{
		cfg:        cfg,
		collection: db.Collection(SlotClaimCollectionName),
	}
}

func (r *mongoSlotClaimRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// CreateMany inserts all claims or none. A duplicate key on any claim means
// a concurrent reservation already holds one of the half-hours; that
// surfaces as ErrSlotTaken and, inside a transaction, aborts the whole
// write.
func (r *mongoSlotClaimRepository) CreateMany(ctx context.Context, claims []*model.SlotClaim) error {
	if len(claims) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(claims))
	for _, claim := range claims {
		claim.CreatedAt = now
		docs = append(docs, claim)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reservationserrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to create slot claims: %w", err)
	}

	return nil
}

func (r *mongoSlotClaimRepository) DeleteByReservation(ctx context.Context, reservationID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"reservation_id": reservationID})
	if err != nil {
		return fmt.Errorf("failed to delete slot claims: %w", err)
	}

	return nil
}
