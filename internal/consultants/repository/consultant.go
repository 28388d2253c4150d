package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	consultantserrors "tradedesk/internal/consultants/errors"
	"tradedesk/pkg/config"
	"tradedesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Consultants"
)

type ConsultantRepository interface {
	FindByID(ctx context.Context, id string) (*model.Consultant, error)
	// FindByOwnerUserID returns the profile owned by userID, or ErrNotFound
	// when the user is not a consultant.
	FindByOwnerUserID(ctx context.Context, userID string) (*model.Consultant, error)
}

type mongoConsultantRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoConsultantRepository(cfg *config.Config) ConsultantRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoConsultantRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoConsultantRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoConsultantRepository) FindByID(ctx context.Context, id string) (*model.Consultant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", consultantserrors.ErrInvalidID, id)
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoConsultantRepository) FindByOwnerUserID(ctx context.Context, userID string) (*model.Consultant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"owner_user_id": userID})
}

func (r *mongoConsultantRepository) findOne(ctx context.Context, filter bson.M) (*model.Consultant, error) {
	var consultant model.Consultant
	if err := r.collection.FindOne(ctx, filter).Decode(&consultant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, consultantserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find consultant: %w", err)
	}
	return &consultant, nil
}
