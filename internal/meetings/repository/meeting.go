package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	consultantsrepo "tradedesk/internal/consultants/repository"
	meetingserrors "tradedesk/internal/meetings/errors"
	"tradedesk/pkg/config"
	mongotx "tradedesk/pkg/db/mongo"
	"tradedesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Meetings"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting *model.Meeting) error
	FindByID(ctx context.Context, id string) (*model.Meeting, error)
	// FindByClientID returns the client's meetings, each joined with the
	// public profile of its consultant. Orphaned consultant references
	// leave Consultant nil.
	FindByClientID(ctx context.Context, clientID string) ([]*model.Meeting, error)
	FindByConsultantID(ctx context.Context, consultantID string) ([]*model.Meeting, error)
	// FindConfirmedOnOrBefore returns confirmed meetings dated on or before date.
	FindConfirmedOnOrBefore(ctx context.Context, date string) ([]*model.Meeting, error)
	// UpdateStatus moves the meeting from one status to another only if it
	// still holds from. ErrStatusChanged reports a lost race.
	UpdateStatus(ctx context.Context, id string, from, to model.MeetingStatus, at time.Time) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoMeetingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoMeetingRepository(cfg *config.Config) MeetingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMeetingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout leaves a SessionContext untouched so transaction semantics
// hold; the transaction itself is bounded by the caller's context.
func (r *mongoMeetingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoMeetingRepository) Create(ctx context.Context, meeting *model.Meeting) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc := *meeting
	doc.Consultant = nil

	result, err := r.collection.InsertOne(ctx, &doc)
	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		meeting.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMeetingRepository) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", meetingserrors.ErrInvalidID, id)
	}

	var meeting model.Meeting
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&meeting); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, meetingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}

	return &meeting, nil
}

func (r *mongoMeetingRepository) FindByClientID(ctx context.Context, clientID string) ([]*model.Meeting, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, clientMeetingsPipeline(clientID))
	if err != nil {
		return nil, fmt.Errorf("failed to query client meetings: %w", err)
	}
	defer cursor.Close(ctx)

	meetings := []*model.Meeting{}
	if err := cursor.All(ctx, &meetings); err != nil {
		return nil, fmt.Errorf("failed to decode client meetings: %w", err)
	}
	return meetings, nil
}

// clientMeetingsPipeline joins each meeting with the public fields of its
// consultant. consultant_id is stored as a hex string, so it is converted
// before matching; an unparsable or dangling id yields no consultant.
func clientMeetingsPipeline(clientID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"client_id": clientID}}},
		{{Key: "$lookup", Value: bson.M{
			"from": consultantsrepo.CollectionName,
			"let": bson.M{"cid": bson.M{"$convert": bson.M{
				"input":   "$consultant_id",
				"to":      "objectId",
				"onError": nil,
				"onNull":  nil,
			}}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$cid"}}}},
				bson.M{"$project": bson.M{
					"name":        1,
					"avatar_url":  1,
					"headline":    1,
					"hourly_rate": 1,
					"currency":    1,
				}},
			},
			"as": "consultant",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$consultant",
			"preserveNullAndEmptyArrays": true,
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "meeting_date", Value: 1},
			{Key: "start_time", Value: 1},
		}}},
	}
}

func (r *mongoMeetingRepository) FindByConsultantID(ctx context.Context, consultantID string) ([]*model.Meeting, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"consultant_id": consultantID})
}

func (r *mongoMeetingRepository) FindConfirmedOnOrBefore(ctx context.Context, date string) ([]*model.Meeting, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, confirmedOnOrBeforeFilter(date))
}

func confirmedOnOrBeforeFilter(date string) bson.M {
	return bson.M{
		"status":       model.StatusConfirmed,
		"meeting_date": bson.M{"$lte": date},
	}
}

func (r *mongoMeetingRepository) find(ctx context.Context, filter bson.M) ([]*model.Meeting, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "meeting_date", Value: 1},
		{Key: "start_time", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find meetings: %w", err)
	}
	defer cursor.Close(ctx)

	meetings := []*model.Meeting{}
	if err := cursor.All(ctx, &meetings); err != nil {
		return nil, fmt.Errorf("failed to decode meetings: %w", err)
	}
	return meetings, nil
}

func (r *mongoMeetingRepository) UpdateStatus(ctx context.Context, id string, from, to model.MeetingStatus, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", meetingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, statusTransitionFilter(objectID, from), statusTransitionUpdate(to, at))
	if err != nil {
		return fmt.Errorf("failed to update meeting status: %w", err)
	}

	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if err != nil {
			return fmt.Errorf("failed to check meeting existence: %w", err)
		}
		if count == 0 {
			return meetingserrors.ErrNotFound
		}
		return meetingserrors.ErrStatusChanged
	}

	return nil
}

// statusTransitionFilter only matches while the meeting still holds from,
// which makes the update a compare-and-set.
func statusTransitionFilter(id primitive.ObjectID, from model.MeetingStatus) bson.M {
	return bson.M{"_id": id, "status": from}
}

func statusTransitionUpdate(to model.MeetingStatus, at time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": at,
		},
	}
}

func (r *mongoMeetingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
