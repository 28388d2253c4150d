package service

import (
	"context"
	"time"

	consultantsrepo "tradedesk/internal/consultants/repository"
	"tradedesk/internal/meetings/classify"
	"tradedesk/internal/meetings/events"
	"tradedesk/internal/meetings/repository"
	"tradedesk/internal/meetings/validator"
	"tradedesk/pkg/cache"
	apperrors "tradedesk/pkg/errors"
	"tradedesk/pkg/logger"
	"tradedesk/pkg/model"
)

// MeetingService is everything the HTTP layer can do with meetings. The
// acting user is always an explicit argument.
type MeetingService interface {
	List(ctx context.Context, actorID string) ([]*model.Meeting, error)
	Classified(ctx context.Context, actorID string) (classify.Buckets, error)
	Get(ctx context.Context, actorID, id string) (*model.Meeting, error)
	Book(ctx context.Context, actorID string, req *model.BookingRequest) (*model.Meeting, error)
	Confirm(ctx context.Context, actorID, id string) (*model.Meeting, error)
	Cancel(ctx context.Context, actorID, id string) (*model.Meeting, error)
}

type Dependencies struct {
	Meetings    repository.MeetingRepository
	Consultants consultantsrepo.ConsultantRepository
	Validator   *validator.BookingValidator
	Cache       cache.MeetingCache
	Publisher   events.Publisher
	Location    *time.Location
	Now         func() time.Time
	Log         *logger.Logger
}

type meetingService struct {
	*QueryService
	*TransitionController
	*BookingService

	meetings    repository.MeetingRepository
	consultants consultantsrepo.ConsultantRepository
	now         func() time.Time
	loc         *time.Location
	log         *logger.Logger
}

func NewMeetingService(deps Dependencies) MeetingService {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	if deps.Validator == nil {
		deps.Validator = validator.NewBookingValidator(deps.Log)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Cache == nil {
		deps.Cache = cache.NoopMeetingCache{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}

	return &meetingService{
		QueryService:         NewQueryService(deps.Meetings, deps.Consultants, deps.Cache, deps.Log),
		TransitionController: NewTransitionController(deps.Meetings, deps.Consultants, deps.Cache, deps.Publisher, deps.Now, deps.Log),
		BookingService:       NewBookingService(deps.Meetings, deps.Consultants, deps.Validator, deps.Cache, deps.Publisher, deps.Now, deps.Location, deps.Log),
		meetings:             deps.Meetings,
		consultants:          deps.Consultants,
		now:                  deps.Now,
		loc:                  deps.Location,
		log:                  deps.Log,
	}
}

// Classified buckets the merged list against today in the service location.
func (s *meetingService) Classified(ctx context.Context, actorID string) (classify.Buckets, error) {
	meetings, err := s.List(ctx, actorID)
	if err != nil {
		return classify.Buckets{}, err
	}
	return classify.Classify(meetings, s.now().In(s.loc)), nil
}

// Get hides meetings the actor is no party to behind NotFound.
func (s *meetingService) Get(ctx context.Context, actorID, id string) (*model.Meeting, error) {
	if actorID == "" {
		return nil, apperrors.Unauthorized("Actor is required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Meeting ID cannot be empty")
	}

	meeting, err := s.meetings.FindByID(ctx, id)
	if err != nil {
		apperr := mapReadError(id, err)
		if apperrors.HasCode(apperr, apperrors.CodePersistenceFailure) {
			return nil, apperrors.QueryFailure("Failed to retrieve meeting", err)
		}
		return nil, apperr
	}

	consultant, err := s.consultants.FindByID(ctx, meeting.ConsultantID)
	if err != nil && !isMissingConsultant(err) {
		return nil, apperrors.QueryFailure("Failed to retrieve meeting consultant", err)
	}

	isOwner := consultant != nil && consultant.OwnerUserID == actorID
	if !meeting.IsClient(actorID) && !isOwner {
		return nil, apperrors.NotFoundWithID("Meeting", id)
	}

	if consultant != nil {
		meeting.Consultant = consultant.Snapshot()
	}
	return meeting, nil
}
