package service

import (
	"context"
	"errors"
	"math"
	"time"

	consultantsrepo "tradedesk/internal/consultants/repository"
	"tradedesk/internal/meetings/events"
	"tradedesk/internal/meetings/repository"
	"tradedesk/internal/meetings/validator"
	"tradedesk/pkg/cache"
	apperrors "tradedesk/pkg/errors"
	"tradedesk/pkg/logger"
	"tradedesk/pkg/model"
	"tradedesk/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService struct {
	meetings    repository.MeetingRepository
	consultants consultantsrepo.ConsultantRepository
	validator   *validator.BookingValidator
	cache       cache.MeetingCache
	publisher   events.Publisher
	now         func() time.Time
	loc         *time.Location
	log         *logger.Logger
}

func NewBookingService(
	meetings repository.MeetingRepository,
	consultants consultantsrepo.ConsultantRepository,
	bookingValidator *validator.BookingValidator,
	meetingCache cache.MeetingCache,
	publisher events.Publisher,
	now func() time.Time,
	loc *time.Location,
	log *logger.Logger,
) *BookingService {
	return &BookingService{
		meetings:    meetings,
		consultants: consultants,
		validator:   bookingValidator,
		cache:       meetingCache,
		publisher:   publisher,
		now:         now,
		loc:         loc,
		log:         log,
	}
}

// Book creates a pending meeting owned by actorID. The consultant lookup
// and the insert share one transaction.
func (s *BookingService) Book(ctx context.Context, actorID string, req *model.BookingRequest) (*model.Meeting, error) {
	if actorID == "" {
		return nil, apperrors.Unauthorized("Actor is required")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Booking request cannot be empty")
	}

	sanitizer.SanitizeBookingRequest(req)
	now := s.now().In(s.loc)
	if err := s.validator.Validate(req, now); err != nil {
		s.log.Warn("Booking validation failed", "actor_id", actorID, "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Booking validation failed", verrs.Details())
		}
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	createdAt := now.UTC().Truncate(time.Millisecond)
	clientID := actorID
	meeting := &model.Meeting{
		ConsultantID:    req.ConsultantID,
		ClientID:        &clientID,
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		ClientCompany:   req.ClientCompany,
		MeetingDate:     req.MeetingDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: durationMinutes(req.StartTime, req.EndTime),
		MeetingType:     req.MeetingType,
		Status:          model.StatusPending,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}

	var consultant *model.Consultant
	err := s.meetings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		consultant, err = s.consultants.FindByID(sessCtx, req.ConsultantID)
		if err != nil {
			if isMissingConsultant(err) {
				return apperrors.NotFoundWithID("Consultant", req.ConsultantID)
			}
			return apperrors.PersistenceFailure("Failed to load consultant", err)
		}

		meeting.ID = "" // the driver may retry the whole transaction
		meeting.TotalCost = totalCost(consultant.HourlyRate, meeting.DurationMinutes)
		if err := s.meetings.Create(sessCtx, meeting); err != nil {
			return apperrors.PersistenceFailure("Failed to create meeting", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to book meeting", "actor_id", actorID, "consultant_id", req.ConsultantID, "error", err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.PersistenceFailure("Failed to book meeting", err)
	}
	meeting.Consultant = consultant.Snapshot()

	if err := s.cache.Invalidate(ctx, actorID, consultant.OwnerUserID); err != nil {
		s.log.Warn("Failed to invalidate meeting cache", "id", meeting.ID, "error", err)
	}

	event := events.MeetingEvent{
		MeetingID:         meeting.ID,
		ClientID:          actorID,
		ConsultantID:      meeting.ConsultantID,
		ConsultantOwnerID: consultant.OwnerUserID,
		To:                model.StatusPending,
		At:                createdAt,
	}
	if err := s.publisher.Publish(ctx, events.TypeBooked, event); err != nil {
		s.log.Error("Failed to publish booking", "id", meeting.ID, "error", err)
	}

	s.log.Info("Meeting booked",
		"id", meeting.ID,
		"actor_id", actorID,
		"consultant_id", meeting.ConsultantID,
		"meeting_date", meeting.MeetingDate,
		"start_time", meeting.StartTime,
	)
	return meeting, nil
}

// durationMinutes expects clocks the validator already accepted.
func durationMinutes(start, end string) int {
	s, _ := time.Parse(model.TimeLayout, start)
	e, _ := time.Parse(model.TimeLayout, end)
	return int(e.Sub(s).Minutes())
}

// totalCost prices the meeting at the consultant's hourly rate, rounded to
// cents. Free consultants leave the cost unset.
func totalCost(hourlyRate float64, minutes int) *float64 {
	if hourlyRate <= 0 || minutes <= 0 {
		return nil
	}
	cost := math.Round(hourlyRate*float64(minutes)/60*100) / 100
	return &cost
}
