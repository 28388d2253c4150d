package service

import (
	"context"
	"errors"
	"sync"
	"time"

	consultantserrors "tradedesk/internal/consultants/errors"
	consultantsrepo "tradedesk/internal/consultants/repository"
	meetingserrors "tradedesk/internal/meetings/errors"
	"tradedesk/internal/meetings/events"
	"tradedesk/internal/meetings/repository"
	"tradedesk/pkg/cache"
	apperrors "tradedesk/pkg/errors"
	"tradedesk/pkg/logger"
	"tradedesk/pkg/model"
)

// allowedTransitions is the only place meeting status moves are defined.
// Completion is written by the sweeper, never through the controller.
var allowedTransitions = map[model.MeetingStatus][]model.MeetingStatus{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCancelled},
}

func CanTransition(from, to model.MeetingStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// inflightGuard rejects a second transition of a meeting while the first
// is still running.
type inflightGuard struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{ids: make(map[string]struct{})}
}

func (g *inflightGuard) acquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.ids[id]; busy {
		return false
	}
	g.ids[id] = struct{}{}
	return true
}

func (g *inflightGuard) release(id string) {
	g.mu.Lock()
	delete(g.ids, id)
	g.mu.Unlock()
}

type TransitionController struct {
	meetings    repository.MeetingRepository
	consultants consultantsrepo.ConsultantRepository
	cache       cache.MeetingCache
	publisher   events.Publisher
	now         func() time.Time
	inflight    *inflightGuard
	log         *logger.Logger
}

func NewTransitionController(
	meetings repository.MeetingRepository,
	consultants consultantsrepo.ConsultantRepository,
	meetingCache cache.MeetingCache,
	publisher events.Publisher,
	now func() time.Time,
	log *logger.Logger,
) *TransitionController {
	return &TransitionController{
		meetings:    meetings,
		consultants: consultants,
		cache:       meetingCache,
		publisher:   publisher,
		now:         now,
		inflight:    newInflightGuard(),
		log:         log,
	}
}

func (c *TransitionController) Confirm(ctx context.Context, actorID, id string) (*model.Meeting, error) {
	return c.Transition(ctx, actorID, id, model.StatusConfirmed)
}

func (c *TransitionController) Cancel(ctx context.Context, actorID, id string) (*model.Meeting, error) {
	return c.Transition(ctx, actorID, id, model.StatusCancelled)
}

// Transition moves meeting id to target on behalf of actorID. Checks run in
// order: visibility (NotFound), the transition table (InvalidTransition),
// then role (Forbidden, only the consultant side may confirm). The write is
// compare-and-set on the status that was read.
func (c *TransitionController) Transition(ctx context.Context, actorID, id string, target model.MeetingStatus) (*model.Meeting, error) {
	if actorID == "" {
		return nil, apperrors.Unauthorized("Actor is required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Meeting ID cannot be empty")
	}

	if !c.inflight.acquire(id) {
		c.log.Warn("Rejected concurrent transition", "id", id, "actor_id", actorID, "target", target)
		return nil, apperrors.Conflict("Transition already in progress")
	}
	defer c.inflight.release(id)

	meeting, err := c.meetings.FindByID(ctx, id)
	if err != nil {
		return nil, mapReadError(id, err)
	}

	ownerID, err := c.consultantOwner(ctx, meeting.ConsultantID)
	if err != nil {
		return nil, apperrors.PersistenceFailure("Failed to resolve meeting consultant", err)
	}

	isClient := meeting.IsClient(actorID)
	isOwner := ownerID != "" && ownerID == actorID
	if !isClient && !isOwner {
		return nil, apperrors.NotFoundWithID("Meeting", id)
	}

	from := meeting.Status
	if !CanTransition(from, target) {
		return nil, apperrors.InvalidTransition(string(from), string(target))
	}
	if target == model.StatusConfirmed && !isOwner {
		return nil, apperrors.Forbidden("Only the consultant can confirm a meeting")
	}

	at := c.now().UTC().Truncate(time.Millisecond)
	if err := c.meetings.UpdateStatus(ctx, id, from, target, at); err != nil {
		return nil, c.mapWriteError(ctx, id, target, err)
	}

	meeting.Status = target
	meeting.UpdatedAt = at

	clientID := ""
	if meeting.HasClient() {
		clientID = *meeting.ClientID
	}
	if err := c.cache.Invalidate(ctx, actorID, clientID, ownerID); err != nil {
		c.log.Warn("Failed to invalidate meeting cache", "id", id, "error", err)
	}

	event := events.MeetingEvent{
		MeetingID:         id,
		ClientID:          clientID,
		ConsultantID:      meeting.ConsultantID,
		ConsultantOwnerID: ownerID,
		From:              from,
		To:                target,
		At:                at,
	}
	if err := c.publisher.Publish(ctx, events.TypeStatusChanged, event); err != nil {
		c.log.Error("Failed to publish status change", "id", id, "error", err)
	}

	c.log.Info("Meeting status updated",
		"id", id,
		"actor_id", actorID,
		"from", from,
		"to", target,
	)
	return meeting, nil
}

// consultantOwner returns "" for orphaned consultant references.
func (c *TransitionController) consultantOwner(ctx context.Context, consultantID string) (string, error) {
	consultant, err := c.consultants.FindByID(ctx, consultantID)
	if err != nil {
		if isMissingConsultant(err) {
			return "", nil
		}
		return "", err
	}
	return consultant.OwnerUserID, nil
}

func isMissingConsultant(err error) bool {
	return errors.Is(err, consultantserrors.ErrNotFound) || errors.Is(err, consultantserrors.ErrInvalidID)
}

// mapWriteError re-reads the meeting after a lost compare-and-set to tell a
// now-impossible move from a retryable race.
func (c *TransitionController) mapWriteError(ctx context.Context, id string, target model.MeetingStatus, err error) error {
	switch {
	case errors.Is(err, meetingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Meeting", id)
	case errors.Is(err, meetingserrors.ErrStatusChanged):
		fresh, readErr := c.meetings.FindByID(ctx, id)
		if readErr != nil {
			return mapReadError(id, readErr)
		}
		if !CanTransition(fresh.Status, target) {
			return apperrors.InvalidTransition(string(fresh.Status), string(target))
		}
		return apperrors.Conflict("Meeting changed concurrently, retry the request")
	default:
		c.log.Error("Failed to write meeting status", "id", id, "target", target, "error", err)
		return apperrors.PersistenceFailure("Failed to update meeting status", err)
	}
}

func mapReadError(id string, err error) error {
	switch {
	case errors.Is(err, meetingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Meeting", id)
	case errors.Is(err, meetingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid meeting ID format")
	default:
		return apperrors.PersistenceFailure("Failed to load meeting", err)
	}
}
