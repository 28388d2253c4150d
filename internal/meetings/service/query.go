package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	consultantserrors "tradedesk/internal/consultants/errors"
	consultantsrepo "tradedesk/internal/consultants/repository"
	"tradedesk/internal/meetings/repository"
	"tradedesk/pkg/cache"
	apperrors "tradedesk/pkg/errors"
	"tradedesk/pkg/logger"
	"tradedesk/pkg/model"
)

// QueryService builds the merged meeting list of an actor: meetings they
// booked as a client plus meetings booked with the consultant profile they
// own.
type QueryService struct {
	meetings    repository.MeetingRepository
	consultants consultantsrepo.ConsultantRepository
	cache       cache.MeetingCache
	log         *logger.Logger
}

func NewQueryService(
	meetings repository.MeetingRepository,
	consultants consultantsrepo.ConsultantRepository,
	meetingCache cache.MeetingCache,
	log *logger.Logger,
) *QueryService {
	return &QueryService{
		meetings:    meetings,
		consultants: consultants,
		cache:       meetingCache,
		log:         log,
	}
}

// List fetches both sides concurrently and fails as a whole if either side
// fails. The result is deduplicated by id, client rows winning, and ordered
// by meeting date then start time.
func (s *QueryService) List(ctx context.Context, actorID string) ([]*model.Meeting, error) {
	if actorID == "" {
		return nil, apperrors.Unauthorized("Actor is required")
	}

	cached, generation, ok := s.cache.Get(ctx, actorID)
	if ok {
		return cached, nil
	}

	var clientRows, consultantRows []*model.Meeting
	var errClient, errConsultant error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		clientRows, errClient = s.meetings.FindByClientID(ctx, actorID)
		if errClient != nil {
			s.log.Error("Failed to fetch client meetings", "actor_id", actorID, "error", errClient)
		}
	}()

	go func() {
		defer wg.Done()
		consultantRows, errConsultant = s.fetchConsultantSide(ctx, actorID)
		if errConsultant != nil {
			s.log.Error("Failed to fetch consultant meetings", "actor_id", actorID, "error", errConsultant)
		}
	}()

	wg.Wait()
	if errClient != nil {
		return nil, apperrors.QueryFailure("Failed to retrieve meetings", errClient)
	}
	if errConsultant != nil {
		return nil, apperrors.QueryFailure("Failed to retrieve meetings", errConsultant)
	}

	merged := mergeMeetings(clientRows, consultantRows)
	s.cache.Set(ctx, actorID, generation, merged)

	s.log.Debug("Meetings listed",
		"actor_id", actorID,
		"client_rows", len(clientRows),
		"consultant_rows", len(consultantRows),
		"total", len(merged),
	)
	return merged, nil
}

// fetchConsultantSide returns no rows when the actor owns no consultant
// profile.
func (s *QueryService) fetchConsultantSide(ctx context.Context, actorID string) ([]*model.Meeting, error) {
	consultant, err := s.consultants.FindByOwnerUserID(ctx, actorID)
	if err != nil {
		if errors.Is(err, consultantserrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.meetings.FindByConsultantID(ctx, consultant.ID)
}

func mergeMeetings(first, second []*model.Meeting) []*model.Meeting {
	merged := make([]*model.Meeting, 0, len(first)+len(second))
	seen := make(map[string]struct{}, len(first)+len(second))

	for _, rows := range [][]*model.Meeting{first, second} {
		for _, m := range rows {
			if m == nil {
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			merged = append(merged, m)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].MeetingDate != merged[j].MeetingDate {
			return merged[i].MeetingDate < merged[j].MeetingDate
		}
		return merged[i].StartTime < merged[j].StartTime
	})
	return merged
}
