// Package sweeper completes confirmed meetings once their end time has
// passed. It is the only writer of the completed status.
package sweeper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	consultantserrors "tradedesk/internal/consultants/errors"
	consultantsrepo "tradedesk/internal/consultants/repository"
	meetingserrors "tradedesk/internal/meetings/errors"
	"tradedesk/internal/meetings/events"
	"tradedesk/internal/meetings/repository"
	"tradedesk/pkg/logger"
	"tradedesk/pkg/model"
)

type Sweeper struct {
	meetings    repository.MeetingRepository
	consultants consultantsrepo.ConsultantRepository
	publisher   events.Publisher
	interval    time.Duration
	loc         *time.Location
	now         func() time.Time
	log         *logger.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

func NewSweeper(
	meetings repository.MeetingRepository,
	consultants consultantsrepo.ConsultantRepository,
	publisher events.Publisher,
	interval time.Duration,
	loc *time.Location,
	log *logger.Logger,
) *Sweeper {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Sweeper{
		meetings:    meetings,
		consultants: consultants,
		publisher:   publisher,
		interval:    interval,
		loc:         loc,
		now:         time.Now,
		log:         log,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start runs a sweep immediately and then once per interval until Stop is
// called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.log.Info("Starting completion sweeper", "interval", s.interval.String(), "time_zone", s.loc.String())
	go s.run(ctx)
}

// Stop halts the loop and waits for an in-progress sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		s.log.Info("Stopping completion sweeper")
		close(s.stopChan)
	})
	if s.started.Load() {
		<-s.done
	}
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.log.Info("Completion sweeper stopped")
			return
		case <-ctx.Done():
			s.log.Info("Completion sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	completed, err := s.SweepOnce(ctx)
	if err != nil {
		s.log.Error("Completion sweep failed", "error", err, "completed", completed)
		return
	}
	if completed > 0 {
		s.log.Info("Completion sweep finished", "completed", completed)
	}
}

// SweepOnce completes every confirmed meeting that has ended and returns
// how many it moved. Meetings that changed status since they were read
// are skipped.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	today := now.Format(model.DateLayout)

	candidates, err := s.meetings.FindConfirmedOnOrBefore(ctx, today)
	if err != nil {
		return 0, err
	}

	// stored and published the same way transitions stamp updated_at
	at := now.UTC().Truncate(time.Millisecond)

	completed := 0
	var errs []error
	for _, meeting := range candidates {
		endsAt, err := meeting.EndsAt(s.loc)
		if err != nil {
			s.log.Warn("Skipping meeting with unparseable schedule",
				"id", meeting.ID,
				"meeting_date", meeting.MeetingDate,
				"end_time", meeting.EndTime,
			)
			continue
		}
		if !endsAt.Before(now) {
			continue
		}

		err = s.meetings.UpdateStatus(ctx, meeting.ID, model.StatusConfirmed, model.StatusCompleted, at)
		if err != nil {
			if errors.Is(err, meetingserrors.ErrStatusChanged) || errors.Is(err, meetingserrors.ErrNotFound) {
				s.log.Debug("Meeting changed before completion", "id", meeting.ID)
				continue
			}
			errs = append(errs, err)
			continue
		}
		completed++

		s.publish(ctx, meeting, at)
	}

	return completed, errors.Join(errs...)
}

func (s *Sweeper) publish(ctx context.Context, meeting *model.Meeting, at time.Time) {
	event := events.MeetingEvent{
		MeetingID:    meeting.ID,
		ConsultantID: meeting.ConsultantID,
		From:         model.StatusConfirmed,
		To:           model.StatusCompleted,
		At:           at,
	}
	if meeting.HasClient() {
		event.ClientID = *meeting.ClientID
	}

	consultant, err := s.consultants.FindByID(ctx, meeting.ConsultantID)
	switch {
	case err == nil:
		event.ConsultantOwnerID = consultant.OwnerUserID
	case errors.Is(err, consultantserrors.ErrNotFound), errors.Is(err, consultantserrors.ErrInvalidID):
	default:
		s.log.Warn("Failed to resolve consultant owner", "id", meeting.ID, "consultant_id", meeting.ConsultantID, "error", err)
	}

	if err := s.publisher.Publish(ctx, events.TypeStatusChanged, event); err != nil {
		s.log.Error("Failed to publish meeting event", "id", meeting.ID, "event_type", events.TypeStatusChanged, "error", err)
	}
}
