package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "tradedesk/pkg/errors"
	"tradedesk/pkg/logger"
	"tradedesk/pkg/model"
)

func TestQueryService_List_MergesBothSides(t *testing.T) {
	// actor booked m1 as a client and owns consultant c9, which has m2
	meetings := &mockMeetingRepo{
		findByClientIDFunc: func(ctx context.Context, clientID string) ([]*model.Meeting, error) {
			if clientID != "actor" {
				t.Errorf("FindByClientID(%q), want actor", clientID)
			}
			return []*model.Meeting{{ID: "1", MeetingDate: "2025-03-14", StartTime: "10:00"}}, nil
		},
		findByConsultantIDFunc: func(ctx context.Context, consultantID string) ([]*model.Meeting, error) {
			if consultantID != "c9" {
				t.Errorf("FindByConsultantID(%q), want c9", consultantID)
			}
			return []*model.Meeting{{ID: "2", MeetingDate: "2025-03-12", StartTime: "09:00"}}, nil
		},
	}
	consultants := consultantsOf(&model.Consultant{ID: "c9", OwnerUserID: "actor"})
	s := NewQueryService(meetings, consultants, newMockCache(), logger.Discard())

	got, err := s.List(context.Background(), "actor")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d meetings, want 2", len(got))
	}
	if got[0].ID != "2" || got[1].ID != "1" {
		t.Errorf("List() order = [%s %s], want [2 1]", got[0].ID, got[1].ID)
	}
}

func TestQueryService_List_DedupesKeepingClientRow(t *testing.T) {
	// actor booked a meeting with their own consultant profile
	clientRow := &model.Meeting{ID: "1", MeetingDate: "2025-03-12", Consultant: &model.ConsultantSnapshot{ID: "c9"}}
	consultantRow := &model.Meeting{ID: "1", MeetingDate: "2025-03-12"}
	meetings := &mockMeetingRepo{
		findByClientIDFunc: func(ctx context.Context, clientID string) ([]*model.Meeting, error) {
			return []*model.Meeting{clientRow}, nil
		},
		findByConsultantIDFunc: func(ctx context.Context, consultantID string) ([]*model.Meeting, error) {
			return []*model.Meeting{consultantRow, {ID: "3", MeetingDate: "2025-03-11"}}, nil
		},
	}
	consultants := consultantsOf(&model.Consultant{ID: "c9", OwnerUserID: "actor"})
	s := NewQueryService(meetings, consultants, newMockCache(), logger.Discard())

	got, err := s.List(context.Background(), "actor")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d meetings, want 2", len(got))
	}
	if got[1] != clientRow {
		t.Error("duplicate resolved to the consultant row, want the client row")
	}
}

func TestQueryService_List_NoConsultantProfile(t *testing.T) {
	meetings := &mockMeetingRepo{
		findByClientIDFunc: func(ctx context.Context, clientID string) ([]*model.Meeting, error) {
			return []*model.Meeting{{ID: "1", MeetingDate: "2025-03-12"}}, nil
		},
		findByConsultantIDFunc: func(ctx context.Context, consultantID string) ([]*model.Meeting, error) {
			t.Error("FindByConsultantID called for an actor without a profile")
			return nil, nil
		},
	}
	s := NewQueryService(meetings, consultantsOf(), newMockCache(), logger.Discard())

	got, err := s.List(context.Background(), "actor")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("List() returned %d meetings, want 1", len(got))
	}
}

func TestQueryService_List_EmptyIsNotNil(t *testing.T) {
	s := NewQueryService(&mockMeetingRepo{}, consultantsOf(), newMockCache(), logger.Discard())

	got, err := s.List(context.Background(), "actor")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", got)
	}
}

func TestQueryService_List_FailsWhole(t *testing.T) {
	boom := errors.New("mongo down")

	tests := []struct {
		name        string
		meetings    *mockMeetingRepo
		consultants *mockConsultantRepo
	}{
		{
			name: "client side fails",
			meetings: &mockMeetingRepo{
				findByClientIDFunc: func(ctx context.Context, clientID string) ([]*model.Meeting, error) {
					return nil, boom
				},
			},
			consultants: consultantsOf(&model.Consultant{ID: "c9", OwnerUserID: "actor"}),
		},
		{
			name: "consultant fetch fails",
			meetings: &mockMeetingRepo{
				findByConsultantIDFunc: func(ctx context.Context, consultantID string) ([]*model.Meeting, error) {
					return nil, boom
				},
			},
			consultants: consultantsOf(&model.Consultant{ID: "c9", OwnerUserID: "actor"}),
		},
		{
			name:        "owner lookup fails",
			meetings:    &mockMeetingRepo{},
			consultants: &mockConsultantRepo{err: boom},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newMockCache()
			s := NewQueryService(tt.meetings, tt.consultants, cache, logger.Discard())

			got, err := s.List(context.Background(), "actor")
			if got != nil {
				t.Errorf("List() returned partial result %v", got)
			}
			if !apperrors.HasCode(err, apperrors.CodeQueryFailure) {
				t.Errorf("List() error = %v, want QUERY_FAILURE", err)
			}
			if _, ok := cache.entries["actor"]; ok {
				t.Error("failed query populated the cache")
			}
		})
	}
}

func TestQueryService_List_UsesCache(t *testing.T) {
	calls := 0
	meetings := &mockMeetingRepo{
		findByClientIDFunc: func(ctx context.Context, clientID string) ([]*model.Meeting, error) {
			calls++
			return []*model.Meeting{{ID: "1", MeetingDate: "2025-03-12"}}, nil
		},
	}
	cache := newMockCache()
	s := NewQueryService(meetings, consultantsOf(), cache, logger.Discard())

	for i := 0; i < 2; i++ {
		if _, err := s.List(context.Background(), "actor"); err != nil {
			t.Fatalf("List() error = %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("store queried %d times, want 1", calls)
	}

	_ = cache.Invalidate(context.Background(), "actor")
	if _, err := s.List(context.Background(), "actor"); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("store queried %d times after invalidation, want 2", calls)
	}
}

func TestQueryService_List_CancelDuringListIsNotCached(t *testing.T) {
	repo, _ := storeWith(model.StatusPending)
	read := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	repo.findByClientIDFunc = func(ctx context.Context, id string) ([]*model.Meeting, error) {
		m, err := repo.findByIDFunc(ctx, meetingID)
		if err != nil {
			return nil, err
		}
		once.Do(func() {
			close(read)
			<-release
		})
		return []*model.Meeting{m}, nil
	}
	cache := newMockCache()
	q := NewQueryService(repo, consultantsOf(testConsultant()), cache, logger.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := q.List(context.Background(), clientID)
		done <- err
	}()

	<-read
	if _, err := newController(repo, cache, &mockPublisher{}).Cancel(context.Background(), clientID, meetingID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("List() error = %v", err)
	}

	got, err := q.List(context.Background(), clientID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].Status != model.StatusCancelled {
		t.Fatalf("List() after cancel = %+v, want the cancelled meeting", got)
	}
}

func TestQueryService_List_RequiresActor(t *testing.T) {
	s := NewQueryService(&mockMeetingRepo{}, consultantsOf(), newMockCache(), logger.Discard())

	if _, err := s.List(context.Background(), ""); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("List() error = %v, want UNAUTHORIZED", err)
	}
}

func TestMergeMeetings_StableOnTies(t *testing.T) {
	got := mergeMeetings(
		[]*model.Meeting{
			{ID: "a", MeetingDate: "2025-03-12", StartTime: "10:00"},
			{ID: "b", MeetingDate: "2025-03-12", StartTime: "10:00"},
		},
		[]*model.Meeting{
			{ID: "c", MeetingDate: "2025-03-12", StartTime: "08:00"},
			{ID: "d", MeetingDate: "2025-03-11", StartTime: "18:00"},
			nil,
		},
	)

	want := []string{"d", "c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("mergeMeetings() len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}
