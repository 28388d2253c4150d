package service

import (
	"context"
	"sync"
	"time"

	consultantserrors "tradedesk/internal/consultants/errors"
	meetingserrors "tradedesk/internal/meetings/errors"
	"tradedesk/internal/meetings/events"
	mongotx "tradedesk/pkg/db/mongo"
	"tradedesk/pkg/model"
)

type mockMeetingRepo struct {
	createFunc             func(ctx context.Context, m *model.Meeting) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Meeting, error)
	findByClientIDFunc     func(ctx context.Context, clientID string) ([]*model.Meeting, error)
	findByConsultantIDFunc func(ctx context.Context, consultantID string) ([]*model.Meeting, error)
	findConfirmedFunc      func(ctx context.Context, date string) ([]*model.Meeting, error)
	updateStatusFunc       func(ctx context.Context, id string, from, to model.MeetingStatus, at time.Time) error
}

func (m *mockMeetingRepo) Create(ctx context.Context, meeting *model.Meeting) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, meeting)
	}
	meeting.ID = "new-meeting"
	return nil
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, meetingserrors.ErrNotFound
}

func (m *mockMeetingRepo) FindByClientID(ctx context.Context, clientID string) ([]*model.Meeting, error) {
	if m.findByClientIDFunc != nil {
		return m.findByClientIDFunc(ctx, clientID)
	}
	return []*model.Meeting{}, nil
}

func (m *mockMeetingRepo) FindByConsultantID(ctx context.Context, consultantID string) ([]*model.Meeting, error) {
	if m.findByConsultantIDFunc != nil {
		return m.findByConsultantIDFunc(ctx, consultantID)
	}
	return []*model.Meeting{}, nil
}

func (m *mockMeetingRepo) FindConfirmedOnOrBefore(ctx context.Context, date string) ([]*model.Meeting, error) {
	if m.findConfirmedFunc != nil {
		return m.findConfirmedFunc(ctx, date)
	}
	return []*model.Meeting{}, nil
}

func (m *mockMeetingRepo) UpdateStatus(ctx context.Context, id string, from, to model.MeetingStatus, at time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to, at)
	}
	return nil
}

func (m *mockMeetingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockConsultantRepo struct {
	byID    map[string]*model.Consultant
	byOwner map[string]*model.Consultant
	err     error
}

func (m *mockConsultantRepo) FindByID(_ context.Context, id string) (*model.Consultant, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, consultantserrors.ErrNotFound
}

func (m *mockConsultantRepo) FindByOwnerUserID(_ context.Context, userID string) (*model.Consultant, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.byOwner[userID]; ok {
		return c, nil
	}
	return nil, consultantserrors.ErrNotFound
}

func consultantsOf(consultants ...*model.Consultant) *mockConsultantRepo {
	repo := &mockConsultantRepo{byID: map[string]*model.Consultant{}, byOwner: map[string]*model.Consultant{}}
	for _, c := range consultants {
		repo.byID[c.ID] = c
		repo.byOwner[c.OwnerUserID] = c
	}
	return repo
}

type mockCache struct {
	mu          sync.Mutex
	entries     map[string][]*model.Meeting
	entryGen    map[string]int64
	generations map[string]int64
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{
		entries:     map[string][]*model.Meeting{},
		entryGen:    map[string]int64{},
		generations: map[string]int64{},
	}
}

func (m *mockCache) Get(_ context.Context, actorID string) ([]*model.Meeting, int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen := m.generations[actorID]
	v, ok := m.entries[actorID]
	if !ok || m.entryGen[actorID] != gen {
		return nil, gen, false
	}
	return v, gen, true
}

func (m *mockCache) Set(_ context.Context, actorID string, generation int64, meetings []*model.Meeting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation < 0 {
		return
	}
	m.entries[actorID] = meetings
	m.entryGen[actorID] = generation
}

func (m *mockCache) Invalidate(_ context.Context, actorIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range actorIDs {
		if id == "" {
			continue
		}
		m.invalidated = append(m.invalidated, id)
		m.generations[id]++
	}
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.MeetingEvent
	types  []string
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, eventType string, event events.MeetingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types = append(m.types, eventType)
	m.events = append(m.events, event)
	return m.err
}

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func nowFunc() time.Time { return fixedNow }

func strPtr(s string) *string { return &s }
