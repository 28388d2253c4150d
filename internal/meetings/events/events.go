// Package events carries meeting lifecycle changes over Kafka so every
// replica of the meetings service can drop stale cached lists.
package events

import (
	"context"
	"fmt"
	"time"

	"tradedesk/pkg/kafka"
	"tradedesk/pkg/logger"
	"tradedesk/pkg/model"
)

const (
	TypeStatusChanged = "meeting.status_changed"
	TypeBooked        = "meeting.booked"

	SchemaVersion = "1"
)

// MeetingEvent is the payload of both event types. From is empty for
// bookings.
type MeetingEvent struct {
	MeetingID         string              `json:"meeting_id"`
	ClientID          string              `json:"client_id,omitempty"`
	ConsultantID      string              `json:"consultant_id"`
	ConsultantOwnerID string              `json:"consultant_owner_id,omitempty"`
	From              model.MeetingStatus `json:"from,omitempty"`
	To                model.MeetingStatus `json:"to"`
	At                time.Time           `json:"at"`
}

// AffectedActors lists the users whose cached meeting lists the event
// makes stale.
func (e MeetingEvent) AffectedActors() []string {
	var actors []string
	if e.ClientID != "" {
		actors = append(actors, e.ClientID)
	}
	if e.ConsultantOwnerID != "" {
		actors = append(actors, e.ConsultantOwnerID)
	}
	return actors
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, event MeetingEvent) error
}

type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
	source   string
}

func NewKafkaPublisher(producer MessagePublisher, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, event MeetingEvent) error {
	msg, err := NewMessage(eventType, event, p.source)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s for meeting %s: %w", eventType, event.MeetingID, err)
	}
	return nil
}

// NewMessage keys the record by meeting id so all events of one meeting
// land on the same partition in order.
func NewMessage(eventType string, event MeetingEvent, source string) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(event.MeetingID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(source).
		WithTimestamp(event.At).
		Build()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, MeetingEvent) error { return nil }

// Invalidator is the slice of the meeting cache the consumer needs.
type Invalidator interface {
	Invalidate(ctx context.Context, actorIDs ...string) error
}

// CacheInvalidationHandler drops the cached lists of every party named in
// a meeting event. Cache failures are transient so the consumer retries.
func CacheInvalidationHandler(cache Invalidator, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		switch msg.GetEventType() {
		case TypeStatusChanged, TypeBooked:
		default:
			log.Debug("Ignoring unrelated event", "event_type", msg.GetEventType(), "event_id", msg.GetEventID())
			return nil
		}

		var event MeetingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("undecodable meeting event", err)
		}

		actors := event.AffectedActors()
		if len(actors) == 0 {
			return nil
		}
		if err := cache.Invalidate(ctx, actors...); err != nil {
			return kafka.NewTransientError("meeting cache invalidation failed", err)
		}

		log.Debug("Invalidated cached meeting lists",
			"meeting_id", event.MeetingID,
			"event_type", msg.GetEventType(),
			"actors", actors,
		)
		return nil
	}
}
