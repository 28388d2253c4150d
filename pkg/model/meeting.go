package model

import (
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type MeetingStatus string

const (
	StatusPending   MeetingStatus = "pending"
	StatusConfirmed MeetingStatus = "confirmed"
	StatusCompleted MeetingStatus = "completed"
	StatusCancelled MeetingStatus = "cancelled"
)

func (s MeetingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave s.
func (s MeetingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type MeetingType string

const (
	MeetingTypeVideo    MeetingType = "video"
	MeetingTypePhone    MeetingType = "phone"
	MeetingTypeInPerson MeetingType = "in_person"
)

// ConsultantSnapshot is the public profile projection embedded into
// meetings fetched from the client side.
type ConsultantSnapshot struct {
	ID         string  `json:"id" bson:"_id"`
	Name       string  `json:"name" bson:"name"`
	AvatarURL  string  `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Headline   string  `json:"headline,omitempty" bson:"headline,omitempty"`
	HourlyRate float64 `json:"hourly_rate" bson:"hourly_rate"`
	Currency   string  `json:"currency,omitempty" bson:"currency,omitempty"`
}

type Meeting struct {
	ID              string              `json:"id,omitempty" bson:"_id,omitempty"`
	ConsultantID    string              `json:"consultant_id" bson:"consultant_id"`
	ClientID        *string             `json:"client_id" bson:"client_id"`
	ClientName      string              `json:"client_name" bson:"client_name"`
	ClientEmail     string              `json:"client_email" bson:"client_email"`
	ClientCompany   string              `json:"client_company,omitempty" bson:"client_company,omitempty"`
	MeetingDate     string              `json:"meeting_date" bson:"meeting_date"`
	StartTime       string              `json:"start_time" bson:"start_time"`
	EndTime         string              `json:"end_time" bson:"end_time"`
	DurationMinutes int                 `json:"duration_minutes" bson:"duration_minutes"`
	MeetingType     MeetingType         `json:"meeting_type" bson:"meeting_type"`
	MeetingLink     string              `json:"meeting_link,omitempty" bson:"meeting_link,omitempty"`
	Status          MeetingStatus       `json:"status" bson:"status"`
	TotalCost       *float64            `json:"total_cost,omitempty" bson:"total_cost,omitempty"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" bson:"updated_at"`
	Consultant      *ConsultantSnapshot `json:"consultant,omitempty" bson:"consultant,omitempty"`
}

// HasClient reports whether the meeting is owned by a registered user.
func (m *Meeting) HasClient() bool {
	return m.ClientID != nil && *m.ClientID != ""
}

// IsClient reports whether userID booked the meeting.
func (m *Meeting) IsClient(userID string) bool {
	return m.HasClient() && *m.ClientID == userID
}

// EndsAt resolves the wall-clock end of the meeting in loc.
func (m *Meeting) EndsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, m.MeetingDate+" "+m.EndTime, loc)
}

// BookingRequest is the payload accepted when a client books a consultant.
type BookingRequest struct {
	ConsultantID  string      `json:"consultant_id" validate:"required,mongodb"`
	ClientName    string      `json:"client_name" validate:"required,min=2,max=100"`
	ClientEmail   string      `json:"client_email" validate:"required,email,max=254"`
	ClientCompany string      `json:"client_company,omitempty" validate:"omitempty,max=200"`
	MeetingDate   string      `json:"meeting_date" validate:"required,datetime=2006-01-02"`
	StartTime     string      `json:"start_time" validate:"required,datetime=15:04"`
	EndTime       string      `json:"end_time" validate:"required,datetime=15:04"`
	MeetingType   MeetingType `json:"meeting_type" validate:"required,oneof=video phone in_person"`
}
