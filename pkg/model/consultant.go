package model

import "time"

type Consultant struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerUserID string    `json:"owner_user_id" bson:"owner_user_id"`
	Name        string    `json:"name" bson:"name"`
	AvatarURL   string    `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Headline    string    `json:"headline,omitempty" bson:"headline,omitempty"`
	HourlyRate  float64   `json:"hourly_rate" bson:"hourly_rate"`
	Currency    string    `json:"currency" bson:"currency"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

func (c *Consultant) Snapshot() *ConsultantSnapshot {
	return &ConsultantSnapshot{
		ID:         c.ID,
		Name:       c.Name,
		AvatarURL:  c.AvatarURL,
		Headline:   c.Headline,
		HourlyRate: c.HourlyRate,
		Currency:   c.Currency,
	}
}
