// Package classify partitions meetings into the three buckets shown on the
// meetings page.
package classify

import (
	"time"

	"tradedesk/pkg/model"
)

type Buckets struct {
	Upcoming  []*model.Meeting `json:"upcoming"`
	Past      []*model.Meeting `json:"past"`
	Cancelled []*model.Meeting `json:"cancelled"`
}

// Classify places every meeting in exactly one bucket, keeping input order
// within each bucket. "Today" is the calendar date of now in now's location.
//
// Cancellation wins over the date. A meeting dated before today is past.
// A meeting dated today or later is upcoming unless it already completed.
func Classify(meetings []*model.Meeting, now time.Time) Buckets {
	buckets := Buckets{
		Upcoming:  []*model.Meeting{},
		Past:      []*model.Meeting{},
		Cancelled: []*model.Meeting{},
	}

	today := now.Format(model.DateLayout)
	for _, m := range meetings {
		if m == nil {
			continue
		}
		switch {
		case m.Status == model.StatusCancelled:
			buckets.Cancelled = append(buckets.Cancelled, m)
		case m.MeetingDate < today:
			buckets.Past = append(buckets.Past, m)
		case m.Status == model.StatusCompleted:
			buckets.Past = append(buckets.Past, m)
		default:
			buckets.Upcoming = append(buckets.Upcoming, m)
		}
	}

	return buckets
}
