package errors

import "errors"

var (
	ErrNotFound = errors.New("meeting not found")

	ErrInvalidID = errors.New("invalid meeting ID format")

	// ErrStatusChanged means a compare-and-set status write matched nothing
	// because another writer moved the meeting first.
	ErrStatusChanged = errors.New("meeting status changed concurrently")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrDateInPast = errors.New("meeting date is in the past")
)
