package errors

import "errors"

var (
	ErrNotFound = errors.New("consultant not found")

	ErrInvalidID = errors.New("invalid consultant ID format")
)
