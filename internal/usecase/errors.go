package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrTransport marks a failed or malformed fetch from the fixture source.
	ErrTransport = errors.New("fixture source transport failure")
	// ErrEmptyResult means the fixture source answered with no records.
	ErrEmptyResult = errors.New("fixture source returned no records")
)

// EmptyResultNotice is shown to operators when a sync fetched nothing.
const EmptyResultNotice = "No data received."
