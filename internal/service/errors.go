package service

import "errors"

var (
	// ErrProviderUnavailable is returned when a location, scoring or pricing call fails or times out.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrInvalidUserName is returned when a user name is empty.
	ErrInvalidUserName = errors.New("invalid user name")

	// ErrInvalidK is returned when the requested number of closest attractions is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidPreferences is returned when trip preferences are out of range.
	ErrInvalidPreferences = errors.New("invalid preferences")

	// ErrTrackerAlreadyStarted is returned when Start is called more than once.
	ErrTrackerAlreadyStarted = errors.New("tracker already started")
)
