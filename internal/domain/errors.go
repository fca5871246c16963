package domain

import "errors"

var (
	// ErrInvalidCoordinate is returned when latitude or longitude is out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrNoPendingReward is returned when finalizing a score for an attraction
	// that has no pending reward in the ledger.
	ErrNoPendingReward = errors.New("no pending reward for attraction")
)
