package repository

import (
	"context"

	"tourguide/internal/domain"
)

// UserRepository is the in-process registry of live users, keyed by user name.
type UserRepository interface {
	// Add registers a user. Returns ErrAlreadyExists if the name is taken.
	Add(ctx context.Context, user *domain.User) error

	// GetByName retrieves a user by name.
	GetByName(ctx context.Context, name string) (*domain.User, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// Count returns the number of registered users.
	Count(ctx context.Context) (int, error)
}

// ProfileRepository defines the persistence operations for user profiles.
// Visit history and rewards are not persisted.
type ProfileRepository interface {
	// Save inserts or updates a profile.
	Save(ctx context.Context, profile domain.UserProfile) error

	// GetAll retrieves all stored profiles.
	GetAll(ctx context.Context) ([]domain.UserProfile, error)
}
