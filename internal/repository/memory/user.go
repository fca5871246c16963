// Package memory provides the concurrent in-process user registry.
package memory

import (
	"context"
	"sort"
	"sync"

	"tourguide/internal/domain"
	"tourguide/internal/repository"
)

// UserRepository is a thread-safe map of user name to user.
// Reads vastly outnumber writes, which only happen at registration.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserRepository creates an empty registry.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*domain.User),
	}
}

// Add registers a user under its name.
func (r *UserRepository) Add(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Name]; ok {
		return repository.ErrAlreadyExists
	}
	r.users[user.Name] = user
	return nil
}

// GetByName retrieves a user by name.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

// GetAll retrieves all users ordered by name.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
