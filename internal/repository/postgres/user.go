package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"tourguide/internal/domain"
	"tourguide/internal/repository"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	q Querier
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{q: db}
}

// NewProfileRepositoryWithTx creates a profile repository using a transaction.
func NewProfileRepositoryWithTx(tx *sql.Tx) *ProfileRepository {
	return &ProfileRepository{q: tx}
}

// Save inserts a profile, or updates contact details and preferences if the id exists.
func (r *ProfileRepository) Save(ctx context.Context, profile domain.UserProfile) error {
	prefs, err := json.Marshal(profile.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `
		INSERT INTO user_profiles (id, name, phone, email, preferences, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET phone = EXCLUDED.phone, email = EXCLUDED.email, preferences = EXCLUDED.preferences`
	_, err = r.q.ExecContext(ctx, query,
		profile.ID, profile.Name, profile.Phone, profile.Email, prefs, profile.CreatedAt)
	return err
}

// GetAll retrieves all profiles ordered by name.
func (r *ProfileRepository) GetAll(ctx context.Context) ([]domain.UserProfile, error) {
	query := `SELECT id, name, phone, email, preferences, created_at FROM user_profiles ORDER BY name`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.UserProfile
	for rows.Next() {
		var (
			p     domain.UserProfile
			prefs []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &prefs, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Preferences = domain.DefaultPreferences()
		if len(prefs) > 0 {
			if err := json.Unmarshal(prefs, &p.Preferences); err != nil {
				return nil, fmt.Errorf("failed to decode preferences for %s: %w", p.Name, err)
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
