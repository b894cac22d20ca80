package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, p models.Profile) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("creating profile: id=%s", p.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO profiles (id, name, created_at)
VALUES (?, ?, ?)
`, p.ID, p.Name, utc(p.CreatedAt))
	if err != nil {
		log.Error("failed to create profile: %v", err)
	}
	return err
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing profiles")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, created_at
FROM profiles
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			log.Error("failed to scan profile row: %v", err)
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		profiles = append(profiles, p)
	}

	log.Debug("found %d profiles", len(profiles))
	return profiles, rows.Err()
}

func (r *profileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%s", id)

	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, created_at
FROM profiles
WHERE id = ?
`, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("deleting profile and related data: id=%s", id)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		// Events hang off sessions, everything else off the profile.
		for _, stmt := range []string{
			`DELETE FROM session_events WHERE session_id IN (SELECT id FROM sessions WHERE profile_id = ?)`,
			`DELETE FROM sessions WHERE profile_id = ?`,
			`DELETE FROM review_history WHERE profile_id = ?`,
			`DELETE FROM retention_cards WHERE profile_id = ?`,
			`DELETE FROM streaks WHERE profile_id = ?`,
			`DELETE FROM coaching_card_cache WHERE profile_id = ?`,
			`DELETE FROM profiles WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				log.Error("failed to delete data for profile %s: %v", id, err)
				return err
			}
		}
		log.Debug("profile %s deleted with related data", id)
		return nil
	})
}
