package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: id=%s", id)

	var u models.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, steam_id, created_at
FROM users
WHERE id = ?
`, id).Scan(&u.ID, &u.SteamID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found: id=%s", id)
		} else {
			log.Error("failed to get user: %v", err)
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Upsert(ctx context.Context, steamID string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("upserting user: steam_id=%s", steamID)

	var u models.User
	err := r.db.QueryRowContext(ctx, `
INSERT INTO users (id, steam_id)
VALUES (?, ?)
ON CONFLICT(steam_id) DO UPDATE SET steam_id = excluded.steam_id
RETURNING id, steam_id, created_at
`, uuid.NewString(), steamID).Scan(&u.ID, &u.SteamID, &u.CreatedAt)
	if err != nil {
		log.Error("failed to upsert user: %v", err)
		return nil, err
	}
	log.Debug("user upserted: id=%s", u.ID)
	return &u, nil
}
