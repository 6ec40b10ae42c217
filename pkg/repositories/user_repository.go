package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/database"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
)

// UserRepository defines the interface for user account data access.
type UserRepository interface {
	// UpsertByIdentity finds or creates the account for an OAuth
	// (provider, subject) identity, refreshing email and name on login.
	UpsertByIdentity(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	UpdateDisplayName(ctx context.Context, id int64, displayName string) error
}

type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, public_id, provider, subject, email, name, display_name, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.PublicID, &u.Provider, &u.Subject, &u.Email, &u.Name, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) UpsertByIdentity(ctx context.Context, user *models.User) (*models.User, error) {
	if user.PublicID == uuid.Nil {
		user.PublicID = uuid.New()
	}

	query := `
		INSERT INTO users (public_id, provider, subject, email, name, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '', now(), now())
		ON CONFLICT (provider, subject) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    updated_at = now()
		RETURNING ` + userColumns

	return scanUser(querier(ctx, r.db).QueryRow(ctx, query,
		user.PublicID, user.Provider, user.Subject, user.Email, user.Name))
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(querier(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *userRepository) UpdateDisplayName(ctx context.Context, id int64, displayName string) error {
	query := `UPDATE users SET display_name = $2, updated_at = now() WHERE id = $1`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, displayName)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

var _ UserRepository = (*userRepository)(nil)
