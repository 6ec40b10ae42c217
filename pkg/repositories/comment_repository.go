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

// CommentRepository defines the interface for card comment data access.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Comment, error)
	ListByCard(ctx context.Context, cardID int64) ([]*models.Comment, error)
	UpdateBody(ctx context.Context, id int64, body string) error
	SoftDelete(ctx context.Context, id, actorID int64) error
}

type commentRepository struct {
	db *database.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *database.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.PublicID == uuid.Nil {
		comment.PublicID = uuid.New()
	}

	query := `
		INSERT INTO comments (public_id, card_id, author_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, updated_at`

	err := querier(ctx, r.db).QueryRow(ctx, query,
		comment.PublicID, comment.CardID, comment.AuthorID, comment.Body).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Comment, error) {
	query := `
		SELECT id, public_id, card_id, author_id, body, created_at, updated_at, deleted_at, deleted_by_id
		FROM comments
		WHERE public_id = $1 AND deleted_at IS NULL`

	var c models.Comment
	err := querier(ctx, r.db).QueryRow(ctx, query, publicID).Scan(
		&c.ID, &c.PublicID, &c.CardID, &c.AuthorID, &c.Body,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt, &c.DeletedByID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

func (r *commentRepository) ListByCard(ctx context.Context, cardID int64) ([]*models.Comment, error) {
	query := `
		SELECT c.id, c.public_id, c.card_id, c.author_id, c.body,
		       c.created_at, c.updated_at, c.deleted_at, c.deleted_by_id,
		       u.public_id, u.display_name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.card_id = $1 AND c.deleted_at IS NULL
		ORDER BY c.created_at`

	rows, err := querier(ctx, r.db).Query(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PublicID, &c.CardID, &c.AuthorID, &c.Body,
			&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt, &c.DeletedByID,
			&c.AuthorPublicID, &c.AuthorDisplayName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) UpdateBody(ctx context.Context, id int64, body string) error {
	query := `
		UPDATE comments SET body = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, body)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id, actorID int64) error {
	query := `
		UPDATE comments SET deleted_at = now(), deleted_by_id = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier(ctx, r.db).Exec(ctx, query, id, actorID)
	if err != nil {
		return fmt.Errorf("failed to soft-delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

var _ CommentRepository = (*commentRepository)(nil)
