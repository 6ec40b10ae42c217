package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/authz"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
)

const maxCommentLength = 5000

// CommentService manages card comments. Editing and deletion belong
// to the comment's author or a moderating admin.
type CommentService interface {
	Create(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, body string) (*models.Comment, error)
	ListByCard(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) ([]*models.Comment, error)
	Update(ctx context.Context, scope *authz.RequestScope, commentID uuid.UUID, body string) (*models.Comment, error)
	SoftDelete(ctx context.Context, scope *authz.RequestScope, commentID uuid.UUID) error
}

type commentService struct {
	gate     *authz.Gate
	cards    repositories.CardRepository
	comments repositories.CommentRepository
	logger   *zap.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(gate *authz.Gate, cards repositories.CardRepository, comments repositories.CommentRepository, logger *zap.Logger) CommentService {
	return &commentService{gate: gate, cards: cards, comments: comments, logger: logger}
}

// Create adds a comment on the card with the caller as author.
func (s *commentService) Create(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID, body string) (*models.Comment, error) {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermCommentCreate, authz.CardRef(cardID), authz.Options{}); err != nil {
		return nil, err
	}
	body, err := validCommentBody(body)
	if err != nil {
		return nil, err
	}

	card, err := s.cards.Lookup(ctx, cardID, false)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{
		PublicID: uuid.New(),
		CardID:   card.ID,
		AuthorID: scope.UserID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByCard returns the card's comments in creation order.
func (s *commentService) ListByCard(ctx context.Context, scope *authz.RequestScope, cardID uuid.UUID) ([]*models.Comment, error) {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermCardRead, authz.CardRef(cardID), authz.Options{}); err != nil {
		return nil, err
	}
	card, err := s.cards.Lookup(ctx, cardID, false)
	if err != nil {
		return nil, err
	}
	return s.comments.ListByCard(ctx, card.ID)
}

// Update edits the comment's body. Author or admin and above.
func (s *commentService) Update(ctx context.Context, scope *authz.RequestScope, commentID uuid.UUID, body string) (*models.Comment, error) {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermCommentUpdate, authz.CommentRef(commentID), authz.Options{}); err != nil {
		return nil, err
	}
	body, err := validCommentBody(body)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.GetByPublicID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.comments.UpdateBody(ctx, comment.ID, body); err != nil {
		return nil, err
	}
	comment.Body = body
	return comment, nil
}

// SoftDelete removes the comment. Author or admin and above.
func (s *commentService) SoftDelete(ctx context.Context, scope *authz.RequestScope, commentID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, scope, authz.PermCommentDelete, authz.CommentRef(commentID), authz.Options{}); err != nil {
		return err
	}
	comment, err := s.comments.GetByPublicID(ctx, commentID)
	if err != nil {
		return err
	}
	return s.comments.SoftDelete(ctx, comment.ID, scope.UserID)
}

// validCommentBody trims and bounds a comment body.
func validCommentBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperrors.Validation("body", "body must not be empty")
	}
	if len(body) > maxCommentLength {
		return "", apperrors.Validation("body", "body must be at most %d characters", maxCommentLength)
	}
	return body, nil
}

var _ CommentService = (*commentService)(nil)
