package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/hoot-be/internal/auth"
	"github.com/isdelr/hoot-be/internal/common"
	"github.com/isdelr/hoot-be/internal/models"
)

// CommentServiceProvider defines the interface for comment services.
type CommentServiceProvider interface {
	AddComment(ctx context.Context, hootID, text string, caller models.User) (models.Comment, error)
	UpdateComment(ctx context.Context, hootID, commentID, text, callerID string) error
	DeleteComment(ctx context.Context, hootID, commentID, callerID string) error
}

// CommentService manages the comments embedded in a hoot. Every change is a
// versioned write of the whole hoot, so concurrent changes are never lost.
type CommentService struct {
	store    hootStore
	activity activity

	// strictOwnership limits edits and removals to the comment's author.
	strictOwnership bool
}

// NewCommentService creates a new CommentService. eventService and publisher may be nil.
func NewCommentService(db *sql.DB, eventService EventServiceProvider, publisher Publisher, strictOwnership bool) *CommentService {
	return &CommentService{
		store:           hootStore{db: db},
		activity:        activity{events: eventService, publisher: publisher},
		strictOwnership: strictOwnership,
	}
}

// AddComment appends a new comment by caller to the end of the hoot's comment list.
func (s *CommentService) AddComment(ctx context.Context, hootID, text string, caller models.User) (models.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return models.Comment{}, err
	}
	if caller.ID == "" {
		return models.Comment{}, common.ErrorUnauthenticated
	}

	comment := models.Comment{
		ID:        uuid.New().String(),
		Text:      text,
		Author:    caller,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.store.mutate(ctx, hootID, func(h *models.Hoot) error {
		h.AddComment(comment)
		return nil
	}); err != nil {
		return models.Comment{}, err
	}

	s.activity.record(ctx, "comment.created", "info", "Comment was added.", hootID, caller.ID, comment)
	return comment, nil
}

// UpdateComment replaces the text of a comment.
func (s *CommentService) UpdateComment(ctx context.Context, hootID, commentID, text, callerID string) error {
	if err := validateCommentText(text); err != nil {
		return err
	}

	h, err := s.store.mutate(ctx, hootID, func(h *models.Hoot) error {
		if err := s.authorize(h, commentID, callerID); err != nil {
			return err
		}
		return h.EditComment(commentID, text)
	})
	if err != nil {
		return err
	}

	updated, _ := h.Comment(commentID)
	s.activity.record(ctx, "comment.updated", "info", "Comment was edited.", hootID, callerID, updated)
	return nil
}

// DeleteComment removes a comment from its hoot.
func (s *CommentService) DeleteComment(ctx context.Context, hootID, commentID, callerID string) error {
	if _, err := s.store.mutate(ctx, hootID, func(h *models.Hoot) error {
		if err := s.authorize(h, commentID, callerID); err != nil {
			return err
		}
		return h.RemoveComment(commentID)
	}); err != nil {
		return err
	}

	s.activity.record(ctx, "comment.deleted", "warn", "Comment was removed.", hootID, callerID,
		map[string]string{"id": commentID})
	return nil
}

func (s *CommentService) authorize(h *models.Hoot, commentID, callerID string) error {
	if !s.strictOwnership {
		return nil
	}
	c, err := h.Comment(commentID)
	if err != nil {
		return err
	}
	if auth.Authorize(c.Author.ID, callerID) == auth.Denied {
		return fmt.Errorf("comment %s: %w", commentID, common.ErrorForbidden)
	}
	return nil
}

func validateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is required", common.ErrorValidation)
	}
	return nil
}
