package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/hoot-be/internal/auth"
	"github.com/isdelr/hoot-be/internal/common"
	"github.com/isdelr/hoot-be/internal/models"
)

// HootServiceProvider defines the interface for hoot services.
type HootServiceProvider interface {
	GetAllHoots(ctx context.Context) ([]models.Hoot, error)
	GetHootByID(ctx context.Context, id string) (models.Hoot, error)
	CreateHoot(ctx context.Context, content models.HootContent, caller models.User) (models.Hoot, error)
	UpdateHoot(ctx context.Context, id string, patch models.HootPatch, callerID string) (models.Hoot, error)
	DeleteHoot(ctx context.Context, id, callerID string) (models.Hoot, error)
}

// HootService provides business logic for hoots. Only a hoot's author may change it.
type HootService struct {
	store    hootStore
	activity activity
}

// NewHootService creates a new HootService. eventService and publisher may be nil.
func NewHootService(db *sql.DB, eventService EventServiceProvider, publisher Publisher) *HootService {
	return &HootService{
		store:    hootStore{db: db},
		activity: activity{events: eventService, publisher: publisher},
	}
}

// GetAllHoots retrieves all hoots, newest first, with authors resolved.
func (s *HootService) GetAllHoots(ctx context.Context) ([]models.Hoot, error) {
	hoots, err := s.store.list(ctx)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*models.Hoot, len(hoots))
	for i := range hoots {
		ptrs[i] = &hoots[i]
	}
	if err := s.store.resolveCommentAuthors(ctx, ptrs...); err != nil {
		return nil, err
	}
	return hoots, nil
}

// GetHootByID retrieves a single hoot with its author and every comment author resolved.
func (s *HootService) GetHootByID(ctx context.Context, id string) (models.Hoot, error) {
	h, err := s.store.load(ctx, id)
	if err != nil {
		return models.Hoot{}, err
	}
	if err := s.store.resolveCommentAuthors(ctx, &h); err != nil {
		return models.Hoot{}, err
	}
	return h, nil
}

// CreateHoot stores a new hoot authored by caller. The returned hoot carries
// caller as its author without reading it back.
func (s *HootService) CreateHoot(ctx context.Context, content models.HootContent, caller models.User) (models.Hoot, error) {
	if err := content.Validate(); err != nil {
		return models.Hoot{}, err
	}
	if caller.ID == "" {
		return models.Hoot{}, common.ErrorUnauthenticated
	}

	now := time.Now().UTC()
	h := models.Hoot{
		ID:        uuid.New().String(),
		Title:     content.Title,
		Text:      content.Text,
		Category:  content.Category,
		Author:    caller,
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	if err := s.store.insert(ctx, h); err != nil {
		return models.Hoot{}, fmt.Errorf("failed to insert hoot: %w", err)
	}

	s.activity.record(ctx, "hoot.created", "info", fmt.Sprintf("Hoot '%s' was created.", h.Title), h.ID, caller.ID, h)
	return h, nil
}

// UpdateHoot merges patch into the hoot if callerID is its author.
func (s *HootService) UpdateHoot(ctx context.Context, id string, patch models.HootPatch, callerID string) (models.Hoot, error) {
	if err := patch.Validate(); err != nil {
		return models.Hoot{}, err
	}

	h, err := s.store.mutate(ctx, id, func(h *models.Hoot) error {
		if auth.Authorize(h.Author.ID, callerID) == auth.Denied {
			return fmt.Errorf("hoot %s: %w", id, common.ErrorForbidden)
		}
		h.Apply(patch)
		return nil
	})
	if err != nil {
		return models.Hoot{}, err
	}
	if err := s.store.resolveCommentAuthors(ctx, &h); err != nil {
		return models.Hoot{}, err
	}

	s.activity.record(ctx, "hoot.updated", "info", fmt.Sprintf("Hoot '%s' was updated.", h.Title), h.ID, callerID, h)
	return h, nil
}

// DeleteHoot permanently removes the hoot if callerID is its author and returns what was removed.
func (s *HootService) DeleteHoot(ctx context.Context, id, callerID string) (models.Hoot, error) {
	h, err := s.GetHootByID(ctx, id)
	if err != nil {
		return models.Hoot{}, err
	}
	if auth.Authorize(h.Author.ID, callerID) == auth.Denied {
		return models.Hoot{}, fmt.Errorf("hoot %s: %w", id, common.ErrorForbidden)
	}
	if err := s.store.remove(ctx, id, callerID); err != nil {
		return models.Hoot{}, err
	}

	s.activity.record(ctx, "hoot.deleted", "warn", fmt.Sprintf("Hoot '%s' was permanently deleted.", h.Title), h.ID, callerID, h)
	return h, nil
}
