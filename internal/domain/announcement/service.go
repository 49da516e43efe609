package announcement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// PostInput carries a new or updated notice. Active defaults to true so a
// freshly posted notice is immediately visible.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Active  *bool  `json:"active,omitempty"`
}

func (in PostInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("title is required")
	}
	if in.Content == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

func (s *Service) Post(ctx context.Context, in PostInput) (*Announcement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a := &Announcement{
		ID:        uuid.New(),
		Title:     in.Title,
		Content:   in.Content,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if in.Active != nil {
		a.Active = *in.Active
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	s.logger.Info().Str("announcement_id", a.ID.String()).Msg("announcement posted")
	return a, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in PostInput) (*Announcement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Title = in.Title
	existing.Content = in.Content
	if in.Active != nil {
		existing.Active = *in.Active
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListActive is the doctor-facing feed.
func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]*Announcement, int, error) {
	return s.repo.List(ctx, true, limit, offset)
}

// ListAll is the admin view including deactivated notices.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*Announcement, int, error) {
	return s.repo.List(ctx, false, limit, offset)
}
