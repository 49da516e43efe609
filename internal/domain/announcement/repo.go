package announcement

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Announcement) error
	GetByID(ctx context.Context, id uuid.UUID) (*Announcement, error)
	Update(ctx context.Context, a *Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns newest first. activeOnly hides deactivated notices.
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Announcement, int, error)
}
