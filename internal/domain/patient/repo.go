package patient

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a patient listing. Search matches patient_code and name
// case-insensitively; Owner restricts to one doctor's records and is required
// on the doctor-facing path (the SQL does the scoping, not the handler).
type ListFilter struct {
	Owner  *uuid.UUID
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]*Record, int, error)
	UpdateOwner(ctx context.Context, id uuid.UUID, owner *uuid.UUID) error
	OrphanByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
