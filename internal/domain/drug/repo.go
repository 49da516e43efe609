package drug

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows the reference listing. Search matches the local and
// English names; Category is an exact match.
type ListFilter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, d *Drug) error
	GetByCode(ctx context.Context, code string) (*Drug, error)
	Update(ctx context.Context, d *Drug) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context, f ListFilter) ([]*Drug, int, error)
}

type InteractionRepository interface {
	Create(ctx context.Context, in *Interaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Interaction, error)
}
