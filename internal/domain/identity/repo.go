package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, ident *Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	GetByLoginID(ctx context.Context, loginID string) (*Identity, error)
	UpdateSecretHash(ctx context.Context, id uuid.UUID, hash string) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Identity, int, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, p *DoctorProfile) error
	GetByIdentity(ctx context.Context, identityID uuid.UUID) (*DoctorProfile, error)
	UpdateStatus(ctx context.Context, identityID uuid.UUID, status string) error
	Delete(ctx context.Context, identityID uuid.UUID) error
}
