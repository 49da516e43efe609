package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hepacare/cdss/internal/platform/auth"
	"github.com/hepacare/cdss/internal/platform/errs"
	"github.com/hepacare/cdss/internal/platform/secrets"
)

// RecordOrphaner detaches every patient record owned by an identity.
// Implemented by the patient repository; invoked inside the deprovision
// transaction.
type RecordOrphaner interface {
	OrphanByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// SessionRevoker kills every live session of an identity. Implemented by
// the session store; invoked inside the deprovision transaction and after
// credential changes.
type SessionRevoker interface {
	RevokeAllForIdentity(ctx context.Context, identityID uuid.UUID) error
}

// TxRunner runs fn inside a single transaction. In production it wraps
// db.WithTx; tests pass a runner that just calls fn.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo     Repository
	profiles ProfileRepository
	orphaner RecordOrphaner
	sessions SessionRevoker
	runTx    TxRunner
	logger   zerolog.Logger
}

func NewService(
	repo Repository,
	profiles ProfileRepository,
	orphaner RecordOrphaner,
	sessions SessionRevoker,
	runTx TxRunner,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		orphaner: orphaner,
		sessions: sessions,
		runTx:    runTx,
		logger:   logger,
	}
}

// Authenticate checks a login identifier and secret. Unknown login and wrong
// secret both come back as errs.ErrInvalidCredentials: the caller learns
// nothing about which part failed, and the unknown-login path burns a dummy
// hash comparison so the two failures cost the same.
func (s *Service) Authenticate(ctx context.Context, loginID, secret string) (*Identity, error) {
	ident, err := s.repo.GetByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			secrets.VerifyDummy(secret)
			return nil, errs.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup login: %w", err)
	}

	if !secrets.Verify(ident.SecretHash, secret) {
		return nil, errs.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.RecordLogin(ctx, ident.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	ident.LastLogin = &now
	return ident, nil
}

// PrincipalByID implements auth.PrincipalLookup. Session resolution calls it
// on every request, so a deprovisioned identity kills its sessions here even
// before the session rows are revoked.
func (s *Service) PrincipalByID(ctx context.Context, id uuid.UUID) (*auth.Principal, error) {
	ident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.Principal{
		ID:        ident.ID,
		LoginID:   ident.LoginID,
		Superuser: ident.Superuser,
	}, nil
}

// ProvisionInput carries the fields for a new doctor account.
type ProvisionInput struct {
	LoginID   string  `json:"login_id"`
	Secret    string  `json:"secret"`
	Superuser bool    `json:"superuser"`
	Name      string  `json:"name"`
	Sex       string  `json:"sex"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// Provision creates an identity and its doctor profile in one transaction.
// A duplicate login_id fails with errs.ErrDuplicateKey and neither row is
// created.
func (s *Service) Provision(ctx context.Context, in ProvisionInput) (*Account, error) {
	if in.LoginID == "" {
		return nil, fmt.Errorf("login_id is required")
	}
	if in.Secret == "" {
		return nil, fmt.Errorf("secret is required")
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if in.Sex != "male" && in.Sex != "female" {
		return nil, fmt.Errorf("invalid sex: %s", in.Sex)
	}

	hash, err := secrets.Hash(in.Secret)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	ident := &Identity{
		ID:         uuid.New(),
		LoginID:    in.LoginID,
		SecretHash: hash,
		Superuser:  in.Superuser,
		CreatedAt:  time.Now().UTC(),
	}
	profile := &DoctorProfile{
		IdentityID: ident.ID,
		Name:       in.Name,
		Sex:        in.Sex,
		Phone:      in.Phone,
		Email:      in.Email,
		Status:     StatusOffDuty,
		CreatedAt:  ident.CreatedAt,
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, ident); err != nil {
			return err
		}
		return s.profiles.Create(ctx, profile)
	})
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			return nil, errs.ErrDuplicateKey
		}
		return nil, fmt.Errorf("provision identity: %w", err)
	}

	s.logger.Info().
		Str("login_id", ident.LoginID).
		Bool("superuser", ident.Superuser).
		Msg("identity provisioned")

	return &Account{Identity: *ident, Profile: profile}, nil
}

// Deprovision removes an identity in one transaction: every patient record
// it owns is orphaned, its profile deleted, its sessions revoked, and the
// identity row deleted. The transaction either applies all of that or none
// of it; a failure after partial work rolls back and is logged severe
// because it means the storage layer broke an invariant we depend on.
func (s *Service) Deprovision(ctx context.Context, identityID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, identityID); err != nil {
		return err
	}

	var orphaned int64
	err := s.runTx(ctx, func(ctx context.Context) error {
		n, err := s.orphaner.OrphanByOwner(ctx, identityID)
		if err != nil {
			return fmt.Errorf("orphan records: %w", err)
		}
		orphaned = n

		if err := s.profiles.Delete(ctx, identityID); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		if err := s.sessions.RevokeAllForIdentity(ctx, identityID); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		if err := s.repo.Delete(ctx, identityID); err != nil {
			return fmt.Errorf("delete identity: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("identity_id", identityID.String()).
			Msg("deprovision failed, transaction rolled back")
		return fmt.Errorf("%w: deprovision %s: %v", errs.ErrInconsistentState, identityID, err)
	}

	s.logger.Info().
		Str("identity_id", identityID.String()).
		Int64("orphaned_records", orphaned).
		Msg("identity deprovisioned")
	return nil
}

// ChangeSecret verifies the current secret and replaces it. All sessions of
// the identity are revoked so stolen tokens die with the old secret.
func (s *Service) ChangeSecret(ctx context.Context, identityID uuid.UUID, current, next string) error {
	ident, err := s.repo.GetByID(ctx, identityID)
	if err != nil {
		return err
	}
	if !secrets.Verify(ident.SecretHash, current) {
		return errs.ErrInvalidCredentials
	}

	hash, err := secrets.Hash(next)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}
	if err := s.repo.UpdateSecretHash(ctx, identityID, hash); err != nil {
		return fmt.Errorf("update secret: %w", err)
	}
	if err := s.sessions.RevokeAllForIdentity(ctx, identityID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

var validStatuses = map[string]bool{
	StatusInSession: true, StatusOffDuty: true, StatusOnLeave: true,
}

// ChangeStatus updates the doctor's availability status.
func (s *Service) ChangeStatus(ctx context.Context, identityID uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	return s.profiles.UpdateStatus(ctx, identityID, status)
}

// Get returns an identity with its profile. Identities without a profile
// (e.g. a bootstrap superuser) come back with a nil profile.
func (s *Service) Get(ctx context.Context, identityID uuid.UUID) (*Account, error) {
	ident, err := s.repo.GetByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByIdentity(ctx, identityID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &Account{Identity: *ident, Profile: profile}, nil
}

// List returns identities with their profiles for the admin console.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	idents, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	accounts := make([]*Account, 0, len(idents))
	for _, ident := range idents {
		profile, err := s.profiles.GetByIdentity(ctx, ident.ID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, 0, fmt.Errorf("load profile: %w", err)
		}
		accounts = append(accounts, &Account{Identity: *ident, Profile: profile})
	}
	return accounts, total, nil
}
