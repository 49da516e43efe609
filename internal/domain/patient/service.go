package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hepacare/cdss/internal/platform/auth"
	"github.com/hepacare/cdss/internal/platform/errs"
)

// OwnerDirectory checks that a reassignment target is a live identity.
// Implemented by the identity service.
type OwnerDirectory interface {
	PrincipalByID(ctx context.Context, id uuid.UUID) (*auth.Principal, error)
}

type Service struct {
	repo   Repository
	owners OwnerDirectory
	logger zerolog.Logger
}

func NewService(repo Repository, owners OwnerDirectory, logger zerolog.Logger) *Service {
	return &Service{repo: repo, owners: owners, logger: logger}
}

var (
	validSex        = map[string]bool{"male": true, "female": true}
	validBCLC       = map[string]bool{"0": true, "A": true, "B": true, "C": true, "D": true}
	validChildPugh  = map[string]bool{"A": true, "B": true, "C": true}
	validTreatments = map[string]bool{
		"surgery": true, "transplant": true, "tace": true,
		"sorafenib": true, "lenvatinib": true,
	}
	validRisk = map[string]bool{"low": true, "medium": true, "high": true}
)

func validate(rec *Record) error {
	switch {
	case rec.PatientCode == "":
		return fmt.Errorf("patient_code is required")
	case rec.Name == "":
		return fmt.Errorf("name is required")
	case !validSex[rec.Sex]:
		return fmt.Errorf("invalid sex: %s", rec.Sex)
	case !validBCLC[rec.BCLCStage]:
		return fmt.Errorf("invalid bclc_stage: %s", rec.BCLCStage)
	case !validChildPugh[rec.ChildPugh]:
		return fmt.Errorf("invalid child_pugh: %s", rec.ChildPugh)
	case !validTreatments[rec.TreatmentType]:
		return fmt.Errorf("invalid treatment_type: %s", rec.TreatmentType)
	case !validRisk[rec.RecurrenceRisk]:
		return fmt.Errorf("invalid recurrence_risk: %s", rec.RecurrenceRisk)
	case rec.TumorSizeCm < 0:
		return fmt.Errorf("tumor_size_cm must not be negative")
	case rec.TumorCount < 0:
		return fmt.Errorf("tumor_count must not be negative")
	}
	return nil
}

// Create stores a new record owned by the caller. A colliding patient_code
// fails with errs.ErrDuplicateKey and the existing row is untouched.
func (s *Service) Create(ctx context.Context, caller auth.Principal, rec *Record) (*Record, error) {
	if err := validate(rec); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec.ID = uuid.New()
	owner := caller.ID
	rec.OwnerID = &owner
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			return nil, errs.ErrDuplicateKey
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.logger.Info().
		Str("patient_id", rec.ID.String()).
		Str("owner", caller.LoginID).
		Msg("patient record created")
	return rec, nil
}

// Get returns the record if the caller may read it. Denial and absence are
// the same ErrNotFound; non-owners cannot tell whether the record exists.
func (s *Service) Get(ctx context.Context, caller auth.Principal, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(caller, rec.OwnerID, auth.ActionRead) {
		return nil, errs.ErrNotFound
	}
	return rec, nil
}

// AuthorizeRead runs the same read check as Get without returning the record.
// The drug interaction listing uses it to gate per-patient data.
func (s *Service) AuthorizeRead(ctx context.Context, caller auth.Principal, id uuid.UUID) error {
	_, err := s.Get(ctx, caller, id)
	return err
}

// Update replaces the clinical fields of a record the caller may update.
// OwnerID on the input is ignored; ownership only moves through Reassign.
func (s *Service) Update(ctx context.Context, caller auth.Principal, id uuid.UUID, in *Record) (*Record, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(caller, existing.OwnerID, auth.ActionUpdate) {
		return nil, errs.ErrNotFound
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	in.ID = existing.ID
	in.OwnerID = existing.OwnerID
	in.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, in); err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			return nil, errs.ErrDuplicateKey
		}
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a record the caller may delete.
func (s *Service) Delete(ctx context.Context, caller auth.Principal, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanAccess(caller, rec.OwnerID, auth.ActionDelete) {
		return errs.ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	s.logger.Info().
		Str("patient_id", id.String()).
		Str("deleted_by", caller.LoginID).
		Msg("patient record deleted")
	return nil
}

// List returns the caller's own records, newest-updated first. The owner
// scoping happens in SQL; records of other doctors never reach this layer.
func (s *Service) List(ctx context.Context, caller auth.Principal, search string, limit, offset int) ([]*Record, int, error) {
	owner := caller.ID
	return s.repo.List(ctx, ListFilter{
		Owner:  &owner,
		Search: search,
		Limit:  limit,
		Offset: offset,
	})
}

// ListAll is the superuser view over every record, optionally filtered to one
// owner. Orphaned records show up here and nowhere else.
func (s *Service) ListAll(ctx context.Context, caller auth.Principal, owner *uuid.UUID, search string, limit, offset int) ([]*Record, int, error) {
	if !caller.Superuser {
		return nil, 0, errs.ErrForbidden
	}
	return s.repo.List(ctx, ListFilter{
		Owner:  owner,
		Search: search,
		Limit:  limit,
		Offset: offset,
	})
}

// Reassign moves a record to a new owner. Superusers only; an owner asking to
// reassign their own record gets ErrForbidden, not ErrNotFound, because the
// existence of a record they own is not a secret. Orphaned records may be
// reassigned; that is how they come back into circulation. Concurrent
// reassignments resolve last-write-wins at the storage layer.
func (s *Service) Reassign(ctx context.Context, caller auth.Principal, id, newOwner uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanAccess(caller, rec.OwnerID, auth.ActionReassignOwner) {
		if rec.OwnerID != nil && *rec.OwnerID == caller.ID {
			return errs.ErrForbidden
		}
		return errs.ErrNotFound
	}

	if _, err := s.owners.PrincipalByID(ctx, newOwner); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("new owner %s: %w", newOwner, errs.ErrNotFound)
		}
		return fmt.Errorf("lookup new owner: %w", err)
	}

	if err := s.repo.UpdateOwner(ctx, id, &newOwner); err != nil {
		return fmt.Errorf("reassign owner: %w", err)
	}

	s.logger.Info().
		Str("patient_id", id.String()).
		Str("new_owner", newOwner.String()).
		Str("reassigned_by", caller.LoginID).
		Msg("patient record reassigned")
	return nil
}
