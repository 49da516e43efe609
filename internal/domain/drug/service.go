package drug

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

// PatientGuard runs the patient read check for the interaction listing.
// Implemented by the patient service; a denied or missing patient comes back
// as errs.ErrNotFound either way.
type PatientGuard interface {
	AuthorizeRead(ctx context.Context, caller auth.Principal, patientID uuid.UUID) error
}

type Service struct {
	repo         Repository
	interactions InteractionRepository
	patients     PatientGuard
	logger       zerolog.Logger
}

func NewService(repo Repository, interactions InteractionRepository, patients PatientGuard, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		interactions: interactions,
		patients:     patients,
		logger:       logger,
	}
}

func validateDrug(d *Drug) error {
	switch {
	case d.Code == "":
		return fmt.Errorf("code is required")
	case d.NameLocal == "" && d.NameEn == "":
		return fmt.Errorf("a name is required")
	case d.Category == "":
		return fmt.Errorf("category is required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, d *Drug) (*Drug, error) {
	if err := validateDrug(d); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	if err := s.repo.Create(ctx, d); err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			return nil, errs.ErrDuplicateKey
		}
		return nil, fmt.Errorf("create drug: %w", err)
	}
	s.logger.Info().Str("code", d.Code).Msg("drug created")
	return d, nil
}

func (s *Service) Get(ctx context.Context, code string) (*Drug, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Update(ctx context.Context, code string, in *Drug) (*Drug, error) {
	in.Code = code
	if err := validateDrug(in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, in); err != nil {
		return nil, err
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Delete(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, code); err != nil {
		return err
	}
	s.logger.Info().Str("code", code).Msg("drug deleted")
	return nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Drug, int, error) {
	return s.repo.List(ctx, f)
}

var validRiskLevels = map[string]bool{
	RiskHigh: true, RiskMedium: true, RiskLow: true,
}

func validateInteraction(in *Interaction) error {
	switch {
	case in.PatientID == uuid.Nil:
		return fmt.Errorf("patient_id is required")
	case in.DrugName == "":
		return fmt.Errorf("drug_name is required")
	case !validRiskLevels[in.RiskLevel]:
		return fmt.Errorf("invalid risk_level: %s", in.RiskLevel)
	case in.ProbabilityPct < 0 || in.ProbabilityPct > 100:
		return fmt.Errorf("probability_pct must be between 0 and 100")
	}
	return nil
}

// AddInteraction records a warning against a patient. Admin console only;
// the route gating enforces superuser.
func (s *Service) AddInteraction(ctx context.Context, in *Interaction) (*Interaction, error) {
	if err := validateInteraction(in); err != nil {
		return nil, err
	}
	in.ID = uuid.New()
	in.CreatedAt = time.Now().UTC()
	if err := s.interactions.Create(ctx, in); err != nil {
		return nil, fmt.Errorf("create interaction: %w", err)
	}
	return in, nil
}

func (s *Service) RemoveInteraction(ctx context.Context, id uuid.UUID) error {
	return s.interactions.Delete(ctx, id)
}

// InteractionsForPatient returns a patient's warnings, most probable first.
// The caller must be able to read the patient; anyone else gets the same
// ErrNotFound a missing patient would produce.
func (s *Service) InteractionsForPatient(ctx context.Context, caller auth.Principal, patientID uuid.UUID) ([]*Interaction, error) {
	if err := s.patients.AuthorizeRead(ctx, caller, patientID); err != nil {
		return nil, err
	}
	return s.interactions.ListByPatient(ctx, patientID)
}
