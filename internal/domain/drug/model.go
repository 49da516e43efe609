package drug

import (
	"time"

	"github.com/google/uuid"
)

// Drug is one entry in the medication reference, keyed by its code. Doctors
// read it; only the admin console writes it.
type Drug struct {
	Code               string    `db:"code" json:"code"`
	NameLocal          string    `db:"name_local" json:"name_local"`
	NameEn             string    `db:"name_en" json:"name_en"`
	Category           string    `db:"category" json:"category"`
	Dosage             *string   `db:"dosage" json:"dosage,omitempty"`
	Efficacy           *string   `db:"efficacy" json:"efficacy,omitempty"`
	Precautions        *string   `db:"precautions" json:"precautions,omitempty"`
	CommonSideEffects  *string   `db:"common_side_effects" json:"common_side_effects,omitempty"`
	SeriousSideEffects *string   `db:"serious_side_effects" json:"serious_side_effects,omitempty"`
	Contraindications  *string   `db:"contraindications" json:"contraindications,omitempty"`
	Interactions       *string   `db:"interactions" json:"interactions,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Interaction risk levels.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

// Interaction is a per-patient drug interaction warning. Warnings are listed
// most probable first.
type Interaction struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	DrugName       string    `db:"drug_name" json:"drug_name"`
	RiskLevel      string    `db:"risk_level" json:"risk_level"`
	SideEffect     *string   `db:"side_effect" json:"side_effect,omitempty"`
	ProbabilityPct int       `db:"probability_pct" json:"probability_pct"`
	ColorCode      *string   `db:"color_code" json:"color_code,omitempty"`
	ActionPlan     *string   `db:"action_plan" json:"action_plan,omitempty"`
	Monitoring     *string   `db:"monitoring" json:"monitoring,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
