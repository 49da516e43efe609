package patient

import (
	"time"

	"github.com/google/uuid"
)

// Record is one liver-cancer patient chart, mapping to the patients table.
// OwnerID points at the doctor responsible for the patient; nil means the
// owner was deprovisioned and the record awaits administrative reassignment.
type Record struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientCode string    `db:"patient_code" json:"patient_code"`

	Name      string    `db:"name" json:"name"`
	BirthDate time.Time `db:"birth_date" json:"birth_date"`
	Sex       string    `db:"sex" json:"sex"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`

	DiagnosisDate    time.Time `db:"diagnosis_date" json:"diagnosis_date"`
	BCLCStage        string  `db:"bclc_stage" json:"bclc_stage"`
	TumorSizeCm      float64 `db:"tumor_size_cm" json:"tumor_size_cm"`
	TumorCount       int     `db:"tumor_count" json:"tumor_count"`
	VascularInvasion bool    `db:"vascular_invasion" json:"vascular_invasion"`
	ChildPugh        string  `db:"child_pugh" json:"child_pugh"`
	AFPInitial       float64 `db:"afp_initial" json:"afp_initial"`
	AFPCurrent       float64 `db:"afp_current" json:"afp_current"`

	TreatmentType      string    `db:"treatment_type" json:"treatment_type"`
	TreatmentStartDate time.Time `db:"treatment_start_date" json:"treatment_start_date"`

	Survival1Yr    float64 `db:"survival_1yr" json:"survival_1yr"`
	Survival3Yr    float64 `db:"survival_3yr" json:"survival_3yr"`
	Survival5Yr    float64 `db:"survival_5yr" json:"survival_5yr"`
	RecurrenceRisk string  `db:"recurrence_risk" json:"recurrence_risk"`

	NextCTDate        *time.Time `db:"next_ct_date" json:"next_ct_date,omitempty"`
	NextBloodTestDate *time.Time `db:"next_blood_test_date" json:"next_blood_test_date,omitempty"`
	CTImagePath       *string    `db:"ct_image_path" json:"ct_image_path,omitempty"`

	OwnerID   *uuid.UUID `db:"owner_id" json:"owner_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
