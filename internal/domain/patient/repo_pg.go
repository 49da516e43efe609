package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hepacare/cdss/internal/platform/db"
	"github.com/hepacare/cdss/internal/platform/errs"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, patient_code, name, birth_date, sex, phone,
	diagnosis_date, bclc_stage, tumor_size_cm, tumor_count, vascular_invasion,
	child_pugh, afp_initial, afp_current, treatment_type, treatment_start_date,
	survival_1yr, survival_3yr, survival_5yr, recurrence_risk,
	next_ct_date, next_blood_test_date, ct_image_path,
	owner_id, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.PatientCode, &rec.Name, &rec.BirthDate, &rec.Sex, &rec.Phone,
		&rec.DiagnosisDate, &rec.BCLCStage, &rec.TumorSizeCm, &rec.TumorCount,
		&rec.VascularInvasion, &rec.ChildPugh, &rec.AFPInitial, &rec.AFPCurrent,
		&rec.TreatmentType, &rec.TreatmentStartDate,
		&rec.Survival1Yr, &rec.Survival3Yr, &rec.Survival5Yr, &rec.RecurrenceRisk,
		&rec.NextCTDate, &rec.NextBloodTestDate, &rec.CTImagePath,
		&rec.OwnerID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errs.ErrDuplicateKey
	}
	return err
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (
			id, patient_code, name, birth_date, sex, phone,
			diagnosis_date, bclc_stage, tumor_size_cm, tumor_count, vascular_invasion,
			child_pugh, afp_initial, afp_current, treatment_type, treatment_start_date,
			survival_1yr, survival_3yr, survival_5yr, recurrence_risk,
			next_ct_date, next_blood_test_date, ct_image_path,
			owner_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22, $23,
			$24, $25, $26
		)`,
		rec.ID, rec.PatientCode, rec.Name, rec.BirthDate, rec.Sex, rec.Phone,
		rec.DiagnosisDate, rec.BCLCStage, rec.TumorSizeCm, rec.TumorCount, rec.VascularInvasion,
		rec.ChildPugh, rec.AFPInitial, rec.AFPCurrent, rec.TreatmentType, rec.TreatmentStartDate,
		rec.Survival1Yr, rec.Survival3Yr, rec.Survival5Yr, rec.RecurrenceRisk,
		rec.NextCTDate, rec.NextBloodTestDate, rec.CTImagePath,
		rec.OwnerID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return mapPGError(err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

// Update rewrites the clinical fields. owner_id is deliberately absent: the
// only way to move a record between doctors is UpdateOwner.
func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			patient_code = $2, name = $3, birth_date = $4, sex = $5, phone = $6,
			diagnosis_date = $7, bclc_stage = $8, tumor_size_cm = $9, tumor_count = $10,
			vascular_invasion = $11, child_pugh = $12, afp_initial = $13, afp_current = $14,
			treatment_type = $15, treatment_start_date = $16,
			survival_1yr = $17, survival_3yr = $18, survival_5yr = $19, recurrence_risk = $20,
			next_ct_date = $21, next_blood_test_date = $22, ct_image_path = $23,
			updated_at = now()
		WHERE id = $1`,
		rec.ID, rec.PatientCode, rec.Name, rec.BirthDate, rec.Sex, rec.Phone,
		rec.DiagnosisDate, rec.BCLCStage, rec.TumorSizeCm, rec.TumorCount,
		rec.VascularInvasion, rec.ChildPugh, rec.AFPInitial, rec.AFPCurrent,
		rec.TreatmentType, rec.TreatmentStartDate,
		rec.Survival1Yr, rec.Survival3Yr, rec.Survival5Yr, rec.RecurrenceRisk,
		rec.NextCTDate, rec.NextBloodTestDate, rec.CTImagePath)
	if err != nil {
		return mapPGError(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter) ([]*Record, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Owner != nil {
		args = append(args, *f.Owner)
		where += fmt.Sprintf(` AND owner_id = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND (patient_code ILIKE $%d OR name ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patients`+where+
		fmt.Sprintf(` ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate patients: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) UpdateOwner(ctx context.Context, id uuid.UUID, owner *uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET owner_id = $2, updated_at = now() WHERE id = $1`, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// OrphanByOwner detaches every record the identity owns and reports how many
// were touched. Runs inside the deprovision transaction.
func (r *repoPG) OrphanByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET owner_id = NULL, updated_at = now() WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
