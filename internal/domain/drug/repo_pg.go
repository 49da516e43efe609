package drug

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

const drugCols = `code, name_local, name_en, category, dosage, efficacy,
	precautions, common_side_effects, serious_side_effects, contraindications,
	interactions, created_at, updated_at`

func scanDrug(row pgx.Row) (*Drug, error) {
	var d Drug
	err := row.Scan(&d.Code, &d.NameLocal, &d.NameEn, &d.Category,
		&d.Dosage, &d.Efficacy, &d.Precautions, &d.CommonSideEffects,
		&d.SeriousSideEffects, &d.Contraindications, &d.Interactions,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errs.ErrDuplicateKey
	}
	return err
}

func (r *repoPG) Create(ctx context.Context, d *Drug) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO drugs (
			code, name_local, name_en, category, dosage, efficacy,
			precautions, common_side_effects, serious_side_effects,
			contraindications, interactions, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.Code, d.NameLocal, d.NameEn, d.Category, d.Dosage, d.Efficacy,
		d.Precautions, d.CommonSideEffects, d.SeriousSideEffects,
		d.Contraindications, d.Interactions, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return mapPGError(err)
	}
	return nil
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Drug, error) {
	return scanDrug(r.conn(ctx).QueryRow(ctx,
		`SELECT `+drugCols+` FROM drugs WHERE code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, d *Drug) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE drugs SET
			name_local = $2, name_en = $3, category = $4, dosage = $5,
			efficacy = $6, precautions = $7, common_side_effects = $8,
			serious_side_effects = $9, contraindications = $10,
			interactions = $11, updated_at = now()
		WHERE code = $1`,
		d.Code, d.NameLocal, d.NameEn, d.Category, d.Dosage, d.Efficacy,
		d.Precautions, d.CommonSideEffects, d.SeriousSideEffects,
		d.Contraindications, d.Interactions)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, code string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM drugs WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter) ([]*Drug, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Category != "" {
		args = append(args, f.Category)
		where += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND (name_local ILIKE $%d OR name_en ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM drugs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+drugCols+` FROM drugs`+where+
		fmt.Sprintf(` ORDER BY name_en ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Drug
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate drugs: %w", err)
	}
	return items, total, nil
}

type interactionRepoPG struct{ pool *pgxpool.Pool }

func NewInteractionRepoPG(pool *pgxpool.Pool) InteractionRepository {
	return &interactionRepoPG{pool: pool}
}

func (r *interactionRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const interactionCols = `id, patient_id, drug_name, risk_level, side_effect,
	probability_pct, color_code, action_plan, monitoring, created_at`

func scanInteraction(row pgx.Row) (*Interaction, error) {
	var in Interaction
	err := row.Scan(&in.ID, &in.PatientID, &in.DrugName, &in.RiskLevel,
		&in.SideEffect, &in.ProbabilityPct, &in.ColorCode, &in.ActionPlan,
		&in.Monitoring, &in.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &in, nil
}

func (r *interactionRepoPG) Create(ctx context.Context, in *Interaction) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO drug_interactions (
			id, patient_id, drug_name, risk_level, side_effect,
			probability_pct, color_code, action_plan, monitoring, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		in.ID, in.PatientID, in.DrugName, in.RiskLevel, in.SideEffect,
		in.ProbabilityPct, in.ColorCode, in.ActionPlan, in.Monitoring, in.CreatedAt)
	if err != nil {
		return mapPGError(err)
	}
	return nil
}

func (r *interactionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM drug_interactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *interactionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Interaction, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+interactionCols+` FROM drug_interactions
		WHERE patient_id = $1
		ORDER BY probability_pct DESC, created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Interaction
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return items, nil
}
