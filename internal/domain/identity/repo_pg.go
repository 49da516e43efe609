package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hepacare/cdss/internal/platform/db"
	"github.com/hepacare/cdss/internal/platform/errs"
)

type identityRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &identityRepoPG{pool: pool}
}

func (r *identityRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const identityCols = `id, login_id, secret_hash, superuser, created_at, last_login`

func scanIdentity(row pgx.Row) (*Identity, error) {
	var ident Identity
	err := row.Scan(&ident.ID, &ident.LoginID, &ident.SecretHash,
		&ident.Superuser, &ident.CreatedAt, &ident.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &ident, nil
}

// mapPGError translates unique violations into the duplicate-key sentinel.
func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errs.ErrDuplicateKey
	}
	return err
}

func (r *identityRepoPG) Create(ctx context.Context, ident *Identity) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO identities (id, login_id, secret_hash, superuser, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		ident.ID, ident.LoginID, ident.SecretHash, ident.Superuser, ident.CreatedAt)
	if err != nil {
		return mapPGError(err)
	}
	return nil
}

func (r *identityRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	return scanIdentity(r.conn(ctx).QueryRow(ctx,
		`SELECT `+identityCols+` FROM identities WHERE id = $1`, id))
}

func (r *identityRepoPG) GetByLoginID(ctx context.Context, loginID string) (*Identity, error) {
	return scanIdentity(r.conn(ctx).QueryRow(ctx,
		`SELECT `+identityCols+` FROM identities WHERE login_id = $1`, loginID))
}

func (r *identityRepoPG) UpdateSecretHash(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE identities SET secret_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *identityRepoPG) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE identities SET last_login = $2 WHERE id = $1`, id, at)
	return err
}

func (r *identityRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *identityRepoPG) List(ctx context.Context, limit, offset int) ([]*Identity, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM identities`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+identityCols+` FROM identities
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate identities: %w", err)
	}
	return items, total, nil
}

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepoPG{pool: pool}
}

func (r *profileRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const profileCols = `identity_id, name, sex, phone, email, status, profile_image_path, created_at`

func scanProfile(row pgx.Row) (*DoctorProfile, error) {
	var p DoctorProfile
	err := row.Scan(&p.IdentityID, &p.Name, &p.Sex, &p.Phone, &p.Email,
		&p.Status, &p.ProfileImagePath, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepoPG) Create(ctx context.Context, p *DoctorProfile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_profiles (identity_id, name, sex, phone, email, status, profile_image_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.IdentityID, p.Name, p.Sex, p.Phone, p.Email, p.Status, p.ProfileImagePath, p.CreatedAt)
	if err != nil {
		return mapPGError(err)
	}
	return nil
}

func (r *profileRepoPG) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*DoctorProfile, error) {
	return scanProfile(r.conn(ctx).QueryRow(ctx,
		`SELECT `+profileCols+` FROM doctor_profiles WHERE identity_id = $1`, identityID))
}

func (r *profileRepoPG) UpdateStatus(ctx context.Context, identityID uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE doctor_profiles SET status = $2 WHERE identity_id = $1`, identityID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *profileRepoPG) Delete(ctx context.Context, identityID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM doctor_profiles WHERE identity_id = $1`, identityID)
	return err
}
