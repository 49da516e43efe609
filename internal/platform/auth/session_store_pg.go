package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hepacare/cdss/internal/platform/db"
)

// PGSessionStore is the PostgreSQL-backed SessionStore. It resolves its
// connection through db.Conn so that calls made inside db.WithTx join the
// surrounding transaction.
type PGSessionStore struct {
	pool *pgxpool.Pool
}

func NewPGSessionStore(pool *pgxpool.Pool) *PGSessionStore {
	return &PGSessionStore{pool: pool}
}

func (s *PGSessionStore) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, s.pool)
}

func (s *PGSessionStore) Create(ctx context.Context, sess *Session) error {
	const query = `INSERT INTO sessions (id, identity_id, created_at)
VALUES ($1, $2, $3)`

	if _, err := s.conn(ctx).Exec(ctx, query, sess.ID, sess.IdentityID, sess.CreatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PGSessionStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	const query = `SELECT id, identity_id, created_at, revoked_at
FROM sessions WHERE id = $1`

	var sess Session
	err := s.conn(ctx).QueryRow(ctx, query, id).
		Scan(&sess.ID, &sess.IdentityID, &sess.CreatedAt, &sess.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &sess, nil
}

func (s *PGSessionStore) Revoke(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE sessions SET revoked_at = now()
WHERE id = $1 AND revoked_at IS NULL`

	if _, err := s.conn(ctx).Exec(ctx, query, id); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *PGSessionStore) RevokeAllForIdentity(ctx context.Context, identityID uuid.UUID) error {
	const query = `UPDATE sessions SET revoked_at = now()
WHERE identity_id = $1 AND revoked_at IS NULL`

	if _, err := s.conn(ctx).Exec(ctx, query, identityID); err != nil {
		return fmt.Errorf("revoke sessions for identity: %w", err)
	}
	return nil
}
