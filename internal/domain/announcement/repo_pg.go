package announcement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const announcementCols = `id, title, content, active, created_at`

func scanAnnouncement(row pgx.Row) (*Announcement, error) {
	var a Announcement
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Active, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Announcement) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO announcements (id, title, content, active, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Title, a.Content, a.Active, a.CreatedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Announcement, error) {
	return scanAnnouncement(r.conn(ctx).QueryRow(ctx,
		`SELECT `+announcementCols+` FROM announcements WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Announcement) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE announcements SET title = $2, content = $3, active = $4
		WHERE id = $1`,
		a.ID, a.Title, a.Content, a.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Announcement, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM announcements`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+announcementCols+` FROM announcements`+where+`
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate announcements: %w", err)
	}
	return items, total, nil
}
