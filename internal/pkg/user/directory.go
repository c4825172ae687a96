package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Directory is a read-only view of the externally owned user store. The chat
// core reads only the username for display; profile writes and search belong
// to the identity service.
type Directory interface {
	// GetUsernames resolves display names for the given user ids. Ids with
	// no matching row are simply absent from the result.
	GetUsernames(ctx context.Context, ids []string) (map[string]string, error)
}

// PgDirectory reads usernames from the shared users table.
type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

var _ Directory = (*PgDirectory)(nil)

func (d *PgDirectory) GetUsernames(ctx context.Context, ids []string) (map[string]string, error) {
	if d == nil || d.pool == nil {
		return nil, errors.New("PgDirectory: nil pool")
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	rows, err := d.pool.Query(ctx, `
		SELECT id::text, username FROM users WHERE id::text = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}
