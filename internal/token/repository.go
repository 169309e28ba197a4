package token

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed token repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new token record.
func (r *PostgresRepository) Create(ctx context.Context, t Token) error {
	_, err := r.db.Exec(ctx, `INSERT INTO opaque_tokens (id, owner_id, kind, token_hash, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.OwnerID, string(t.Kind), t.TokenHash, t.ExpiresAt.UTC(), t.CreatedAt.UTC())
	return err
}

// Redeem runs the find-and-mark-used step as a single conditional update so
// concurrent redemptions of the same hash cannot both observe used_at IS NULL.
func (r *PostgresRepository) Redeem(ctx context.Context, tokenHash string, kind Kind, now time.Time) (Token, error) {
	row := r.db.QueryRow(ctx, `UPDATE opaque_tokens SET used_at = $3
        WHERE token_hash = $1 AND kind = $2 AND used_at IS NULL AND expires_at > $3
        RETURNING id, owner_id, kind, token_hash, expires_at, created_at`,
		tokenHash, string(kind), now.UTC())

	var (
		t Token
		k string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &k, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Token{}, ErrTokenInvalid
		}
		return Token{}, err
	}
	t.Kind = Kind(k)
	return t, nil
}

// DeleteExpired removes rows that can never be redeemed again.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM opaque_tokens WHERE expires_at < $1 OR used_at IS NOT NULL`, now.UTC())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
