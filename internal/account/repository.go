package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository persists users. Soft-deleted users are invisible to every lookup.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	// UpdateEmail swaps the address and clears the verified timestamp; the
	// new address must be confirmed again.
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// MarkEmailVerified reports false when the account was already verified,
	// letting callers short-circuit with a distinct message.
	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, password_hash, role, email_verified_at, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		user.ID, user.Email, user.Name, user.PasswordHash, string(user.Role), user.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// FindByEmail fetches a live user by normalized email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted_at IS NULL`,
		NormalizeEmail(email))
	return scanUser(row)
}

// FindByID fetches a live user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanUser(row)
}

// UpdateName stores a new display name.
func (r *PostgresRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET name = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL`, name, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateEmail swaps the address and clears the verification timestamp.
func (r *PostgresRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET email = $1, email_verified_at = NULL, updated_at = now()
        WHERE id = $2 AND deleted_at IS NULL`, NormalizeEmail(email), id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword stores a new password digest.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL`,
		passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkEmailVerified sets the verification timestamp once. The conditional
// update makes repeat confirmations report already-verified instead of
// silently re-stamping.
func (r *PostgresRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET email_verified_at = $1, updated_at = now()
        WHERE id = $2 AND deleted_at IS NULL AND email_verified_at IS NULL`, at.UTC(), id)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() > 0 {
		return true, nil
	}

	// Distinguish already-verified from missing.
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// SoftDelete hides the user from all lookups without dropping the row.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET deleted_at = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL`,
		at.UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
