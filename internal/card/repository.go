package card

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists cards.
type Repository interface {
	Create(ctx context.Context, c Card) error
	FindByID(ctx context.Context, id uuid.UUID) (Card, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Card, error)
	Update(ctx context.Context, c Card) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetImageKey(ctx context.Context, id uuid.UUID, key string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed card repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const cardColumns = `id, owner_id, label, full_name, card_number, image_key, created_at, updated_at`

func scanCard(row pgx.Row) (Card, error) {
	var c Card
	err := row.Scan(&c.ID, &c.OwnerID, &c.Label, &c.FullName, &c.CardNumber, &c.ImageKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Card{}, ErrNotFound
		}
		return Card{}, err
	}
	return c, nil
}

// Create inserts a new card.
func (r *PostgresRepository) Create(ctx context.Context, c Card) error {
	_, err := r.db.Exec(ctx, `INSERT INTO id_cards (id, owner_id, label, full_name, card_number, image_key, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		c.ID, c.OwnerID, c.Label, c.FullName, c.CardNumber, c.ImageKey, c.CreatedAt.UTC())
	return err
}

// FindByID fetches a card by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (Card, error) {
	row := r.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM id_cards WHERE id = $1`, id)
	return scanCard(row)
}

// ListByOwner returns the owner's cards, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Card, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cardColumns+` FROM id_cards WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// Update stores the card's editable fields.
func (r *PostgresRepository) Update(ctx context.Context, c Card) error {
	cmd, err := r.db.Exec(ctx, `UPDATE id_cards SET label = $1, full_name = $2, card_number = $3, updated_at = now()
        WHERE id = $4`, c.Label, c.FullName, c.CardNumber, c.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a card.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM id_cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetImageKey records where the card's image lives in object storage.
func (r *PostgresRepository) SetImageKey(ctx context.Context, id uuid.UUID, key string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE id_cards SET image_key = $1, updated_at = now() WHERE id = $2`, key, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
