package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sculptor-AI/kanban/internal/domain"
)

type CardRepo struct {
	pool *pgxpool.Pool
}

func NewCardRepo(pool *pgxpool.Pool) *CardRepo {
	return &CardRepo{pool: pool}
}

func (r *CardRepo) Create(ctx context.Context, c *domain.Card) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cards (id, board_id, title, description, status, position, assigned_to, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.BoardID, c.Title, c.Description, c.Status, c.Position,
		c.AssignedTo, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("cardRepo.Create: %w", err)
	}

	return nil
}

func (r *CardRepo) GetByID(ctx context.Context, boardID, id uuid.UUID) (*domain.Card, error) {
	var c domain.Card

	err := r.pool.QueryRow(ctx,
		`SELECT id, board_id, title, description, status, position, assigned_to, created_by, created_at, updated_at
		 FROM cards WHERE board_id = $1 AND id = $2`,
		boardID, id,
	).Scan(
		&c.ID, &c.BoardID, &c.Title, &c.Description, &c.Status, &c.Position,
		&c.AssignedTo, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cardRepo.GetByID: %w", err)
	}

	return &c, nil
}

func (r *CardRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Card, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, title, description, status, position, assigned_to, created_by, created_at, updated_at
		 FROM cards WHERE board_id = $1
		 ORDER BY status, position, created_at
		 LIMIT 1000`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("cardRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		var c domain.Card
		err := rows.Scan(
			&c.ID, &c.BoardID, &c.Title, &c.Description, &c.Status, &c.Position,
			&c.AssignedTo, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("cardRepo.ListByBoard: scan: %w", err)
		}
		cards = append(cards, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cardRepo.ListByBoard: rows: %w", err)
	}

	return cards, nil
}

func (r *CardRepo) Update(ctx context.Context, c *domain.Card) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cards SET title = $1, description = $2, status = $3, position = $4, assigned_to = $5, updated_at = now()
		 WHERE board_id = $6 AND id = $7`,
		c.Title, c.Description, c.Status, c.Position, c.AssignedTo, c.BoardID, c.ID,
	)
	if err != nil {
		return fmt.Errorf("cardRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cardRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *CardRepo) Move(ctx context.Context, boardID, id uuid.UUID, status domain.CardStatus, position int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cards SET status = $1, position = $2, updated_at = now()
		 WHERE board_id = $3 AND id = $4`,
		status, position, boardID, id,
	)
	if err != nil {
		return fmt.Errorf("cardRepo.Move: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cardRepo.Move: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *CardRepo) Delete(ctx context.Context, boardID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cards WHERE board_id = $1 AND id = $2`,
		boardID, id,
	)
	if err != nil {
		return fmt.Errorf("cardRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cardRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
