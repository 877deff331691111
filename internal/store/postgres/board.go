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

type BoardRepo struct {
	pool *pgxpool.Pool
}

func NewBoardRepo(pool *pgxpool.Pool) *BoardRepo {
	return &BoardRepo{pool: pool}
}

func (r *BoardRepo) Create(ctx context.Context, b *domain.Board) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("boardRepo.Create: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO boards (id, owner_id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.OwnerID, b.Name, b.Description, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Create: %w", err)
	}

	// Owner is always a member of their own board.
	_, err = tx.Exec(ctx,
		`INSERT INTO board_members (board_id, user_id, role, added_at)
		 VALUES ($1, $2, $3, $4)`,
		b.ID, b.OwnerID, domain.BoardRoleOwner, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Create: owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("boardRepo.Create: commit: %w", err)
	}

	return nil
}

func (r *BoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var b domain.Board

	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at
		 FROM boards WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", err)
	}

	return &b, nil
}

func (r *BoardRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.owner_id, b.name, b.description, b.created_at, b.updated_at
		 FROM boards b
		 JOIN board_members m ON m.board_id = b.id
		 WHERE m.user_id = $1
		 ORDER BY b.created_at
		 LIMIT 500`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("boardRepo.ListByUser: scan: %w", err)
		}
		boards = append(boards, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boardRepo.ListByUser: rows: %w", err)
	}

	return boards, nil
}

func (r *BoardRepo) Update(ctx context.Context, b *domain.Board) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE boards SET name = $1, description = $2, updated_at = now() WHERE id = $3`,
		b.Name, b.Description, b.ID,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *BoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("boardRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *BoardRepo) AddMember(ctx context.Context, m *domain.BoardMember) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO board_members (board_id, user_id, role, added_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (board_id, user_id) DO NOTHING`,
		m.BoardID, m.UserID, m.Role, m.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.AddMember: %w", err)
	}

	return nil
}

func (r *BoardRepo) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM board_members WHERE board_id = $1 AND user_id = $2`,
		boardID, userID,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.RemoveMember: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.RemoveMember: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *BoardRepo) ListMembers(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT board_id, user_id, role, added_at
		 FROM board_members WHERE board_id = $1
		 ORDER BY added_at`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListMembers: %w", err)
	}
	defer rows.Close()

	var members []*domain.BoardMember
	for rows.Next() {
		var m domain.BoardMember
		if err := rows.Scan(&m.BoardID, &m.UserID, &m.Role, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("boardRepo.ListMembers: scan: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boardRepo.ListMembers: rows: %w", err)
	}

	return members, nil
}

func (r *BoardRepo) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM board_members WHERE board_id = $1 AND user_id = $2)`,
		boardID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("boardRepo.IsMember: %w", err)
	}

	return exists, nil
}
