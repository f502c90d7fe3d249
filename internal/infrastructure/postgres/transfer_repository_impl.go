package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/internal/domain/repository"
)

// TransferRepository persists the append-only transfer ledger.
type TransferRepository struct {
	pool *pgxpool.Pool
}

func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

func (r *TransferRepository) Append(t *entity.Transfer) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transfers (id, sender_id, recipient_id, amount, fee, energy_used)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, t.ID, t.SenderID, t.RecipientID, t.Amount, t.Fee, t.EnergyUsed)
	return row.Scan(&t.CreatedAt)
}

func (r *TransferRepository) ListByUser(userID string, limit int) ([]*entity.Transfer, error) {
	if limit <= 0 {
		limit = 50
	}
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, recipient_id, amount, fee, energy_used, created_at
		FROM transfers
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Transfer
	for rows.Next() {
		t := &entity.Transfer{}
		if err := rows.Scan(&t.ID, &t.SenderID, &t.RecipientID, &t.Amount, &t.Fee,
			&t.EnergyUsed, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

var _ repository.TransferRepository = (*TransferRepository)(nil)
