package repository

import (
	"context"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
)

// TransferRepository records applied transfers for billing/earnings views.
// Entries are append-only.
type TransferRepository interface {
	Append(t *entity.Transfer) error
	// ListByUser returns transfers where the user is sender or recipient,
	// newest first, capped at limit (limit <= 0 means a default cap).
	ListByUser(userID string, limit int) ([]*entity.Transfer, error)
}

// TransferApplier is implemented by user stores that can commit both
// balance updates and the ledger entry in one atomic step. Stores that
// cannot (or need not, like the single-mutex memory driver) simply omit
// it and the ledger falls back to sequential updates.
type TransferApplier interface {
	ApplyTransfer(ctx context.Context, sender, recipient *entity.User, t *entity.Transfer) error
}
