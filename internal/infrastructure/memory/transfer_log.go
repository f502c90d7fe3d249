package memory

import (
	"sync"
	"time"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/internal/domain/repository"
)

const defaultHistoryLimit = 50

// TransferLog is an append-only in-process ledger of applied transfers.
type TransferLog struct {
	mu      sync.RWMutex
	entries []*entity.Transfer
}

func NewTransferLog() *TransferLog {
	return &TransferLog{}
}

func (l *TransferLog) Append(t *entity.Transfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	l.entries = append(l.entries, &cp)
	return nil
}

func (l *TransferLog) ListByUser(userID string, limit int) ([]*entity.Transfer, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*entity.Transfer, 0, limit)
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := l.entries[i]
		if e.SenderID == userID || e.RecipientID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ repository.TransferRepository = (*TransferLog)(nil)
