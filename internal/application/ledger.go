package application

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	repo "github.com/gridmarket/gridmarket-api/internal/domain/repository"
)

// FeePolicy controls the energy-based fee waiver: a transfer costs
// EnergyCost energy when the sender has it, otherwise amount*FeeRate is
// withheld from the credit. The fee is removed from circulation — it is
// not paid to any account.
type FeePolicy struct {
	FeeRate    float64
	EnergyCost int
}

// DefaultFeePolicy mirrors the marketplace defaults: 1% fee, 1 energy per waiver.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{FeeRate: 0.01, EnergyCost: 1}
}

// Ledger moves funds between user records. Each transfer is a single
// validate-then-mutate step; the mutex makes concurrent transfers
// non-overlapping critical sections so a sender cannot be double-spent,
// with the balance re-checked inside the lock.
type Ledger struct {
	Users     repo.UserRepository
	Transfers repo.TransferRepository
	Policy    FeePolicy
	Logger    *logrus.Logger

	mu sync.Mutex
}

func NewLedger(users repo.UserRepository, transfers repo.TransferRepository, policy FeePolicy, logger *logrus.Logger) *Ledger {
	return &Ledger{Users: users, Transfers: transfers, Policy: policy, Logger: logger}
}

// Transfer debits amount from the sender and credits amount-fee to the
// recipient. Expected failures are DomainErrors in this exact precedence:
// invalid parties, self transfer, invalid amount, sender missing,
// recipient missing, insufficient balance. Nothing is mutated unless
// every check passes.
func (l *Ledger) Transfer(ctx context.Context, senderID, recipientID string, amount float64) (entity.TransferOutcome, error) {
	var out entity.TransferOutcome

	if senderID == "" || recipientID == "" {
		return out, entity.ErrInvalidParties
	}
	if senderID == recipientID {
		return out, entity.ErrSelfTransfer
	}
	if !(amount > 0) { // rejects zero, negatives, and NaN
		return out, entity.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sender, err := l.Users.GetByID(senderID)
	if err != nil {
		return out, err
	}
	if sender == nil {
		return out, entity.ErrSenderNotFound
	}
	recipient, err := l.Users.GetByID(recipientID)
	if err != nil {
		return out, err
	}
	if recipient == nil {
		return out, entity.ErrRecipientNotFound
	}
	if sender.Balance < amount {
		return out, entity.ErrInsufficientBalance
	}

	fee := 0.0
	energyUsed := false
	if sender.Energy >= l.Policy.EnergyCost {
		sender.Energy -= l.Policy.EnergyCost
		energyUsed = true
	} else {
		fee = amount * l.Policy.FeeRate
	}

	sender.Balance -= amount
	recipient.Balance += amount - fee

	t := &entity.Transfer{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Amount:      amount,
		Fee:         fee,
		EnergyUsed:  energyUsed,
	}

	// Durable stores commit the debit, credit, and ledger row in one
	// transaction so a mid-flight failure cannot leave the sender debited
	// without the credit. The memory driver's updates cannot partially
	// fail under the mutex, so it takes the sequential path.
	if ap, ok := l.Users.(repo.TransferApplier); ok {
		if err := ap.ApplyTransfer(ctx, sender, recipient, t); err != nil {
			return out, err
		}
	} else {
		if err := l.Users.Update(sender); err != nil {
			return out, err
		}
		if err := l.Users.Update(recipient); err != nil {
			return out, err
		}
		l.record(t)
	}

	out = entity.TransferOutcome{Fee: fee, EnergyUsed: energyUsed}

	if l.Logger != nil {
		l.Logger.WithFields(logrus.Fields{
			"sender":      senderID,
			"recipient":   recipientID,
			"amount":      amount,
			"fee":         fee,
			"energy_used": energyUsed,
		}).Info("transfer applied")
	}
	return out, nil
}

// record appends a history entry on the sequential path. The balances
// are already committed, so a failing ledger write is logged, not
// surfaced.
func (l *Ledger) record(t *entity.Transfer) {
	if l.Transfers == nil {
		return
	}
	if err := l.Transfers.Append(t); err != nil && l.Logger != nil {
		l.Logger.WithError(err).Warn("transfer history append failed")
	}
}

// History lists recent transfers involving the user, newest first.
func (l *Ledger) History(userID string, limit int) ([]*entity.Transfer, error) {
	if l.Transfers == nil {
		return nil, nil
	}
	return l.Transfers.ListByUser(userID, limit)
}

// FindUserByUsername returns the sanitized record for an exact,
// case-sensitive username match, or (nil, nil) when absent. Absence is a
// normal outcome, never an error.
func (l *Ledger) FindUserByUsername(username string) (*entity.User, error) {
	u, err := l.Users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}
