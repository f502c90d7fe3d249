package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/internal/infrastructure/memory"
)

func newLedgerFixture(t *testing.T) (*Ledger, *memory.UserDirectory) {
	t.Helper()
	users := memory.NewUserDirectory()
	return NewLedger(users, memory.NewTransferLog(), DefaultFeePolicy(), nil), users
}

func seedWallet(t *testing.T, users *memory.UserDirectory, id string, balance float64, energy int) {
	t.Helper()
	err := users.Create(&entity.User{
		ID:       id,
		Username: "user-" + id,
		Email:    id + "@example.com",
		Role:     entity.RoleRenter,
		Balance:  balance,
		Energy:   energy,
	})
	require.NoError(t, err)
}

func TestTransferChargesFeeWithoutEnergy(t *testing.T) {
	ledger, users := newLedgerFixture(t)
	seedWallet(t, users, "alice", 100, 0)
	seedWallet(t, users, "bob", 0, 0)

	out, err := ledger.Transfer(context.Background(), "alice", "bob", 40)
	require.NoError(t, err)
	require.InDelta(t, 0.40, out.Fee, 1e-9)
	require.False(t, out.EnergyUsed)

	alice, _ := users.GetByID("alice")
	bob, _ := users.GetByID("bob")
	require.InDelta(t, 60, alice.Balance, 1e-9)
	require.InDelta(t, 39.60, bob.Balance, 1e-9)
}

func TestTransferSpendsEnergyInsteadOfFee(t *testing.T) {
	ledger, users := newLedgerFixture(t)
	seedWallet(t, users, "alice", 100, 2)
	seedWallet(t, users, "bob", 5, 0)

	out, err := ledger.Transfer(context.Background(), "alice", "bob", 40)
	require.NoError(t, err)
	require.Zero(t, out.Fee)
	require.True(t, out.EnergyUsed)

	alice, _ := users.GetByID("alice")
	bob, _ := users.GetByID("bob")
	require.Equal(t, 1, alice.Energy)
	require.InDelta(t, 60, alice.Balance, 1e-9)
	require.InDelta(t, 45, bob.Balance, 1e-9)
}

func TestTransferInsufficientBalanceLeavesStateUntouched(t *testing.T) {
	ledger, users := newLedgerFixture(t)
	seedWallet(t, users, "alice", 10, 1)
	seedWallet(t, users, "bob", 0, 0)

	_, err := ledger.Transfer(context.Background(), "alice", "bob", 40)
	require.ErrorIs(t, err, entity.ErrInsufficientBalance)

	alice, _ := users.GetByID("alice")
	bob, _ := users.GetByID("bob")
	require.InDelta(t, 10, alice.Balance, 1e-9)
	require.Equal(t, 1, alice.Energy)
	require.Zero(t, bob.Balance)
}

func TestTransferValidationPrecedence(t *testing.T) {
	ledger, users := newLedgerFixture(t)
	seedWallet(t, users, "alice", 100, 0)

	// Empty parties win over everything, including self transfer.
	_, err := ledger.Transfer(context.Background(), "", "", 40)
	require.ErrorIs(t, err, entity.ErrInvalidParties)

	// Self transfer is rejected before the amount is inspected.
	_, err = ledger.Transfer(context.Background(), "alice", "alice", -5)
	require.ErrorIs(t, err, entity.ErrSelfTransfer)

	// Bad amounts are rejected before any lookups happen.
	_, err = ledger.Transfer(context.Background(), "alice", "ghost", 0)
	require.ErrorIs(t, err, entity.ErrInvalidAmount)
	_, err = ledger.Transfer(context.Background(), "alice", "ghost", -1)
	require.ErrorIs(t, err, entity.ErrInvalidAmount)

	_, err = ledger.Transfer(context.Background(), "ghost", "alice", 40)
	require.ErrorIs(t, err, entity.ErrSenderNotFound)

	_, err = ledger.Transfer(context.Background(), "alice", "ghost", 40)
	require.ErrorIs(t, err, entity.ErrRecipientNotFound)
}

func TestSequentialTransfersCannotOverdraw(t *testing.T) {
	ledger, users := newLedgerFixture(t)
	seedWallet(t, users, "alice", 50, 0)
	seedWallet(t, users, "bob", 0, 0)

	_, err := ledger.Transfer(context.Background(), "alice", "bob", 30)
	require.NoError(t, err)
	_, err = ledger.Transfer(context.Background(), "alice", "bob", 30)
	require.ErrorIs(t, err, entity.ErrInsufficientBalance)

	alice, _ := users.GetByID("alice")
	require.InDelta(t, 20, alice.Balance, 1e-9)
}

func TestHistoryListsNewestFirst(t *testing.T) {
	ledger, users := newLedgerFixture(t)
	seedWallet(t, users, "alice", 100, 0)
	seedWallet(t, users, "bob", 100, 0)

	_, err := ledger.Transfer(context.Background(), "alice", "bob", 10)
	require.NoError(t, err)
	_, err = ledger.Transfer(context.Background(), "bob", "alice", 20)
	require.NoError(t, err)

	entries, err := ledger.History("alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.InDelta(t, 20, entries[0].Amount, 1e-9)
	require.InDelta(t, 10, entries[1].Amount, 1e-9)
	require.False(t, entries[0].CreatedAt.IsZero())
}

// atomicStore is a user store that also implements the atomic transfer
// commit, standing in for the Postgres driver.
type atomicStore struct {
	*memory.UserDirectory
	applied []*entity.Transfer
	fail    error
}

func (s *atomicStore) ApplyTransfer(ctx context.Context, sender, recipient *entity.User, tr *entity.Transfer) error {
	if s.fail != nil {
		return s.fail
	}
	if err := s.Update(sender); err != nil {
		return err
	}
	if err := s.Update(recipient); err != nil {
		return err
	}
	s.applied = append(s.applied, tr)
	return nil
}

func TestTransferUsesAtomicApplyWhenAvailable(t *testing.T) {
	store := &atomicStore{UserDirectory: memory.NewUserDirectory()}
	ledger := NewLedger(store, memory.NewTransferLog(), DefaultFeePolicy(), nil)
	seedWallet(t, store.UserDirectory, "alice", 100, 0)
	seedWallet(t, store.UserDirectory, "bob", 0, 0)

	out, err := ledger.Transfer(context.Background(), "alice", "bob", 40)
	require.NoError(t, err)
	require.InDelta(t, 0.40, out.Fee, 1e-9)

	require.Len(t, store.applied, 1, "both updates and the ledger row must go through the atomic commit")
	tr := store.applied[0]
	require.Equal(t, "alice", tr.SenderID)
	require.Equal(t, "bob", tr.RecipientID)
	require.InDelta(t, 40, tr.Amount, 1e-9)
	require.InDelta(t, 0.40, tr.Fee, 1e-9)

	alice, _ := store.GetByID("alice")
	bob, _ := store.GetByID("bob")
	require.InDelta(t, 60, alice.Balance, 1e-9)
	require.InDelta(t, 39.60, bob.Balance, 1e-9)
}

func TestTransferAtomicApplyFailureLeavesBalancesUntouched(t *testing.T) {
	store := &atomicStore{UserDirectory: memory.NewUserDirectory(), fail: errors.New("connection reset")}
	ledger := NewLedger(store, memory.NewTransferLog(), DefaultFeePolicy(), nil)
	seedWallet(t, store.UserDirectory, "alice", 100, 0)
	seedWallet(t, store.UserDirectory, "bob", 0, 0)

	_, err := ledger.Transfer(context.Background(), "alice", "bob", 40)
	require.ErrorContains(t, err, "connection reset")

	// A failed commit must not leave a partial debit behind.
	alice, _ := store.GetByID("alice")
	bob, _ := store.GetByID("bob")
	require.InDelta(t, 100, alice.Balance, 1e-9)
	require.Zero(t, bob.Balance)

	entries, err := ledger.History("alice", 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFindUserByUsername(t *testing.T) {
	ledger, users := newLedgerFixture(t)
	require.NoError(t, users.Create(&entity.User{
		ID:       "alice",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret-hash",
		Role:     entity.RoleRenter,
	}))

	u, err := ledger.FindUserByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Empty(t, u.Password, "lookup must never leak the password hash")

	// Exact match only, and absence is not an error.
	u, err = ledger.FindUserByUsername("Alice")
	require.NoError(t, err)
	require.Nil(t, u)
}
