package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/internal/domain/repository"
)

const userColumns = `id, username, email, password_hash, role, balance, energy, credits,
	invite_code, invited_by, invite_tree, avatar_url, created_at, updated_at`

// UserRepository is the Postgres-backed user directory. It preserves the
// same contract as the in-memory directory: exact lookups, (nil, nil) on
// absence.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(u *entity.User) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, balance, energy, credits,
			invite_code, invited_by, invite_tree, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.Email, u.Password, string(u.Role), u.Balance, u.Energy, u.Credits,
		u.InviteCode, u.InvitedBy, u.InviteTree, u.AvatarURL)

	return row.Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	return r.getWhere(`id = $1`, id)
}

func (r *UserRepository) GetByUsername(username string) (*entity.User, error) {
	return r.getWhere(`username = $1`, username)
}

func (r *UserRepository) GetByEmail(email string) (*entity.User, error) {
	return r.getWhere(`email = $1`, email)
}

func (r *UserRepository) GetByInviteCode(code string) (*entity.User, error) {
	return r.getWhere(`invite_code = $1`, code)
}

func (r *UserRepository) ExistsUsernameOrEmail(username, email string) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
	`, username, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Update(u *entity.User) error {
	ctx := context.Background()
	u.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, role = $4, balance = $5,
			energy = $6, credits = $7, invite_code = $8, invited_by = $9,
			invite_tree = $10, avatar_url = $11, updated_at = $12
		WHERE id = $13
	`, u.Username, u.Email, u.Password, string(u.Role), u.Balance,
		u.Energy, u.Credits, u.InviteCode, u.InvitedBy,
		u.InviteTree, u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errors.New("postgres: user not found")
	}
	return nil
}

// ApplyTransfer commits a transfer's debit, credit, and ledger row in a
// single transaction. The caller has already validated the transfer and
// holds the mutated sender/recipient records.
func (r *UserRepository) ApplyTransfer(ctx context.Context, sender, recipient *entity.User, t *entity.Transfer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		UPDATE users SET balance = $1, energy = $2, updated_at = $3 WHERE id = $4
	`, sender.Balance, sender.Energy, now, sender.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET balance = $1, updated_at = $2 WHERE id = $3
	`, recipient.Balance, now, recipient.ID); err != nil {
		return err
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO transfers (id, sender_id, recipient_id, amount, fee, energy_used)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, t.ID, t.SenderID, t.RecipientID, t.Amount, t.Fee, t.EnergyUsed).Scan(&t.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *UserRepository) getWhere(cond string, arg any) (*entity.User, error) {
	ctx := context.Background()
	u := &entity.User{}
	var role string

	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond, arg)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &role, &u.Balance,
		&u.Energy, &u.Credits, &u.InviteCode, &u.InvitedBy, &u.InviteTree,
		&u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = entity.Role(role)
	return u, nil
}

var (
	_ repository.UserRepository  = (*UserRepository)(nil)
	_ repository.TransferApplier = (*UserRepository)(nil)
)
