package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/internal/infrastructure/memory"
)

// plainHasher keeps registrar tests fast; bcrypt is covered by its own
// package tests.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }
func (plainHasher) Compare(hash, pw string) bool   { return hash == "hashed:"+pw }

func testPolicy() RegistrationPolicy {
	return RegistrationPolicy{
		RootInviteCode:   "agi1a01",
		InviteCodePrefix: "agi",
		SignupCredits:    100,
	}
}

func newRegistrarFixture(t *testing.T) (*Registrar, *memory.UserDirectory) {
	t.Helper()
	users := memory.NewUserDirectory()
	return NewRegistrar(users, plainHasher{}, testPolicy(), nil), users
}

func registerInput(username string, code string) RegisterInput {
	return RegisterInput{
		Username:   username,
		Email:      username + "@example.com",
		Password:   "password123",
		Role:       entity.RoleRenter,
		InviteCode: code,
	}
}

func TestRegisterWithoutInviteCodeAttributesToRoot(t *testing.T) {
	reg, _ := newRegistrarFixture(t)

	u, err := reg.Register(context.Background(), registerInput("alice", ""))
	require.NoError(t, err)
	require.Equal(t, entity.RootUserID, u.InvitedBy)
	require.Equal(t, []string{entity.RootUserID, u.ID}, u.InviteTree)
	require.Equal(t, 100, u.Credits)
	require.Zero(t, u.Balance)
	require.Empty(t, u.Password, "registration result must be sanitized")
}

func TestRegisterWithRootInviteCode(t *testing.T) {
	reg, _ := newRegistrarFixture(t)

	u, err := reg.Register(context.Background(), registerInput("alice", "agi1a01"))
	require.NoError(t, err)
	require.Equal(t, entity.RootUserID, u.InvitedBy)
	require.Equal(t, []string{entity.RootUserID, u.ID}, u.InviteTree)
}

func TestRegisterExtendsReferrerLineage(t *testing.T) {
	reg, _ := newRegistrarFixture(t)

	parent, err := reg.Register(context.Background(), registerInput("alice", ""))
	require.NoError(t, err)

	child, err := reg.Register(context.Background(), registerInput("bob", parent.InviteCode))
	require.NoError(t, err)
	require.Equal(t, parent.ID, child.InvitedBy)
	require.Equal(t, append(parent.InviteTree, child.ID), child.InviteTree)

	grandchild, err := reg.Register(context.Background(), registerInput("carol", child.InviteCode))
	require.NoError(t, err)
	require.Equal(t, []string{entity.RootUserID, parent.ID, child.ID, grandchild.ID}, grandchild.InviteTree)
}

func TestRegisterRejectsUnknownInviteCode(t *testing.T) {
	reg, _ := newRegistrarFixture(t)

	_, err := reg.Register(context.Background(), registerInput("alice", "agizzzz"))
	require.ErrorIs(t, err, entity.ErrInvalidInviteCode)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg, _ := newRegistrarFixture(t)

	_, err := reg.Register(context.Background(), registerInput("alice", ""))
	require.NoError(t, err)

	_, err = reg.Register(context.Background(), registerInput("alice", ""))
	require.ErrorIs(t, err, entity.ErrDuplicateUser)

	// Same email under a different username is also a duplicate.
	in := registerInput("alice2", "")
	in.Email = "alice@example.com"
	_, err = reg.Register(context.Background(), in)
	require.ErrorIs(t, err, entity.ErrDuplicateUser)
}

func TestRegisterRequiresUsernameAndEmail(t *testing.T) {
	reg, users := newRegistrarFixture(t)

	in := registerInput("alice", "")
	in.Username = ""
	_, err := reg.Register(context.Background(), in)
	require.ErrorIs(t, err, entity.ErrMissingIdentity)

	in = registerInput("alice", "")
	in.Email = "   "
	_, err = reg.Register(context.Background(), in)
	require.ErrorIs(t, err, entity.ErrMissingIdentity)

	u, err := users.GetByUsername("alice")
	require.NoError(t, err)
	require.Nil(t, u, "rejected signups must not insert a record")
}

func TestRegisterRejectsNonSelfRegistrableRoles(t *testing.T) {
	reg, _ := newRegistrarFixture(t)

	in := registerInput("mallory", "")
	in.Role = entity.RoleAdmin
	_, err := reg.Register(context.Background(), in)
	require.ErrorIs(t, err, entity.ErrInvalidRole)

	in.Role = entity.Role("superuser")
	_, err = reg.Register(context.Background(), in)
	require.ErrorIs(t, err, entity.ErrInvalidRole)
}

func TestRegisterAllocatesPrefixedUniqueCodes(t *testing.T) {
	reg, _ := newRegistrarFixture(t)

	seen := map[string]bool{}
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5"} {
		u, err := reg.Register(context.Background(), registerInput(name, ""))
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(u.InviteCode, "agi"))
		require.Len(t, u.InviteCode, len("agi")+4)
		require.NotEqual(t, "agi1a01", u.InviteCode)
		require.False(t, seen[u.InviteCode], "invite code %q allocated twice", u.InviteCode)
		seen[u.InviteCode] = true
	}
}

func TestRegisterUsesSeededRootTree(t *testing.T) {
	reg, users := newRegistrarFixture(t)
	require.NoError(t, users.Create(&entity.User{
		ID:         entity.RootUserID,
		Username:   "root",
		Email:      "root@example.com",
		Role:       entity.RoleAdmin,
		InviteCode: "agi1a01",
		InviteTree: []string{entity.RootUserID},
	}))

	u, err := reg.Register(context.Background(), registerInput("alice", ""))
	require.NoError(t, err)
	require.Equal(t, []string{entity.RootUserID, u.ID}, u.InviteTree)
}
