package entity

import (
	"errors"
	"testing"
)

func TestSanitizedStripsSecretsAndClones(t *testing.T) {
	u := &User{
		ID:         "u1",
		Username:   "alice",
		Password:   "bcrypt-hash",
		InviteTree: []string{RootUserID, "u1"},
	}

	s := u.Sanitized()
	if s.Password != "" {
		t.Fatal("sanitized copy still carries the password hash")
	}
	s.InviteTree[0] = "tampered"
	if u.InviteTree[0] != RootUserID {
		t.Fatal("sanitized copy aliases the original invite tree")
	}
	if u.Password != "bcrypt-hash" {
		t.Fatal("sanitizing must not touch the original")
	}
}

func TestSanitizedNil(t *testing.T) {
	var u *User
	if u.Sanitized() != nil {
		t.Fatal("nil receiver should sanitize to nil")
	}
}

func TestRoleSelfRegistrable(t *testing.T) {
	if !RoleRenter.SelfRegistrable() || !RoleProvider.SelfRegistrable() {
		t.Fatal("renter and provider sign themselves up")
	}
	if RoleAdmin.SelfRegistrable() {
		t.Fatal("admin must not be self-registrable")
	}
	if Role("superuser").SelfRegistrable() {
		t.Fatal("unknown roles must not be self-registrable")
	}
}

func TestDomainErrorMatching(t *testing.T) {
	if !errors.Is(ErrInsufficientBalance, ErrInsufficientBalance) {
		t.Fatal("sentinel should match itself")
	}
	if errors.Is(ErrInsufficientBalance, ErrSelfTransfer) {
		t.Fatal("different kinds must not match")
	}
	if got := KindOf(ErrDuplicateUser); got != KindDuplicateUser {
		t.Fatalf("KindOf = %q, want %q", got, KindDuplicateUser)
	}
	if got := KindOf(errors.New("boom")); got != "" {
		t.Fatalf("KindOf on a plain error = %q, want empty", got)
	}
}
