package memory

import (
	"testing"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
)

func newUser(id, username string) *entity.User {
	return &entity.User{
		ID:         id,
		Username:   username,
		Email:      username + "@example.com",
		Role:       entity.RoleRenter,
		InviteCode: "agi" + id,
		InviteTree: []string{entity.RootUserID, id},
	}
}

func TestUserDirectoryAbsenceIsNilNil(t *testing.T) {
	d := NewUserDirectory()

	u, err := d.GetByID("ghost")
	if err != nil || u != nil {
		t.Fatalf("GetByID on empty directory: got (%v, %v), want (nil, nil)", u, err)
	}
	u, err = d.GetByUsername("ghost")
	if err != nil || u != nil {
		t.Fatalf("GetByUsername on empty directory: got (%v, %v), want (nil, nil)", u, err)
	}
	u, err = d.GetByInviteCode("agighost")
	if err != nil || u != nil {
		t.Fatalf("GetByInviteCode on empty directory: got (%v, %v), want (nil, nil)", u, err)
	}
}

func TestUserDirectoryCreateAndLookups(t *testing.T) {
	d := NewUserDirectory()
	if err := d.Create(newUser("u1", "alice")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, _ := d.GetByID("u1")
	byName, _ := d.GetByUsername("alice")
	byEmail, _ := d.GetByEmail("alice@example.com")
	byCode, _ := d.GetByInviteCode("agiu1")
	for _, u := range []*entity.User{byID, byName, byEmail, byCode} {
		if u == nil || u.ID != "u1" {
			t.Fatalf("lookup returned %v, want record u1", u)
		}
	}
	if byID.CreatedAt.IsZero() || byID.UpdatedAt.IsZero() {
		t.Fatal("Create should stamp timestamps")
	}
}

func TestUserDirectoryRejectsDuplicateID(t *testing.T) {
	d := NewUserDirectory()
	if err := d.Create(newUser("u1", "alice")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := d.Create(newUser("u1", "alice2")); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestUserDirectoryExistsUsernameOrEmail(t *testing.T) {
	d := NewUserDirectory()
	if err := d.Create(newUser("u1", "alice")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := []struct {
		username, email string
		want            bool
	}{
		{"alice", "other@example.com", true},
		{"other", "alice@example.com", true},
		{"other", "other@example.com", false},
	}
	for _, c := range cases {
		got, err := d.ExistsUsernameOrEmail(c.username, c.email)
		if err != nil {
			t.Fatalf("ExistsUsernameOrEmail(%q, %q): %v", c.username, c.email, err)
		}
		if got != c.want {
			t.Fatalf("ExistsUsernameOrEmail(%q, %q) = %v, want %v", c.username, c.email, got, c.want)
		}
	}
}

func TestUserDirectoryReturnsCopies(t *testing.T) {
	d := NewUserDirectory()
	if err := d.Create(newUser("u1", "alice")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, _ := d.GetByID("u1")
	got.Balance = 9999
	got.InviteTree[0] = "tampered"

	fresh, _ := d.GetByID("u1")
	if fresh.Balance != 0 {
		t.Fatalf("mutating a returned record leaked into the store: balance=%v", fresh.Balance)
	}
	if fresh.InviteTree[0] != entity.RootUserID {
		t.Fatal("mutating a returned invite tree leaked into the store")
	}
}

func TestUserDirectoryUpdateReindexes(t *testing.T) {
	d := NewUserDirectory()
	if err := d.Create(newUser("u1", "alice")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	u, _ := d.GetByID("u1")
	u.Username = "alicia"
	if err := d.Update(u); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if old, _ := d.GetByUsername("alice"); old != nil {
		t.Fatal("old username still resolves after rename")
	}
	renamed, _ := d.GetByUsername("alicia")
	if renamed == nil || renamed.ID != "u1" {
		t.Fatalf("new username does not resolve: %v", renamed)
	}
}

func TestUserDirectoryUpdateMissing(t *testing.T) {
	d := NewUserDirectory()
	if err := d.Update(newUser("ghost", "ghost")); err == nil {
		t.Fatal("expected error updating a missing record")
	}
}
