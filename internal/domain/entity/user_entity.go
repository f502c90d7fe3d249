package entity

import (
	"time"
)

// Role is the authorization role of a marketplace account.
type Role string

const (
	RoleRenter   Role = "renter"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// SelfRegistrable reports whether the role may be chosen at signup.
// Admin accounts are provisioned out of band, never self-registered.
func (r Role) SelfRegistrable() bool {
	return r == RoleRenter || r == RoleProvider
}

// RootUserID is the well-known id of the platform root account. Signups
// without a referrer (or using the root invite code) are attributed to it.
const RootUserID = "00000000-0000-0000-0000-000000000001"

// User is the aggregate root for the account/wallet domain.
// Password holds a bcrypt hash, never plaintext.
//
// InviteTree is the ancestor path of referrer ids from the lineage root
// down to this user, self included at the end. For a user invited by P,
// InviteTree == P.InviteTree + [ID]; for root-attributed users it is
// [RootUserID, ID] (and [RootUserID] for the root itself).
type User struct {
	ID         string
	Username   string
	Email      string
	Password   string
	Role       Role
	Balance    float64
	Energy     int
	Credits    int
	InviteCode string
	InvitedBy  string
	InviteTree []string
	AvatarURL  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Sanitized returns a copy safe to hand to callers: the password hash is
// stripped and the invite tree is cloned so the caller cannot alias
// directory-owned state.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Password = ""
	cp.InviteTree = append([]string(nil), u.InviteTree...)
	return &cp
}
