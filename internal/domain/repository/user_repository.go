package repository

import "github.com/gridmarket/gridmarket-api/internal/domain/entity"

// UserRepository is the user directory contract shared by the in-memory
// and Postgres stores. Lookups are exact and case-sensitive; a missing
// record is reported as (nil, nil), not an error, because absence is a
// normal outcome for the services built on top.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByInviteCode(code string) (*entity.User, error)
	// ExistsUsernameOrEmail reports whether any record already holds the
	// username or the email (uniqueness pre-check at registration).
	ExistsUsernameOrEmail(username, email string) (bool, error)
	Update(u *entity.User) error
}
