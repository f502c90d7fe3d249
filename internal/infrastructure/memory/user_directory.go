package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/internal/domain/repository"
)

var errDuplicateID = errors.New("memory: duplicate user id")

// UserDirectory is the in-process user store: a mutex-guarded map of
// id -> record plus secondary indexes for the exact-match lookups the
// services need. Records are copied on the way in and out so callers
// never share memory with the directory.
type UserDirectory struct {
	mu       sync.RWMutex
	users    map[string]*entity.User
	byName   map[string]string // username -> id
	byEmail  map[string]string // email -> id
	byInvite map[string]string // invite code -> id
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		users:    make(map[string]*entity.User),
		byName:   make(map[string]string),
		byEmail:  make(map[string]string),
		byInvite: make(map[string]string),
	}
}

func (d *UserDirectory) Create(u *entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[u.ID]; ok {
		return errDuplicateID
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := clone(u)
	d.users[cp.ID] = cp
	d.byName[cp.Username] = cp.ID
	d.byEmail[cp.Email] = cp.ID
	if cp.InviteCode != "" {
		d.byInvite[cp.InviteCode] = cp.ID
	}
	return nil
}

func (d *UserDirectory) GetByID(id string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return clone(d.users[id]), nil
}

func (d *UserDirectory) GetByUsername(username string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id, ok := d.byName[username]; ok {
		return clone(d.users[id]), nil
	}
	return nil, nil
}

func (d *UserDirectory) GetByEmail(email string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id, ok := d.byEmail[email]; ok {
		return clone(d.users[id]), nil
	}
	return nil, nil
}

func (d *UserDirectory) GetByInviteCode(code string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id, ok := d.byInvite[code]; ok {
		return clone(d.users[id]), nil
	}
	return nil, nil
}

func (d *UserDirectory) ExistsUsernameOrEmail(username, email string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.byName[username]; ok {
		return true, nil
	}
	_, ok := d.byEmail[email]
	return ok, nil
}

func (d *UserDirectory) Update(u *entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	old, ok := d.users[u.ID]
	if !ok {
		return errors.New("memory: user not found")
	}
	u.UpdatedAt = time.Now().UTC()
	cp := clone(u)
	cp.CreatedAt = old.CreatedAt
	// Reindex in case username/email/invite code changed.
	if old.Username != cp.Username {
		delete(d.byName, old.Username)
	}
	if old.Email != cp.Email {
		delete(d.byEmail, old.Email)
	}
	if old.InviteCode != cp.InviteCode {
		delete(d.byInvite, old.InviteCode)
	}
	d.users[cp.ID] = cp
	d.byName[cp.Username] = cp.ID
	d.byEmail[cp.Email] = cp.ID
	if cp.InviteCode != "" {
		d.byInvite[cp.InviteCode] = cp.ID
	}
	return nil
}

func clone(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.InviteTree = append([]string(nil), u.InviteTree...)
	return &cp
}

var _ repository.UserRepository = (*UserDirectory)(nil)
