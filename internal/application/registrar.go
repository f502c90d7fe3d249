package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	repo "github.com/gridmarket/gridmarket-api/internal/domain/repository"
	"github.com/gridmarket/gridmarket-api/pkg/helpers"
	"github.com/gridmarket/gridmarket-api/pkg/mailer"
	tpl "github.com/gridmarket/gridmarket-api/pkg/mailer/templates"
)

// How many invite-code generations to attempt before giving up. Collisions
// on 36^4 codes are rare; hitting the cap means something is badly wrong.
const inviteCodeAttempts = 10

var errInviteCodeSpace = errors.New("could not allocate a unique invite code")

// RegistrationPolicy is the configurable part of signup: the well-known
// root code, the prefix of generated codes, and the starter credits.
type RegistrationPolicy struct {
	RootInviteCode   string
	InviteCodePrefix string
	SignupCredits    int
}

// Registrar creates user records and wires them into the invite lineage.
type Registrar struct {
	Users        repo.UserRepository
	Hasher       helpers.PasswordHasher
	Policy       RegistrationPolicy
	Logger       *logrus.Logger
	Pub          *helpers.RabbitPublisher
	ES           *elasticsearch.Client
	ESUsersIndex string

	// Serializes check-then-insert so two racing signups cannot both pass
	// the uniqueness checks.
	mu sync.Mutex
}

func NewRegistrar(users repo.UserRepository, hasher helpers.PasswordHasher, policy RegistrationPolicy, logger *logrus.Logger) *Registrar {
	return &Registrar{Users: users, Hasher: hasher, Policy: policy, Logger: logger}
}

type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	Role       entity.Role
	InviteCode string
}

// Register validates and constructs a new user record per the signup
// policy and returns it sanitized. Expected failures are DomainErrors:
// ErrInvalidRole, ErrDuplicateUser, ErrInvalidInviteCode.
//
// A signup without any invite code is attributed to the platform root;
// that is a deliberate policy, not a fallback.
func (r *Registrar) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	// The HTTP layer validates too, but the service guards its own
	// contract for direct callers (seeders, future transports).
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, entity.ErrMissingIdentity
	}
	if !in.Role.SelfRegistrable() {
		return nil, entity.ErrInvalidRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	taken, err := r.Users.ExistsUsernameOrEmail(in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, entity.ErrDuplicateUser
	}

	invitedBy, parentTree, err := r.resolveLineage(in.InviteCode)
	if err != nil {
		return nil, err
	}

	hash, err := r.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	code, err := r.freshInviteCode()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	u := &entity.User{
		ID:         id,
		Username:   in.Username,
		Email:      in.Email,
		Password:   hash,
		Role:       in.Role,
		Balance:    0,
		Energy:     0,
		Credits:    r.Policy.SignupCredits,
		InviteCode: code,
		InvitedBy:  invitedBy,
		InviteTree: append(parentTree, id),
	}
	if err := r.Users.Create(u); err != nil {
		return nil, err
	}

	if r.Logger != nil {
		r.Logger.WithFields(logrus.Fields{
			"user_id":    u.ID,
			"role":       u.Role,
			"invited_by": u.InvitedBy,
		}).Info("user registered")
	}

	// Best-effort side effects; registration already succeeded.
	r.indexUser(ctx, u)
	r.publishWelcome(ctx, u)

	return u.Sanitized(), nil
}

// resolveLineage maps an optional invite code to (invitedBy, ancestor path
// of the parent). The root code, like an absent code, attributes the
// signup to the platform root.
func (r *Registrar) resolveLineage(code string) (string, []string, error) {
	code = strings.TrimSpace(code)
	if code == "" || code == r.Policy.RootInviteCode {
		return entity.RootUserID, r.rootTree(), nil
	}
	parent, err := r.Users.GetByInviteCode(code)
	if err != nil {
		return "", nil, err
	}
	if parent == nil {
		return "", nil, entity.ErrInvalidInviteCode
	}
	return parent.ID, append([]string(nil), parent.InviteTree...), nil
}

// rootTree prefers the seeded root record's own tree so lineage stays
// consistent if the root id ever carries ancestry; otherwise [RootUserID].
func (r *Registrar) rootTree() []string {
	if root, err := r.Users.GetByID(entity.RootUserID); err == nil && root != nil {
		return append([]string(nil), root.InviteTree...)
	}
	return []string{entity.RootUserID}
}

func (r *Registrar) freshInviteCode() (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := helpers.GenInviteCode(r.Policy.InviteCodePrefix, helpers.InviteCodeRandLen)
		if err != nil {
			return "", err
		}
		if code == r.Policy.RootInviteCode {
			continue
		}
		holder, err := r.Users.GetByInviteCode(code)
		if err != nil {
			return "", err
		}
		if holder == nil {
			return code, nil
		}
	}
	return "", errInviteCodeSpace
}

func (r *Registrar) indexUser(ctx context.Context, u *entity.User) {
	if r.ES == nil || r.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"role":       u.Role,
		"invited_by": u.InvitedBy,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: r.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, r.ES)
	if err != nil {
		if r.Logger != nil {
			r.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && r.Logger != nil {
		r.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

func (r *Registrar) publishWelcome(ctx context.Context, u *entity.User) {
	if r.Pub == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.TemplateWelcome,
		Data: map[string]any{
			"Username":   u.Username,
			"Role":       string(u.Role),
			"Credits":    u.Credits,
			"InviteCode": u.InviteCode,
		},
	}
	if err := r.Pub.PublishJSON(ctx, job); err != nil && r.Logger != nil {
		r.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email publish failed")
	}
}
