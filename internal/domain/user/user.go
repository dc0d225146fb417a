package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

// User is a registered account.
type User struct {
	id           uuid.UUID
	email        string
	displayName  string
	passwordHash string
	roles        []auth.Role
	createdAt    time.Time
	updatedAt    time.Time
}

// NormalizeEmail lowercases and trims an address for lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates an account. passwordHash must already be hashed.
func NewUser(email, displayName, passwordHash string, roles []auth.Role) (*User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.NewValidationError("invalid email address")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	if passwordHash == "" {
		return nil, apperror.NewValidationError("password is required")
	}
	if len(roles) == 0 {
		roles = []auth.Role{auth.RoleRenter}
	}

	now := time.Now().UTC()
	return &User{
		id:           uuid.New(),
		email:        email,
		displayName:  displayName,
		passwordHash: passwordHash,
		roles:        roles,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(id uuid.UUID, email, displayName, passwordHash string, roles []auth.Role, createdAt, updatedAt time.Time) *User {
	return &User{
		id:           id,
		email:        email,
		displayName:  displayName,
		passwordHash: passwordHash,
		roles:        roles,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Email() string        { return u.email }
func (u *User) DisplayName() string  { return u.displayName }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Roles() []auth.Role   { return u.roles }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Repository defines persistence operations for users.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail expects a normalized address.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Save fails with a conflict error when the email is taken.
	Save(ctx context.Context, user *User) error
}
