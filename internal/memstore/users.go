package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/domain/user"
	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

// UserRepo implements user.Repository.
type UserRepo struct{ s *Store }

var _ user.Repository = (*UserRepo)(nil)

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("User", id.String())
	}
	return toUser(rec), nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.users {
		if rec.email == email {
			return toUser(rec), nil
		}
	}
	return nil, apperror.NewNotFoundError("User", email)
}

func (r *UserRepo) Save(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.users {
		if rec.email == u.Email() && rec.id != u.ID() {
			return apperror.NewConflictError("email is already registered")
		}
	}
	r.s.users[u.ID()] = &userRec{
		id:           u.ID(),
		email:        u.Email(),
		displayName:  u.DisplayName(),
		passwordHash: u.PasswordHash(),
		roles:        append([]auth.Role(nil), u.Roles()...),
		createdAt:    u.CreatedAt(),
		updatedAt:    u.UpdatedAt(),
	}
	return nil
}

func toUser(rec *userRec) *user.User {
	return user.Reconstruct(rec.id, rec.email, rec.displayName, rec.passwordHash,
		append([]auth.Role(nil), rec.roles...), rec.createdAt, rec.updatedAt)
}

func nowUTC() time.Time { return time.Now().UTC() }
