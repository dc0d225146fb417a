package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GearShare/service-rental/internal/domain/user"
	"github.com/GearShare/service-rental/internal/platform/apperror"
	"github.com/GearShare/service-rental/internal/platform/auth"
)

// RegisterRequest is the sign-up payload. Role may be OWNER or RENTER;
// anything else registers a renter.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
	DisplayName string `json:"displayName" binding:"max=120"`
	Role        string `json:"role"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserDTO is the public view of an account.
type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Roles       []string  `json:"roles"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

// AuthService issues tokens for registered users.
type AuthService struct {
	users  user.Repository
	jwt    *auth.JWTManager
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users user.Repository, jwt *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, logger: logger}
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role, ok := auth.ParseRole(req.Role)
	if !ok || role == auth.RoleAdmin {
		role = auth.RoleRenter
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u, err := user.NewUser(req.Email, req.DisplayName, hash, []auth.Role{role})
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID().String()),
		zap.String("role", string(role)),
	)
	return s.issue(u)
}

// Login verifies credentials and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	invalid := apperror.NewUnauthorizedError("invalid email or password")

	u, err := s.users.FindByEmail(ctx, user.NormalizeEmail(req.Email))
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeNotFound {
			return nil, invalid
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash(), req.Password) {
		return nil, invalid
	}
	return s.issue(u)
}

// Me returns the calling user's account.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

func (s *AuthService) issue(u *user.User) (*AuthResponse, error) {
	token, expiresAt, err := s.jwt.Generate(u.ID(), u.Email(), u.DisplayName(), u.Roles())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: toUserDTO(u)}, nil
}

func toUserDTO(u *user.User) UserDTO {
	roles := make([]string, len(u.Roles()))
	for i, r := range u.Roles() {
		roles[i] = string(r)
	}
	return UserDTO{
		ID:          u.ID(),
		Email:       u.Email(),
		DisplayName: u.DisplayName(),
		Roles:       roles,
	}
}
