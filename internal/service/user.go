package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/events"
	"github.com/Skotchmaster/local_directory/internal/hash"
	"github.com/Skotchmaster/local_directory/internal/logging"
	"github.com/Skotchmaster/local_directory/internal/models"
	"github.com/Skotchmaster/local_directory/internal/repo"
	"github.com/Skotchmaster/local_directory/internal/tokens"
)

type UserService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Codec
	Events events.Publisher
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func normalizeEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validationf("email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", validationf("email is invalid")
	}
	return strings.ToLower(s), nil
}

// bcrypt only looks at the first 72 bytes and rejects longer input.
const maxPasswordBytes = 72

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, validationf("password is required")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, validationf("password must be at most %d bytes", maxPasswordBytes)
	}
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return nil, validationf("role must be USER or ADMIN")
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{Name: name, Email: email, PasswordHash: pwHash, Role: role}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 400, "reason", "email already registered")
			return nil, validationf("email already registered")
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	token, exp, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.Event{
		Type: events.UserRegistered, ResourceID: user.ID, ActorID: user.ID,
		Data: map[string]any{"role": user.Role},
	})
	l.Info("register_success", "user_id", user.ID, "role", user.Role)
	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "user.login")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login failed", "status", 500, "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		l.Error("login failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *UserService) Profile(ctx context.Context, ident models.Identity) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
