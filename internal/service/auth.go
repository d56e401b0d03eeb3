package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spendtrack/spendtrack-go/internal/crypto"
	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/repository"
)

// UserStore persists users. Implemented by repository.UserRepository and
// mongostore.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// AuthService handles authentication business logic.
type AuthService struct {
	users  UserStore
	hasher *crypto.PasswordHasher
	tokens TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher *crypto.PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// NormalizeEmail is the match key used for storing and looking up emails.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account and returns an auth token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	user, err := s.createUser(ctx, req)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return s.authResponse(user)
}

// CreateUser creates a user account without issuing a token. Used by the
// admin tooling.
func (s *AuthService) CreateUser(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	user, err := s.createUser(ctx, req)
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.ToResponse(), nil
}

func (s *AuthService) createUser(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates a user and returns an auth token. An unknown email and
// a wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	req.Email = NormalizeEmail(req.Email)

	if err := validateStruct(req); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyDummy(req.Password)
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// CurrentUser returns the profile for an authenticated user ID.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUnauthenticated
		}
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	if s.tokens == nil {
		return model.AuthResponse{}, errors.New("auth service has no token issuer")
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToResponse(),
	}, nil
}
