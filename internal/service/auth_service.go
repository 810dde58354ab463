package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vedran77/messagely/internal/auth"
	"github.com/vedran77/messagely/internal/domain"
	"github.com/vedran77/messagely/internal/repository"
	"github.com/vedran77/messagely/pkg/validator"
)

// dummyHash is compared against when the user does not exist so that a
// missing account costs the same argon2 pass as a wrong password.
var dummyHash = func() string {
	h, err := auth.HashPassword("messagely-dummy-password")
	if err != nil {
		panic(err)
	}
	return h
}()

type AuthService struct {
	userRepo repository.UserRepository
	issuer   *auth.Issuer
	observer Observer
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, issuer *auth.Issuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		observer: noopObserver{},
		now:      time.Now,
	}
}

// SetObserver sets the lifecycle observer (optional dependency).
func (s *AuthService) SetObserver(o Observer) {
	if o != nil {
		s.observer = o
	}
}

type RegisterInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

// Register stores a new user with a hashed password. The returned user has
// no PasswordHash.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.register(ctx, input, false)
}

// register writes the user row in one insert. With loggedIn the row already
// carries last_login_at.
func (s *AuthService) register(ctx context.Context, input RegisterInput, loggedIn bool) (*domain.User, error) {
	if err := invalid(validator.ValidateRegister(
		input.Username, input.Password, input.FirstName, input.LastName, input.Phone,
	)); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, upstream("hashing password", err)
	}

	now := stamp(s.now)
	user := &domain.User{
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
		JoinAt:       now,
	}
	if loggedIn {
		user.LastLoginAt = &now
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, upstream("creating user", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Authenticate reports whether password matches the stored hash. Every
// failure, including store errors, yields false.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) bool {
	ok, err := s.authenticate(ctx, username, password)
	if err != nil {
		log.Error().Err(err).Str("op", "authenticate").Msg("user lookup failed")
		return false
	}
	return ok
}

// authenticate separates store failures from a credential mismatch. A missing
// user is compared against dummyHash so both mismatches cost the same.
func (s *AuthService) authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	encoded := dummyHash
	if user != nil {
		encoded = user.PasswordHash
	}

	ok := auth.VerifyPassword(password, encoded)
	return ok && user != nil, nil
}

func (s *AuthService) UpdateLoginTimestamp(ctx context.Context, username string) error {
	updated, err := s.userRepo.UpdateLastLogin(ctx, username, stamp(s.now))
	if err != nil {
		return upstream("updating last login", err)
	}
	if !updated {
		return ErrUserNotFound
	}
	return nil
}

// Signup registers the user already stamped as logged in and returns a token.
func (s *AuthService) Signup(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	user, err := s.register(ctx, input, true)
	if err != nil {
		return nil, err
	}
	return s.issue(user.Username)
}

// Login checks the credentials, stamps last_login_at and returns a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	if err := invalid(validator.ValidateLogin(input.Username, input.Password)); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	ok, err := s.authenticate(ctx, username, input.Password)
	if err != nil {
		return nil, upstream("authenticating", err)
	}
	if !ok {
		s.observer.AuthFailed("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if err := s.UpdateLoginTimestamp(ctx, username); err != nil {
		return nil, err
	}
	return s.issue(username)
}

func (s *AuthService) issue(username string) (*AuthResponse, error) {
	token, err := s.issuer.Issue(username)
	if err != nil {
		return nil, upstream("issuing token", err)
	}
	return &AuthResponse{Token: token}, nil
}
