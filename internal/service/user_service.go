package service

import (
	"context"

	"github.com/vedran77/messagely/internal/auth"
	"github.com/vedran77/messagely/internal/domain"
	"github.com/vedran77/messagely/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
	observer Observer
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, observer: noopObserver{}}
}

// SetObserver sets the lifecycle observer (optional dependency).
func (s *UserService) SetObserver(o Observer) {
	if o != nil {
		s.observer = o
	}
}

// List returns every user's public profile ordered by username. Any
// authenticated caller may list.
func (s *UserService) List(ctx context.Context) ([]domain.PublicProfile, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, upstream("listing users", err)
	}
	if users == nil {
		users = []domain.PublicProfile{}
	}
	return users, nil
}

// Get returns the caller's own record. The exact-match check runs before the
// lookup so a foreign caller learns nothing about whether username exists.
func (s *UserService) Get(ctx context.Context, username, caller string) (*domain.User, error) {
	if err := auth.RequireSelf(caller, username); err != nil {
		return nil, denied(s.observer, err)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, upstream("getting user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.PasswordHash = ""
	return user, nil
}
