package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vedran77/messagely/internal/domain"
)

var (
	// ErrDuplicateUsername is returned by UserRepository.Create when the
	// username is already registered.
	ErrDuplicateUsername = errors.New("duplicate username")
	// ErrUnknownUser is returned when a message references a user that does
	// not exist.
	ErrUnknownUser = errors.New("referenced user does not exist")
)

// Lookups return (nil, nil) when the row does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.PublicProfile, error)
	// UpdateLastLogin reports whether a row was updated.
	UpdateLastLogin(ctx context.Context, username string, at time.Time) (bool, error)
}

type MessageRepository interface {
	// Create assigns msg.ID.
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	GetDetail(ctx context.Context, id int64) (*domain.MessageDetail, error)
	MarkRead(ctx context.Context, id int64, at time.Time) (*domain.ReadReceipt, error)
	// ListTo and ListFrom return messages ordered by sent_at, then id.
	ListTo(ctx context.Context, username string) ([]domain.InboundMessage, error)
	ListFrom(ctx context.Context, username string) ([]domain.OutboundMessage, error)
}
