package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vedran77/messagely/internal/domain"
)

var errNotImplemented = errors.New("not implemented")

type mockUserRepository struct {
	createFunc          func(ctx context.Context, user *domain.User) error
	getByUsernameFunc   func(ctx context.Context, username string) (*domain.User, error)
	listFunc            func(ctx context.Context) ([]domain.PublicProfile, error)
	updateLastLoginFunc func(ctx context.Context, username string, at time.Time) (bool, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errNotImplemented
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) List(ctx context.Context) ([]domain.PublicProfile, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) (bool, error) {
	if m.updateLastLoginFunc != nil {
		return m.updateLastLoginFunc(ctx, username, at)
	}
	return false, errNotImplemented
}

type mockMessageRepository struct {
	createFunc    func(ctx context.Context, msg *domain.Message) error
	getByIDFunc   func(ctx context.Context, id int64) (*domain.Message, error)
	getDetailFunc func(ctx context.Context, id int64) (*domain.MessageDetail, error)
	markReadFunc  func(ctx context.Context, id int64, at time.Time) (*domain.ReadReceipt, error)
	listToFunc    func(ctx context.Context, username string) ([]domain.InboundMessage, error)
	listFromFunc  func(ctx context.Context, username string) ([]domain.OutboundMessage, error)
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, msg)
	}
	return errNotImplemented
}

func (m *mockMessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockMessageRepository) GetDetail(ctx context.Context, id int64) (*domain.MessageDetail, error) {
	if m.getDetailFunc != nil {
		return m.getDetailFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockMessageRepository) MarkRead(ctx context.Context, id int64, at time.Time) (*domain.ReadReceipt, error) {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id, at)
	}
	return nil, errNotImplemented
}

func (m *mockMessageRepository) ListTo(ctx context.Context, username string) ([]domain.InboundMessage, error) {
	if m.listToFunc != nil {
		return m.listToFunc(ctx, username)
	}
	return nil, errNotImplemented
}

func (m *mockMessageRepository) ListFrom(ctx context.Context, username string) ([]domain.OutboundMessage, error) {
	if m.listFromFunc != nil {
		return m.listFromFunc(ctx, username)
	}
	return nil, errNotImplemented
}

type recordingObserver struct {
	mu       sync.Mutex
	created  int
	read     int
	failures []string
}

func (o *recordingObserver) MessageCreated() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created++
}

func (o *recordingObserver) MessageRead() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.read++
}

func (o *recordingObserver) AuthFailed(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, reason)
}
