// Package memory keeps users and messages in process memory. It backs the
// STORAGE=memory mode and the service tests; data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vedran77/messagely/internal/domain"
	"github.com/vedran77/messagely/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	messages map[int64]domain.Message
	nextID   int64
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		messages: make(map[int64]domain.Message),
	}
}

func (s *Store) Users() *UserRepo       { return &UserRepo{s: s} }
func (s *Store) Messages() *MessageRepo { return &MessageRepo{s: s} }

type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	r.s.users[user.Username] = *user
	return nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) List(_ context.Context) ([]domain.PublicProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]domain.PublicProfile, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u.Profile())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *UserRepo) UpdateLastLogin(_ context.Context, username string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[username]
	if !ok {
		return false, nil
	}
	u.LastLoginAt = &at
	r.s.users[username] = u
	return true, nil
}

type MessageRepo struct {
	s *Store
}

func (r *MessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[msg.FromUsername]; !ok {
		return repository.ErrUnknownUser
	}
	if _, ok := r.s.users[msg.ToUsername]; !ok {
		return repository.ErrUnknownUser
	}

	r.s.nextID++
	msg.ID = r.s.nextID
	r.s.messages[msg.ID] = *msg
	return nil
}

func (r *MessageRepo) GetByID(_ context.Context, id int64) (*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MessageRepo) GetDetail(_ context.Context, id int64) (*domain.MessageDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, nil
	}
	from := r.s.users[m.FromUsername]
	to := r.s.users[m.ToUsername]
	return &domain.MessageDetail{
		ID:       m.ID,
		FromUser: from.Profile(),
		ToUser:   to.Profile(),
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   m.ReadAt,
	}, nil
}

func (r *MessageRepo) MarkRead(_ context.Context, id int64, at time.Time) (*domain.ReadReceipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, nil
	}
	m.ReadAt = &at
	r.s.messages[id] = m
	return &domain.ReadReceipt{ID: id, ReadAt: at}, nil
}

func (r *MessageRepo) ListTo(_ context.Context, username string) ([]domain.InboundMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.InboundMessage
	for _, m := range r.s.sorted() {
		if m.ToUsername != username {
			continue
		}
		from := r.s.users[m.FromUsername]
		out = append(out, domain.InboundMessage{
			ID:       m.ID,
			FromUser: from.Profile(),
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
		})
	}
	return out, nil
}

func (r *MessageRepo) ListFrom(_ context.Context, username string) ([]domain.OutboundMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.OutboundMessage
	for _, m := range r.s.sorted() {
		if m.FromUsername != username {
			continue
		}
		to := r.s.users[m.ToUsername]
		out = append(out, domain.OutboundMessage{
			ID:     m.ID,
			ToUser: to.Profile(),
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
		})
	}
	return out, nil
}

// sorted returns every message ordered by sent_at then id. Callers hold mu.
func (s *Store) sorted() []domain.Message {
	all := make([]domain.Message, 0, len(s.messages))
	for _, m := range s.messages {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].SentAt.Equal(all[j].SentAt) {
			return all[i].SentAt.Before(all[j].SentAt)
		}
		return all[i].ID < all[j].ID
	})
	return all
}

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.MessageRepository = (*MessageRepo)(nil)
)
