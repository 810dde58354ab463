package service

import (
	"context"
	"strings"
	"time"

	"github.com/vedran77/messagely/internal/auth"
	"github.com/vedran77/messagely/internal/domain"
	"github.com/vedran77/messagely/internal/repository"
	"github.com/vedran77/messagely/pkg/validator"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	observer    Observer
	now         func() time.Time
}

func NewMessageService(messageRepo repository.MessageRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		observer:    noopObserver{},
		now:         time.Now,
	}
}

// SetObserver sets the lifecycle observer (optional dependency).
func (s *MessageService) SetObserver(o Observer) {
	if o != nil {
		s.observer = o
	}
}

type SendMessageInput struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// Create stores a message from caller. The sender always comes from the
// verified identity. An unknown recipient is reported by the store as a
// referential failure and surfaces as ErrUpstream.
func (s *MessageService) Create(ctx context.Context, caller string, input SendMessageInput) (*domain.Message, error) {
	if caller == "" {
		return nil, auth.ErrUnauthenticated
	}
	if err := invalid(validator.ValidateMessage(input.ToUsername, input.Body)); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		FromUsername: caller,
		ToUsername:   strings.TrimSpace(input.ToUsername),
		Body:         input.Body,
		SentAt:       stamp(s.now),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, upstream("creating message", err)
	}

	s.observer.MessageCreated()
	return msg, nil
}

// GetByID returns the message with both participants' profiles. Only the
// sender and the recipient may see it.
func (s *MessageService) GetByID(ctx context.Context, id int64, caller string) (*domain.MessageDetail, error) {
	if caller == "" {
		return nil, auth.ErrUnauthenticated
	}

	detail, err := s.messageRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, upstream("getting message", err)
	}
	if detail == nil {
		return nil, ErrMessageNotFound
	}

	if err := auth.RequireParticipant(caller, detail.FromUser.Username, detail.ToUser.Username); err != nil {
		return nil, denied(s.observer, err)
	}
	return detail, nil
}

// MarkRead stamps read_at. Only the recipient may do so; marking again
// overwrites the timestamp.
func (s *MessageService) MarkRead(ctx context.Context, id int64, caller string) (*domain.ReadReceipt, error) {
	if caller == "" {
		return nil, auth.ErrUnauthenticated
	}

	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, upstream("getting message", err)
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	if err := auth.RequireRecipient(caller, msg.ToUsername); err != nil {
		return nil, denied(s.observer, err)
	}

	receipt, err := s.messageRepo.MarkRead(ctx, id, stamp(s.now))
	if err != nil {
		return nil, upstream("marking message read", err)
	}
	if receipt == nil {
		return nil, ErrMessageNotFound
	}

	s.observer.MessageRead()
	return receipt, nil
}

// ListTo returns username's inbox. Caller must be username.
func (s *MessageService) ListTo(ctx context.Context, username, caller string) ([]domain.InboundMessage, error) {
	if err := auth.RequireSelf(caller, username); err != nil {
		return nil, denied(s.observer, err)
	}

	messages, err := s.messageRepo.ListTo(ctx, username)
	if err != nil {
		return nil, upstream("listing inbound messages", err)
	}
	if messages == nil {
		messages = []domain.InboundMessage{}
	}
	return messages, nil
}

// ListFrom returns the messages username has sent. Caller must be username.
func (s *MessageService) ListFrom(ctx context.Context, username, caller string) ([]domain.OutboundMessage, error) {
	if err := auth.RequireSelf(caller, username); err != nil {
		return nil, denied(s.observer, err)
	}

	messages, err := s.messageRepo.ListFrom(ctx, username)
	if err != nil {
		return nil, upstream("listing outbound messages", err)
	}
	if messages == nil {
		messages = []domain.OutboundMessage{}
	}
	return messages, nil
}
