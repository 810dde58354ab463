package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/vedran77/messagely/internal/domain"
)

type MessageRepo struct {
	db DBTX
}

func NewMessageRepo(db DBTX) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		msg.FromUsername, msg.ToUsername, msg.Body, msg.SentAt,
	).Scan(&msg.ID)
	if err != nil {
		return translate(err, "messageRepo.Create")
	}
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT id, from_username, to_username, body, sent_at, read_at
		FROM messages
		WHERE id = $1`

	var m domain.Message
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.GetByID")
	}
	return &m, nil
}

func (r *MessageRepo) GetDetail(ctx context.Context, id int64) (*domain.MessageDetail, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
			f.username, f.first_name, f.last_name, f.phone,
			t.username, t.first_name, t.last_name, t.phone
		FROM messages m
		JOIN users f ON f.username = m.from_username
		JOIN users t ON t.username = m.to_username
		WHERE m.id = $1`

	var d domain.MessageDetail
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Body, &d.SentAt, &d.ReadAt,
		&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
		&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.GetDetail")
	}
	return &d, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, id int64, at time.Time) (*domain.ReadReceipt, error) {
	var rr domain.ReadReceipt
	err := r.db.QueryRow(ctx,
		`UPDATE messages SET read_at = $1 WHERE id = $2 RETURNING id, read_at`, at, id,
	).Scan(&rr.ID, &rr.ReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.MarkRead")
	}
	return &rr, nil
}

func (r *MessageRepo) ListTo(ctx context.Context, username string) ([]domain.InboundMessage, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
			u.username, u.first_name, u.last_name, u.phone
		FROM messages m
		JOIN users u ON u.username = m.from_username
		WHERE m.to_username = $1
		ORDER BY m.sent_at, m.id`

	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.ListTo")
	}
	defer rows.Close()

	var messages []domain.InboundMessage
	for rows.Next() {
		var m domain.InboundMessage
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
		); err != nil {
			return nil, errors.Wrap(err, "messageRepo.ListTo.Scan")
		}
		messages = append(messages, m)
	}
	return messages, errors.Wrap(rows.Err(), "messageRepo.ListTo.Rows")
}

func (r *MessageRepo) ListFrom(ctx context.Context, username string) ([]domain.OutboundMessage, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
			u.username, u.first_name, u.last_name, u.phone
		FROM messages m
		JOIN users u ON u.username = m.to_username
		WHERE m.from_username = $1
		ORDER BY m.sent_at, m.id`

	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.ListFrom")
	}
	defer rows.Close()

	var messages []domain.OutboundMessage
	for rows.Next() {
		var m domain.OutboundMessage
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
		); err != nil {
			return nil, errors.Wrap(err, "messageRepo.ListFrom.Scan")
		}
		messages = append(messages, m)
	}
	return messages, errors.Wrap(rows.Err(), "messageRepo.ListFrom.Rows")
}
