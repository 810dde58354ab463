package domain

import "time"

// Message is a stored message row. ReadAt stays nil until the recipient
// marks it read.
type Message struct {
	ID           int64      `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// MessageDetail is a message with both participants' profiles joined in.
type MessageDetail struct {
	ID       int64         `json:"id"`
	FromUser PublicProfile `json:"from_user"`
	ToUser   PublicProfile `json:"to_user"`
	Body     string        `json:"body"`
	SentAt   time.Time     `json:"sent_at"`
	ReadAt   *time.Time    `json:"read_at"`
}

// InboundMessage is an entry of a user's inbox, carrying the sender.
type InboundMessage struct {
	ID       int64         `json:"id"`
	FromUser PublicProfile `json:"from_user"`
	Body     string        `json:"body"`
	SentAt   time.Time     `json:"sent_at"`
	ReadAt   *time.Time    `json:"read_at"`
}

// OutboundMessage is an entry of a user's sent box, carrying the recipient.
type OutboundMessage struct {
	ID     int64         `json:"id"`
	ToUser PublicProfile `json:"to_user"`
	Body   string        `json:"body"`
	SentAt time.Time     `json:"sent_at"`
	ReadAt *time.Time    `json:"read_at"`
}

type ReadReceipt struct {
	ID     int64     `json:"id"`
	ReadAt time.Time `json:"read_at"`
}
