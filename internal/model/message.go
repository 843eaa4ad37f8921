package model

import "time"

// MaxMessageLength bounds message content in runes.
const MaxMessageLength = 5000

// Message is the body of one contact submission. Immutable once stored.
type Message struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content" validate:"required,max=5000"`
	SenderID  int64     `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageView is a Message joined with its Sender, for the operator listing.
type MessageView struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	SenderID    int64     `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageListOptions carries pagination parameters for listing messages.
type MessageListOptions struct {
	Limit  int
	Offset int
}
