package repository

import (
	"context"

	"github.com/mquernel/portfolio/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// SubmissionRepository persists senders and their contact messages.
//
// RecordSubmission is the only write path: it upserts the sender by email and
// inserts the message in one transaction, populating sender.ID, msg.ID and
// msg.SenderID. Either both rows are visible afterwards or neither is.
type SubmissionRepository interface {
	DB
	FindSenderByEmail(ctx context.Context, email string) (*model.Sender, error)
	RecordSubmission(ctx context.Context, sender *model.Sender, msg *model.Message) error
	ListMessages(ctx context.Context, opts model.MessageListOptions) ([]*model.MessageView, error)
	CountSenders(ctx context.Context) (int, error)
	CountMessages(ctx context.Context) (int, error)
}
