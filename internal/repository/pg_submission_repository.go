package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mquernel/portfolio/backend/internal/model"
)

// PgSubmissionRepository is the PostgreSQL implementation of SubmissionRepository.
type PgSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionRepository creates a PgSubmissionRepository backed by the given pool.
func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

// Ensure PgSubmissionRepository implements SubmissionRepository at compile time.
var _ SubmissionRepository = (*PgSubmissionRepository)(nil)

// Ping は DB 接続を確認する（DB インターフェース実装）
func (r *PgSubmissionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// FindSenderByEmail returns the sender with exactly this email, or ErrNotFound.
func (r *PgSubmissionRepository) FindSenderByEmail(ctx context.Context, email string) (*model.Sender, error) {
	var s model.Sender
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email FROM senders WHERE email = $1`, email,
	).Scan(&s.ID, &s.Name, &s.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordSubmission upserts the sender and inserts the message in one transaction.
// A concurrent first submission for the same email lands on the ON CONFLICT
// branch, so the unique constraint never surfaces to the caller.
func (r *PgSubmissionRepository) RecordSubmission(ctx context.Context, sender *model.Sender, msg *model.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx,
		`INSERT INTO senders (name, email) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		sender.Name, sender.Email,
	).Scan(&sender.ID); err != nil {
		return fmt.Errorf("upsert sender: %w", err)
	}

	msg.SenderID = sender.ID
	if err := tx.QueryRow(ctx,
		`INSERT INTO messages (content, sender_id, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		msg.Content, msg.SenderID, msg.CreatedAt,
	).Scan(&msg.ID); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListMessages returns messages newest first, joined with their sender.
func (r *PgSubmissionRepository) ListMessages(ctx context.Context, opts model.MessageListOptions) ([]*model.MessageView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.content, m.sender_id, s.name, s.email, m.created_at
		 FROM messages m
		 JOIN senders s ON s.id = m.sender_id
		 ORDER BY m.created_at DESC, m.id DESC
		 LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*model.MessageView
	for rows.Next() {
		var v model.MessageView
		if err := rows.Scan(&v.ID, &v.Content, &v.SenderID, &v.SenderName, &v.SenderEmail, &v.CreatedAt); err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}

// CountSenders returns the number of stored senders.
func (r *PgSubmissionRepository) CountSenders(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM senders`).Scan(&n)
	return n, err
}

// CountMessages returns the number of stored messages.
func (r *PgSubmissionRepository) CountMessages(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}
