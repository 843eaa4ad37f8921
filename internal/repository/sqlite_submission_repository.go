package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mquernel/portfolio/backend/internal/model"
	"github.com/mquernel/portfolio/backend/internal/repository/migrations"
	_ "modernc.org/sqlite"
)

// SQLiteSubmissionRepository implements SubmissionRepository over a single SQLite file.
type SQLiteSubmissionRepository struct {
	db *sql.DB
}

var _ SubmissionRepository = (*SQLiteSubmissionRepository)(nil)

// OpenSQLite opens (or creates) the database at path and applies the embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSubmissionRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite serialises writers anyway; one connection keeps BEGIN from racing into SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applySQLiteMigrations(ctx, db, migrations.SQLite, "sqlite"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteSubmissionRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteSubmissionRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteSubmissionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteSubmissionRepository) FindSenderByEmail(ctx context.Context, email string) (*model.Sender, error) {
	var s model.Sender
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email FROM senders WHERE email = ?`, email,
	).Scan(&s.ID, &s.Name, &s.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteSubmissionRepository) RecordSubmission(ctx context.Context, sender *model.Sender, msg *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx,
		`INSERT INTO senders (name, email) VALUES (?, ?)
		 ON CONFLICT (email) DO UPDATE SET name = excluded.name
		 RETURNING id`,
		sender.Name, sender.Email,
	).Scan(&sender.ID); err != nil {
		return fmt.Errorf("upsert sender: %w", err)
	}

	msg.SenderID = sender.ID
	res, err := tx.ExecContext(ctx,
		`INSERT INTO messages (content, sender_id, created_at) VALUES (?, ?, ?)`,
		msg.Content, msg.SenderID, toMillis(msg.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if msg.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteSubmissionRepository) ListMessages(ctx context.Context, opts model.MessageListOptions) ([]*model.MessageView, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.content, m.sender_id, s.name, s.email, m.created_at
		 FROM messages m
		 JOIN senders s ON s.id = m.sender_id
		 ORDER BY m.created_at DESC, m.id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*model.MessageView
	for rows.Next() {
		var v model.MessageView
		var createdAt int64
		if err := rows.Scan(&v.ID, &v.Content, &v.SenderID, &v.SenderName, &v.SenderEmail, &createdAt); err != nil {
			return nil, err
		}
		v.CreatedAt = fromMillis(createdAt)
		views = append(views, &v)
	}
	return views, rows.Err()
}

func (r *SQLiteSubmissionRepository) CountSenders(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM senders`).Scan(&n)
	return n, err
}

func (r *SQLiteSubmissionRepository) CountMessages(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
