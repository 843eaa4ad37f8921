package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mquernel/portfolio/backend/internal/model"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteSubmissionRepository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLite_RecordSubmission_NewSender(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)

	sender := &model.Sender{Name: "Alice", Email: "alice@example.com"}
	msg := &model.Message{Content: "Hello", CreatedAt: time.Now()}
	require.NoError(t, repo.RecordSubmission(ctx, sender, msg))

	require.Equal(t, int64(1), sender.ID)
	require.Equal(t, int64(1), msg.ID)
	require.Equal(t, sender.ID, msg.SenderID)

	found, err := repo.FindSenderByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice", found.Name)
}

func TestSQLite_RecordSubmission_ExistingSenderUpdatesName(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)

	require.NoError(t, repo.RecordSubmission(ctx,
		&model.Sender{Name: "Alice", Email: "alice@example.com"},
		&model.Message{Content: "Hello", CreatedAt: time.Now()}))

	sender := &model.Sender{Name: "Alice B.", Email: "alice@example.com"}
	msg := &model.Message{Content: "Second", CreatedAt: time.Now()}
	require.NoError(t, repo.RecordSubmission(ctx, sender, msg))

	require.Equal(t, int64(1), sender.ID)
	require.Equal(t, int64(2), msg.ID)

	found, err := repo.FindSenderByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice B.", found.Name)

	senders, err := repo.CountSenders(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, senders)
	messages, err := repo.CountMessages(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, messages)
}

func TestSQLite_FindSenderByEmail_NotFound(t *testing.T) {
	repo := openTestSQLite(t)
	_, err := repo.FindSenderByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_FindSenderByEmail_ExactMatch(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)
	require.NoError(t, repo.RecordSubmission(ctx,
		&model.Sender{Name: "Alice", Email: "alice@example.com"},
		&model.Message{Content: "Hello", CreatedAt: time.Now()}))

	_, err := repo.FindSenderByEmail(ctx, "ALICE@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_RecordSubmission_ContentStoredVerbatim(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)

	content := "<script>alert('x')</script>\nline two"
	require.NoError(t, repo.RecordSubmission(ctx,
		&model.Sender{Name: "Mallory", Email: "mallory@example.com"},
		&model.Message{Content: content, CreatedAt: time.Now()}))

	views, err := repo.ListMessages(ctx, model.MessageListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, content, views[0].Content)
	require.Equal(t, "mallory@example.com", views[0].SenderEmail)
}

func TestSQLite_ListMessages_NewestFirstWithPagination(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordSubmission(ctx,
			&model.Sender{Name: "Bob", Email: "bob@example.com"},
			&model.Message{Content: fmt.Sprintf("msg-%d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	views, err := repo.ListMessages(ctx, model.MessageListOptions{Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "msg-2", views[0].Content)
	require.Equal(t, "msg-1", views[1].Content)
	require.True(t, views[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	views, err = repo.ListMessages(ctx, model.MessageListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "msg-0", views[0].Content)
}

func TestSQLite_RecordSubmission_ConcurrentFirstSubmissionsShareSender(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.RecordSubmission(ctx,
				&model.Sender{Name: fmt.Sprintf("Carol %d", i), Email: "carol@example.com"},
				&model.Message{Content: "hi", CreatedAt: time.Now()})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	senders, err := repo.CountSenders(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, senders)
	messages, err := repo.CountMessages(ctx)
	require.NoError(t, err)
	require.Equal(t, n, messages)
}

func TestSQLite_OpenTwiceKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "portfolio.db")

	repo, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.RecordSubmission(ctx,
		&model.Sender{Name: "Dan", Email: "dan@example.com"},
		&model.Message{Content: "persisted", CreatedAt: time.Now()}))
	require.NoError(t, repo.Close())

	repo, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer repo.Close()
	messages, err := repo.CountMessages(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, messages)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "  ")
	require.Error(t, err)
}

func TestExtractUpMigration(t *testing.T) {
	got := extractUpMigration("-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;")
	require.Equal(t, "\nCREATE TABLE a (id INTEGER);\n", got)
	require.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
}
