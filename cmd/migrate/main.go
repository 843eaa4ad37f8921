package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mquernel/portfolio/backend/internal/config"
	"github.com/mquernel/portfolio/backend/internal/logging"
	"github.com/mquernel/portfolio/backend/internal/repository"
	"github.com/mquernel/portfolio/backend/internal/repository/migrations"
)

const migrationRoot = "postgres"

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   差分マイグレーションを適用
  fresh       全テーブルを DROP し、全マイグレーションを順番に適用
  status      適用済み / 未適用のマイグレーションを表示

SQLite (STORE_DRIVER=sqlite) はサーバー起動時に自動でマイグレーションされる。`)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		logging.Setup("INFO", "portfolio-migrate")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel, "portfolio-migrate")

	if cfg.Store.Driver != config.DriverPostgres {
		logging.Fatal("migrate only targets PostgreSQL", "driver", cfg.Store.Driver)
	}

	ctx := context.Background()
	pool, err := repository.NewPool(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	m := &migrator{pool: pool, fsys: migrations.Postgres}
	switch cmd {
	case "":
		err = m.runIncremental(ctx)
	case "fresh":
		if err = m.runDropAll(ctx); err == nil {
			err = m.runIncremental(ctx)
		}
	case "status":
		err = m.printStatus(ctx)
	default:
		usage()
	}
	if err != nil {
		pool.Close()
		logging.Fatal("migrate failed", "command", cmd, "error", err)
	}
}

type migrator struct {
	pool *pgxpool.Pool
	fsys fs.FS
}

// collectUpFiles は .up.sql ファイル名をソート済みで返す
func collectUpFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, migrationRoot)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (m *migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (m *migrator) applied(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists)
	return exists, err
}

// ---------------------------------------------------------------------------
// (default) 差分マイグレーション
// ---------------------------------------------------------------------------
func (m *migrator) runIncremental(ctx context.Context) error {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	upFiles, err := collectUpFiles(m.fsys)
	if err != nil {
		return err
	}
	count := 0
	for i, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")

		done, err := m.applied(ctx, name)
		if err != nil {
			return fmt.Errorf("check %s: %w", name, err)
		}
		if done {
			continue
		}

		sql, err := fs.ReadFile(m.fsys, migrationRoot+"/"+filename)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		// マイグレーション本体と記録を同一トランザクションで実行する
		tx, err := m.pool.Begin(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		count++
		slog.Info("migration completed", "number", i+1, "migration", name)
	}

	if count == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", count)
	}
	return nil
}

// ---------------------------------------------------------------------------
// 全テーブル DROP
// ---------------------------------------------------------------------------
func (m *migrator) runDropAll(ctx context.Context) error {
	slog.Info("dropping all tables")
	sql, err := fs.ReadFile(m.fsys, migrationRoot+"/000_drop_all.sql")
	if err != nil {
		return fmt.Errorf("read 000_drop_all.sql: %w", err)
	}
	if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}
	slog.Info("all tables dropped")
	return nil
}

func (m *migrator) printStatus(ctx context.Context) error {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	upFiles, err := collectUpFiles(m.fsys)
	if err != nil {
		return err
	}
	for _, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")
		done, err := m.applied(ctx, name)
		if err != nil {
			return err
		}
		state := "pending"
		if done {
			state = "applied"
		}
		fmt.Printf("%-8s %s\n", state, name)
	}
	return nil
}
