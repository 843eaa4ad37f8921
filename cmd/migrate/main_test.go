package main

import (
	"testing"
	"testing/fstest"

	"github.com/mquernel/portfolio/backend/internal/repository/migrations"
)

func TestCollectUpFiles_SortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"postgres/002_b.up.sql":     {Data: []byte("SELECT 2;")},
		"postgres/001_a.up.sql":     {Data: []byte("SELECT 1;")},
		"postgres/000_drop_all.sql": {Data: []byte("DROP TABLE x;")},
		"postgres/notes.md":         {Data: []byte("ignored")},
	}

	files, err := collectUpFiles(fsys)
	if err != nil {
		t.Fatalf("collectUpFiles: %v", err)
	}
	want := []string{"001_a.up.sql", "002_b.up.sql"}
	if len(files) != len(want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestEmbeddedPostgresMigrations(t *testing.T) {
	files, err := collectUpFiles(migrations.Postgres)
	if err != nil {
		t.Fatalf("collectUpFiles: %v", err)
	}
	if len(files) == 0 || files[0] != "001_create_senders_messages.up.sql" {
		t.Errorf("unexpected embedded migrations: %v", files)
	}
}
