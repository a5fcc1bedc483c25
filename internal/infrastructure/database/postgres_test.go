package database

import (
	"strings"
	"testing"
)

func TestMigrationSourceEmbedsSchema(t *testing.T) {
	migrations, err := MigrationSource().FindMigrations()
	if err != nil {
		t.Fatalf("FindMigrations() error = %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected embedded migrations")
	}

	first := migrations[0]
	if first.Id != "001_init.sql" {
		t.Fatalf("first migration = %q, want 001_init.sql", first.Id)
	}
	if len(first.Up) == 0 || len(first.Down) == 0 {
		t.Fatalf("expected up and down statements, got %d/%d", len(first.Up), len(first.Down))
	}

	up := strings.Join(first.Up, "\n")
	for _, table := range []string{"meetings", "transcripts", "summaries", "actions", "exports"} {
		if !strings.Contains(up, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("missing table %s", table)
		}
	}

	if len(migrations) < 2 || !strings.Contains(strings.Join(migrations[1].Up, "\n"), "run_token") {
		t.Fatal("expected the run_token column migration after the initial schema")
	}
}
