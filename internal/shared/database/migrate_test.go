package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := Migrations()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(files) == 0 {
		t.Fatal("Expected at least one migration")
	}
	if files[0] != "001_predictions.sql" {
		t.Errorf("Expected 001_predictions.sql first, got %s", files[0])
	}

	content, err := fs.ReadFile(migrationsFS, "migrations/"+files[0])
	if err != nil {
		t.Fatalf("Failed to read migration: %v", err)
	}
	for _, column := range []string{"symptoms", "temperature", "age", "sex", "heart_rate", "diagnosis", "rule"} {
		if !strings.Contains(string(content), column) {
			t.Errorf("Expected predictions table to define %s", column)
		}
	}
}
