package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if isNotFound(fmt.Errorf("boom")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches 23505", func(t *testing.T) {
		err := &pq.Error{Code: "23505"}
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique_violation")
		}
	})

	t.Run("matches wrapped 23505", func(t *testing.T) {
		err := fmt.Errorf("insert group member: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for wrapped unique_violation")
		}
	})

	t.Run("ignores other pq codes", func(t *testing.T) {
		err := &pq.Error{Code: "23503"}
		if isUniqueViolation(err) {
			t.Fatalf("expected false for foreign_key_violation")
		}
	})

	t.Run("ignores non-pq errors", func(t *testing.T) {
		if isUniqueViolation(fmt.Errorf("boom")) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}
