package memory

import (
	"context"
	"testing"
)

func TestNewStoreDefaultsToInMemory(t *testing.T) {
	for _, url := range []string{"", "   "} {
		s, err := NewStore(context.Background(), url)
		if err != nil {
			t.Fatalf("NewStore(%q) error = %v", url, err)
		}
		if _, ok := s.(*InMemoryStore); !ok {
			t.Fatalf("NewStore(%q) = %T, want in-memory store", url, s)
		}
	}
}

func TestNewStoreRejectsNonPostgresURL(t *testing.T) {
	for _, url := range []string{"mysql://localhost/lily", "sqlite:lily.db", "localhost:5432"} {
		if _, err := NewStore(context.Background(), url); err == nil {
			t.Fatalf("NewStore(%q) accepted a non-postgres URL", url)
		}
	}
}
