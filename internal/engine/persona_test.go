package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPersona(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.txt")
	if err := os.WriteFile(path, []byte("You are Lily.\n\n"), 0o644); err != nil {
		t.Fatalf("write persona: %v", err)
	}
	if got := LoadPersona(path); got != "You are Lily." {
		t.Fatalf("LoadPersona() = %q", got)
	}
}

func TestLoadPersonaMissingFile(t *testing.T) {
	if got := LoadPersona(filepath.Join(t.TempDir(), "nope.txt")); got != "" {
		t.Fatalf("LoadPersona() = %q, want empty on missing file", got)
	}
	if got := LoadPersona(""); got != "" {
		t.Fatalf("LoadPersona(\"\") = %q", got)
	}
}
