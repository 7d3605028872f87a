package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsFallBackWhenUnset(t *testing.T) {
	s := Defaults()
	if got := s.Int("does_not_exist", 7); got != 7 {
		t.Fatalf("expected fallback default 7, got %d", got)
	}
	if got := s.Char("home_char", 'x'); got != 'H' {
		t.Fatalf("expected configured home_char 'H', got %q", got)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	body := `{"hunger_pref_min": 75, "home_char": "@"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write settings file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Int("hunger_pref_min", -1); got != 75 {
		t.Fatalf("expected overlay value 75, got %d", got)
	}
	if got := s.Char("home_char", 'x'); got != '@' {
		t.Fatalf("expected overlay char '@', got %q", got)
	}
	// Everything not present in the overlay keeps its default.
	if got := s.Int("backpack_food_cap", -1); got != 100 {
		t.Fatalf("expected untouched default 100, got %d", got)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing settings file")
	}
}
