package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/guiibarros/nlw-ai/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.APIBaseURL != "http://localhost:3333" {
		t.Fatalf("api base url = %q, want http://localhost:3333", cfg.APIBaseURL)
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Fatalf("ffmpeg path = %q, want ffmpeg", cfg.FFmpegPath)
	}
	if cfg.RequestTimeoutSeconds != 0 {
		t.Fatalf("request timeout = %d, want 0", cfg.RequestTimeoutSeconds)
	}
}

// TestDefaultPath verifies the settings file lives under the user home.
func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	if filepath.Base(path) != "settings.json" {
		t.Fatalf("path = %q, want a settings.json file", path)
	}
	if filepath.Base(filepath.Dir(path)) != ".nlw-ai" {
		t.Fatalf("path = %q, want a .nlw-ai directory", path)
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != DefaultSettings() {
		t.Fatalf("settings = %+v, want defaults", got)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		APIBaseURL:            "https://nlw-ai.example.com",
		FFmpegPath:            "/opt/ffmpeg/bin/ffmpeg",
		RequestTimeoutSeconds: 120,
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}
