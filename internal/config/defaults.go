package config

import (
	"os"
	"path/filepath"

	"github.com/guiibarros/nlw-ai/internal/domain"
)

// DefaultAPIBaseURL is the local development address of the video service.
const DefaultAPIBaseURL = "http://localhost:3333"

// DefaultSettings returns baseline local configuration for first launch.
// A zero request timeout leaves uploads unbounded.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		APIBaseURL:            DefaultAPIBaseURL,
		FFmpegPath:            "ffmpeg",
		RequestTimeoutSeconds: 0,
	}
}

// DefaultPath returns the settings file location under the user home.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return filepath.Join(homeDir, ".nlw-ai", "settings.json")
}
