package diagnostics

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/guiibarros/nlw-ai/internal/domain"
)

// Checker validates the local environment an upload run depends on.
type Checker struct {
	lookPath   func(string) (string, error)
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkFFmpeg(settings.FFmpegPath),
		c.checkAPIBaseURL(settings.APIBaseURL),
		c.checkScratchSpace(),
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: lo.SomeBy(items, func(item domain.DiagnosticItem) bool {
			return item.Status == domain.DiagnosticStatusFail
		}),
		Items: items,
	}
}

// checkFFmpeg verifies the configured ffmpeg binary is resolvable.
func (c *Checker) checkFFmpeg(configured string) domain.DiagnosticItem {
	binary := strings.TrimSpace(configured)
	if binary == "" {
		binary = "ffmpeg"
	}

	path, err := c.lookPath(binary)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_ffmpeg",
			Name:    "ffmpeg",
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("ffmpeg not found: %s", binary),
			Hint:    "Install ffmpeg or point the setting at an existing binary.",
			Fixable: true,
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_ffmpeg",
		Name:    "ffmpeg",
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkAPIBaseURL validates the configured service address.
func (c *Checker) checkAPIBaseURL(raw string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "api_base_url",
		Name: "API base URL",
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "API base URL is empty."
		item.Hint = "Point the app at a running nlw-ai service."
		item.Fixable = true
		return item
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("API base URL is not a valid URL: %s", trimmed)
		item.Hint = "Use a full address like http://localhost:3333."
		item.Fixable = true
		return item
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("API base URL must use http or https: %s", trimmed)
		item.Hint = "Use a full address like http://localhost:3333."
		item.Fixable = true
		return item
	}
	if parsed.Host == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("API base URL is missing a host: %s", trimmed)
		item.Hint = "Use a full address like http://localhost:3333."
		item.Fixable = true
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Uploads will go to %s", trimmed)
	return item
}

// checkScratchSpace verifies temporary space for conversion is writable.
func (c *Checker) checkScratchSpace() domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "scratch_space",
		Name: "Scratch space",
	}

	tmpFile, err := c.createTemp("", ".nlw-ai-write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Temporary space is not writable."
		item.Hint = "Free up disk space or fix permissions on the system temp directory."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = "Temporary space is writable."
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		createTemp: createTemp,
		remove:     remove,
	}
}
