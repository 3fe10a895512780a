package jobs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/guiibarros/nlw-ai/internal/domain"
)

// ErrUploadAlreadyRunning is returned when starting a second active upload.
var ErrUploadAlreadyRunning = errors.New("upload already running")

// ErrUploadInProgress is returned when reset is requested mid-run.
var ErrUploadInProgress = errors.New("upload still in progress")

// Manager tracks the single allowed active upload and its transitions.
// There is no cancellation: a started run always reaches succeeded or
// failed on its own.
type Manager struct {
	mu      sync.RWMutex
	current domain.Upload
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Upload{
			Status: domain.UploadStatusIdle,
		},
	}
}

// Start creates a new upload and moves it to converting state. It is
// rejected while a previous run is still active; a terminal run is
// replaced.
func (m *Manager) Start(uploadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isActive(m.current.Status) {
		return ErrUploadAlreadyRunning
	}

	m.current = domain.Upload{
		ID:     uploadID,
		Status: domain.UploadStatusConverting,
	}
	return nil
}

// Transition validates and applies state transitions for the current
// upload. Same-state transitions are no-ops.
func (m *Manager) Transition(status domain.UploadStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" && status != domain.UploadStatusIdle {
		return fmt.Errorf("cannot transition without an active upload")
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	return nil
}

// Complete moves a transcribing upload to succeeded and records the
// server-assigned video id in one step.
func (m *Manager) Complete(videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Status != domain.UploadStatusTranscribing {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, domain.UploadStatusSucceeded)
	}

	m.current.Status = domain.UploadStatusSucceeded
	m.current.VideoID = videoID
	return nil
}

// Current returns a snapshot of the current upload.
func (m *Manager) Current() domain.Upload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Reset clears upload metadata and returns the manager to idle. It is
// valid only from idle or a terminal state.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isActive(m.current.Status) {
		return ErrUploadInProgress
	}

	m.current = domain.Upload{Status: domain.UploadStatusIdle}
	return nil
}

// IsActive reports whether the current state is a mid-run stage.
func (m *Manager) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isActive(m.current.Status)
}

// isActive checks if a status represents active pipeline execution.
func isActive(status domain.UploadStatus) bool {
	switch status {
	case domain.UploadStatusConverting, domain.UploadStatusUploading, domain.UploadStatusTranscribing:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed upload state machine edges.
func isValidTransition(from, to domain.UploadStatus) bool {
	switch from {
	case domain.UploadStatusIdle:
		return to == domain.UploadStatusConverting
	case domain.UploadStatusConverting:
		return to == domain.UploadStatusUploading || to == domain.UploadStatusFailed
	case domain.UploadStatusUploading:
		return to == domain.UploadStatusTranscribing || to == domain.UploadStatusFailed
	case domain.UploadStatusTranscribing:
		return to == domain.UploadStatusSucceeded || to == domain.UploadStatusFailed
	case domain.UploadStatusSucceeded, domain.UploadStatusFailed:
		return to == domain.UploadStatusConverting || to == domain.UploadStatusIdle
	default:
		return false
	}
}
