// Package transcode turns picked video payloads into the compressed audio
// track the remote service accepts.
package transcode

import (
	"context"
	"fmt"
	"sync"

	"github.com/guiibarros/nlw-ai/internal/domain"
	"github.com/guiibarros/nlw-ai/internal/ffmpeg"
)

// Logical slot names inside the engine scratch directory. Fixed: the
// argument list below refers to them by name.
const (
	inputSlot  = "input.mp4"
	outputSlot = "output.mp3"
)

// Engine is the slot-based execution surface the transcoder drives.
type Engine interface {
	WriteInput(name string, data []byte) error
	Exec(ctx context.Context, args []string) (ffmpeg.CommandLog, error)
	ReadOutput(name string) ([]byte, error)
}

// Error is a conversion failure with optional command context.
type Error struct {
	Op         string            `json:"op"`
	Message    string            `json:"message"`
	CommandLog ffmpeg.CommandLog `json:"commandLog"`
	Err        error             `json:"-"`
}

// Error formats conversion failures for logs and UI.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.CommandLog.Command == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf(
		"%s: %s (cmd=%s exit=%d)",
		e.Op,
		e.Message,
		e.CommandLog.Command,
		e.CommandLog.ExitCode,
	)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Result carries the extracted audio and the command invocation behind it.
type Result struct {
	Audio domain.AudioAsset
	Log   ffmpeg.CommandLog
}

// Transcoder converts one video at a time through a shared engine. The
// engine slots are shared scratch state, so the whole write, exec, read
// sequence runs under one lock and concurrent extractions never interleave.
type Transcoder struct {
	engine Engine
	mu     sync.Mutex
}

// NewTranscoder wraps an engine handle.
func NewTranscoder(engine Engine) *Transcoder {
	return &Transcoder{engine: engine}
}

// extractArgs is the fixed invocation: audio track only, 20 kbit/s MP3 via
// libmp3lame. The slots outlive a run, so ffmpeg must replace the previous
// output without prompting; stdin is not a terminal. Not configurable.
func extractArgs() []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputSlot,
		"-map", "0:a",
		"-b:a", "20k",
		"-acodec", "libmp3lame",
		outputSlot,
	}
}

// ExtractAudio converts one video payload into a compressed MP3 track.
func (t *Transcoder) ExtractAudio(ctx context.Context, video domain.VideoAsset) (Result, error) {
	if len(video.Data) == 0 {
		return Result{}, &Error{
			Op:      "stage",
			Message: "video payload is empty",
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.engine.WriteInput(inputSlot, video.Data); err != nil {
		return Result{}, &Error{
			Op:      "stage",
			Message: "failed to stage video in the engine workspace",
			Err:     err,
		}
	}

	log, err := t.engine.Exec(ctx, extractArgs())
	if err != nil {
		return Result{}, &Error{
			Op:         "extract",
			Message:    "ffmpeg audio extraction failed",
			CommandLog: log,
			Err:        err,
		}
	}

	data, err := t.engine.ReadOutput(outputSlot)
	if err != nil {
		return Result{}, &Error{
			Op:         "collect",
			Message:    "ffmpeg completed but the audio output is missing",
			CommandLog: log,
			Err:        err,
		}
	}
	if len(data) == 0 {
		return Result{}, &Error{
			Op:         "collect",
			Message:    "ffmpeg produced no audio track",
			CommandLog: log,
		}
	}

	return Result{
		Audio: domain.AudioAsset{MediaType: domain.AudioMediaType, Data: data},
		Log:   log,
	}, nil
}
