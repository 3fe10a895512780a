// Package upload runs one picked video through audio conversion, the
// service upload, and the transcription request, in strict order.
package upload

import (
	"context"
	"errors"

	"github.com/guiibarros/nlw-ai/internal/domain"
	"github.com/guiibarros/nlw-ai/internal/ffmpeg"
	"github.com/guiibarros/nlw-ai/internal/transcode"
)

// ErrEmptyVideo is returned when a run is requested with no video payload.
var ErrEmptyVideo = errors.New("video payload is empty")

// Extractor converts a video payload into an uploadable audio track.
type Extractor interface {
	ExtractAudio(ctx context.Context, video domain.VideoAsset) (transcode.Result, error)
}

// Submitter talks to the remote video service.
type Submitter interface {
	CreateVideo(ctx context.Context, audio domain.AudioAsset) (string, error)
	RequestTranscription(ctx context.Context, videoID, prompt string) error
}

// Request carries one run's input and observation callbacks.
type Request struct {
	Video   domain.VideoAsset
	Prompt  string
	OnStage func(status domain.UploadStatus)
	OnLog   func(log ffmpeg.CommandLog)
}

// Result is the success payload of one run: the server-assigned id of
// the created video resource.
type Result struct {
	VideoID string
}

// Pipeline executes the three-step upload sequence. Each step completes
// before the next begins; the first failure aborts the rest. Errors pass
// through unwrapped so callers can inspect the typed failures of the
// transcoder and the client. Nothing is rolled back on failure: when the
// transcription request fails, the created video remains on the server
// without one.
type Pipeline struct {
	extractor Extractor
	submitter Submitter
}

// NewPipeline wires the conversion and submission collaborators.
func NewPipeline(extractor Extractor, submitter Submitter) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		submitter: submitter,
	}
}

// Run performs conversion, upload, and the transcription request.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if len(req.Video.Data) == 0 {
		return Result{}, ErrEmptyVideo
	}

	emitStage(req.OnStage, domain.UploadStatusConverting)
	extracted, err := p.extractor.ExtractAudio(ctx, req.Video)
	if err != nil {
		return Result{}, err
	}
	emitLog(req.OnLog, extracted.Log)

	emitStage(req.OnStage, domain.UploadStatusUploading)
	videoID, err := p.submitter.CreateVideo(ctx, extracted.Audio)
	if err != nil {
		return Result{}, err
	}

	emitStage(req.OnStage, domain.UploadStatusTranscribing)
	if err := p.submitter.RequestTranscription(ctx, videoID, req.Prompt); err != nil {
		return Result{}, err
	}

	return Result{VideoID: videoID}, nil
}

// emitStage forwards stage updates when the callback is configured.
func emitStage(cb func(domain.UploadStatus), status domain.UploadStatus) {
	if cb != nil {
		cb(status)
	}
}

// emitLog forwards command logs when the callback is configured.
func emitLog(cb func(ffmpeg.CommandLog), log ffmpeg.CommandLog) {
	if cb != nil {
		cb(log)
	}
}
