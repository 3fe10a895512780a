package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/guiibarros/nlw-ai/internal/api"
	"github.com/guiibarros/nlw-ai/internal/config"
	"github.com/guiibarros/nlw-ai/internal/diagnostics"
	"github.com/guiibarros/nlw-ai/internal/domain"
	"github.com/guiibarros/nlw-ai/internal/ffmpeg"
	"github.com/guiibarros/nlw-ai/internal/jobs"
	"github.com/guiibarros/nlw-ai/internal/logging"
	"github.com/guiibarros/nlw-ai/internal/transcode"
	"github.com/guiibarros/nlw-ai/internal/upload"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var videoDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Video files",
		Pattern:     "*.mp4;*.mov;*.mkv;*.avi;*.webm",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App wires configuration, uploads, the pipeline, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	logger      zerolog.Logger

	// engine and transcoder are shared across runs: the engine holds the
	// single scratch workspace and the transcoder serializes extractions.
	engine     *ffmpeg.Engine
	transcoder *transcode.Transcoder

	// newPipeline builds a run pipeline from freshly loaded settings, so
	// base URL and timeout changes apply without restarting the app.
	newPipeline func(settings domain.Settings) pipelineRunner

	readFile func(name string) ([]byte, error)

	mu             sync.Mutex
	activeUploadID string
	events         *jobs.EventBus
	runtimeCtx     context.Context
}

// pipelineRunner isolates the upload pipeline behind an interface.
type pipelineRunner interface {
	Run(ctx context.Context, req upload.Request) (upload.Result, error)
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}
	if err := ensureLocalBinOnPATH(homeDir); err != nil {
		return nil, fmt.Errorf("prepare local tool path: %w", err)
	}

	store := config.NewJSONStore(config.DefaultPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	engine := ffmpeg.NewEngine(settings.FFmpegPath)

	app := &App{
		Settings:    settings,
		Store:       store,
		Jobs:        jobs.NewManager(),
		Diagnostics: report,
		assets:      assets,
		checker:     checker,
		logger:      logging.WithComponent("app"),
		engine:      engine,
		transcoder:  transcode.NewTranscoder(engine),
		readFile:    os.ReadFile,
		events:      jobs.NewEventBus(1000),
	}
	app.newPipeline = app.buildPipeline
	return app, nil
}

// buildPipeline assembles the production run pipeline for given settings.
func (a *App) buildPipeline(settings domain.Settings) pipelineRunner {
	client := api.NewClient(settings.APIBaseURL, time.Duration(settings.RequestTimeoutSeconds)*time.Second)
	return upload.NewPipeline(a.transcoder, client)
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "upload.ai",
		Width:       980,
		Height:      720,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			a.runtimeCtx = nil
			a.mu.Unlock()
			if a.engine != nil {
				_ = a.engine.Close()
			}
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// PickVideoFile opens a native file dialog for video selection.
func (a *App) PickVideoFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select video file",
		Filters: videoDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	report := a.Diagnostics
	a.mu.Unlock()

	return report, nil
}

// StartUpload reads the selected video and runs the upload asynchronously.
// An empty path means no video was picked and is not an error: the current
// snapshot comes back unchanged and nothing runs.
func (a *App) StartUpload(path string, prompt string) (domain.Upload, error) {
	selected := strings.TrimSpace(path)
	if selected == "" {
		return a.Jobs.Current(), nil
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	video, err := a.loadVideoAsset(selected)
	if err != nil {
		return domain.Upload{}, err
	}

	uploadID := uuid.NewString()
	if err := a.Jobs.Start(uploadID); err != nil {
		return domain.Upload{}, err
	}

	a.mu.Lock()
	a.activeUploadID = uploadID
	a.Settings = settings
	a.mu.Unlock()

	a.publishStatus(uploadID, domain.UploadStatusConverting, "Upload started")

	go a.runUpload(uploadID, video, prompt, settings)
	return a.Jobs.Current(), nil
}

// CurrentUpload returns current upload metadata and status.
func (a *App) CurrentUpload() domain.Upload {
	return a.Jobs.Current()
}

// ResetUpload clears a finished run so a fresh one can be configured.
func (a *App) ResetUpload() (domain.Upload, error) {
	if err := a.Jobs.Reset(); err != nil {
		return a.Jobs.Current(), err
	}

	a.mu.Lock()
	a.activeUploadID = ""
	a.mu.Unlock()

	return a.Jobs.Current(), nil
}

// UploadEvents returns all events with sequence greater than sinceSeq.
func (a *App) UploadEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// loadVideoAsset reads one video file into memory for a run.
func (a *App) loadVideoAsset(path string) (domain.VideoAsset, error) {
	data, err := a.readFile(path)
	if err != nil {
		return domain.VideoAsset{}, fmt.Errorf("read video file: %w", err)
	}
	if len(data) == 0 {
		return domain.VideoAsset{}, fmt.Errorf("video file is empty: %s", path)
	}

	name := filepath.Base(path)
	mediaType, ok := domain.VideoMediaType(name)
	if !ok {
		mediaType = "video/mp4"
	}

	return domain.VideoAsset{
		Name:      name,
		MediaType: mediaType,
		Data:      data,
	}, nil
}

// runUpload executes the pipeline and maps outcomes to upload events.
func (a *App) runUpload(uploadID string, video domain.VideoAsset, prompt string, settings domain.Settings) {
	runLog := logging.WithUpload("app", uploadID)
	pipeline := a.newPipeline(settings)

	req := upload.Request{
		Video:  video,
		Prompt: prompt,
		OnStage: func(status domain.UploadStatus) {
			if err := a.Jobs.Transition(status); err == nil {
				a.publishStatus(uploadID, status, stageMessage(status))
			}
		},
		OnLog: func(log ffmpeg.CommandLog) {
			a.publishEvent(jobs.Event{
				UploadID: uploadID,
				Type:     jobs.EventTypeLog,
				Message:  "Command completed",
				Command:  log.Command,
				Args:     log.Args,
				ExitCode: log.ExitCode,
				Stdout:   log.Stdout,
				Stderr:   log.Stderr,
			})
		},
	}

	result, err := pipeline.Run(context.Background(), req)
	if err != nil {
		_ = a.Jobs.Transition(domain.UploadStatusFailed)
		a.publishStatus(uploadID, domain.UploadStatusFailed, "Upload failed")
		a.publishEvent(jobs.Event{
			UploadID: uploadID,
			Type:     jobs.EventTypeError,
			Status:   domain.UploadStatusFailed,
			Message:  err.Error(),
		})

		var convErr *transcode.Error
		if errors.As(err, &convErr) && convErr.CommandLog.Command != "" {
			a.publishEvent(jobs.Event{
				UploadID: uploadID,
				Type:     jobs.EventTypeLog,
				Message:  "Failed command",
				Command:  convErr.CommandLog.Command,
				Args:     convErr.CommandLog.Args,
				ExitCode: convErr.CommandLog.ExitCode,
				Stdout:   convErr.CommandLog.Stdout,
				Stderr:   convErr.CommandLog.Stderr,
			})
		}

		runLog.Error().Err(err).Msg("upload failed")
		a.clearActiveUpload(uploadID)
		return
	}

	if err := a.Jobs.Complete(result.VideoID); err == nil {
		a.publishStatus(uploadID, domain.UploadStatusSucceeded, "Upload completed")
	}
	a.publishEvent(jobs.Event{
		UploadID: uploadID,
		Type:     jobs.EventTypeResult,
		Status:   domain.UploadStatusSucceeded,
		Message:  "Transcription requested",
		VideoID:  result.VideoID,
	})

	runLog.Info().Str("videoId", result.VideoID).Msg("upload completed")
	a.clearActiveUpload(uploadID)
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(uploadID string, status domain.UploadStatus, message string) {
	a.publishEvent(jobs.Event{
		UploadID: uploadID,
		Type:     jobs.EventTypeStatus,
		Status:   status,
		Message:  message,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "upload:event", published)
	}
}

// clearActiveUpload forgets the run handle for completed upload IDs.
func (a *App) clearActiveUpload(uploadID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeUploadID == uploadID {
		a.activeUploadID = ""
	}
}

// stageMessage maps a mid-run status to a human-readable progress line.
func stageMessage(status domain.UploadStatus) string {
	switch status {
	case domain.UploadStatusConverting:
		return "Extracting audio track"
	case domain.UploadStatusUploading:
		return "Uploading audio to the service"
	case domain.UploadStatusTranscribing:
		return "Requesting transcription"
	default:
		return "Status changed"
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings trims user inputs and applies defaults for empty fields.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.APIBaseURL = strings.TrimRight(strings.TrimSpace(settings.APIBaseURL), "/")
	settings.FFmpegPath = strings.TrimSpace(settings.FFmpegPath)
	if settings.APIBaseURL == "" {
		settings.APIBaseURL = config.DefaultAPIBaseURL
	}
	if settings.FFmpegPath == "" {
		settings.FFmpegPath = "ffmpeg"
	}
	if settings.RequestTimeoutSeconds < 0 {
		settings.RequestTimeoutSeconds = 0
	}
	return settings
}
