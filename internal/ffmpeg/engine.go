// Package ffmpeg provides the shared audio extraction engine backed by a
// local ffmpeg binary and a scratch working directory.
//
// The engine exposes the three slot operations the transcoder needs:
// write an input slot, execute an argument list, read an output slot.
// Slots are plain files under the scratch directory addressed by logical
// name and overwritten on every run, so callers that need isolation must
// serialize whole extractions themselves.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/guiibarros/nlw-ai/internal/logging"
)

// ErrInvalidSlotName is returned for slot names that are not bare file names.
var ErrInvalidSlotName = errors.New("slot name must be a bare file name")

// ErrEngineClosed is returned for slot operations after Close.
var ErrEngineClosed = errors.New("engine is closed")

// CommandLog captures one ffmpeg invocation result.
type CommandLog struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec in a working directory.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, dir, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// Engine is the process-wide extraction engine handle. It is cheap to
// construct; the expensive part (binary resolution, scratch directory)
// happens lazily on first use, at most once, and a failed initialization
// stays failed for the lifetime of the handle.
type Engine struct {
	binary    string
	runner    commandRunner
	lookPath  func(string) (string, error)
	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(string) error
	writeFile func(name string, data []byte, perm os.FileMode) error
	readFile  func(name string) ([]byte, error)
	logger    zerolog.Logger

	initOnce sync.Once
	initErr  error
	binPath  string
	workDir  string

	// mu guards the scratch slots and the workDir handle. Each operation
	// locks individually; whole-extraction exclusion is the transcoder's job.
	mu sync.Mutex
}

// NewEngine constructs an engine for the given ffmpeg binary. An empty
// binary falls back to "ffmpeg" resolved through PATH.
func NewEngine(binary string) *Engine {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}

	return &Engine{
		binary:    binary,
		runner:    &execRunner{},
		lookPath:  exec.LookPath,
		mkdirTemp: os.MkdirTemp,
		removeAll: os.RemoveAll,
		writeFile: os.WriteFile,
		readFile:  os.ReadFile,
		logger:    logging.WithComponent("ffmpeg"),
	}
}

// load performs the lazy one-time initialization.
func (e *Engine) load() error {
	e.initOnce.Do(func() {
		binPath, err := e.lookPath(e.binary)
		if err != nil {
			e.initErr = fmt.Errorf("resolve ffmpeg binary %q: %w", e.binary, err)
			return
		}

		workDir, err := e.mkdirTemp("", "nlw-ai-engine-*")
		if err != nil {
			e.initErr = fmt.Errorf("create engine scratch directory: %w", err)
			return
		}

		// Publish under mu: Close may run concurrently with first use.
		e.mu.Lock()
		e.binPath = binPath
		e.workDir = workDir
		e.mu.Unlock()
		e.logger.Debug().Str("binary", binPath).Str("workDir", workDir).Msg("engine initialized")
	})
	return e.initErr
}

// WriteInput stores payload bytes into the named input slot, replacing
// any previous content.
func (e *Engine) WriteInput(name string, data []byte) error {
	if err := validSlotName(name); err != nil {
		return err
	}
	if err := e.load(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.workDir == "" {
		return ErrEngineClosed
	}
	if err := e.writeFile(filepath.Join(e.workDir, name), data, 0o600); err != nil {
		return fmt.Errorf("write input slot %s: %w", name, err)
	}
	return nil
}

// Exec runs the ffmpeg binary with the given arguments inside the scratch
// directory so logical slot names resolve. The returned log captures the
// invocation regardless of outcome.
func (e *Engine) Exec(ctx context.Context, args []string) (CommandLog, error) {
	log := CommandLog{Command: e.binary, Args: args, ExitCode: -1}
	if err := e.load(); err != nil {
		return log, err
	}
	log.Command = e.binPath

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.workDir == "" {
		return log, ErrEngineClosed
	}

	result, err := e.runner.Run(ctx, e.workDir, e.binPath, args...)
	log.ExitCode = result.ExitCode
	log.Stdout = result.Stdout
	log.Stderr = result.Stderr
	if err != nil {
		e.logger.Debug().Int("exitCode", result.ExitCode).Msg("ffmpeg execution failed")
		return log, err
	}

	return log, nil
}

// ReadOutput returns the content of the named output slot.
func (e *Engine) ReadOutput(name string) ([]byte, error) {
	if err := validSlotName(name); err != nil {
		return nil, err
	}
	if err := e.load(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.workDir == "" {
		return nil, ErrEngineClosed
	}
	data, err := e.readFile(filepath.Join(e.workDir, name))
	if err != nil {
		return nil, fmt.Errorf("read output slot %s: %w", name, err)
	}
	return data, nil
}

// Close removes the scratch directory. Later slot operations return
// ErrEngineClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.workDir == "" {
		return nil
	}
	if err := e.removeAll(e.workDir); err != nil {
		return err
	}
	e.workDir = ""
	return nil
}

// validSlotName rejects names that would escape the scratch directory.
func validSlotName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidSlotName, name)
	}
	return nil
}

// NewEngineForTests constructs an engine with injectable dependencies.
func NewEngineForTests(
	binary string,
	runner commandRunner,
	lookPath func(string) (string, error),
	mkdirTemp func(dir, pattern string) (string, error),
) *Engine {
	engine := NewEngine(binary)
	if runner != nil {
		engine.runner = runner
	}
	if lookPath != nil {
		engine.lookPath = lookPath
	}
	if mkdirTemp != nil {
		engine.mkdirTemp = mkdirTemp
	}
	return engine
}
