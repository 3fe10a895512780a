package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type fakeRunner struct {
	run func(ctx context.Context, dir, name string, args ...string) (commandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (commandResult, error) {
	return f.run(ctx, dir, name, args...)
}

func newTestEngine(t *testing.T, runner commandRunner) *Engine {
	t.Helper()
	dir := t.TempDir()
	return NewEngineForTests(
		"ffmpeg",
		runner,
		func(name string) (string, error) { return "/usr/bin/" + name, nil },
		func(string, string) (string, error) { return dir, nil },
	)
}

func TestEngineInitializesOnce(t *testing.T) {
	lookups := 0
	scratches := 0
	dir := t.TempDir()
	engine := NewEngineForTests(
		"ffmpeg",
		&fakeRunner{run: func(context.Context, string, string, ...string) (commandResult, error) {
			return commandResult{}, nil
		}},
		func(name string) (string, error) {
			lookups++
			return "/usr/bin/" + name, nil
		},
		func(string, string) (string, error) {
			scratches++
			return dir, nil
		},
	)

	if err := engine.WriteInput("input.mp4", []byte("a")); err != nil {
		t.Fatalf("WriteInput() error = %v", err)
	}
	if _, err := engine.Exec(context.Background(), []string{"-version"}); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if _, err := engine.ReadOutput("input.mp4"); err != nil {
		t.Fatalf("ReadOutput() error = %v", err)
	}

	if lookups != 1 {
		t.Fatalf("lookPath calls = %d, want 1", lookups)
	}
	if scratches != 1 {
		t.Fatalf("mkdirTemp calls = %d, want 1", scratches)
	}
}

func TestEngineInitFailureIsSticky(t *testing.T) {
	lookups := 0
	engine := NewEngineForTests(
		"ffmpeg",
		nil,
		func(string) (string, error) {
			lookups++
			return "", errors.New("not found")
		},
		nil,
	)

	if err := engine.WriteInput("input.mp4", []byte("a")); err == nil {
		t.Fatal("WriteInput() error = nil, want init error")
	}
	if _, err := engine.Exec(context.Background(), nil); err == nil {
		t.Fatal("Exec() error = nil, want init error")
	}
	if _, err := engine.ReadOutput("output.mp3"); err == nil {
		t.Fatal("ReadOutput() error = nil, want init error")
	}

	if lookups != 1 {
		t.Fatalf("lookPath calls = %d, want 1", lookups)
	}
}

func TestEngineSlotRoundTrip(t *testing.T) {
	engine := newTestEngine(t, nil)

	if err := engine.WriteInput("input.mp4", []byte("first")); err != nil {
		t.Fatalf("WriteInput() error = %v", err)
	}
	if err := engine.WriteInput("input.mp4", []byte("second")); err != nil {
		t.Fatalf("WriteInput() overwrite error = %v", err)
	}

	data, err := engine.ReadOutput("input.mp4")
	if err != nil {
		t.Fatalf("ReadOutput() error = %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("slot content = %q, want %q", data, "second")
	}
}

func TestEngineRejectsInvalidSlotNames(t *testing.T) {
	engine := newTestEngine(t, nil)

	for _, name := range []string{"", ".", "..", "a/b", "/etc/passwd", "../escape.mp3"} {
		if err := engine.WriteInput(name, nil); !errors.Is(err, ErrInvalidSlotName) {
			t.Fatalf("WriteInput(%q) error = %v, want ErrInvalidSlotName", name, err)
		}
		if _, err := engine.ReadOutput(name); !errors.Is(err, ErrInvalidSlotName) {
			t.Fatalf("ReadOutput(%q) error = %v, want ErrInvalidSlotName", name, err)
		}
	}
}

func TestEngineExecRunsInScratchDirectory(t *testing.T) {
	var gotDir string
	var gotName string
	var gotArgs []string
	runner := &fakeRunner{run: func(_ context.Context, dir, name string, args ...string) (commandResult, error) {
		gotDir = dir
		gotName = name
		gotArgs = args
		return commandResult{Stdout: "out", Stderr: "progress", ExitCode: 0}, nil
	}}

	scratch := t.TempDir()
	engine := NewEngineForTests(
		"ffmpeg",
		runner,
		func(name string) (string, error) { return "/opt/bin/" + name, nil },
		func(string, string) (string, error) { return scratch, nil },
	)

	log, err := engine.Exec(context.Background(), []string{"-i", "input.mp4", "output.mp3"})
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}

	if gotDir != scratch {
		t.Fatalf("runner dir = %q, want %q", gotDir, scratch)
	}
	if gotName != "/opt/bin/ffmpeg" {
		t.Fatalf("runner binary = %q, want resolved path", gotName)
	}
	if len(gotArgs) != 3 || gotArgs[0] != "-i" {
		t.Fatalf("runner args = %v", gotArgs)
	}
	if log.Command != "/opt/bin/ffmpeg" || log.Stdout != "out" || log.Stderr != "progress" || log.ExitCode != 0 {
		t.Fatalf("unexpected command log: %+v", log)
	}
}

func TestEngineExecFailureKeepsLog(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context, string, string, ...string) (commandResult, error) {
		return commandResult{Stderr: "Invalid data found", ExitCode: 1}, errors.New("exit status 1")
	}}
	engine := newTestEngine(t, runner)

	log, err := engine.Exec(context.Background(), []string{"-i", "input.mp4"})
	if err == nil {
		t.Fatal("Exec() error = nil, want failure")
	}
	if log.ExitCode != 1 {
		t.Fatalf("log.ExitCode = %d, want 1", log.ExitCode)
	}
	if log.Stderr != "Invalid data found" {
		t.Fatalf("log.Stderr = %q", log.Stderr)
	}
}

func TestEngineScratchPersistsAcrossExecs(t *testing.T) {
	sawPrevious := false
	runner := &fakeRunner{run: func(_ context.Context, dir, _ string, args ...string) (commandResult, error) {
		outPath := filepath.Join(dir, "output.mp3")
		if _, err := os.Stat(outPath); err == nil {
			sawPrevious = true
		}
		if err := os.WriteFile(outPath, []byte("mp3"), 0o600); err != nil {
			return commandResult{ExitCode: -1}, err
		}
		return commandResult{}, nil
	}}
	engine := newTestEngine(t, runner)

	if _, err := engine.Exec(context.Background(), []string{"-y", "output.mp3"}); err != nil {
		t.Fatalf("first Exec() error = %v", err)
	}
	if _, err := engine.Exec(context.Background(), []string{"-y", "output.mp3"}); err != nil {
		t.Fatalf("second Exec() error = %v", err)
	}

	if !sawPrevious {
		t.Fatal("first run's output slot was cleared between executions")
	}
	data, err := engine.ReadOutput("output.mp3")
	if err != nil {
		t.Fatalf("ReadOutput() error = %v", err)
	}
	if string(data) != "mp3" {
		t.Fatalf("output slot = %q, want mp3", data)
	}
}

func TestEngineRejectsUseAfterClose(t *testing.T) {
	engine := newTestEngine(t, &fakeRunner{run: func(context.Context, string, string, ...string) (commandResult, error) {
		return commandResult{}, nil
	}})

	if err := engine.WriteInput("input.mp4", []byte("x")); err != nil {
		t.Fatalf("WriteInput() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := engine.WriteInput("input.mp4", []byte("x")); !errors.Is(err, ErrEngineClosed) {
		t.Fatalf("WriteInput() after close error = %v, want ErrEngineClosed", err)
	}
	if _, err := engine.Exec(context.Background(), []string{"-version"}); !errors.Is(err, ErrEngineClosed) {
		t.Fatalf("Exec() after close error = %v, want ErrEngineClosed", err)
	}
	if _, err := engine.ReadOutput("output.mp3"); !errors.Is(err, ErrEngineClosed) {
		t.Fatalf("ReadOutput() after close error = %v, want ErrEngineClosed", err)
	}
}

func TestEngineCloseDuringFirstUseIsSafe(t *testing.T) {
	engine := newTestEngine(t, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := engine.WriteInput("input.mp4", []byte("x")); err != nil && !errors.Is(err, ErrEngineClosed) {
			t.Errorf("WriteInput() error = %v", err)
		}
	}()

	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	wg.Wait()

	if err := engine.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestEngineCloseRemovesScratchDirectory(t *testing.T) {
	parent := t.TempDir()
	scratch := filepath.Join(parent, "engine")
	if err := os.Mkdir(scratch, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	engine := NewEngineForTests(
		"ffmpeg",
		nil,
		func(name string) (string, error) { return name, nil },
		func(string, string) (string, error) { return scratch, nil },
	)

	if err := engine.WriteInput("input.mp4", []byte("x")); err != nil {
		t.Fatalf("WriteInput() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Fatalf("scratch directory still present after Close, stat err = %v", err)
	}

	if err := engine.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
