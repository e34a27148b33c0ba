package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"soartask/pkg/config"
	"soartask/pkg/model"
)

// eventLogPath is the path to the event log file.
var eventLogPath string

// eventLogMu protects concurrent writes to the event log.
var eventLogMu sync.Mutex

// Init initializes the logging system based on configuration.
// It returns a cleanup function to close log files.
func Init(cfg *config.LogConfig) (func(), error) {
	rotatePaths(cfg.Server.Path, cfg.Events.Path)
	SetEventLogPath(cfg.Events.Path)

	var closers []io.Closer

	// Server logger goes to stdout and file.
	serverHandler, file, err := setupHandler(cfg.Server.Path, cfg.Server.Level, true)
	if err != nil {
		return nil, fmt.Errorf("failed to setup server logger: %w", err)
	}
	if file != nil {
		closers = append(closers, file)
	}
	slog.SetDefault(slog.New(serverHandler))

	return func() {
		for _, c := range closers {
			c.Close()
		}
	}, nil
}

// ParseLevel maps a level name to a slog level, defaulting to INFO.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupHandler(path, levelStr string, stdout bool) (handler slog.Handler, file *os.File, err error) {
	level := ParseLevel(levelStr)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}

	// Append mode, truncation handled in Init
	file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	fileHandler := slog.NewTextHandler(file, opts)

	if !stdout {
		return fileHandler, file, nil
	}

	// Console stays at INFO and up unless the file is even higher.
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: maxLevel(level, slog.LevelInfo),
	})

	// Last line kept for the run summary.
	captureHandler := slog.NewTextHandler(GlobalLogCapture, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	handlers := []slog.Handler{fileHandler, consoleHandler, captureHandler}
	return &multiHandler{handlers: handlers}, file, nil
}

func maxLevel(a, b slog.Level) slog.Level {
	if a > b {
		return a
	}
	return b
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler
// nolint:gocritic // r must be passed by value to implement slog.Handler
func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// rotatePaths renames existing log files to .old so every run starts fresh
// and the previous run is kept.
func rotatePaths(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		dir := filepath.Dir(p)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}

		if _, err := os.Stat(p); err == nil {
			oldPath := p + ".old"
			_ = os.Remove(oldPath)
			_ = os.Rename(p, oldPath)
		}
	}
}

// SetEventLogPath configures the path for the event log file.
// An empty path disables the event log.
func SetEventLogPath(path string) {
	eventLogMu.Lock()
	defer eventLogMu.Unlock()
	eventLogPath = path
}

// LogEvent writes a task event to the event log file.
func LogEvent(event *model.TaskEvent) {
	eventLogMu.Lock()
	defer eventLogMu.Unlock()

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	// Format: [2006-01-02 15:04:05] [type] Title - Summary
	line := fmt.Sprintf("[%s] [%s] %s", ts.Format("2006-01-02 15:04:05"), event.Type, event.Title)
	if event.Summary != "" {
		line += " - " + event.Summary
	}

	_, _ = GlobalEventCapture.Write([]byte(line))

	if eventLogPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(eventLogPath), 0o755); err != nil {
		slog.Error("failed to create event log directory", "error", err)
		return
	}

	f, err := os.OpenFile(eventLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("failed to open event log", "error", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		slog.Error("failed to write event log", "error", err)
	}
}
