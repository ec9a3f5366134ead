// Package log writes diagnostics to files. The terminal belongs to the
// dashboard, so nothing here ever prints to stdout: structured events go to
// diagnostics_log.txt and the human-readable trigger history to
// trigger_log.txt. All helpers are no-ops until Init succeeds.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	triggerFile *os.File
	logMu       sync.Mutex
	logReady    bool
	pid         int
	dir         string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: HORCH_LOG_PATH environment variable
	envPath := os.Getenv("HORCH_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	triggerPath := filepath.Join(dir, "trigger_log.txt")
	triggerFile, err = os.OpenFile(triggerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if triggerFile != nil {
		triggerFile.Close()
		triggerFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// KeywordTrigger records a confirmed fuzzy match, both as a structured
// event and as a line in the trigger history file.
func KeywordTrigger(keyword, token string, similarity float64) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("keyword", keyword).
		Str("token", token).
		Float64("similarity", similarity).
		Msg("keyword_trigger")

	logMu.Lock()
	defer logMu.Unlock()
	if triggerFile != nil {
		line := fmt.Sprintf("%s\t[%d]\t%s <- %s (%.2f)\n",
			time.Now().Format("2006-01-02 15:04:05"), pid, keyword, token, similarity)
		triggerFile.WriteString(line)
	}
}

// Execution records the outcome of one script run.
func Execution(keyword, status string, took time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("keyword", keyword).
		Str("status", status).
		Float64("took_ms", float64(took.Milliseconds())).
		Msg("script_execution")
}

// FrameDrops reports the cumulative dropped-frame count when it grows.
func FrameDrops(total uint64) {
	if !logReady {
		return
	}
	diagLog.Warn().
		Uint64("dropped_total", total).
		Msg("frame_queue_overflow")
}

func SessionStart(model string, keywords int, mode string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("model", model).
		Int("keywords", keywords).
		Str("mode", mode).
		Msg("session_start")
}

func SessionEnd(triggers uint64) {
	if !logReady {
		return
	}
	diagLog.Info().
		Uint64("triggers", triggers).
		Msg("session_end")
}
