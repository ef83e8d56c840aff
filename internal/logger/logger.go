package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	log = build(os.Stdout, "development", "")
}

// Init configures the global logger.
// env "development" writes colored console output at debug level, anything
// else writes JSON at the given level (info when empty).
func Init(env, level string) {
	mu.Lock()
	defer mu.Unlock()
	log = build(os.Stdout, env, level)
	zlog.Logger = log
}

// SetOutput redirects the global logger, mostly for tests.
func SetOutput(w io.Writer, env, level string) {
	mu.Lock()
	defer mu.Unlock()
	log = build(w, env, level)
	zlog.Logger = log
}

func build(w io.Writer, env, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.MessageFieldName = "message"

	lvl := parseLevel(level)
	out := w
	if env == "development" {
		if level == "" {
			lvl = zerolog.DebugLevel
		}
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// GetLogger returns the global logger.
func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// ============================================
// Key/value helpers
// ============================================

// emit writes msg with alternating key/value args. A trailing key without a
// value is logged under "!BADKEY".
func emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			ev = ev.Interface("!BADKEY", key)
			break
		}
		switch v := args[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

func Debug(msg string, args ...any) {
	l := GetLogger()
	emit(l.Debug(), msg, args)
}

func Info(msg string, args ...any) {
	l := GetLogger()
	emit(l.Info(), msg, args)
}

func Warn(msg string, args ...any) {
	l := GetLogger()
	emit(l.Warn(), msg, args)
}

func Error(msg string, args ...any) {
	l := GetLogger()
	emit(l.Error(), msg, args)
}

// Fatal logs and exits with status 1.
func Fatal(msg string, args ...any) {
	l := GetLogger()
	emit(l.Error(), msg, args)
	os.Exit(1)
}

// With returns a child logger carrying the given fields.
// Example: logger.With("user_id", 12).Info().Msg("user logged in")
func With(args ...any) zerolog.Logger {
	l := GetLogger()
	return l.With().Fields(args).Logger()
}

// HTTPLog writes a single access log line.
func HTTPLog(method, path string, status int, duration time.Duration, size int) {
	Info("http request",
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"size_bytes", size,
	)
}
