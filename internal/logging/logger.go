// Package logging provides structured, leveled logging for kartoffels,
// wrapping zerolog behind a small fixed surface so the rest of the
// module never imports zerolog directly.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel represents the available log levels.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Config holds logging configuration.
type Config struct {
	Level  LogLevel
	Format string // "text" (console-writer) or "json"
	Output io.Writer
	// Sync drops the timestamp field and, for text output, the color
	// codes, so tests can match what was written byte for byte.
	Sync    bool
	NoColor bool
}

// DefaultConfig returns a sensible default configuration: text output to
// stderr at info level.
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// Logger wraps a zerolog.Logger with a fixed Debug/Info/Warn/Error
// surface plus With* helpers for attaching world/bot context.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a new logger from config, falling back to
// DefaultConfig for a nil config and to stderr for a nil Output. Other
// fields are taken as given: a zero Level is LevelDebug, and any Format
// other than "json" gives text output.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	var w io.Writer = output
	if config.Format != "json" {
		w = zerolog.ConsoleWriter{Out: output, NoColor: config.NoColor || config.Sync}
	}

	zl := zerolog.New(w).Level(config.Level.zerolog())
	if !config.Sync {
		zl = zl.With().Timestamp().Logger()
	}
	return &Logger{zl: zl}
}

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

// Default returns the default logger, creating it if necessary.
func Default() *Logger {
	mu.RLock()
	if defaultLogger != nil {
		defer mu.RUnlock()
		return defaultLogger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// WithBot returns a child logger that tags every event with the bot id.
func (l *Logger) WithBot(id uint64) *Logger {
	return &Logger{zl: l.zl.With().Uint64("bot_id", id).Logger()}
}

// WithTick returns a child logger that tags every event with the tick
// number it was logged during.
func (l *Logger) WithTick(tick uint64) *Logger {
	return &Logger{zl: l.zl.With().Uint64("tick", tick).Logger()}
}

// WithOp returns a child logger that tags every event with an operation
// name, matching the op field on a structured Error.
func (l *Logger) WithOp(op string) *Logger {
	return &Logger{zl: l.zl.With().Str("op", op).Logger()}
}

// WithError returns a child logger with err attached, and logs at error
// level below mirror this by embedding err in the event.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

func kv(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}

func (l *Logger) Debug(msg string, args ...any) { kv(l.zl.Debug(), args).Msg(msg) }
func (l *Logger) Info(msg string, args ...any)  { kv(l.zl.Info(), args).Msg(msg) }
func (l *Logger) Warn(msg string, args ...any)  { kv(l.zl.Warn(), args).Msg(msg) }
func (l *Logger) Error(msg string, args ...any) { kv(l.zl.Error(), args).Msg(msg) }

// Debugf/Infof/Warnf/Errorf give printf-style access, satisfying
// interfaces.Logger for internal packages that don't want key-value pairs.
func (l *Logger) Debugf(format string, args ...any) { l.zl.Debug().Msgf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.zl.Info().Msgf(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.zl.Warn().Msgf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.zl.Error().Msgf(format, args...) }

// Global convenience functions operate on the default logger.
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
