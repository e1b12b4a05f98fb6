// Package logging provides structured logging for the planner.
package logging

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// LogLevel represents a log level.
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// ParseLevel maps a config string ("debug", "INFO", ...) to a LogLevel.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch LogLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) hclog() hclog.Level {
	switch l {
	case LevelDebug:
		return hclog.Debug
	case LevelWarn:
		return hclog.Warn
	case LevelError:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// Options configures a Logger.
type Options struct {
	Name  string
	Out   io.Writer
	Level LogLevel
	JSON  bool
}

// Logger provides structured logging on top of hclog.
type Logger struct {
	hc       hclog.Logger
	minLevel LogLevel
}

var (
	// global logger instance
	global *Logger
	once   sync.Once
)

// New builds a standalone Logger.
func New(opts Options) *Logger {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Level == "" {
		opts.Level = LevelInfo
	}
	if opts.Name == "" {
		opts.Name = "planner"
	}
	return &Logger{
		hc: hclog.New(&hclog.LoggerOptions{
			Name:       opts.Name,
			Output:     opts.Out,
			Level:      opts.Level.hclog(),
			JSONFormat: opts.JSON,
		}),
		minLevel: opts.Level,
	}
}

// NewNull returns a Logger that discards everything.
func NewNull() *Logger {
	return &Logger{hc: hclog.NewNullLogger(), minLevel: LevelError}
}

// Init initializes the global logger. Only the first call has an effect.
func Init(opts Options) {
	once.Do(func() {
		global = New(opts)
	})
}

// Get returns the global logger instance.
func Get() *Logger {
	if global == nil {
		Init(Options{Out: os.Stdout, Level: LevelInfo})
	}
	return global
}

// Named returns a sub-logger whose entries carry the given module name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{hc: l.hc.Named(name), minLevel: l.minLevel}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, context ...map[string]interface{}) {
	l.hc.Debug(message, pairs(nil, context...)...)
}

// Info logs an info message.
func (l *Logger) Info(message string, context ...map[string]interface{}) {
	l.hc.Info(message, pairs(nil, context...)...)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, context ...map[string]interface{}) {
	l.hc.Warn(message, pairs(nil, context...)...)
}

// Error logs an error message.
func (l *Logger) Error(message string, err error, context ...map[string]interface{}) {
	l.hc.Error(message, pairs(err, context...)...)
}

// pairs flattens the context maps into hclog key/value arguments. Keys are
// sorted so output is stable; later maps override earlier ones.
func pairs(err error, context ...map[string]interface{}) []interface{} {
	merged := make(map[string]interface{})
	for _, c := range context {
		for k, v := range c {
			merged[k] = v
		}
	}
	if err != nil {
		merged["error"] = err.Error()
	}
	if len(merged) == 0 {
		return nil
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, merged[k])
	}
	return args
}

// Convenience functions using global logger

func Debug(message string, context ...map[string]interface{}) {
	Get().Debug(message, context...)
}

func Info(message string, context ...map[string]interface{}) {
	Get().Info(message, context...)
}

func Warn(message string, context ...map[string]interface{}) {
	Get().Warn(message, context...)
}

func Error(message string, err error, context ...map[string]interface{}) {
	Get().Error(message, err, context...)
}
