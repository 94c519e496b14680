// Package logger configures log/slog for the application and hands out
// loggers decorated with values carried on the context.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/giraplus/giraplus-go/envutil"
)

// Default subsystem name, set by ConfigureLogging.
var subsystem atomic.Value //nolint:gochecknoglobals

// configMutex serializes ConfigureLoggingWithOptions, which swaps global state.
var configMutex sync.Mutex //nolint:gochecknoglobals

type contextKey string

const (
	keyMuted     contextKey = "mute"
	keySubsystem contextKey = "subsystem"
	keyRequestID contextKey = "request_id"
	keyDeviceID  contextKey = "device_id"
	keyValues    contextKey = "loggerValues"
	keyLogger    contextKey = "logger"
)

// Options is used to configure logging.
type Options struct {
	Subsystem   string
	JSON        bool
	MinLevel    slog.Level
	LegacyLevel slog.Level
	Output      io.Writer
}

// ConfigureLoggingWithOptions configures logging for the application and
// returns the new default logger.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.MinLevel}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Route the legacy log package through the same handler.
	def := log.Default()
	*def = *slog.NewLogLogger(handler, opts.LegacyLevel)

	subsystem.Store(opts.Subsystem)

	return logger
}

// Option is a functional option for ConfigureLogging.
type Option func(*Options)

// WithOutput forces the log destination, ignoring LOG_OUTPUT.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// ErrInvalidLogOutput is returned when LOG_OUTPUT names an unknown destination.
var ErrInvalidLogOutput = errors.New("invalid log output")

// ConfigureLogging configures logging from the environment:
//
//   - LOG_JSON: emit JSON instead of text (default false)
//   - LOG_LEVEL: minimum level (default info)
//   - LEGACY_LOG_LEVEL: level used for the log package (default info)
//   - LOG_OUTPUT: stdout or stderr (default stderr, stdout is reserved for command output)
func ConfigureLogging(ctx context.Context, app string, opts ...Option) *slog.Logger {
	logJSON := envutil.Bool(ctx, "LOG_JSON", envutil.Default(false)).ValueOrFatal()
	minLevel := envutil.SlogLevel(ctx, "LOG_LEVEL", envutil.Default(slog.LevelInfo)).ValueOrFatal()
	legacyLevel := envutil.SlogLevel(ctx, "LEGACY_LOG_LEVEL", envutil.Default(slog.LevelInfo)).ValueOrFatal()

	output := envutil.Map(envutil.String(ctx, "LOG_OUTPUT"), func(outName string) (io.Writer, error) {
		switch outName {
		case "stdout":
			return os.Stdout, nil
		case "stderr":
			return os.Stderr, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogOutput, outName)
		}
	}).WithDefault(os.Stderr).ValueOrFatal()

	options := Options{
		Subsystem:   app,
		JSON:        logJSON,
		MinLevel:    minLevel,
		LegacyLevel: legacyLevel,
		Output:      output,
	}

	for _, o := range opts {
		o(&options)
	}

	return ConfigureLoggingWithOptions(options)
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}

	return ctx
}

func value[T any](ctx context.Context, key contextKey) (T, bool) {
	var zero T

	if ctx == nil {
		return zero, false
	}

	val, ok := ctx.Value(key).(T)
	if !ok {
		return zero, false
	}

	return val, true
}

// WithMuted marks the context so that loggers obtained from it discard
// everything. Useful for chatty paths such as background statistics.
func WithMuted(ctx context.Context, muted bool) context.Context {
	return context.WithValue(orBackground(ctx), keyMuted, muted)
}

func isMuted(ctx context.Context) bool {
	muted, _ := value[bool](ctx, keyMuted)

	return muted
}

// WithLogger overrides the base logger for this context. Tests use it to
// send output to t.Log.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(orBackground(ctx), keyLogger, l)
}

// WithSubsystem overrides the default subsystem for this context.
func WithSubsystem(ctx context.Context, name string) context.Context {
	return context.WithValue(orBackground(ctx), keySubsystem, name)
}

// GetSubsystem returns the subsystem from the context, or the default one
// set by ConfigureLogging.
func GetSubsystem(ctx context.Context) string {
	if sub, ok := value[string](ctx, keySubsystem); ok {
		return sub
	}

	if def, ok := subsystem.Load().(string); ok {
		return def
	}

	return ""
}

// WithRequestId adds a request ID to the context.
func WithRequestId(ctx context.Context, requestId string) context.Context { //nolint:revive
	return context.WithValue(orBackground(ctx), keyRequestID, requestId)
}

// GetRequestId returns the request ID from the context.
func GetRequestId(ctx context.Context) (string, bool) { //nolint:revive
	return value[string](ctx, keyRequestID)
}

// WithDeviceId adds the reporting device's ID to the context.
func WithDeviceId(ctx context.Context, deviceId string) context.Context { //nolint:revive
	return context.WithValue(orBackground(ctx), keyDeviceID, deviceId)
}

// GetDeviceId returns the device ID from the context.
func GetDeviceId(ctx context.Context) (string, bool) { //nolint:revive
	return value[string](ctx, keyDeviceID)
}

var hostname = sync.OnceValue(func() string { //nolint:gochecknoglobals
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return h
})

// nullHandler discards all output; it backs muted loggers.
type nullHandler struct{}

func (n *nullHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (n *nullHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (n *nullHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return n }
func (n *nullHandler) WithGroup(_ string) slog.Handler               { return n }

var nullLogger = slog.New(&nullHandler{}) //nolint:gochecknoglobals

// Get returns a logger for the first non-nil context given (or the
// background context). The logger carries the subsystem, host, and any
// request ID, device ID and values stored on the context.
//
//nolint:contextcheck
func Get(ctx ...context.Context) *slog.Logger {
	var realCtx context.Context

	for _, c := range ctx {
		if c != nil {
			realCtx = c //nolint:fatcontext

			break
		}
	}

	realCtx = orBackground(realCtx)

	if isMuted(realCtx) {
		return nullLogger
	}

	logger, ok := value[*slog.Logger](realCtx, keyLogger)
	if !ok || logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(
		"subsystem", GetSubsystem(realCtx),
		"host", hostname())

	if requestId, found := GetRequestId(realCtx); found {
		logger = logger.With("request-id", requestId)
	}

	if deviceId, found := GetDeviceId(realCtx); found {
		logger = logger.With("device_id", deviceId)
	}

	if vals := getValues(realCtx); vals != nil {
		logger = logger.With(vals...)
	}

	return logger
}

// With returns a new context with the given key-value pairs attached.
// They show up on every logger obtained from it.
func With(ctx context.Context, values ...any) context.Context {
	if len(values) == 0 && ctx != nil {
		return ctx
	}

	vals := slices.Concat(getValues(ctx), values)

	return context.WithValue(orBackground(ctx), keyValues, vals)
}

func getValues(ctx context.Context) []any {
	vals, _ := value[[]any](ctx, keyValues)

	return vals
}
