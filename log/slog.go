package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const otelLoggerName = "github.com/spyro-labs/spyro-relayer"

type RelayLogger struct {
	*slog.Logger
}

var relayLogger *RelayLogger

func InitLogger(logLevel, format, output string, enableTelemetry bool) error {
	// output
	var writer io.Writer
	switch output {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		return errors.New("invalid log output")
	}

	return InitLoggerWithWriter(logLevel, format, writer, enableTelemetry)
}

func InitLoggerWithWriter(logLevel, format string, writer io.Writer, enableTelemetry bool) error {
	// level
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: true,
	}

	var handler slog.Handler
	// format
	switch format {
	case "text":
		handler = slog.NewTextHandler(writer, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		return errors.New("invalid log format")
	}

	if enableTelemetry {
		handler = slogmulti.Fanout(
			handler,
			otelslog.NewHandler(otelLoggerName, otelslog.WithSource(true)),
		)
	}

	// set global logger
	relayLogger = &RelayLogger{
		slog.New(handler),
	}
	return nil
}

// GetLogger returns the global logger, falling back to a text logger on stderr
// for callers (mostly tests) that never initialized one.
func GetLogger() *RelayLogger {
	if relayLogger == nil {
		return &RelayLogger{slog.New(slog.NewTextHandler(os.Stderr, nil))}
	}
	return relayLogger
}

// log records a message whose source is the caller of log, or `skip` frames above it.
func (rl *RelayLogger) log(level slog.Level, skip int, msg string, args ...any) {
	ctx := context.Background()
	if !rl.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(skip+2, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = rl.Handler().Handle(ctx, r)
}

func (rl *RelayLogger) Error(msg string, err error, otherArgs ...any) {
	args := []any{"error", err, "stack", fmt.Sprintf("%+v", errors.WithStackDepth(err, 1))}
	args = append(args, otherArgs...)
	rl.log(slog.LevelError, 1, msg, args...)
}

func (rl *RelayLogger) ErrorWithStack(msg string, err error, otherArgs ...any) {
	cError := errors.NewWithDepth(1, err.Error())
	args := []any{"error", cError, "stack", fmt.Sprintf("%+v", cError)}
	args = append(args, otherArgs...)
	rl.log(slog.LevelError, 1, msg, args...)
}

func (rl *RelayLogger) Fatal(msg string, err error, otherArgs ...any) {
	rl.Error(msg, err, otherArgs...)
	os.Exit(1)
}

func (rl *RelayLogger) WithChainID(chainID string) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"chain id", chainID,
		),
	}
}

func (rl *RelayLogger) WithEmitter(
	chainID string,
	emitter string,
) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"emitter chain id", chainID,
			"emitter address", emitter,
		),
	}
}

// WithMessage annotates every record with the identity of a cross-chain message.
func (rl *RelayLogger) WithMessage(
	chainID string,
	emitter string,
	sequence uint64,
) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"emitter chain id", chainID,
			"emitter address", emitter,
			"sequence", sequence,
		),
	}
}

func (rl *RelayLogger) WithModule(
	moduleName string,
) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"module", moduleName,
		),
	}
}
