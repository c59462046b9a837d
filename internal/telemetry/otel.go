package telemetry

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	name = "github.com/spyro-labs/spyro-relayer"

	serviceName                  = "srly"
	serviceNameKey attribute.Key = "service.name"

	// Some of the environment variables that the Go SDK doesn't support
	propagatorsKey     = "OTEL_PROPAGATORS"
	defaultPropagators = "tracecontext,baggage"

	// Environment variables for exporter selection
	// cf. https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/#exporter-selection
	tracesExporterKey      = "OTEL_TRACES_EXPORTER"
	metricsExporterKey     = "OTEL_METRICS_EXPORTER"
	logsExporterKey        = "OTEL_LOGS_EXPORTER"
	defaultTracesExporter  = "none"
	defaultMetricsExporter = "none"
	defaultLogsExporter    = "none"

	// Environment variables for the Prometheus exporter
	// cf. https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/#prometheus-exporter
	prometheusHostKey     = "OTEL_EXPORTER_PROMETHEUS_HOST"
	prometheusPortKey     = "OTEL_EXPORTER_PROMETHEUS_PORT"
	defaultPrometheusHost = "localhost"
	defaultPrometheusPort = 9464

	// Custom environment variables similar to the OTLP exporter (https://opentelemetry.io/docs/specs/otel/protocol/exporter/)
	consoleTracesWriterKey      = "OTEL_EXPORTER_CONSOLE_TRACES_WRITER"
	consoleLogsWriterKey        = "OTEL_EXPORTER_CONSOLE_LOGS_WRITER"
	consoleMetricsWriterKey     = "OTEL_EXPORTER_CONSOLE_METRICS_WRITER"
	defaultConsoleTracesWriter  = "stdout"
	defaultConsoleLogsWriter    = "stdout"
	defaultConsoleMetricsWriter = "stdout"
)

// Config describes the relayer instance the telemetry is attributed to.
type Config struct {
	// Resource attributes are attached to every span, metric point and log record.
	// OTEL_SERVICE_NAME and OTEL_RESOURCE_ATTRIBUTES take precedence over them.
	Resource []attribute.KeyValue
}

// SDK holds the providers installed by SetupOTelSDK.
type SDK struct {
	shutdownFuncs  []func(context.Context) error
	metricsHandler http.Handler
}

// Shutdown flushes and stops every provider. It is safe to call more than once.
func (sdk *SDK) Shutdown(ctx context.Context) error {
	var err error
	for _, fn := range sdk.shutdownFuncs {
		err = errors.Join(err, fn(ctx))
	}
	sdk.shutdownFuncs = nil
	return err
}

// MetricsHandler serves the Prometheus exposition of the relayer's metrics. It is nil
// unless the prometheus metrics exporter is selected.
func (sdk *SDK) MetricsHandler() http.Handler {
	return sdk.metricsHandler
}

// PrometheusAddr is where the Prometheus exposition is served when no API server runs.
func PrometheusAddr() string {
	return net.JoinHostPort(getEnv(prometheusHostKey, defaultPrometheusHost), getEnv(prometheusPortKey, fmt.Sprint(defaultPrometheusPort)))
}

// SetupOTelSDK bootstraps the OpenTelemetry pipeline using the environment variables
// described on https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/.
// If it does not return an error, make sure to call Shutdown for proper cleanup.
//
// An unknown exporter or propagator name is an error rather than a warning.
func SetupOTelSDK(ctx context.Context, cfg Config) (*SDK, error) {
	sdk := &SDK{}
	fail := func(err error) (*SDK, error) {
		return nil, errors.Join(err, sdk.Shutdown(ctx))
	}

	prop, err := newPropagator()
	if err != nil {
		return fail(err)
	}
	otel.SetTextMapPropagator(prop)

	res, err := newResource(ctx, cfg.Resource)
	if err != nil {
		return fail(err)
	}

	tracerProvider, err := newTracerProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	sdk.shutdownFuncs = append(sdk.shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	meterProvider, metricsHandler, err := newMeterProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	sdk.shutdownFuncs = append(sdk.shutdownFuncs, meterProvider.Shutdown)
	sdk.metricsHandler = metricsHandler
	otel.SetMeterProvider(meterProvider)

	loggerProvider, err := newLoggerProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	sdk.shutdownFuncs = append(sdk.shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	return sdk, nil
}

func newResource(ctx context.Context, attrs []attribute.KeyValue) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(append([]attribute.KeyValue{serviceNameKey.String(serviceName)}, attrs...)...),
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build the telemetry resource")
	}
	return res, nil
}

func getEnv(envName, defaultValue string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return defaultValue
}

func getWriter(envName, defaultValue string) (io.Writer, error) {
	v := getEnv(envName, defaultValue)
	switch v {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("unknown writer: %q from %s=%q", v, envName, os.Getenv(envName))
	}
}

func newPropagator() (propagation.TextMapPropagator, error) {
	var propagators []propagation.TextMapPropagator
	for _, propagator := range strings.Split(getEnv(propagatorsKey, defaultPropagators), ",") {
		switch propagator {
		case "tracecontext":
			propagators = append(propagators, propagation.TraceContext{})
		case "baggage":
			propagators = append(propagators, propagation.Baggage{})
		default:
			return nil, fmt.Errorf("unsupported propagator: %q from %s=%q", propagator, propagatorsKey, os.Getenv(propagatorsKey))
		}
	}

	return propagation.NewCompositeTextMapPropagator(propagators...), nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, exporter := range strings.Split(getEnv(tracesExporterKey, defaultTracesExporter), ",") {
		switch exporter {
		case "otlp":
			exp, err := otlptracegrpc.New(ctx)
			if err != nil {
				return nil, err
			}
			opts = append(opts, sdktrace.WithBatcher(exp))
		case "console":
			writer, err := getWriter(consoleTracesWriterKey, defaultConsoleTracesWriter)
			if err != nil {
				return nil, err
			}
			exp, err := stdouttrace.New(stdouttrace.WithWriter(writer))
			if err != nil {
				return nil, err
			}
			opts = append(opts, sdktrace.WithBatcher(exp))
		case "none":
		default:
			return nil, fmt.Errorf("unsupported exporter: %q from %s=%q", exporter, tracesExporterKey, os.Getenv(tracesExporterKey))
		}
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

// newMeterProvider also returns the handler of the Prometheus registry when the
// prometheus exporter is selected. The caller decides where it is served.
func newMeterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, http.Handler, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	var metricsHandler http.Handler
	for _, exporter := range strings.Split(getEnv(metricsExporterKey, defaultMetricsExporter), ",") {
		switch exporter {
		case "otlp":
			exp, err := otlpmetricgrpc.New(ctx)
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
		case "console":
			writer, err := getWriter(consoleMetricsWriterKey, defaultConsoleMetricsWriter)
			if err != nil {
				return nil, nil, err
			}
			exp, err := stdoutmetric.New(stdoutmetric.WithWriter(writer))
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
		case "prometheus":
			registry := promclient.NewRegistry()
			exp, err := otelprom.New(otelprom.WithRegisterer(registry))
			if err != nil {
				return nil, nil, errors.Wrap(err, "failed to create the Prometheus exporter")
			}
			opts = append(opts, sdkmetric.WithReader(exp))
			metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		case "none":
		default:
			return nil, nil, fmt.Errorf("unsupported exporter: %q from %s=%q", exporter, metricsExporterKey, os.Getenv(metricsExporterKey))
		}
	}

	return sdkmetric.NewMeterProvider(opts...), metricsHandler, nil
}

func newLoggerProvider(ctx context.Context, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	for _, exporter := range strings.Split(getEnv(logsExporterKey, defaultLogsExporter), ",") {
		switch exporter {
		case "otlp":
			exp, err := otlploggrpc.New(ctx)
			if err != nil {
				return nil, err
			}
			opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)))
		case "console":
			writer, err := getWriter(consoleLogsWriterKey, defaultConsoleLogsWriter)
			if err != nil {
				return nil, err
			}
			exp, err := stdoutlog.New(stdoutlog.WithWriter(writer))
			if err != nil {
				return nil, err
			}
			opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)))
		case "none":
		default:
			return nil, fmt.Errorf("unsupported exporter: %q from %s=%q", exporter, logsExporterKey, os.Getenv(logsExporterKey))
		}
	}

	return sdklog.NewLoggerProvider(opts...), nil
}
