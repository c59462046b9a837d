package core

import (
	"context"

	"github.com/spyro-labs/spyro-relayer/internal/telemetry"
	api "go.opentelemetry.io/otel/metric"
)

// MetricsSink records results on the OpenTelemetry instruments created by
// telemetry.InitializeMetrics. It is a no-op until those exist.
type MetricsSink struct{}

var _ ResultSink = MetricsSink{}

func (MetricsSink) Report(ctx context.Context, r RelayResult) {
	if telemetry.RelayResultsCounter != nil {
		attrs := append(
			EmitterAttributes(r.MessageID.EmitterChain, r.MessageID.EmitterAddress),
			AttributeKeyStatus.String(string(r.Status)),
			AttributeKeyReason.String(string(r.Reason)),
		)
		telemetry.RelayResultsCounter.Add(ctx, 1, api.WithAttributes(attrs...))
	}
	if r.Delivered() && telemetry.LastDeliveredSequenceGauge != nil {
		telemetry.LastDeliveredSequenceGauge.SetMax(
			int64(r.MessageID.Sequence),
			EmitterAttributes(r.MessageID.EmitterChain, r.MessageID.EmitterAddress)...,
		)
	}
}

func recordObserved(ctx context.Context, b Binding) {
	if telemetry.MessagesObservedCounter != nil {
		telemetry.MessagesObservedCounter.Add(ctx, 1,
			api.WithAttributes(EmitterAttributes(b.EmitterChain, b.EmitterAddress)...))
	}
}

func recordSubmissionAttempt(ctx context.Context, id MessageID) {
	if telemetry.SubmissionAttemptsCounter != nil {
		telemetry.SubmissionAttemptsCounter.Add(ctx, 1,
			api.WithAttributes(EmitterAttributes(id.EmitterChain, id.EmitterAddress)...))
	}
}

func recordInflight(ctx context.Context, delta int64) {
	if telemetry.InflightPipelinesCounter != nil {
		telemetry.InflightPipelinesCounter.Add(ctx, delta)
	}
}
