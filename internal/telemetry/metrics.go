package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel"
	api "go.opentelemetry.io/otel/metric"
)

const (
	namespaceRoot = "relayer"
)

var (
	MessagesObservedCounter    api.Int64Counter
	RelayResultsCounter        api.Int64Counter
	SubmissionAttemptsCounter  api.Int64Counter
	InflightPipelinesCounter   api.Int64UpDownCounter
	LastDeliveredSequenceGauge *Int64SyncGauge

	meter = otel.Meter(name)
)

func InitializeMetrics() error {
	var err error

	// create the instrument "relayer.messages_observed"
	name := fmt.Sprintf("%s.messages_observed", namespaceRoot)
	if MessagesObservedCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of LogMessagePublished events accepted by the emitter filter"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.relay_results"
	name = fmt.Sprintf("%s.relay_results", namespaceRoot)
	if RelayResultsCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of terminal relay results by status and reason"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.submission_attempts"
	name = fmt.Sprintf("%s.submission_attempts", namespaceRoot)
	if SubmissionAttemptsCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of target-chain submission attempts including retries"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.inflight_pipelines"
	name = fmt.Sprintf("%s.inflight_pipelines", namespaceRoot)
	if InflightPipelinesCounter, err = meter.Int64UpDownCounter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of messages currently between observation and a terminal result"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.last_delivered_sequence"
	name = fmt.Sprintf("%s.last_delivered_sequence", namespaceRoot)
	if LastDeliveredSequenceGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("highest sequence delivered to the target chain per emitter"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	return nil
}
