package core_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/internal/telemetry"
	"github.com/spyro-labs/spyro-relayer/log"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, log.InitLoggerWithWriter("debug", "json", &buf, false))
	t.Cleanup(func() {
		_ = log.InitLoggerWithWriter("info", "text", os.Stderr, false)
	})
	return &buf
}

func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		records = append(records, rec)
	}
	return records
}

func TestMultiSinkReportsToEverySink(t *testing.T) {
	a, b := newRecordingSink(), newRecordingSink()
	res := core.RelayResult{MessageID: testMessage(3).ID(), Status: core.StatusDelivered}

	core.MultiSink{a, b}.Report(context.Background(), res)

	assert.Equal(t, []core.RelayResult{res}, a.Results())
	assert.Equal(t, []core.RelayResult{res}, b.Results())
}

func TestLogSink(t *testing.T) {
	buf := captureLogs(t)
	ctx := context.Background()
	id := testMessage(9).ID()

	core.LogSink{}.Report(ctx, core.RelayResult{MessageID: id, Status: core.StatusDelivered, TxHash: "0xabc", BlockNumber: 12, Attempts: 1})
	core.LogSink{}.Report(ctx, core.RelayResult{MessageID: id, Status: core.StatusFailedFatal, Reason: core.ReasonBindingMismatch, Error: "emitter mismatch", Attempts: 0})
	core.LogSink{}.Report(ctx, core.RelayResult{MessageID: id, Status: core.StatusFailedRetryable, Reason: core.ReasonFetchError, Error: "timeout"})

	records := logRecords(t, buf)
	require.Len(t, records, 3)

	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "message delivered", records[0]["msg"])
	assert.Equal(t, "0xabc", records[0]["tx_hash"])
	assert.Equal(t, float64(9), records[0]["sequence"])

	assert.Equal(t, "ERROR", records[1]["level"])
	assert.Equal(t, true, records[1]["security"])
	assert.Equal(t, "binding-mismatch", records[1]["reason"])

	assert.Equal(t, "WARN", records[2]["level"])
	assert.Equal(t, "fetch-error", records[2]["reason"])
	assert.NotContains(t, records[2], "security")
}

func TestMetricsSinkTracksHighestDeliveredSequence(t *testing.T) {
	require.NoError(t, telemetry.InitializeMetrics())
	ctx := context.Background()
	attrs := core.EmitterAttributes(testBinding().EmitterChain, testBinding().EmitterAddress)

	core.MetricsSink{}.Report(ctx, core.RelayResult{MessageID: testMessage(5).ID(), Status: core.StatusDelivered})
	core.MetricsSink{}.Report(ctx, core.RelayResult{MessageID: testMessage(3).ID(), Status: core.StatusDelivered})
	core.MetricsSink{}.Report(ctx, core.RelayResult{MessageID: testMessage(8).ID(), Status: core.StatusFailedFatal, Reason: core.ReasonReverted})

	v, ok := telemetry.LastDeliveredSequenceGauge.Value(attrs...)
	require.True(t, ok)
	assert.Equal(t, int64(5), v)
}
