package core

import (
	"context"
	"fmt"

	"github.com/spyro-labs/spyro-relayer/log"
)

// ResultSink receives every terminal RelayResult exactly once.
// Implementations must be safe for concurrent use.
type ResultSink interface {
	Report(ctx context.Context, result RelayResult)
}

// MultiSink fans a result out to several sinks in order.
type MultiSink []ResultSink

var _ ResultSink = MultiSink(nil)

func (ms MultiSink) Report(ctx context.Context, result RelayResult) {
	for _, s := range ms {
		s.Report(ctx, result)
	}
}

// LogSink writes one structured record per result.
type LogSink struct{}

var _ ResultSink = LogSink{}

func (LogSink) Report(ctx context.Context, r RelayResult) {
	logger := GetMessageLogger(r.MessageID, "core.report")
	args := []any{
		"status", r.Status,
		"reason", r.Reason,
		"attempts", r.Attempts,
	}
	switch r.Status {
	case StatusDelivered:
		logger.InfoContext(ctx, "message delivered",
			append(args, "tx_hash", r.TxHash, "block_number", r.BlockNumber)...)
	case StatusFailedFatal:
		if r.Reason == ReasonBindingMismatch {
			args = append(args, "security", true)
		}
		logger.Error("message relay failed", fmt.Errorf("%s", r.Error), args...)
	default:
		logger.WarnContext(ctx, "message not delivered", append(args, "error", r.Error)...)
	}
}

func GetMessageLogger(id MessageID, module string) *log.RelayLogger {
	return log.GetLogger().
		WithMessage(
			fmt.Sprint(uint16(id.EmitterChain)), id.EmitterAddress.String(), id.Sequence,
		).
		WithModule(module)
}

func GetEmitterLogger(b Binding, module string) *log.RelayLogger {
	return log.GetLogger().
		WithEmitter(
			fmt.Sprint(uint16(b.EmitterChain)), b.EmitterAddress.String(),
		).
		WithModule(module)
}
