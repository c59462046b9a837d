package core

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const defaultLogBuffer = 128

// MessageHandler consumes the output of the watcher's per-message tasks.
type MessageHandler interface {
	// HandleAttestation is called with the signed VAA of an accepted message
	HandleAttestation(ctx context.Context, msg *ChainMessage, raw []byte)

	// HandleFetchError is called when the signed VAA could not be retrieved
	HandleFetchError(ctx context.Context, msg *ChainMessage, err error)
}

// Watcher observes LogMessagePublished events of one emitter and fetches
// the signed VAA of each.
type Watcher struct {
	source  SourceChain
	emitter common.Address
	binding Binding
	fetcher AttestationFetcher

	logBuffer int
}

func NewWatcher(source SourceChain, emitter common.Address, fetcher AttestationFetcher) *Watcher {
	return &Watcher{
		source:    source,
		emitter:   emitter,
		binding:   NewBinding(source.ChainID(), emitter),
		fetcher:   fetcher,
		logBuffer: defaultLogBuffer,
	}
}

func (w *Watcher) Binding() Binding {
	return w.binding
}

// Run subscribes to the source chain and hands every accepted message to a new
// task in `tasks`. It returns nil when ctx is done and a subscription error when
// the stream breaks. Per-message failures never end Run.
func (w *Watcher) Run(ctx context.Context, tasks *TaskGroup, h MessageHandler) error {
	_, err := w.watch(ctx, tasks, h)
	return err
}

// watchRun describes one subscription lifetime.
type watchRun struct {
	// subscribed is zero when the subscription was never established
	subscribed time.Time
	received   int
}

// healthy reports whether the run made progress: it subscribed and either
// received logs or stayed up for minUptime.
func (r watchRun) healthy(minUptime time.Duration) bool {
	if r.subscribed.IsZero() {
		return false
	}
	return r.received > 0 || time.Since(r.subscribed) >= minUptime
}

func (w *Watcher) watch(ctx context.Context, tasks *TaskGroup, h MessageHandler) (watchRun, error) {
	var run watchRun
	logger := GetEmitterLogger(w.binding, "core.watcher")

	logs := make(chan types.Log, w.logBuffer)
	sub, err := w.source.SubscribeMessageLogs(ctx, w.emitter, logs)
	if err != nil {
		return run, SubscriptionError(err)
	}
	defer sub.Unsubscribe()
	run.subscribed = time.Now()
	logger.InfoContext(ctx, "watching for published messages", "core_contract", w.source.CoreContract().Hex())

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "stopped watching", "cause", ctx.Err())
			return run, nil
		case err, ok := <-sub.Err():
			// logs delivered before the error are not replayed by the next subscription
			run.received += w.drain(ctx, tasks, h, logs)
			if !ok || err == nil {
				err = errors.New("subscription closed by the source")
			}
			return run, SubscriptionError(err)
		case l := <-logs:
			run.received++
			w.handleLog(ctx, tasks, h, l)
		}
	}
}

// drain handles the logs already buffered in `logs` without waiting for more.
func (w *Watcher) drain(ctx context.Context, tasks *TaskGroup, h MessageHandler, logs <-chan types.Log) int {
	n := 0
	for {
		select {
		case l := <-logs:
			n++
			w.handleLog(ctx, tasks, h, l)
		default:
			return n
		}
	}
}

func (w *Watcher) handleLog(ctx context.Context, tasks *TaskGroup, h MessageHandler, l types.Log) {
	logger := GetEmitterLogger(w.binding, "core.watcher")

	if l.Removed {
		logger.DebugContext(ctx, "ignoring log removed by a reorg", "tx_hash", l.TxHash.Hex())
		return
	}
	pub, err := ParseMessagePublished(l)
	if err != nil {
		logger.WarnContext(ctx, "skipping malformed log", "tx_hash", l.TxHash.Hex(), "block_number", l.BlockNumber, "error", err)
		return
	}
	if pub.Sender != w.emitter {
		logger.DebugContext(ctx, "ignoring message of another emitter", "sender", pub.Sender.Hex(), "sequence", pub.Sequence)
		return
	}

	msg := w.newMessage(pub)
	recordObserved(ctx, w.binding)
	GetMessageLogger(msg.ID(), "core.watcher").InfoContext(ctx, "detected message", "nonce", msg.Nonce, "tx_hash", msg.TxHash.Hex())

	tasks.Go(ctx, func() {
		raw, err := w.Fetch(ctx, msg)
		if err != nil {
			h.HandleFetchError(ctx, msg, err)
			return
		}
		h.HandleAttestation(ctx, msg, raw)
	})
}

func (w *Watcher) newMessage(pub *MessagePublication) *ChainMessage {
	return &ChainMessage{
		EmitterChain:     w.binding.EmitterChain,
		EmitterAddress:   w.binding.EmitterAddress,
		Sequence:         pub.Sequence,
		Nonce:            pub.Nonce,
		Payload:          pub.Payload,
		ConsistencyLevel: pub.ConsistencyLevel,
		TxHash:           pub.TxHash,
		BlockNumber:      pub.BlockNumber,
	}
}

// Fetch retrieves the signed VAA of msg from the attestation service.
func (w *Watcher) Fetch(ctx context.Context, msg *ChainMessage) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Watcher.Fetch", WithMessageAttributes(msg.ID()), withPackage(w))
	defer span.End()

	raw, err := w.fetcher.FetchSignedVAA(ctx, msg.EmitterChain, msg.EmitterAddress, msg.Sequence)
	if err != nil {
		GetMessageLogger(msg.ID(), "core.watcher").Error("failed to fetch signed VAA", err)
		return nil, FetchError(err)
	}
	return raw, nil
}
