package core

import (
	"context"
	"fmt"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/codes"
)

// RetryPolicy bounds how often a transient publish failure is retried.
// The n-th retry waits Backoff * 2^n, capped at MaxBackoff when it is set.
type RetryPolicy struct {
	Attempts   uint
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func (p RetryPolicy) options(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Attempts(p.Attempts + 1),
		retry.Delay(p.Backoff),
		retry.MaxDelay(p.MaxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	}
}

// RelayService wires the watcher, the verifier and the publisher together.
// It keeps no state across restarts: duplicates are rejected by the target contract.
type RelayService struct {
	watcher   *Watcher
	verifier  Verifier
	publisher *Publisher
	sink      ResultSink

	retry   RetryPolicy
	restart RetryPolicy

	tasks *TaskGroup
}

var _ MessageHandler = (*RelayService)(nil)

// NewRelayService returns a new service
func NewRelayService(
	watcher *Watcher,
	verifier Verifier,
	publisher *Publisher,
	sink ResultSink,
	retryPolicy RetryPolicy,
	restartPolicy RetryPolicy,
) *RelayService {
	if sink == nil {
		sink = MultiSink{}
	}
	return &RelayService{
		watcher:   watcher,
		verifier:  verifier,
		publisher: publisher,
		sink:      sink,
		retry:     retryPolicy,
		restart:   restartPolicy,
		tasks:     NewTaskGroup(),
	}
}

// Start runs the watcher until ctx is done, restarting it with backoff when the
// source subscription breaks. The restart budget applies to consecutive failed
// runs: a run that made progress starts a new budget. In-flight pipelines are
// drained before Start returns.
func (srv *RelayService) Start(ctx context.Context) error {
	logger := GetEmitterLogger(srv.watcher.Binding(), "core.service")
	defer srv.tasks.Wait()

	for {
		healthy, err := srv.watchUntilHealthyRunBreaks(ctx)
		if ctx.Err() != nil {
			logger.InfoContext(ctx, "relay service stopped, draining in-flight messages")
			return nil
		}
		if !healthy {
			if err != nil {
				logger.ErrorWithStack("relay service stopped", err)
			}
			return err
		}
		logger.WarnContext(ctx, "subscription dropped after a healthy run, restarting watcher", "error", err.Error())
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "relay service stopped, draining in-flight messages")
			return nil
		case <-time.After(srv.restart.Backoff):
		}
	}
}

// watchUntilHealthyRunBreaks runs the watcher under the restart policy. It returns
// healthy=true with the subscription error when a run that made progress broke.
func (srv *RelayService) watchUntilHealthyRunBreaks(ctx context.Context) (bool, error) {
	logger := GetEmitterLogger(srv.watcher.Binding(), "core.service")

	var healthy bool
	err := retry.Do(func() error {
		run, err := srv.watcher.watch(ctx, srv.tasks, srv)
		healthy = err != nil && run.healthy(srv.restart.Backoff)
		return err
	},
		append(srv.restart.options(ctx),
			retry.RetryIf(func(err error) bool {
				return IsSubscriptionError(err) && !healthy
			}),
			retry.OnRetry(func(n uint, err error) {
				logger.WarnContext(ctx,
					"restarting watcher",
					"try", n+1,
					"try_limit", srv.restart.Attempts+1,
					"error", err.Error(),
				)
			}),
		)...,
	)
	return healthy && IsSubscriptionError(err), err
}

func (srv *RelayService) HandleAttestation(ctx context.Context, msg *ChainMessage, raw []byte) {
	srv.Relay(ctx, msg, raw)
}

func (srv *RelayService) HandleFetchError(ctx context.Context, msg *ChainMessage, err error) {
	srv.report(ctx, failureResult(msg.ID(), err, 0))
}

// Relay verifies and publishes the signed VAA of msg, then reports the result.
func (srv *RelayService) Relay(ctx context.Context, msg *ChainMessage, raw []byte) RelayResult {
	id := msg.ID()
	ctx, span := tracer.Start(ctx, "RelayService.Relay", WithMessageAttributes(id), withPackage(srv))
	defer span.End()

	att, err := srv.Verify(ctx, msg, raw)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		res := failureResult(id, err, 0)
		srv.report(ctx, res)
		return res
	}

	res := srv.publish(ctx, att)
	if !res.Delivered() {
		span.SetStatus(codes.Error, res.Error)
	}
	srv.report(ctx, res)
	return res
}

// RelaySequence fetches the signed VAA of `sequence` from the configured emitter and relays it.
func (srv *RelayService) RelaySequence(ctx context.Context, sequence uint64) RelayResult {
	msg := srv.messageOf(sequence)
	raw, err := srv.watcher.Fetch(ctx, msg)
	if err != nil {
		res := failureResult(msg.ID(), err, 0)
		srv.report(ctx, res)
		return res
	}
	return srv.Relay(ctx, msg, raw)
}

// FetchAndVerify returns the verified attestation of `sequence` without publishing it.
func (srv *RelayService) FetchAndVerify(ctx context.Context, sequence uint64) (*SignedAttestation, error) {
	msg := srv.messageOf(sequence)
	raw, err := srv.watcher.Fetch(ctx, msg)
	if err != nil {
		return nil, err
	}
	return srv.Verify(ctx, msg, raw)
}

func (srv *RelayService) messageOf(sequence uint64) *ChainMessage {
	b := srv.watcher.Binding()
	return &ChainMessage{
		EmitterChain:   b.EmitterChain,
		EmitterAddress: b.EmitterAddress,
		Sequence:       sequence,
	}
}

// Verify runs the verifier over raw and checks that it attests the requested sequence.
func (srv *RelayService) Verify(ctx context.Context, msg *ChainMessage, raw []byte) (*SignedAttestation, error) {
	att, err := srv.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to verify VAA"), ErrVerificationRejected)
	}
	if !att.Valid {
		return nil, VerificationRejected("guardian signatures are not valid")
	}
	if att.Message.Sequence != msg.Sequence {
		return nil, VerificationRejected(fmt.Sprintf("VAA attests sequence %d, expected %d", att.Message.Sequence, msg.Sequence))
	}
	// the VAA body does not carry where the message was observed
	if msg.TxHash != (common.Hash{}) {
		att.Message.TxHash = msg.TxHash
		att.Message.BlockNumber = msg.BlockNumber
	}
	return att, nil
}

func (srv *RelayService) publish(ctx context.Context, att *SignedAttestation) RelayResult {
	id := att.Message.ID()
	logger := GetMessageLogger(id, "core.service")
	defer srv.publisher.Forget(id)

	var (
		delivery *Delivery
		attempts int
	)
	err := retry.Do(func() error {
		attempts++
		d, err := srv.publisher.Publish(ctx, att)
		if err != nil {
			return err
		}
		delivery = d
		return nil
	},
		append(srv.retry.options(ctx),
			retry.RetryIf(IsRetryable),
			retry.OnRetry(func(n uint, err error) {
				logger.WarnContext(ctx,
					"publish attempt failed",
					"try", n+1,
					"try_limit", srv.retry.Attempts+1,
					"error", err.Error(),
				)
			}),
		)...,
	)
	if err == nil {
		return deliveredResult(id, delivery, attempts)
	}

	res := failureResult(id, err, attempts)
	if res.Status == StatusFailedRetryable {
		if ctx.Err() != nil {
			res.Reason = ReasonCancelled
		} else {
			res.Status = StatusFailedFatal
			res.Reason = ReasonRetriesExhausted
		}
	}
	return res
}

func failureResult(id MessageID, err error, attempts int) RelayResult {
	status, reason := Classify(err)
	return newResult(id, status, reason, attempts, err)
}

func (srv *RelayService) report(ctx context.Context, res RelayResult) {
	srv.sink.Report(context.WithoutCancel(ctx), res)
}
