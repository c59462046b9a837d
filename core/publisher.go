package core

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/codes"
)

// Publisher delivers verified attestations to the target chain.
type Publisher struct {
	target              TargetChain
	binding             Binding
	confirmationTimeout time.Duration

	mu sync.Mutex
	// unconfirmed holds sent transactions whose confirmation timed out
	unconfirmed map[MessageID][]TxHandle
}

// NewPublisher returns a publisher that only submits attestations bound to `binding`.
// A zero confirmationTimeout waits for confirmation without a deadline.
func NewPublisher(target TargetChain, binding Binding, confirmationTimeout time.Duration) *Publisher {
	return &Publisher{
		target:              target,
		binding:             binding,
		confirmationTimeout: confirmationTimeout,
		unconfirmed:         make(map[MessageID][]TxHandle),
	}
}

func (p *Publisher) Binding() Binding {
	return p.binding
}

func (p *Publisher) Target() TargetChain {
	return p.target
}

// Publish performs the bind check, submits the attestation and waits for its receipt.
//
// Once a transaction has been sent, Publish waits for it even if ctx is cancelled,
// bounded only by the confirmation timeout.
func (p *Publisher) Publish(ctx context.Context, att *SignedAttestation) (*Delivery, error) {
	id := att.Message.ID()
	ctx, span := tracer.Start(ctx, "Publisher.Publish", WithMessageAttributes(id), withPackage(p))
	defer span.End()
	logger := GetMessageLogger(id, "core.publisher")

	if !p.binding.Matches(att.EmitterChain, att.EmitterAddress) {
		err := BindingMismatch(p.binding, att.EmitterChain, att.EmitterAddress)
		logger.Error("refusing to submit an attestation outside of the configured binding", err, "security", true)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// an earlier transaction may have been mined after its confirmation timed out
	if d, done, err := p.settleUnconfirmed(ctx, id); done {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		return d, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "publish cancelled before submission")
	}

	recordSubmissionAttempt(ctx, id)
	handle, err := p.target.ReceiveAndExecute(ctx, att.Raw)
	if err != nil {
		logger.WarnContext(ctx, "failed to submit attestation", "error", err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	logger.InfoContext(ctx, "submitted attestation", "tx_hash", handle.Hash.Hex(), "nonce", handle.Nonce)

	confirmCtx := context.WithoutCancel(ctx)
	if p.confirmationTimeout > 0 {
		var cancel context.CancelFunc
		confirmCtx, cancel = context.WithTimeout(confirmCtx, p.confirmationTimeout)
		defer cancel()
	}
	conf, err := p.target.AwaitConfirmation(confirmCtx, handle)
	if err != nil {
		p.remember(id, handle)
		err = Transient(errors.Wrapf(err, "failed to confirm tx %s", handle.Hash.Hex()))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !conf.Success {
		err := errors.Wrapf(RevertError(conf.RevertReason), "tx %s reverted in block %d", handle.Hash.Hex(), conf.BlockNumber)
		if errors.Is(err, ErrAlreadyProcessed) {
			if d, _, _ := p.settleUnconfirmed(ctx, id); d != nil {
				logger.InfoContext(ctx, "attestation was delivered by an earlier tx", "tx_hash", d.TxHash.Hex(), "block_number", d.BlockNumber)
				return d, nil
			}
		}
		p.Forget(id)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	p.Forget(id)
	logger.InfoContext(ctx, "attestation confirmed", "tx_hash", handle.Hash.Hex(), "block_number", conf.BlockNumber)
	return &Delivery{TxHash: handle.Hash, BlockNumber: conf.BlockNumber}, nil
}

// settleUnconfirmed checks the transactions of id whose confirmation timed out.
// done is true when one of them was included: d is set if one succeeded and err
// carries the revert otherwise. While none is included they are kept.
func (p *Publisher) settleUnconfirmed(ctx context.Context, id MessageID) (d *Delivery, done bool, err error) {
	logger := GetMessageLogger(id, "core.publisher")
	var reverted error
	for _, handle := range p.unconfirmedOf(id) {
		conf, checkErr := p.target.CheckConfirmation(context.WithoutCancel(ctx), handle)
		switch {
		case checkErr != nil:
			logger.WarnContext(ctx, "failed to check an earlier tx", "tx_hash", handle.Hash.Hex(), "error", checkErr)
		case conf == nil:
			logger.InfoContext(ctx, "earlier tx is still pending", "tx_hash", handle.Hash.Hex())
		case conf.Success:
			p.Forget(id)
			logger.InfoContext(ctx, "attestation confirmed", "tx_hash", handle.Hash.Hex(), "block_number", conf.BlockNumber)
			return &Delivery{TxHash: handle.Hash, BlockNumber: conf.BlockNumber}, true, nil
		default:
			reverted = errors.Wrapf(RevertError(conf.RevertReason), "tx %s reverted in block %d", handle.Hash.Hex(), conf.BlockNumber)
		}
	}
	if reverted != nil {
		p.Forget(id)
		return nil, true, reverted
	}
	return nil, false, nil
}

func (p *Publisher) remember(id MessageID, handle TxHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unconfirmed[id] = append(p.unconfirmed[id], handle)
}

func (p *Publisher) unconfirmedOf(id MessageID) []TxHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]TxHandle(nil), p.unconfirmed[id]...)
}

// Forget drops the unconfirmed transactions recorded for id.
func (p *Publisher) Forget(id MessageID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.unconfirmed, id)
}
