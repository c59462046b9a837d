package otelcore

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/spyro-labs/spyro-relayer/core"
)

// Target traces the calls made to a core.TargetChain.
type Target struct {
	core.TargetChain
	tracer trace.Tracer
}

func NewTarget(target core.TargetChain, tracer trace.Tracer) core.TargetChain {
	return &Target{
		TargetChain: target,
		tracer:      tracer,
	}
}

func UnwrapTarget(target core.TargetChain) (core.TargetChain, error) {
	t, ok := target.(*Target)
	if !ok {
		return nil, fmt.Errorf("target type is not %T, but %T", &Target{}, target)
	}
	return t.TargetChain, nil
}

func (t *Target) ReceiveAndExecute(ctx context.Context, encodedVAA []byte) (core.TxHandle, error) {
	ctx, span := t.tracer.Start(ctx, "Target.ReceiveAndExecute",
		core.WithChainAttributes(t.ChainID()),
	)
	defer span.End()

	handle, err := t.TargetChain.ReceiveAndExecute(ctx, encodedVAA)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(core.AttributeKeyTxHash.String(handle.Hash.Hex()))
	}
	return handle, err
}

func (t *Target) AwaitConfirmation(ctx context.Context, handle core.TxHandle) (*core.Confirmation, error) {
	ctx, span := t.tracer.Start(ctx, "Target.AwaitConfirmation",
		core.WithChainAttributes(t.ChainID()),
		trace.WithAttributes(core.AttributeKeyTxHash.String(handle.Hash.Hex())),
	)
	defer span.End()

	conf, err := t.TargetChain.AwaitConfirmation(ctx, handle)
	switch {
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
	case !conf.Success:
		span.SetStatus(codes.Error, "reverted: "+conf.RevertReason)
	}
	return conf, err
}

func (t *Target) CheckConfirmation(ctx context.Context, handle core.TxHandle) (*core.Confirmation, error) {
	ctx, span := t.tracer.Start(ctx, "Target.CheckConfirmation",
		core.WithChainAttributes(t.ChainID()),
		trace.WithAttributes(core.AttributeKeyTxHash.String(handle.Hash.Hex())),
	)
	defer span.End()

	conf, err := t.TargetChain.CheckConfirmation(ctx, handle)
	switch {
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
	case conf != nil && !conf.Success:
		span.SetStatus(codes.Error, "reverted: "+conf.RevertReason)
	}
	return conf, err
}
