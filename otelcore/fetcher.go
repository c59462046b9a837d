package otelcore

import (
	"context"

	"github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/spyro-labs/spyro-relayer/core"
)

// Fetcher traces the calls made to a core.AttestationFetcher.
type Fetcher struct {
	core.AttestationFetcher
	tracer trace.Tracer
}

func NewFetcher(fetcher core.AttestationFetcher, tracer trace.Tracer) core.AttestationFetcher {
	return &Fetcher{
		AttestationFetcher: fetcher,
		tracer:             tracer,
	}
}

func (f *Fetcher) FetchSignedVAA(ctx context.Context, chain vaa.ChainID, emitter vaa.Address, sequence uint64) ([]byte, error) {
	id := core.MessageID{EmitterChain: chain, EmitterAddress: emitter, Sequence: sequence}
	ctx, span := f.tracer.Start(ctx, "Fetcher.FetchSignedVAA", core.WithMessageAttributes(id))
	defer span.End()

	raw, err := f.AttestationFetcher.FetchSignedVAA(ctx, chain, emitter, sequence)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return raw, err
}
