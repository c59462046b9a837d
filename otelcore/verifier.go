package otelcore

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/spyro-labs/spyro-relayer/core"
)

// Verifier traces the calls made to a core.Verifier.
type Verifier struct {
	core.Verifier
	tracer trace.Tracer
}

func NewVerifier(verifier core.Verifier, tracer trace.Tracer) core.Verifier {
	return &Verifier{
		Verifier: verifier,
		tracer:   tracer,
	}
}

func UnwrapVerifier(verifier core.Verifier) (core.Verifier, error) {
	v, ok := verifier.(*Verifier)
	if !ok {
		return nil, fmt.Errorf("verifier type is not %T, but %T", &Verifier{}, verifier)
	}
	return v.Verifier, nil
}

func (v *Verifier) Verify(ctx context.Context, raw []byte) (*core.SignedAttestation, error) {
	ctx, span := v.tracer.Start(ctx, "Verifier.Verify")
	defer span.End()

	att, err := v.Verifier.Verify(ctx, raw)
	switch {
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
	case !att.Valid:
		span.SetStatus(codes.Error, "invalid signatures")
	default:
		span.SetAttributes(core.AttributeGroup("message", core.MessageAttributes(att.Message.ID())...)...)
	}
	return att, err
}
