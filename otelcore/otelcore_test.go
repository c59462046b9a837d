package otelcore_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/otelcore"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) string {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestTargetSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	sr, tp := newRecorder(t)

	mock := core.NewMockTargetChain(ctrl)
	mock.EXPECT().ChainID().Return("1337").AnyTimes()
	handle := core.TxHandle{Hash: common.HexToHash("0xabc"), Nonce: 1}
	mock.EXPECT().ReceiveAndExecute(gomock.Any(), []byte("vaa")).Return(handle, nil)
	mock.EXPECT().AwaitConfirmation(gomock.Any(), handle).Return(&core.Confirmation{Success: false, RevertReason: "paused"}, nil)

	target := otelcore.NewTarget(mock, tp.Tracer("test"))
	got, err := target.ReceiveAndExecute(context.Background(), []byte("vaa"))
	require.NoError(t, err)
	assert.Equal(t, handle, got)
	_, err = target.AwaitConfirmation(context.Background(), handle)
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Target.ReceiveAndExecute", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "1337", attrValue(spans[0].Attributes(), core.AttributeKeyChainID))
	assert.Equal(t, handle.Hash.Hex(), attrValue(spans[0].Attributes(), core.AttributeKeyTxHash))

	assert.Equal(t, "Target.AwaitConfirmation", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "reverted: paused", spans[1].Status().Description)

	unwrapped, err := otelcore.UnwrapTarget(target)
	require.NoError(t, err)
	assert.Same(t, mock, unwrapped)
	_, err = otelcore.UnwrapTarget(mock)
	assert.Error(t, err)
}

func TestFetcherSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	sr, tp := newRecorder(t)

	emitter := vaa.Address{31: 0xe1}
	mock := core.NewMockAttestationFetcher(ctrl)
	mock.EXPECT().FetchSignedVAA(gomock.Any(), vaa.ChainIDEthereum, emitter, uint64(7)).Return(nil, errors.New("not signed"))

	fetcher := otelcore.NewFetcher(mock, tp.Tracer("test"))
	_, err := fetcher.FetchSignedVAA(context.Background(), vaa.ChainIDEthereum, emitter, 7)
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "7", attrValue(spans[0].Attributes(), "message.sequence"))
	assert.Equal(t, emitter.String(), attrValue(spans[0].Attributes(), "message.emitter_address"))
}

func TestVerifierSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	sr, tp := newRecorder(t)

	mock := core.NewMockVerifier(ctrl)
	gomock.InOrder(
		mock.EXPECT().Verify(gomock.Any(), []byte("good")).Return(&core.SignedAttestation{
			Message: core.ChainMessage{EmitterChain: vaa.ChainIDSolana, Sequence: 3},
			Valid:   true,
		}, nil),
		mock.EXPECT().Verify(gomock.Any(), []byte("forged")).Return(&core.SignedAttestation{Valid: false}, nil),
	)

	verifier := otelcore.NewVerifier(mock, tp.Tracer("test"))
	_, err := verifier.Verify(context.Background(), []byte("good"))
	require.NoError(t, err)
	att, err := verifier.Verify(context.Background(), []byte("forged"))
	require.NoError(t, err)
	assert.False(t, att.Valid)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "3", attrValue(spans[0].Attributes(), "message.sequence"))
	assert.Equal(t, vaa.ChainIDSolana.String(), attrValue(spans[0].Attributes(), "message.emitter_chain"))
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	unwrapped, err := otelcore.UnwrapVerifier(verifier)
	require.NoError(t, err)
	assert.Same(t, mock, unwrapped)
}
