package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spyro-labs/spyro-relayer/core"
)

var testHandle = core.TxHandle{Hash: common.HexToHash("0x5a1e"), Nonce: 3}

func TestPublishDelivered(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := core.NewMockTargetChain(ctrl)
	b := testBinding()
	raw := []byte("vaa-7")

	target.EXPECT().ReceiveAndExecute(gomock.Any(), raw).Return(testHandle, nil)
	target.EXPECT().AwaitConfirmation(gomock.Any(), testHandle).Return(&core.Confirmation{Success: true, BlockNumber: 1000}, nil)

	p := core.NewPublisher(target, b, time.Second)
	d, err := p.Publish(context.Background(), attestationOf(b.EmitterChain, b.EmitterAddress, 7, raw))
	require.NoError(t, err)
	assert.Equal(t, testHandle.Hash, d.TxHash)
	assert.Equal(t, uint64(1000), d.BlockNumber)
}

func TestPublishBindingMismatch(t *testing.T) {
	b := testBinding()
	cases := map[string]*core.SignedAttestation{
		"other chain":   attestationOf(99, b.EmitterAddress, 7, []byte("vaa")),
		"other emitter": attestationOf(b.EmitterChain, core.EmitterAddressFromEVM(otherEmitter), 7, []byte("vaa")),
	}
	for name, att := range cases {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// no calls are expected on the target
			target := core.NewMockTargetChain(ctrl)

			p := core.NewPublisher(target, b, time.Second)
			_, err := p.Publish(context.Background(), att)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrBindingMismatch))
			assert.False(t, core.IsRetryable(err))
		})
	}
}

func TestPublishReverted(t *testing.T) {
	cases := []struct {
		reason string
		kind   error
	}{
		{"message already processed", core.ErrAlreadyProcessed},
		{"invalid recipient", core.ErrReverted},
	}
	for _, c := range cases {
		t.Run(c.reason, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			target := core.NewMockTargetChain(ctrl)
			b := testBinding()

			target.EXPECT().ReceiveAndExecute(gomock.Any(), gomock.Any()).Return(testHandle, nil)
			target.EXPECT().AwaitConfirmation(gomock.Any(), testHandle).
				Return(&core.Confirmation{Success: false, BlockNumber: 1001, RevertReason: c.reason}, nil)

			p := core.NewPublisher(target, b, time.Second)
			_, err := p.Publish(context.Background(), attestationOf(b.EmitterChain, b.EmitterAddress, 7, []byte("vaa")))
			require.Error(t, err)
			assert.True(t, errors.Is(err, c.kind))
			assert.False(t, core.IsRetryable(err))
		})
	}
}

func TestPublishCancelledBeforeSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := core.NewMockTargetChain(ctrl)
	b := testBinding()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := core.NewPublisher(target, b, time.Second)
	_, err := p.Publish(ctx, attestationOf(b.EmitterChain, b.EmitterAddress, 7, []byte("vaa")))
	require.Error(t, err)
	_, reason := core.Classify(err)
	assert.Equal(t, core.ReasonCancelled, reason)
}

func TestPublishConfirmationOutlivesCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := core.NewMockTargetChain(ctrl)
	b := testBinding()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	target.EXPECT().ReceiveAndExecute(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, []byte) (core.TxHandle, error) {
		cancel()
		return testHandle, nil
	})
	target.EXPECT().AwaitConfirmation(gomock.Any(), testHandle).DoAndReturn(func(ctx context.Context, _ core.TxHandle) (*core.Confirmation, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &core.Confirmation{Success: true, BlockNumber: 1000}, nil
	})

	p := core.NewPublisher(target, b, time.Second)
	d, err := p.Publish(ctx, attestationOf(b.EmitterChain, b.EmitterAddress, 7, []byte("vaa")))
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), d.BlockNumber)
}

func TestPublishConfirmationTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := core.NewMockTargetChain(ctrl)
	b := testBinding()

	target.EXPECT().ReceiveAndExecute(gomock.Any(), gomock.Any()).Return(testHandle, nil)
	target.EXPECT().AwaitConfirmation(gomock.Any(), testHandle).DoAndReturn(func(ctx context.Context, _ core.TxHandle) (*core.Confirmation, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	p := core.NewPublisher(target, b, 20*time.Millisecond)
	_, err := p.Publish(context.Background(), attestationOf(b.EmitterChain, b.EmitterAddress, 7, []byte("vaa")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSubmissionTransient))
	assert.True(t, core.IsRetryable(err))
}

func timeoutConfirmation(ctx context.Context, _ core.TxHandle) (*core.Confirmation, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPublishAfterTimeoutReportsEarlierMinedTx(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := core.NewMockTargetChain(ctrl)
	b := testBinding()
	att := attestationOf(b.EmitterChain, b.EmitterAddress, 7, []byte("vaa"))

	gomock.InOrder(
		target.EXPECT().ReceiveAndExecute(gomock.Any(), att.Raw).Return(testHandle, nil),
		target.EXPECT().AwaitConfirmation(gomock.Any(), testHandle).DoAndReturn(timeoutConfirmation),
		target.EXPECT().CheckConfirmation(gomock.Any(), testHandle).Return(&core.Confirmation{Success: true, BlockNumber: 1002}, nil),
	)

	p := core.NewPublisher(target, b, 20*time.Millisecond)
	_, err := p.Publish(context.Background(), att)
	require.Error(t, err)
	assert.True(t, core.IsRetryable(err))

	// the retry finds the first tx mined and does not submit again
	d, err := p.Publish(context.Background(), att)
	require.NoError(t, err)
	assert.Equal(t, testHandle.Hash, d.TxHash)
	assert.Equal(t, uint64(1002), d.BlockNumber)
}

func TestPublishAlreadyProcessedByEarlierTx(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := core.NewMockTargetChain(ctrl)
	b := testBinding()
	att := attestationOf(b.EmitterChain, b.EmitterAddress, 7, []byte("vaa"))
	second := core.TxHandle{Hash: common.HexToHash("0x5a1f"), Nonce: 4}

	gomock.InOrder(
		target.EXPECT().ReceiveAndExecute(gomock.Any(), att.Raw).Return(testHandle, nil),
		target.EXPECT().AwaitConfirmation(gomock.Any(), testHandle).DoAndReturn(timeoutConfirmation),
		target.EXPECT().CheckConfirmation(gomock.Any(), testHandle).Return(nil, nil),
		target.EXPECT().ReceiveAndExecute(gomock.Any(), att.Raw).Return(second, nil),
		target.EXPECT().AwaitConfirmation(gomock.Any(), second).
			Return(&core.Confirmation{Success: false, BlockNumber: 1003, RevertReason: "VAA already executed"}, nil),
		target.EXPECT().CheckConfirmation(gomock.Any(), testHandle).Return(&core.Confirmation{Success: true, BlockNumber: 1002}, nil),
	)

	p := core.NewPublisher(target, b, 20*time.Millisecond)
	_, err := p.Publish(context.Background(), att)
	require.Error(t, err)

	d, err := p.Publish(context.Background(), att)
	require.NoError(t, err)
	assert.Equal(t, testHandle.Hash, d.TxHash)
	assert.Equal(t, uint64(1002), d.BlockNumber)
}

func TestPublishEarlierTxReverted(t *testing.T) {
	ctrl := gomock.NewController(t)
	target := core.NewMockTargetChain(ctrl)
	b := testBinding()
	att := attestationOf(b.EmitterChain, b.EmitterAddress, 7, []byte("vaa"))

	gomock.InOrder(
		target.EXPECT().ReceiveAndExecute(gomock.Any(), att.Raw).Return(testHandle, nil),
		target.EXPECT().AwaitConfirmation(gomock.Any(), testHandle).DoAndReturn(timeoutConfirmation),
		target.EXPECT().CheckConfirmation(gomock.Any(), testHandle).
			Return(&core.Confirmation{Success: false, BlockNumber: 1002, RevertReason: "invalid recipient"}, nil),
	)

	p := core.NewPublisher(target, b, 20*time.Millisecond)
	_, err := p.Publish(context.Background(), att)
	require.Error(t, err)

	_, err = p.Publish(context.Background(), att)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrReverted))
	assert.False(t, core.IsRetryable(err))
}
