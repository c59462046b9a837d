package ethereum

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/spyro-labs/spyro-relayer/core"
)

func TestRevertReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"abi encoded data", revertError{reason: "ignored", data: encodeRevert(t, "invalid VAA")}, "invalid VAA"},
		{"undecodable data", revertError{reason: "bad data", data: "0xdeadbeef"}, "bad data"},
		{"message only", errors.New("execution reverted: emitter not registered"), "emitter not registered"},
		{"wrapped message", errors.Wrap(errors.New("execution reverted: paused"), "failed to estimate gas"), "paused"},
		{"bare revert", errors.New("execution reverted"), "execution reverted"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, revertReason(c.err))
		})
	}
}

func TestClassifyRPCError(t *testing.T) {
	assert.NoError(t, classifyRPCError(nil))

	fatal := core.Fatal(errors.New("failed to sign tx"))
	assert.Equal(t, fatal, classifyRPCError(fatal))

	err := classifyRPCError(errors.New("execution reverted: already processed"))
	assert.True(t, errors.Is(err, core.ErrAlreadyProcessed))
	assert.True(t, errors.Is(err, core.ErrSubmissionFatal))

	err = classifyRPCError(errors.New("intrinsic gas too low"))
	assert.True(t, errors.Is(err, core.ErrSubmissionFatal))
	assert.False(t, errors.Is(err, core.ErrReverted))

	err = classifyRPCError(errors.New("context deadline exceeded"))
	assert.True(t, errors.Is(err, core.ErrSubmissionTransient))
	assert.True(t, core.IsRetryable(err))
}

func TestIsNonceError(t *testing.T) {
	assert.True(t, isNonceError(errors.New("Nonce too low")))
	assert.True(t, isNonceError(errors.Wrap(errors.New("nonce too high"), "failed to send tx")))
	assert.False(t, isNonceError(errors.New("replacement transaction underpriced")))
}
