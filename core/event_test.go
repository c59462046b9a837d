package core_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spyro-labs/spyro-relayer/core"
)

func TestParseMessagePublished(t *testing.T) {
	l := messageLog(t, testEmitter, 7)

	pub, err := core.ParseMessagePublished(l)
	require.NoError(t, err)
	assert.Equal(t, testEmitter, pub.Sender)
	assert.Equal(t, uint64(7), pub.Sequence)
	assert.Equal(t, uint32(7), pub.Nonce)
	assert.Equal(t, []byte("payload"), pub.Payload)
	assert.Equal(t, uint8(1), pub.ConsistencyLevel)
	assert.Equal(t, l.TxHash, pub.TxHash)
	assert.Equal(t, uint64(107), pub.BlockNumber)
}

func TestParseMessagePublishedMalformed(t *testing.T) {
	cases := map[string]func(t *testing.T) types.Log{
		"missing sender topic": func(t *testing.T) types.Log {
			l := messageLog(t, testEmitter, 1)
			l.Topics = l.Topics[:1]
			return l
		},
		"other event": func(t *testing.T) types.Log {
			l := messageLog(t, testEmitter, 1)
			l.Topics[0] = common.HexToHash("0x01")
			return l
		},
		"truncated data": func(t *testing.T) types.Log {
			l := messageLog(t, testEmitter, 1)
			l.Data = l.Data[:40]
			return l
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			l := build(t)
			_, err := core.ParseMessagePublished(l)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidLog), "unexpected error: %v", err)
		})
	}
}
