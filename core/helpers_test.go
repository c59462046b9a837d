package core_test

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/spyro-labs/spyro-relayer/core"
)

var (
	sourceChainID = vaa.ChainIDEthereum
	coreContract  = common.HexToAddress("0x98f3c9e6E3fAce36bAAd05FE09d375Ef1464288B")
	testEmitter   = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	otherEmitter  = common.HexToAddress("0x00000000000000000000000000000000000000e2")
)

func testBinding() core.Binding {
	return core.NewBinding(sourceChainID, testEmitter)
}

func messageLog(t *testing.T, sender common.Address, seq uint64) types.Log {
	t.Helper()
	data, err := core.PackMessagePublished(seq, uint32(seq), []byte("payload"), 1)
	require.NoError(t, err)
	return types.Log{
		Address:     coreContract,
		Topics:      []common.Hash{core.LogMessagePublishedTopic, common.BytesToHash(sender.Bytes())},
		Data:        data,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(seq)),
		BlockNumber: 100 + seq,
	}
}

func testMessage(seq uint64) *core.ChainMessage {
	b := testBinding()
	return &core.ChainMessage{
		EmitterChain:   b.EmitterChain,
		EmitterAddress: b.EmitterAddress,
		Sequence:       seq,
		Payload:        []byte("payload"),
	}
}

// attestationOf returns a valid attestation whose emitter identity is (chain, emitter).
func attestationOf(chain vaa.ChainID, emitter vaa.Address, seq uint64, raw []byte) *core.SignedAttestation {
	return &core.SignedAttestation{
		Message: core.ChainMessage{
			EmitterChain:   chain,
			EmitterAddress: emitter,
			Sequence:       seq,
			Payload:        []byte("payload"),
		},
		Valid:          true,
		EmitterChain:   chain,
		EmitterAddress: emitter,
		Raw:            raw,
	}
}

type testSubscription struct {
	errCh chan error
	once  sync.Once
}

func newTestSubscription() *testSubscription {
	return &testSubscription{errCh: make(chan error, 1)}
}

func (s *testSubscription) Err() <-chan error {
	return s.errCh
}

func (s *testSubscription) Unsubscribe() {
	s.once.Do(func() { close(s.errCh) })
}

type recordingSink struct {
	mu      sync.Mutex
	results []core.RelayResult
	notify  chan core.RelayResult
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan core.RelayResult, 16)}
}

func (s *recordingSink) Report(_ context.Context, r core.RelayResult) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
	s.notify <- r
}

func (s *recordingSink) Results() []core.RelayResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RelayResult(nil), s.results...)
}

func (s *recordingSink) next(t *testing.T) core.RelayResult {
	t.Helper()
	select {
	case r := <-s.notify:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a relay result")
		return core.RelayResult{}
	}
}
