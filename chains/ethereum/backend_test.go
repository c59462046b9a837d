package ethereum

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// fakeBackend is an in-memory chain good enough for the source and target.
type fakeBackend struct {
	mu sync.Mutex

	chainID *big.Int
	head    uint64
	logs    []types.Log
	queries []ethereum.FilterQuery
	subs    []ethereum.FilterQuery

	pendingNonce uint64
	nonceCalls   int
	sendErrs     []error
	sent         []*types.Transaction
	estimateErr  error
	// receiptFor returning nil leaves the tx pending
	receiptFor   func(tx *types.Transaction) *types.Receipt
	callErr      error
}

var (
	_ SourceBackend = (*fakeBackend)(nil)
	_ TargetBackend = (*fakeBackend)(nil)
)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{chainID: big.NewInt(1337)}
}

func (b *fakeBackend) BlockNumber(context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.head, nil
}

func (b *fakeBackend) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, q)
	var out []types.Log
	for _, l := range b.logs {
		if l.BlockNumber >= q.FromBlock.Uint64() && l.BlockNumber <= q.ToBlock.Uint64() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (b *fakeBackend) SubscribeFilterLogs(_ context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	b.mu.Lock()
	b.subs = append(b.subs, q)
	logs := append([]types.Log(nil), b.logs...)
	b.mu.Unlock()
	return event.NewSubscription(func(quit <-chan struct{}) error {
		for _, l := range logs {
			select {
			case ch <- l:
			case <-quit:
				return nil
			}
		}
		<-quit
		return nil
	}), nil
}

func (b *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return b.chainID, nil
}

func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nonceCalls++
	return b.pendingNonce, nil
}

func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	if b.estimateErr != nil {
		return 0, b.estimateErr
	}
	return 100_000, nil
}

func (b *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sendErrs) > 0 {
		err := b.sendErrs[0]
		b.sendErrs = b.sendErrs[1:]
		if err != nil {
			return err
		}
	}
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tx := range b.sent {
		if tx.Hash() == hash {
			if b.receiptFor != nil {
				if r := b.receiptFor(tx); r != nil {
					return r, nil
				}
				return nil, ethereum.NotFound
			}
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, BlockNumber: big.NewInt(1000)}, nil
		}
	}
	return nil, ethereum.NotFound
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *fakeBackend) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, b.callErr
}

// revertError mimics the JSON-RPC error of a reverted eth_call.
type revertError struct {
	reason string
	data   string
}

func (e revertError) Error() string          { return "execution reverted: " + e.reason }
func (e revertError) ErrorCode() int         { return 3 }
func (e revertError) ErrorData() interface{} { return e.data }
