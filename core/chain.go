package core

//go:generate mockgen -source chain.go -destination mock_chain.go -package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// Subscription is a live stream of source-chain logs. It has the shape of
// go-ethereum's ethereum.Subscription so clients can return theirs directly.
type Subscription interface {
	// Err delivers at most one error, when the stream breaks, and is closed on Unsubscribe.
	Err() <-chan error
	Unsubscribe()
}

// SourceChain represents the chain on which cross-chain messages are published
type SourceChain interface {
	// ChainID returns the Wormhole chain id of the chain
	ChainID() vaa.ChainID

	// CoreContract returns the address of the Wormhole core contract emitting the logs
	CoreContract() common.Address

	// SubscribeMessageLogs streams LogMessagePublished logs of the given emitter into sink
	SubscribeMessageLogs(ctx context.Context, emitter common.Address, sink chan<- types.Log) (Subscription, error)
}

// TargetChain represents the chain that receives and executes attestations
type TargetChain interface {
	// ChainID returns the chain id used for signing transactions
	ChainID() string

	// ReceiveAndExecute submits an encoded attestation to the receiving contract
	ReceiveAndExecute(ctx context.Context, encodedVAA []byte) (TxHandle, error)

	// AwaitConfirmation blocks until the transaction is included or ctx is done
	AwaitConfirmation(ctx context.Context, handle TxHandle) (*Confirmation, error)

	// CheckConfirmation returns the outcome of a sent transaction without waiting,
	// or nil while it is not included yet
	CheckConfirmation(ctx context.Context, handle TxHandle) (*Confirmation, error)
}

// AttestationFetcher retrieves the guardian-signed VAA of a message.
// Implementations retry internally while the VAA is not available yet.
type AttestationFetcher interface {
	FetchSignedVAA(ctx context.Context, chain vaa.ChainID, emitter vaa.Address, sequence uint64) ([]byte, error)
}
