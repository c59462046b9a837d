package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// MessageID identifies a cross-chain message by its emitter and per-emitter sequence.
type MessageID struct {
	EmitterChain   vaa.ChainID
	EmitterAddress vaa.Address
	Sequence       uint64
}

// String renders the id as "chain/emitter/sequence", the format used by guardian APIs.
func (id MessageID) String() string {
	return fmt.Sprintf("%d/%s/%d", uint16(id.EmitterChain), id.EmitterAddress.String(), id.Sequence)
}

type messageIDJSON struct {
	EmitterChain   uint16 `json:"emitter_chain"`
	EmitterAddress string `json:"emitter_address"`
	Sequence       uint64 `json:"sequence"`
}

func (id MessageID) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageIDJSON{
		EmitterChain:   uint16(id.EmitterChain),
		EmitterAddress: id.EmitterAddress.String(),
		Sequence:       id.Sequence,
	})
}

func (id *MessageID) UnmarshalJSON(bz []byte) error {
	var v messageIDJSON
	if err := json.Unmarshal(bz, &v); err != nil {
		return err
	}
	addr, err := vaa.StringToAddress(v.EmitterAddress)
	if err != nil {
		return err
	}
	*id = MessageID{EmitterChain: vaa.ChainID(v.EmitterChain), EmitterAddress: addr, Sequence: v.Sequence}
	return nil
}

// ParseMessageID is the inverse of MessageID.String.
func ParseMessageID(s string) (MessageID, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return MessageID{}, fmt.Errorf("invalid message id %q: expected chain/emitter/sequence", s)
	}
	chain, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return MessageID{}, fmt.Errorf("invalid emitter chain %q: %w", parts[0], err)
	}
	addr, err := vaa.StringToAddress(parts[1])
	if err != nil {
		return MessageID{}, fmt.Errorf("invalid emitter address %q: %w", parts[1], err)
	}
	seq, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return MessageID{}, fmt.Errorf("invalid sequence %q: %w", parts[2], err)
	}
	return MessageID{EmitterChain: vaa.ChainID(chain), EmitterAddress: addr, Sequence: seq}, nil
}

// ChainMessage is a message observed on the source chain. It is never mutated after observation.
type ChainMessage struct {
	EmitterChain     vaa.ChainID
	EmitterAddress   vaa.Address
	Sequence         uint64
	Nonce            uint32
	Payload          []byte
	ConsistencyLevel uint8

	// where the message was observed, for reconciliation
	TxHash      common.Hash
	BlockNumber uint64
}

func (m *ChainMessage) ID() MessageID {
	return MessageID{
		EmitterChain:   m.EmitterChain,
		EmitterAddress: m.EmitterAddress,
		Sequence:       m.Sequence,
	}
}

// SignedAttestation is a VAA after it went through a Verifier.
type SignedAttestation struct {
	Message ChainMessage
	Valid   bool

	// emitter identity as parsed by the verifier, independent of what the watcher observed
	EmitterChain   vaa.ChainID
	EmitterAddress vaa.Address

	Raw []byte
}

// Binding is the (chain, emitter) pair a relayer instance trusts.
type Binding struct {
	EmitterChain   vaa.ChainID
	EmitterAddress vaa.Address
}

func NewBinding(chain vaa.ChainID, emitter common.Address) Binding {
	return Binding{EmitterChain: chain, EmitterAddress: EmitterAddressFromEVM(emitter)}
}

// Matches reports whether both halves of the pair equal the binding.
func (b Binding) Matches(chain vaa.ChainID, addr vaa.Address) bool {
	return b.EmitterChain == chain && b.EmitterAddress == addr
}

func (b Binding) String() string {
	return fmt.Sprintf("%d/%s", uint16(b.EmitterChain), b.EmitterAddress.String())
}

// EmitterAddressFromEVM left-pads a 20-byte EVM address to a 32-byte Wormhole address.
func EmitterAddressFromEVM(addr common.Address) vaa.Address {
	var out vaa.Address
	copy(out[32-common.AddressLength:], addr.Bytes())
	return out
}

// TxHandle identifies a submitted target-chain transaction.
type TxHandle struct {
	Hash  common.Hash
	Nonce uint64
}

// Confirmation is the on-chain outcome of a submitted transaction.
type Confirmation struct {
	Success      bool
	BlockNumber  uint64
	RevertReason string
}

// Delivery is a successfully confirmed submission.
type Delivery struct {
	TxHash      common.Hash
	BlockNumber uint64
}

type Status string

const (
	StatusDelivered       Status = "delivered"
	StatusRejected        Status = "rejected"
	StatusFailedRetryable Status = "failed-retryable"
	StatusFailedFatal     Status = "failed-fatal"
)

type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonBindingMismatch      Reason = "binding-mismatch"
	ReasonAlreadyProcessed     Reason = "already-processed"
	ReasonReverted             Reason = "reverted"
	ReasonVerificationRejected Reason = "verification-rejected"
	ReasonRetriesExhausted     Reason = "retries-exhausted"
	ReasonFetchError           Reason = "fetch-error"
	ReasonCancelled            Reason = "cancelled"
	ReasonTransient            Reason = "transient"
	ReasonSubmissionFatal      Reason = "submission-fatal"
)

// RelayResult is the terminal outcome of relaying one message.
type RelayResult struct {
	MessageID   MessageID `json:"message_id"`
	Status      Status    `json:"status"`
	Reason      Reason    `json:"reason,omitempty"`
	TxHash      string    `json:"tx_hash,omitempty"`
	BlockNumber uint64    `json:"block_number,omitempty"`
	Error       string    `json:"error,omitempty"`
	Attempts    int       `json:"attempts"`
	Timestamp   time.Time `json:"timestamp"`
}

func (r RelayResult) Delivered() bool {
	return r.Status == StatusDelivered
}

func newResult(id MessageID, status Status, reason Reason, attempts int, err error) RelayResult {
	res := RelayResult{
		MessageID: id,
		Status:    status,
		Reason:    reason,
		Attempts:  attempts,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func deliveredResult(id MessageID, d *Delivery, attempts int) RelayResult {
	res := newResult(id, StatusDelivered, ReasonNone, attempts, nil)
	res.TxHash = d.TxHash.Hex()
	res.BlockNumber = d.BlockNumber
	return res
}
