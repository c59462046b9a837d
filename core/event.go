package core

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const coreContractABI = `[{
	"anonymous": false,
	"inputs": [
		{"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
		{"indexed": false, "internalType": "uint64", "name": "sequence", "type": "uint64"},
		{"indexed": false, "internalType": "uint32", "name": "nonce", "type": "uint32"},
		{"indexed": false, "internalType": "bytes", "name": "payload", "type": "bytes"},
		{"indexed": false, "internalType": "uint8", "name": "consistencyLevel", "type": "uint8"}
	],
	"name": "LogMessagePublished",
	"type": "event"
}]`

const logMessagePublished = "LogMessagePublished"

var (
	CoreABI = mustParseABI(coreContractABI)

	// LogMessagePublishedTopic is topic0 of every LogMessagePublished log
	LogMessagePublishedTopic = CoreABI.Events[logMessagePublished].ID

	ErrInvalidLog = errors.New("invalid LogMessagePublished log")
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// MessagePublication is a decoded LogMessagePublished log.
type MessagePublication struct {
	Sender           common.Address
	Sequence         uint64
	Nonce            uint32
	Payload          []byte
	ConsistencyLevel uint8

	TxHash      common.Hash
	BlockNumber uint64
}

// ParseMessagePublished decodes a raw log emitted by the Wormhole core contract.
func ParseMessagePublished(log types.Log) (*MessagePublication, error) {
	if len(log.Topics) != 2 {
		return nil, errors.Wrapf(ErrInvalidLog, "expected 2 topics, got %d", len(log.Topics))
	}
	if log.Topics[0] != LogMessagePublishedTopic {
		return nil, errors.Wrapf(ErrInvalidLog, "unexpected event signature %s", log.Topics[0].Hex())
	}
	values, err := CoreABI.Unpack(logMessagePublished, log.Data)
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, ErrInvalidLog), "failed to unpack log data")
	}
	if len(values) != 4 {
		return nil, errors.Wrapf(ErrInvalidLog, "expected 4 fields, got %d", len(values))
	}

	pub := &MessagePublication{
		Sender:      common.BytesToAddress(log.Topics[1].Bytes()),
		TxHash:      log.TxHash,
		BlockNumber: log.BlockNumber,
	}
	var ok bool
	if pub.Sequence, ok = values[0].(uint64); !ok {
		return nil, errors.Wrapf(ErrInvalidLog, "sequence has type %T", values[0])
	}
	if pub.Nonce, ok = values[1].(uint32); !ok {
		return nil, errors.Wrapf(ErrInvalidLog, "nonce has type %T", values[1])
	}
	if pub.Payload, ok = values[2].([]byte); !ok {
		return nil, errors.Wrapf(ErrInvalidLog, "payload has type %T", values[2])
	}
	if pub.ConsistencyLevel, ok = values[3].(uint8); !ok {
		return nil, errors.Wrapf(ErrInvalidLog, "consistencyLevel has type %T", values[3])
	}
	return pub, nil
}

// PackMessagePublished builds the data section of a LogMessagePublished log.
func PackMessagePublished(sequence uint64, nonce uint32, payload []byte, consistencyLevel uint8) ([]byte, error) {
	return CoreABI.Events[logMessagePublished].Inputs.NonIndexed().Pack(sequence, nonce, payload, consistencyLevel)
}
