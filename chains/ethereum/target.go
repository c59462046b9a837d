package ethereum

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/log"
)

const receiverContractABI = `[{
	"inputs": [{"internalType": "bytes", "name": "encodedVAA", "type": "bytes"}],
	"name": "receiveAndExecuteVAA",
	"outputs": [],
	"stateMutability": "nonpayable",
	"type": "function"
}]`

const receiveAndExecuteVAA = "receiveAndExecuteVAA"

// gas estimates get this much headroom, in percent
const gasHeadroom = 20

var receiverABI = mustParseABI(receiverContractABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Target submits VAAs to the receiver contract with the relayer's key.
type Target struct {
	chainID  *big.Int
	backend  TargetBackend
	receiver common.Address
	account  *account
	signer   types.Signer

	// transactions sent and not yet confirmed, by hash
	pending sync.Map
}

var _ core.TargetChain = (*Target)(nil)

func NewTarget(ctx context.Context, cfg TargetConfig, backend TargetBackend) (*Target, error) {
	key, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, core.ConfigurationError(errors.Wrap(err, "failed to parse target.private_key"))
	}
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query the target chain id")
	}
	t := &Target{
		chainID:  chainID,
		backend:  backend,
		receiver: common.HexToAddress(cfg.ReceiverContract),
		account:  newAccount(key),
		signer:   types.LatestSignerForChainID(chainID),
	}
	t.logger().InfoContext(ctx, "loaded relayer account", "address", t.account.address.Hex(), "receiver", t.receiver.Hex())
	return t, nil
}

func (t *Target) ChainID() string {
	return t.chainID.String()
}

// Address returns the relayer account paying for submissions.
func (t *Target) Address() common.Address {
	return t.account.address
}

func (t *Target) logger() *log.RelayLogger {
	return log.GetLogger().WithChainID(t.chainID.String()).WithModule("ethereum.target")
}

// ReceiveAndExecute signs and sends receiveAndExecuteVAA(encodedVAA).
func (t *Target) ReceiveAndExecute(ctx context.Context, encodedVAA []byte) (core.TxHandle, error) {
	data, err := receiverABI.Pack(receiveAndExecuteVAA, encodedVAA)
	if err != nil {
		return core.TxHandle{}, core.Fatal(errors.Wrap(err, "failed to pack receiveAndExecuteVAA"))
	}

	var handle core.TxHandle
	err = t.account.withNonce(ctx, t.backend, func(nonce uint64) error {
		tx, err := t.buildTx(ctx, nonce, data)
		if err != nil {
			return err
		}
		if err := t.backend.SendTransaction(ctx, tx); err != nil {
			return errors.Wrapf(err, "failed to send tx with nonce %d", nonce)
		}
		t.pending.Store(tx.Hash(), tx)
		handle = core.TxHandle{Hash: tx.Hash(), Nonce: nonce}
		return nil
	})
	if err != nil {
		return core.TxHandle{}, classifyRPCError(err)
	}
	return handle, nil
}

func (t *Target) buildTx(ctx context.Context, nonce uint64, data []byte) (*types.Transaction, error) {
	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to suggest gas price")
	}
	gas, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     t.account.address,
		To:       &t.receiver,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to estimate gas")
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas + gas*gasHeadroom/100,
		To:       &t.receiver,
		Data:     data,
	})
	signed, err := types.SignTx(tx, t.signer, t.account.key)
	if err != nil {
		return nil, core.Fatal(errors.Wrap(err, "failed to sign tx"))
	}
	return signed, nil
}

// AwaitConfirmation waits for the receipt of a transaction sent by ReceiveAndExecute.
// A transaction whose wait is cut short stays known to CheckConfirmation.
func (t *Target) AwaitConfirmation(ctx context.Context, handle core.TxHandle) (*core.Confirmation, error) {
	tx, err := t.sentTx(handle)
	if err != nil {
		return nil, err
	}
	receipt, err := bind.WaitMined(ctx, t.backend, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to wait for tx %s", handle.Hash.Hex())
	}
	t.pending.Delete(handle.Hash)
	return t.confirmation(ctx, tx, receipt), nil
}

// CheckConfirmation looks up the receipt of a transaction sent by ReceiveAndExecute
// without waiting. It returns a nil Confirmation while the transaction is not mined.
func (t *Target) CheckConfirmation(ctx context.Context, handle core.TxHandle) (*core.Confirmation, error) {
	tx, err := t.sentTx(handle)
	if err != nil {
		return nil, err
	}
	receipt, err := t.backend.TransactionReceipt(ctx, handle.Hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to get the receipt of tx %s", handle.Hash.Hex())
	}
	t.pending.Delete(handle.Hash)
	return t.confirmation(ctx, tx, receipt), nil
}

func (t *Target) sentTx(handle core.TxHandle) (*types.Transaction, error) {
	v, ok := t.pending.Load(handle.Hash)
	if !ok {
		return nil, core.Fatal(errors.Newf("tx %s was not sent by this relayer", handle.Hash.Hex()))
	}
	return v.(*types.Transaction), nil
}

func (t *Target) confirmation(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) *core.Confirmation {
	conf := &core.Confirmation{
		Success:     receipt.Status == types.ReceiptStatusSuccessful,
		BlockNumber: receipt.BlockNumber.Uint64(),
	}
	if !conf.Success {
		conf.RevertReason = t.replayRevertReason(ctx, tx, receipt.BlockNumber)
		t.logger().WarnContext(ctx, "tx reverted", "tx_hash", tx.Hash().Hex(), "block_number", conf.BlockNumber, "reason", conf.RevertReason)
	}
	return conf
}

// replayRevertReason re-executes a failed tx at its block to recover the revert reason.
func (t *Target) replayRevertReason(ctx context.Context, tx *types.Transaction, block *big.Int) string {
	_, err := t.backend.CallContract(ctx, ethereum.CallMsg{
		From:     t.account.address,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}, block)
	if err == nil {
		return "unknown reason"
	}
	return revertReason(err)
}
