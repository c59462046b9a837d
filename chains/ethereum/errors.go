package ethereum

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/spyro-labs/spyro-relayer/core"
)

const executionReverted = "execution reverted"

// classifyRPCError attaches a submission error kind to an error returned by the target RPC.
func classifyRPCError(err error) error {
	if err == nil || errors.Is(err, core.ErrSubmissionFatal) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, executionReverted):
		return errors.WithSecondaryError(core.RevertError(revertReason(err)), err)
	case strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "intrinsic gas too low"):
		return core.Fatal(err)
	default:
		// nonce races, underpriced replacements, timeouts and connection failures all land here
		return core.Transient(err)
	}
}

func isNonceError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nonce too low") || strings.Contains(msg, "nonce too high")
}

// revertReason extracts the Error(string) reason of a reverted call.
func revertReason(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if s, ok := dataErr.ErrorData().(string); ok {
			if bz, decErr := hexutil.Decode(s); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(bz); unpackErr == nil {
					return reason
				}
			}
		}
	}
	msg := err.Error()
	if i := strings.Index(msg, executionReverted); i >= 0 {
		reason := strings.TrimPrefix(msg[i+len(executionReverted):], ":")
		if reason = strings.TrimSpace(reason); reason != "" {
			return reason
		}
	}
	return msg
}
