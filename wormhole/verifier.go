package wormhole

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/spyro-labs/spyro-relayer/core"
)

// GuardianSet is the set of guardian keys VAAs must be signed by.
type GuardianSet struct {
	Index uint32
	Keys  []common.Address
}

// GuardianVerifier checks VAAs against a fixed guardian set.
type GuardianVerifier struct {
	set GuardianSet
}

var _ core.Verifier = (*GuardianVerifier)(nil)

func NewGuardianVerifier(set GuardianSet) (*GuardianVerifier, error) {
	if len(set.Keys) == 0 {
		return nil, core.ConfigurationError(errors.New("guardian set is empty"))
	}
	return &GuardianVerifier{set: set}, nil
}

// Verify parses raw and checks its signatures. A VAA signed by the wrong guardian
// set or without quorum comes back with Valid=false.
func (v *GuardianVerifier) Verify(ctx context.Context, raw []byte) (*core.SignedAttestation, error) {
	parsed, err := vaa.Unmarshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse VAA")
	}

	att := &core.SignedAttestation{
		Message: core.ChainMessage{
			EmitterChain:     parsed.EmitterChain,
			EmitterAddress:   parsed.EmitterAddress,
			Sequence:         parsed.Sequence,
			Nonce:            parsed.Nonce,
			Payload:          parsed.Payload,
			ConsistencyLevel: parsed.ConsistencyLevel,
		},
		EmitterChain:   parsed.EmitterChain,
		EmitterAddress: parsed.EmitterAddress,
		Raw:            raw,
	}

	logger := core.GetMessageLogger(att.Message.ID(), "wormhole.verifier")
	switch {
	case parsed.GuardianSetIndex != v.set.Index:
		logger.WarnContext(ctx, "VAA signed by another guardian set", "guardian_set_index", parsed.GuardianSetIndex, "expected", v.set.Index)
	default:
		if err := parsed.Verify(v.set.Keys); err != nil {
			logger.WarnContext(ctx, "VAA signature check failed", "error", err)
			break
		}
		att.Valid = true
	}
	return att, nil
}
