package ethereum

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/spyro-labs/spyro-relayer/core"
)

const defaultPollInterval = 5 * time.Second

// SourceConfig describes the chain the Wormhole core contract emits messages on.
type SourceConfig struct {
	ChainID      uint16        `json:"chain_id" yaml:"chain_id" mapstructure:"chain_id"`
	RPCURL       string        `json:"rpc_url" yaml:"rpc_url" mapstructure:"rpc_url"`
	CoreContract string        `json:"core_contract" yaml:"core_contract" mapstructure:"core_contract"`
	Emitter      string        `json:"emitter" yaml:"emitter" mapstructure:"emitter"`
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"`
	// StartBlock is where an HTTP log poller begins. Zero means the head at start-up.
	StartBlock uint64 `json:"start_block" yaml:"start_block" mapstructure:"start_block"`
}

func (c SourceConfig) Validate() error {
	var errs []error
	if c.ChainID == 0 {
		errs = append(errs, errors.New("source.chain_id is required"))
	}
	if c.RPCURL == "" {
		errs = append(errs, errors.New("source.rpc_url is required"))
	}
	if !common.IsHexAddress(c.CoreContract) {
		errs = append(errs, errors.Newf("source.core_contract is not an address: %q", c.CoreContract))
	}
	if !common.IsHexAddress(c.Emitter) {
		errs = append(errs, errors.Newf("source.emitter is not an address: %q", c.Emitter))
	}
	if c.PollInterval < 0 {
		errs = append(errs, errors.New("source.poll_interval must not be negative"))
	}
	if len(errs) > 0 {
		return core.ConfigurationError(errors.Join(errs...))
	}
	return nil
}

func (c SourceConfig) EmitterAddress() common.Address {
	return common.HexToAddress(c.Emitter)
}

// Build dials the source RPC endpoint.
func (c SourceConfig) Build(ctx context.Context) (*Source, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	client, err := ethclient.DialContext(ctx, c.RPCURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial source RPC %s", c.RPCURL)
	}
	return NewSource(c, client), nil
}

// TargetConfig describes the chain hosting the receiver contract.
type TargetConfig struct {
	RPCURL              string        `json:"rpc_url" yaml:"rpc_url" mapstructure:"rpc_url"`
	ReceiverContract    string        `json:"receiver_contract" yaml:"receiver_contract" mapstructure:"receiver_contract"`
	PrivateKey          string        `json:"private_key" yaml:"private_key" mapstructure:"private_key"`
	ConfirmationTimeout time.Duration `json:"confirmation_timeout" yaml:"confirmation_timeout" mapstructure:"confirmation_timeout"`
}

func (c TargetConfig) Validate() error {
	var errs []error
	if c.RPCURL == "" {
		errs = append(errs, errors.New("target.rpc_url is required"))
	}
	if !common.IsHexAddress(c.ReceiverContract) {
		errs = append(errs, errors.Newf("target.receiver_contract is not an address: %q", c.ReceiverContract))
	}
	if c.PrivateKey == "" {
		errs = append(errs, errors.New("target.private_key is required"))
	} else if _, err := parsePrivateKey(c.PrivateKey); err != nil {
		errs = append(errs, errors.Wrap(err, "target.private_key is invalid"))
	}
	if c.ConfirmationTimeout < 0 {
		errs = append(errs, errors.New("target.confirmation_timeout must not be negative"))
	}
	if len(errs) > 0 {
		return core.ConfigurationError(errors.Join(errs...))
	}
	return nil
}

// Build dials the target RPC endpoint and loads the relayer account.
func (c TargetConfig) Build(ctx context.Context) (*Target, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	client, err := ethclient.DialContext(ctx, c.RPCURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial target RPC %s", c.RPCURL)
	}
	return NewTarget(ctx, c, client)
}

func parsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

// WormholeChainID returns the Wormhole id of the source chain.
func (c SourceConfig) WormholeChainID() vaa.ChainID {
	return vaa.ChainID(c.ChainID)
}
