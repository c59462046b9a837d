package ethereum

import (
	"context"
	"crypto/ecdsa"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// account is the relayer's signing account on the target chain. Nonces are
// handed out under mu, so transactions from one process never race each other.
type account struct {
	key     *ecdsa.PrivateKey
	address common.Address

	mu     sync.Mutex
	nonce  uint64
	synced bool
}

func newAccount(key *ecdsa.PrivateKey) *account {
	return &account{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// withNonce runs send with the next nonce while holding the account. The nonce is
// consumed only when send succeeds; a nonce error resyncs it from the pending state.
func (a *account) withNonce(ctx context.Context, backend TargetBackend, send func(nonce uint64) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.synced {
		nonce, err := backend.PendingNonceAt(ctx, a.address)
		if err != nil {
			return errors.Wrapf(err, "failed to get pending nonce of %s", a.address.Hex())
		}
		a.nonce = nonce
		a.synced = true
	}

	if err := send(a.nonce); err != nil {
		if isNonceError(err) {
			a.synced = false
		}
		return err
	}
	a.nonce++
	return nil
}
