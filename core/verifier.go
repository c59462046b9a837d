package core

//go:generate mockgen -source verifier.go -destination mock_verifier.go -package core

import "context"

// Verifier validates the signatures and structure of a raw VAA.
//
// An invalid signature set is not an error: implementations return an attestation
// with Valid set to false. Errors are reserved for bytes that cannot be parsed at all.
type Verifier interface {
	Verify(ctx context.Context, raw []byte) (*SignedAttestation, error)
}

// VerifierFunc adapts an ordinary function to the Verifier interface.
type VerifierFunc func(ctx context.Context, raw []byte) (*SignedAttestation, error)

func (f VerifierFunc) Verify(ctx context.Context, raw []byte) (*SignedAttestation, error) {
	return f(ctx, raw)
}
