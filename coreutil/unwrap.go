package coreutil

import (
	"fmt"

	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/otelcore"
)

// UnwrapTarget finds the first value under the tracing decorators that matches the
// specified type argument.
//
// In the following example, UnwrapTarget returns the *ethereum.Target behind a traced target:
//
//	target, err := coreutil.UnwrapTarget[*ethereum.Target](publisher.Target())
func UnwrapTarget[T core.TargetChain](t core.TargetChain) (T, error) {
	target := t
	for {
		switch unwrapped := target.(type) {
		case *otelcore.Target:
			target = unwrapped.TargetChain
		case T:
			return unwrapped, nil
		default:
			var zero T
			return zero, fmt.Errorf("failed to unwrap target: expected=%T, actual=%T", zero, unwrapped)
		}
	}
}

// UnwrapVerifier finds the first value under the tracing decorators that matches the
// specified type argument.
func UnwrapVerifier[V core.Verifier](v core.Verifier) (V, error) {
	verifier := v
	for {
		switch unwrapped := verifier.(type) {
		case *otelcore.Verifier:
			verifier = unwrapped.Verifier
		case V:
			return unwrapped, nil
		default:
			var zero V
			return zero, fmt.Errorf("failed to unwrap verifier: expected=%T, actual=%T", zero, unwrapped)
		}
	}
}
