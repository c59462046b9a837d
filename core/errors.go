package core

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// Error kinds. Concrete errors carry one or more of these as marks, so errors.Is
// keeps working after wrapping.
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrSubscription         = errors.New("subscription error")
	ErrFetch                = errors.New("attestation fetch error")
	ErrVerificationRejected = errors.New("verification rejected")
	ErrBindingMismatch      = errors.New("binding mismatch")
	ErrSubmissionTransient  = errors.New("transient submission error")
	ErrSubmissionFatal      = errors.New("fatal submission error")

	// ErrAlreadyProcessed and ErrReverted are both also ErrSubmissionFatal.
	ErrAlreadyProcessed = errors.New("message already processed")
	ErrReverted         = errors.New("transaction reverted")
)

func markAll(err error, refs ...error) error {
	for _, ref := range refs {
		err = errors.Mark(err, ref)
	}
	return err
}

func ConfigurationError(err error) error {
	return errors.Mark(err, ErrConfiguration)
}

func SubscriptionError(err error) error {
	return errors.Mark(errors.Wrap(err, "source subscription failed"), ErrSubscription)
}

func FetchError(err error) error {
	return errors.Mark(errors.Wrap(err, "failed to fetch signed VAA"), ErrFetch)
}

func VerificationRejected(reason string) error {
	return errors.Mark(errors.Newf("attestation rejected: %s", reason), ErrVerificationRejected)
}

func BindingMismatch(expected Binding, chain vaa.ChainID, addr vaa.Address) error {
	return markAll(
		errors.Newf("emitter %d/%s is not bound to this relayer (expected %s)", uint16(chain), addr.String(), expected.String()),
		ErrBindingMismatch, ErrSubmissionFatal,
	)
}

// Transient marks err as a retryable submission failure.
func Transient(err error) error {
	return errors.Mark(err, ErrSubmissionTransient)
}

// Fatal marks err as a terminal submission failure.
func Fatal(err error) error {
	return errors.Mark(err, ErrSubmissionFatal)
}

func AlreadyProcessed(err error) error {
	return markAll(err, ErrAlreadyProcessed, ErrSubmissionFatal)
}

func Reverted(err error) error {
	return markAll(err, ErrReverted, ErrSubmissionFatal)
}

func IsSubscriptionError(err error) bool {
	return errors.Is(err, ErrSubscription)
}

// IsRetryable reports whether a publish attempt that failed with err may be retried.
// Errors that carry no kind at all are treated as transient.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrSubmissionFatal),
		errors.Is(err, ErrVerificationRejected),
		errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}

// Classify maps a pipeline error onto the status and reason reported for it.
func Classify(err error) (Status, Reason) {
	switch {
	case err == nil:
		return StatusDelivered, ReasonNone
	case errors.Is(err, ErrBindingMismatch):
		return StatusFailedFatal, ReasonBindingMismatch
	case errors.Is(err, ErrAlreadyProcessed):
		return StatusFailedFatal, ReasonAlreadyProcessed
	case errors.Is(err, ErrReverted):
		return StatusFailedFatal, ReasonReverted
	case errors.Is(err, ErrSubmissionFatal):
		return StatusFailedFatal, ReasonSubmissionFatal
	case errors.Is(err, ErrVerificationRejected):
		return StatusRejected, ReasonVerificationRejected
	case errors.Is(err, ErrFetch):
		return StatusFailedRetryable, ReasonFetchError
	case errors.Is(err, context.Canceled):
		return StatusFailedRetryable, ReasonCancelled
	default:
		return StatusFailedRetryable, ReasonTransient
	}
}

// RevertError builds the error for a reverted call. The target contract's
// duplicate guard reverts with a reason mentioning the message was already
// processed; that case is kept distinguishable from other reverts.
func RevertError(reason string) error {
	err := errors.Newf("execution reverted: %s", reason)
	lower := strings.ToLower(reason)
	if strings.Contains(lower, "already") || strings.Contains(lower, "duplicate") {
		return AlreadyProcessed(err)
	}
	return Reverted(err)
}
