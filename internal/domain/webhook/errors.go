package webhook

import "errors"

var (
	// ErrNotFound indicates the webhook event does not exist.
	ErrNotFound = errors.New("webhook event not found")

	// ErrSignatureInvalid indicates the provider signature did not verify.
	ErrSignatureInvalid = errors.New("webhook signature verification failed")

	// ErrUnknownProvider indicates no adapter is registered for the
	// provider named in the request path.
	ErrUnknownProvider = errors.New("unknown webhook provider")

	// ErrCorrelationMismatch indicates the event's echoed correlation
	// fields (amount, subscription reference) disagree with the stored
	// subscription. Known mismatches are acknowledged, not retried.
	ErrCorrelationMismatch = errors.New("webhook correlation fields do not match subscription")
)
