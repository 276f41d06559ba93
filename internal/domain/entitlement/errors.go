package entitlement

import "errors"

var (
	// ErrNotFound indicates the entitlement does not exist.
	ErrNotFound = errors.New("entitlement not found")

	// ErrAlreadyGranted indicates an entitlement from the same source event
	// already exists. Callers treat this as success.
	ErrAlreadyGranted = errors.New("entitlement already granted for this event")
)
