package errors

import "errors"

var (
	// ErrNoLink means the user never connected an external calendar. Callers
	// treat this as "external checking disabled", not as a failure.
	ErrNoLink = errors.New("no calendar link for user")

	// ErrCredentialExpired means the stored credential can no longer be used.
	// Conflict checking must fail on it rather than report "no conflict".
	ErrCredentialExpired = errors.New("calendar credential expired")

	// ErrProviderUnavailable wraps transport or provider-side failures.
	ErrProviderUnavailable = errors.New("calendar provider unavailable")
)
