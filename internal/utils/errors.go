package utils

import "errors"

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrInvalidDestination = errors.New("invalid_destination")

	// Reissue throttle: an active code was issued too recently.
	ErrTooManyRequests = errors.New("too_many_requests")

	// Counter-based rate limiting (global / per-IP / per-destination).
	ErrRateLimitExceeded = errors.New("rate_limit_exceeded")

	// External delivery provider failed or timed out. The pending record
	// is kept; the caller decides whether to reissue.
	ErrDeliveryFailure = errors.New("delivery_failure")

	// Outcomes of a code check.
	ErrCodeExpired   = errors.New("code_expired")
	ErrCodeInvalid   = errors.New("invalid_code")
	ErrCodeExhausted = errors.New("too_many_attempts")

	// Store-internal: no active record for the destination. Never leaves
	// the service layer as-is; callers see ErrCodeExpired instead.
	ErrNotFound = errors.New("not_found")

	// Underlying storage unreachable. Not retried by the core.
	ErrStoreUnavailable = errors.New("store_unavailable")

	ErrUserNotFound      = errors.New("user_not_found")
	ErrUserAlreadyExists = errors.New("user_already_exists")
)
