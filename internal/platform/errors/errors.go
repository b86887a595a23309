package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotSignedIn      = errors.New("not signed in")
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrQueueLocked      = errors.New("offline queue is held by another process")
	ErrQueueUnsupported = errors.New("offline queue is not supported on this host")
	ErrQueueDisabled    = errors.New("offline queue is not enabled")
)

// AuthError carries the identity provider's error code alongside a readable
// message. Error returns only the message.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
