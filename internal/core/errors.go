package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotInRoom      = "not_in_room"
	ErrCodeRateLimited    = "rate_limited"
	ErrCodeInvalidMessage = "invalid_message"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotInRoom  = errors.New("not in room")
	// ErrHubStopped is returned to callers once the hub loop has exited.
	ErrHubStopped = errors.New("hub stopped")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
	err     error
}

func (e *CoreError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel so callers can use errors.Is.
func (e *CoreError) Unwrap() error {
	return e.err
}

func coreError(code, msg string, sentinel error) *CoreError {
	return &CoreError{Code: code, Message: msg, err: sentinel}
}

var (
	errMissingFields = coreError(ErrCodeBadRequest, "username and room required", ErrBadRequest)
	errNotJoined     = coreError(ErrCodeNotInRoom, "Not joined to a room", ErrNotInRoom)
)
