package core

import "errors"

// Error codes surfaced to clients as protocol error events.
const (
	ErrCodeNotInRoom     = "not_in_room"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeMediaDisabled = "media_disabled"
	ErrCodeMediaFailed   = "media_error"
)

var (
	ErrNotInRoom  = errors.New("not in room")
	ErrBadRequest = errors.New("bad request")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// Is lets callers match coded errors against the package sentinels without
// inspecting code strings.
func (e *CoreError) Is(target error) bool {
	switch target {
	case ErrNotInRoom:
		return e.Code == ErrCodeNotInRoom
	case ErrBadRequest:
		return e.Code == ErrCodeBadRequest
	}
	return false
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
