package errors

import (
	"errors"
	"fmt"
)

// Is re-exports the standard library check so callers importing this
// package don't need a second errors import just for sentinel tests.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

var (
	ErrInvalidRoom        = fmt.Errorf("room is not part of the catalog")
	ErrUnknownConnection  = fmt.Errorf("connection is not registered")
	ErrIndexOutOfRange    = fmt.Errorf("message index is out of range")
	ErrEmptyMessage       = fmt.Errorf("message body is empty")
	ErrMissingTarget      = fmt.Errorf("private message target is not connected")
	ErrUsernameTaken      = fmt.Errorf("username already exists")
	ErrEmailTaken         = fmt.Errorf("email already registered")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrBackpressure       = fmt.Errorf("send buffer full")
	ErrConnectionClosed   = fmt.Errorf("connection closed")
)
