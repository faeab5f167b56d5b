package diag

import (
	"errors"
	"fmt"
)

// Error is a classified compilation failure.
type Error struct {
	Code    Code
	Subject string // offending name, node kind, register or text line
	Msg     string
}

// Errorf builds an Error for subject with a formatted message.
func Errorf(code Code, subject, format string, args ...any) *Error {
	return &Error{Code: code, Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

// New builds an Error whose message is the code title.
func New(code Code, subject string) *Error {
	return &Error{Code: code, Subject: subject}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.Title()
	}
	if e.Subject == "" {
		return fmt.Sprintf("%s: %s", e.Code.ID(), msg)
	}
	return fmt.Sprintf("%s: %s: %q", e.Code.ID(), msg, e.Subject)
}

// Is reports whether target is the same code.
func (e *Error) Is(target error) bool {
	var c Code
	if errors.As(target, &c) {
		return c == e.Code
	}
	return false
}

// CodeOf extracts the classification from err.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	var c Code
	if errors.As(err, &c) {
		return c, true
	}
	return UnknownCode, false
}
