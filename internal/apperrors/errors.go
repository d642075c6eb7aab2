// Package apperrors classifies failures so callers can show a safe message
// and decide whether trying again makes sense.
package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindTransient  Kind = "transient"
	KindRateLimit  Kind = "rate_limit"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindBadRequest Kind = "bad_request"

	// KindInvalidInput marks caller-supplied data that can never succeed,
	// such as an image buffer with zero dimensions.
	KindInvalidInput Kind = "invalid_input"
)

type kindInfo struct {
	message   string
	retryable bool
}

// kinds holds the defaults per kind. Validation is retryable because it
// covers malformed model output, which a later attempt may not repeat.
var kinds = map[Kind]kindInfo{
	KindTransient:    {"The recognition service is temporarily unavailable.", true},
	KindRateLimit:    {"The recognition service is rate limiting requests.", true},
	KindAuth:         {"The API key was rejected. Check the key and its permissions.", false},
	KindValidation:   {"The recognition service returned an unreadable answer.", true},
	KindBadRequest:   {"The recognition service rejected the request.", false},
	KindInvalidInput: {"The input could not be processed.", false},
}

const fallbackMessage = "Request failed."

// Error pairs a Kind with a message that is safe for users and logs. Cause
// keeps the internal error for errors.Is/As and debugging.
type Error struct {
	Kind        Kind
	SafeMessage string
	Cause       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return fallbackMessage
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New wraps cause. An empty safeMessage selects the default for kind.
func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = DefaultMessage(kind)
	}
	return &Error{Kind: kind, SafeMessage: msg, Cause: cause}
}

// DefaultMessage is the user-facing text for kind when no specific one is given.
func DefaultMessage(kind Kind) string {
	if info, ok := kinds[kind]; ok {
		return info.message
	}
	return fallbackMessage
}

func Validation(err error) error {
	return New(KindValidation, "", err)
}

func InvalidInput(safeMessage string, err error) error {
	return New(KindInvalidInput, safeMessage, err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

// Is reports whether err, or an error it wraps, is an *Error of kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsInvalidInput(err error) bool {
	return Is(err, KindInvalidInput)
}

// IsRetryable reports whether the same request might succeed later.
func IsRetryable(err error) bool {
	k, ok := KindOf(err)
	return ok && kinds[k].retryable
}

// PublicMessage returns the safe message of an *Error, or err's own text.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
