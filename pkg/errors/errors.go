// Package errors provides structured error handling for the bot.
// It defines error kinds matching the flow-level failure taxonomy and
// helpers for adding context and details to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Kind classifies an error for flow-control decisions.
type Kind int

// Error kinds.
const (
	// KindGeneral is an unclassified internal error.
	KindGeneral Kind = iota

	// KindPrecondition means the operation could not start at all
	// (for example, the user has no wallet yet). The flow never begins.
	KindPrecondition

	// KindValidation means the user's input was rejected. The enclosing
	// step is re-entered and the user may retry without restarting.
	KindValidation

	// KindGateway means an external call failed. The failure is logged,
	// surfaced generically, and the enclosing flow terminates.
	KindGateway

	// KindNotFound means a requested resource does not exist.
	KindNotFound
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindValidation:
		return "validation"
	case KindGateway:
		return "gateway"
	case KindNotFound:
		return "not_found"
	default:
		return "general"
	}
}

// BotError is the structured error type for the bot.
type BotError struct {
	Code    string            // Machine-readable error code
	Kind    Kind              // Failure classification
	Message string            // Human-readable message
	Details map[string]string // Additional context
	Cause   error             // Underlying error
}

func (e *BotError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *BotError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for BotError. Two BotErrors match when their
// codes are equal.
func (e *BotError) Is(target error) bool {
	var te *BotError
	if errors.As(target, &te) {
		return e.Code == te.Code
	}
	return false
}

// New creates a BotError with the given kind, code, and message.
func New(kind Kind, code, message string) *BotError {
	return &BotError{Code: code, Kind: kind, Message: message}
}

// Wrap creates a BotError wrapping a cause.
func Wrap(kind Kind, code, message string, cause error) *BotError {
	return &BotError{Code: code, Kind: kind, Message: message, Cause: cause}
}

// WithDetail returns a copy of the error with an extra detail attached.
func (e *BotError) WithDetail(key, value string) *BotError {
	clone := *e
	clone.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

// Precondition creates a precondition-failure error.
func Precondition(code, message string) *BotError {
	return New(KindPrecondition, code, message)
}

// Validation creates an input-validation error.
func Validation(code, message string) *BotError {
	return New(KindValidation, code, message)
}

// Gateway creates an external-gateway error wrapping the cause.
func Gateway(code, message string, cause error) *BotError {
	return Wrap(KindGateway, code, message, cause)
}

// NotFound creates a resource-not-found error.
func NotFound(code, message string) *BotError {
	return New(KindNotFound, code, message)
}

// KindOf returns the kind of err, or KindGeneral for non-BotError values.
func KindOf(err error) Kind {
	var be *BotError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindGeneral
}

// IsPrecondition reports whether err is a precondition failure.
func IsPrecondition(err error) bool {
	return KindOf(err) == KindPrecondition
}

// IsValidation reports whether err is an input-validation failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsGateway reports whether err is an external-gateway failure.
func IsGateway(err error) bool {
	return KindOf(err) == KindGateway
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
