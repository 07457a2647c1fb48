// Package errs defines the typed failure kinds returned by every bridge operation.
// Callers branch on Kind (via errors.Is or KindOf), never on message text.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure.
type Kind string

const (
	KindUnknown            Kind = "UNKNOWN"
	KindValidation         Kind = "VALIDATION"
	KindMinimumAmount      Kind = "MINIMUM_AMOUNT"
	KindNoCredentials      Kind = "NO_CREDENTIALS"
	KindMissingCredentials Kind = "MISSING_CREDENTIALS"
	KindKeyDerivation      Kind = "KEY_DERIVATION"
	KindInvalidAddress     Kind = "INVALID_ADDRESS"
	KindUnsupportedToken   Kind = "UNSUPPORTED_TOKEN"
	KindUnsupportedNetwork Kind = "UNSUPPORTED_NETWORK"
	KindNetworkTransport   Kind = "NETWORK_TRANSPORT"
	KindAPI                Kind = "API"
	KindChainSubmission    Kind = "CHAIN_SUBMISSION"
	KindWorkflowStep       Kind = "WORKFLOW_STEP"
	KindSettlement         Kind = "SETTLEMENT"
)

// Sentinels for errors.Is matching. Only the kind is compared.
var (
	ErrValidation         = &Error{kind: KindValidation}
	ErrMinimumAmount      = &Error{kind: KindMinimumAmount}
	ErrNoCredentials      = &Error{kind: KindNoCredentials}
	ErrMissingCredentials = &Error{kind: KindMissingCredentials}
	ErrKeyDerivation      = &Error{kind: KindKeyDerivation}
	ErrInvalidAddress     = &Error{kind: KindInvalidAddress}
	ErrUnsupportedToken   = &Error{kind: KindUnsupportedToken}
	ErrUnsupportedNetwork = &Error{kind: KindUnsupportedNetwork}
	ErrNetworkTransport   = &Error{kind: KindNetworkTransport}
	ErrAPI                = &Error{kind: KindAPI}
	ErrChainSubmission    = &Error{kind: KindChainSubmission}
	ErrWorkflowStep       = &Error{kind: KindWorkflowStep}
	ErrSettlement         = &Error{kind: KindSettlement}
)

// Error is the single typed failure carried through the bridge core.
type Error struct {
	kind    Kind
	message string
	cause   error

	// set for KindAPI only
	status int
	code   int
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying failure.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), cause: cause}
}

// API builds a provider rejection. code is the provider error code, 0 when the body carried none.
func API(status int, code int, msg string) *Error {
	if msg == "" {
		msg = fmt.Sprintf("http status %d", status)
	}
	return &Error{kind: KindAPI, message: msg, status: status, code: code}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	msg := e.message
	if e.kind == KindAPI && e.code != 0 {
		msg = fmt.Sprintf("code %d: %s", e.code, e.message)
	}

	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.kind, msg, e.cause)
	}

	return fmt.Sprintf("[%s] %s", e.kind, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches by kind so that errors.Is(err, ErrValidation) works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error) //nolint:errorlint
	if !ok || e == nil || t == nil {
		return false
	}
	return e.kind == t.kind
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindUnknown
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// StatusCode returns the HTTP status of an API failure.
func (e *Error) StatusCode() int { return e.status }

// ProviderCode returns the exchange error code of an API failure.
func (e *Error) ProviderCode() int { return e.code }

// KindOf returns the outermost Kind found in the chain of err.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// Validation is shorthand for New(KindValidation, ...).
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}
