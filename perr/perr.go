// Package perr implements the closed error-kind taxonomy shared by every
// layer of the pipeline substrate: the provider registry, the model
// selector, the artifact cache, and the step executor all return errors
// through this single structured type so callers can switch on Kind
// instead of string-matching messages.
package perr

import (
	"errors"
	"fmt"
)

// Kind is a closed enumeration of error categories. New kinds must not be
// added without updating Retryable and the propagation policy in the
// executor.
type Kind string

const (
	KindMissingCredential       Kind = "missing_credential"
	KindHTTP                    Kind = "http"
	KindTimeout                 Kind = "timeout"
	KindCancelled               Kind = "cancelled"
	KindParseFailure            Kind = "parse_failure"
	KindSchemaMismatch          Kind = "schema_mismatch"
	KindDeclaredAccessViolation Kind = "declared_access_violation"
	KindProviderExhausted       Kind = "provider_exhausted"
	KindInternal                Kind = "internal"
)

// Error is the structured error value returned by every fallible operation
// in this module. It deliberately does not embed a stack trace; callers
// that want one should wrap Cause with their own tracing error.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status code, only meaningful when Kind == KindHTTP.
	Status int
	// Body is the raw response body, only meaningful when Kind == KindHTTP.
	Body  string
	Cause error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("%s: status=%d: %s", e.Kind, e.Status, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, perr.KindX) style comparisons work against a
// sentinel constructed with only a Kind set, e.g. errors.Is(err, &perr.Error{Kind: perr.KindTimeout}).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Retryable reports whether the retry policy in §5 of the spec should back
// off and retry an operation that failed with this error, per the recovery
// column of the error kind table.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindHTTP:
		return e.Status == 429 || (e.Status >= 500 && e.Status < 600)
	case KindTimeout:
		return true
	default:
		return false
	}
}

// Fatal reports whether the kind aborts its parent sequence/pipeline
// unconditionally regardless of a step's own fatal declaration.
func (e *Error) Fatal() bool {
	return e.Kind == KindCancelled
}

func MissingCredential(provider string) *Error {
	return &Error{Kind: KindMissingCredential, Message: fmt.Sprintf("no credential available for provider %q", provider)}
}

func HTTPStatus(status int, body string) *Error {
	return &Error{Kind: KindHTTP, Status: status, Body: body, Message: "request failed"}
}

func Timeout(op string, cause error) *Error {
	return &Error{Kind: KindTimeout, Message: op, Cause: cause}
}

func Cancelled(op string) *Error {
	return &Error{Kind: KindCancelled, Message: op}
}

func ParseFailure(source string, cause error) *Error {
	return &Error{Kind: KindParseFailure, Message: source, Cause: cause}
}

func SchemaMismatch(expected, found any) *Error {
	return &Error{Kind: KindSchemaMismatch, Message: fmt.Sprintf("expected schema %v, found %v", expected, found)}
}

func DeclaredAccessViolation(step, key string) *Error {
	return &Error{Kind: KindDeclaredAccessViolation, Message: fmt.Sprintf("step %q accessed undeclared key %q", step, key)}
}

func ProviderExhausted(tier string) *Error {
	return &Error{Kind: KindProviderExhausted, Message: fmt.Sprintf("no available provider for tier %q", tier)}
}

func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}

func Internalf(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Cause: cause}
}
