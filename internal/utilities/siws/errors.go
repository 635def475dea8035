package siws

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is (ErrMalformedURI also matches ErrValidation, and all
// verification failures also match ErrVerification).
var (
	ErrParsing          = errors.New("siws: message could not be parsed")
	ErrValidation       = errors.New("siws: field failed validation")
	ErrMalformedURI     = errors.New("siws: URI is not valid")
	ErrInvalidFieldType = errors.New("siws: field has invalid type")

	ErrVerification                = errors.New("siws: verification failed")
	ErrDomainMismatch              = errors.New("siws: domain does not match")
	ErrNonceMismatch               = errors.New("siws: nonce does not match")
	ErrExpiredMessage              = errors.New("siws: message is expired")
	ErrNotYetValidMessage          = errors.New("siws: message is not yet valid")
	ErrInvalidSignature            = errors.New("siws: signature is not valid")
	ErrMalformedAddressOrSignature = errors.New("siws: address or signature is not valid base58")

	ErrUnresolvedIssuedAt = errors.New("siws: Issued At is not resolved")
	ErrUnknownParserMode  = errors.New("siws: unknown parser mode")
)

// ParsingError reports raw text that does not match the message layout.
type ParsingError struct {
	Field  string
	Line   int // 0-based, -1 when not tied to a line
	Reason string
}

func (e *ParsingError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("siws: %s at line %d: %s", e.Field, e.Line, e.Reason)
	}
	return fmt.Sprintf("siws: %s: %s", e.Field, e.Reason)
}

func (e *ParsingError) Is(target error) bool {
	return target == ErrParsing
}

func errMissingField(field string) error {
	return &ParsingError{Field: field, Line: -1, Reason: "is not specified"}
}

func errMalformedLine(field string, line int, reason string) error {
	return &ParsingError{Field: field, Line: line, Reason: reason}
}

// ValidationError reports a present field that violates its rule.
type ValidationError struct {
	Field string
	Rule  string
	Value string

	uri bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("siws: %s %s", e.Field, e.Rule)
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.uri && target == ErrMalformedURI
}

func errInvalidField(field, rule, value string) error {
	return &ValidationError{Field: field, Rule: rule, Value: value}
}

func errMalformedURI(field, value string) error {
	return &ValidationError{Field: field, Rule: "is not a valid URI", Value: value, uri: true}
}

// InvalidFieldTypeError reports a raw value that cannot be coerced to the
// field's type.
type InvalidFieldTypeError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidFieldTypeError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("siws: %s has invalid type: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("siws: %s has invalid value %q: %v", e.Field, e.Value, e.Err)
}

func (e *InvalidFieldTypeError) Is(target error) bool {
	return target == ErrInvalidFieldType
}

func (e *InvalidFieldTypeError) Unwrap() error {
	return e.Err
}

// MismatchError is returned when a caller-supplied expectation does not
// match the message.
type MismatchError struct {
	Field    string
	Expected string
	Actual   string

	kind error
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: expected %q got %q", e.kind.Error(), e.Expected, e.Actual)
}

func (e *MismatchError) Is(target error) bool {
	return target == e.kind || target == ErrVerification
}

// TimeWindowError is returned when the verification time falls outside the
// message's freshness window.
type TimeWindowError struct {
	Bound            time.Time
	VerificationTime time.Time

	kind error
}

func (e *TimeWindowError) Error() string {
	return fmt.Sprintf("%s: bound %s, verified at %s", e.kind.Error(), e.Bound.UTC().Format(time.RFC3339Nano), e.VerificationTime.UTC().Format(time.RFC3339Nano))
}

func (e *TimeWindowError) Is(target error) bool {
	return target == e.kind || target == ErrVerification
}

// DecodeError is returned when the address or signature cannot be decoded
// into key material.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedAddressOrSignature.Error(), e.Field, e.Err)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedAddressOrSignature || target == ErrVerification
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type signatureError struct{}

func (signatureError) Error() string { return ErrInvalidSignature.Error() }

func (signatureError) Is(target error) bool {
	return target == ErrInvalidSignature || target == ErrVerification
}

// errSignature carries no detail so nothing about the failed comparison leaks.
var errSignature error = signatureError{}
