package analysis

import (
	"errors"
	"fmt"
)

// Gateway failure reasons. Every GatewayError wraps exactly one of these.
var (
	ErrUnavailable   = errors.New("inference provider unavailable")
	ErrNoPayload     = errors.New("no JSON object in provider output")
	ErrMalformedJSON = errors.New("malformed JSON in provider output")
)

// GatewayError is an absorbed inference failure. errors.Is matches both the reason
// sentinel and the underlying cause.
type GatewayError struct {
	Reason error
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%v: %v", e.Reason, e.Err)
}

func (e *GatewayError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Reason != nil {
		out = append(out, e.Reason)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// ReasonCode is the short label used in logs and metrics.
func (e *GatewayError) ReasonCode() string {
	switch {
	case errors.Is(e.Reason, ErrNoPayload):
		return "no_payload"
	case errors.Is(e.Reason, ErrMalformedJSON):
		return "malformed_json"
	default:
		return "unavailable"
	}
}

func gatewayErr(reason, err error) *GatewayError {
	return &GatewayError{Reason: reason, Err: err}
}

// SchemaError names the first field of a candidate result that breaks the contract.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: field %q %s", e.Field, e.Reason)
}

// ValidationError rejects caller input before orchestration. It is the only
// analysis error that reaches the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
