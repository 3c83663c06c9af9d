package tumbler

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrConditionNotSatisfied indicates decrypt reached a condition whose gate is closed.
	ErrConditionNotSatisfied = errors.New("condition not satisfied")

	// ErrMalformedInput indicates a condition could not transform the given bytes.
	ErrMalformedInput = errors.New("malformed input")

	// ErrTransform indicates a condition transform failed for any other reason.
	ErrTransform = errors.New("transform failed")

	// ErrInvalidCondition indicates a condition was constructed with invalid parameters.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrInvalidCoordinate indicates a latitude or longitude is out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidKey indicates an encryption key has invalid size or format.
	ErrInvalidKey = errors.New("invalid key")

	// ErrUnknownKind indicates a manifest names a condition kind with no registered builder.
	ErrUnknownKind = errors.New("unknown condition kind")

	// ErrMissingObservation indicates a manifest step needs input the caller did not supply.
	ErrMissingObservation = errors.New("missing observation")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// StepError reports a failure at one position of a pipeline fold.
// Unwrap exposes both the sentinel and the condition's own error, so
// errors.Is matches either.
type StepError struct {
	Err       error  // Underlying sentinel error (ErrConditionNotSatisfied, ErrMalformedInput, ...)
	Index     int    // Zero-based position of the condition in the pipeline
	Kind      Kind   // Kind of the failing condition
	Operation string // encrypt or decrypt
	Cause     error  // Original error returned by the condition, if any
}

func (e *StepError) Error() string {
	if e.Cause != nil && !errors.Is(e.Cause, e.Err) {
		return fmt.Sprintf("%s step %d (%s): %s: %v", e.Operation, e.Index, e.Kind, e.Err.Error(), e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s step %d (%s): %v", e.Operation, e.Index, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s step %d (%s): %s", e.Operation, e.Index, e.Kind, e.Err.Error())
}

func (e *StepError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// ConfigError represents a pipeline or manifest configuration error.
// It wraps a sentinel error with context about the kind and field involved.
type ConfigError struct {
	Err   error  // Underlying sentinel error (ErrUnknownKind, ErrMissingObservation, ...)
	Kind  Kind   // Condition kind being configured
	Field string // Field that triggered the error
}

func (e *ConfigError) Error() string {
	if e.Field != "" && e.Kind != "" {
		return fmt.Sprintf("%s for kind %q (field %s)", e.Err.Error(), e.Kind, e.Field)
	}
	if e.Kind != "" {
		return fmt.Sprintf("%s for kind %q", e.Err.Error(), e.Kind)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (field %s)", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// stepSentinel classifies a condition's own error for StepError.Err.
func stepSentinel(cause error) error {
	switch {
	case errors.Is(cause, ErrConditionNotSatisfied):
		return ErrConditionNotSatisfied
	case errors.Is(cause, ErrMalformedInput):
		return ErrMalformedInput
	default:
		return ErrTransform
	}
}

// newStepError creates a StepError for a failed fold step.
func newStepError(sentinel error, operation string, index int, kind Kind, cause error) error {
	return &StepError{
		Err:       sentinel,
		Index:     index,
		Kind:      kind,
		Operation: operation,
		Cause:     cause,
	}
}

// newConfigError creates a ConfigError for manifest and construction failures.
func newConfigError(sentinel error, kind Kind, field string) error {
	return &ConfigError{
		Err:   sentinel,
		Kind:  kind,
		Field: field,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
