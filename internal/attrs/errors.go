package attrs

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField          = errors.New("missing field")
	ErrInvalidField          = errors.New("invalid field")
	ErrSpeedLimitUnparseable = errors.New("speed limit unparseable")
)

// MissingFieldError is returned when a required property, the properties
// block or the geometry block is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string { return fmt.Sprintf("missing field %q", e.Field) }

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// InvalidFieldError is returned when a property is present but cannot be
// converted to the column's type.
type InvalidFieldError struct {
	Field string
	Value interface{}
	cause error
}

func (e *InvalidFieldError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.cause)
	}
	return fmt.Sprintf("invalid %s %v", e.Field, e.Value)
}

func (e *InvalidFieldError) Unwrap() error { return e.cause }

func (e *InvalidFieldError) Is(target error) bool { return target == ErrInvalidField }

// SpeedLimitUnparseableError is returned when a speed limit token carries no
// digits at all.
type SpeedLimitUnparseableError struct {
	Raw string
}

func (e *SpeedLimitUnparseableError) Error() string {
	return fmt.Sprintf("speed limit %q has no numeric value", e.Raw)
}

func (e *SpeedLimitUnparseableError) Is(target error) bool { return target == ErrSpeedLimitUnparseable }
