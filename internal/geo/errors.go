package geo

import (
	"errors"
	"fmt"
)

// Kinds accepted by EncodeWKT, named as they appear in GeoJSON.
const (
	KindLineString   = "LineString"
	KindPolygon      = "Polygon"
	KindMultiPolygon = "MultiPolygon"
)

// ErrUnsupportedKind is matched by every *UnsupportedKindError.
var ErrUnsupportedKind = errors.New("unsupported geometry kind")

// ErrMalformed is matched by every *MalformedError.
var ErrMalformed = errors.New("malformed geometry")

// UnsupportedKindError reports a geometry whose declared kind is not one of
// LineString, Polygon or MultiPolygon, or not one the caller accepts.
type UnsupportedKindError struct {
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported geometry kind: %q", e.Kind)
}

func (e *UnsupportedKindError) Is(target error) bool { return target == ErrUnsupportedKind }

// MalformedError reports coordinate data that cannot form the declared kind.
type MalformedError struct {
	Kind   string
	Reason string
	cause  error
}

func (e *MalformedError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("malformed geometry: %s", e.Reason)
	}
	return fmt.Sprintf("malformed %s: %s", e.Kind, e.Reason)
}

func (e *MalformedError) Unwrap() error { return e.cause }

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

// Malformed builds a MalformedError wrapping cause, which may be nil.
func Malformed(kind, reason string, cause error) *MalformedError {
	return &MalformedError{Kind: kind, Reason: reason, cause: cause}
}
