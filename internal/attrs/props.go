package attrs

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/unicode/norm"
)

// lookup returns the value under key, treating JSON null as absent.
func lookup(p geojson.Properties, key string) (interface{}, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Require fails with a MissingFieldError when key is absent or null.
func Require(p geojson.Properties, key string) error {
	if _, ok := lookup(p, key); !ok {
		return &MissingFieldError{Field: key}
	}
	return nil
}

// Normalize trims s and converts it to Unicode NFC, so a macronised name such
// as "Māngere" compares equal whether the source used a precomposed or a
// combining macron.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// String returns the property as text, or def when it is absent. Numbers and
// booleans are rendered as their JSON literal.
func String(p geojson.Properties, key, def string) (string, error) {
	v, ok := lookup(p, key)
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case string:
		return Normalize(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	return "", &InvalidFieldError{Field: key, Value: v}
}

// OptionalString is String with nil standing for an absent property.
func OptionalString(p geojson.Properties, key string) (*string, error) {
	if _, ok := lookup(p, key); !ok {
		return nil, nil
	}
	s, err := String(p, key, "")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Int returns the property as an integer, or def when it is absent or an
// empty string.
func Int(p geojson.Properties, key string, def int64) (int64, error) {
	v, ok := lookup(p, key)
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > math.MaxInt64/2 {
			return 0, &InvalidFieldError{Field: key, Value: v}
		}
		return int64(x), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return def, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, &InvalidFieldError{Field: key, Value: v, cause: err}
		}
		return n, nil
	}
	return 0, &InvalidFieldError{Field: key, Value: v}
}

// Float returns the property as a float64, or def when it is absent or an
// empty string.
func Float(p geojson.Properties, key string, def float64) (float64, error) {
	f, err := OptionalFloat(p, key)
	if err != nil {
		return 0, err
	}
	if f == nil {
		return def, nil
	}
	return *f, nil
}

// OptionalFloat is Float with nil standing for an absent property.
func OptionalFloat(p geojson.Properties, key string) (*float64, error) {
	v, ok := lookup(p, key)
	if !ok {
		return nil, nil
	}
	switch x := v.(type) {
	case float64:
		return &x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &InvalidFieldError{Field: key, Value: v, cause: err}
		}
		return &f, nil
	}
	return nil, &InvalidFieldError{Field: key, Value: v}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp reads a date property. ArcGIS exports dates as epoch
// milliseconds; ISO-8601 strings are accepted too. Values without a zone are
// taken as UTC. An absent property yields nil.
func Timestamp(p geojson.Properties, key string) (*time.Time, error) {
	v, ok := lookup(p, key)
	if !ok {
		return nil, nil
	}
	switch x := v.(type) {
	case float64:
		t := time.UnixMilli(int64(x)).UTC()
		return &t, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t, nil
			}
		}
	}
	return nil, &InvalidFieldError{Field: key, Value: v}
}

// SpeedLimit reads a speed limit property. A missing or null property takes
// the legacy default of 0; a present value that yields no number is rejected
// rather than guessed.
func SpeedLimit(p geojson.Properties, key string) (int, error) {
	v, ok := lookup(p, key)
	if !ok {
		return 0, nil
	}
	switch x := v.(type) {
	case string:
		n, ok := ParseSpeedLimit(x)
		if !ok {
			return 0, &SpeedLimitUnparseableError{Raw: x}
		}
		return n, nil
	case float64:
		if x < 0 || x != math.Trunc(x) || x > math.MaxInt32 {
			return 0, &InvalidFieldError{Field: key, Value: v}
		}
		return int(x), nil
	}
	return 0, &InvalidFieldError{Field: key, Value: v}
}
