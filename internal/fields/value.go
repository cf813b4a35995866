package fields

import (
	"errors"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// Value is a coerced field value: either a float64 or the original text.
type Value struct {
	num     float64
	text    string
	numeric bool
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{num: f, numeric: true} }

// Text returns a textual Value.
func Text(s string) Value { return Value{text: s} }

// Coerce parses s as a 64-bit float and falls back to the text unchanged.
// A failed parse is the expected outcome for text columns, not an error.
// Whitespace is not trimmed, so " 3" stays text. Out-of-range values such as
// "1e400" become ±Inf.
func Coerce(s string) Value {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Text(s)
	}
	return Number(f)
}

// IsNumber reports whether the value was coerced to a number.
func (v Value) IsNumber() bool { return v.numeric }

// Float returns the numeric value and true, or 0 and false for text.
func (v Value) Float() (float64, bool) {
	if !v.numeric {
		return 0, false
	}
	return v.num, true
}

// String renders numbers in their shortest round-trip form and text as-is.
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.text
}

// Interface returns float64 or string, for generic encoders.
func (v Value) Interface() any {
	if v.numeric {
		return v.num
	}
	return v.text
}

// MarshalJSON encodes numbers as JSON numbers. NaN and infinities have no JSON
// form and are written as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric && !math.IsNaN(v.num) && !math.IsInf(v.num, 0) {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts a JSON number or string.
func (v *Value) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*v = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*v = Text(s)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}
