package campaign

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is a metric that is either available with a finite number or
// explicitly unavailable. The zero Value is unavailable.
type Value struct {
	v  float64
	ok bool
}

// Of wraps a number. NaN and infinities collapse to Unavailable.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// Unavailable returns a metric with no value.
func Unavailable() Value {
	return Value{}
}

// Ratio divides num by den and is unavailable when den is zero.
func Ratio(num, den float64) Value {
	if den == 0 {
		return Value{}
	}
	return Of(num / den)
}

// Get returns the number and whether it is available.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Available reports whether the metric carries a number.
func (v Value) Available() bool {
	return v.ok
}

// Or returns the number, or fallback when unavailable.
func (v Value) Or(fallback float64) float64 {
	if !v.ok {
		return fallback
	}
	return v.v
}

// Scale multiplies an available value by factor.
func (v Value) Scale(factor float64) Value {
	if !v.ok {
		return v
	}
	return Of(v.v * factor)
}

func (v Value) String() string {
	if !v.ok {
		return "unavailable"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON encodes an unavailable value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}
