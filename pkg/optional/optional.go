// Package optional holds the request-boundary representation of fields that
// may be absent. An empty (or blank) submitted value decodes to absent, never
// to a zero value.
package optional

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout of <input type="date"> values.
const DateLayout = "2006-01-02"

// Value is either absent or holds a T.
type Value[T any] struct {
	value T
	set   bool
}

// Some returns a present value.
func Some[T any](v T) Value[T] {
	return Value[T]{value: v, set: true}
}

// None returns an absent value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// FromPtr converts a nil-able pointer.
func FromPtr[T any](p *T) Value[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Get returns the held value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o Value[T]) IsSet() bool {
	return o.set
}

// Or returns the held value or fallback.
func (o Value[T]) Or(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// Ptr returns nil when absent. Handy for nullable column arguments.
func (o Value[T]) Ptr() *T {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// String renders the held value for form inputs.
func (o Value[T]) String() string {
	if !o.set {
		return ""
	}
	switch v := any(o.value).(type) {
	case time.Time:
		return v.Format(DateLayout)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// UnmarshalParam implements gin's binding.BindUnmarshaler so the value can be
// bound from query strings and form bodies.
func (o *Value[T]) UnmarshalParam(raw string) error {
	return o.Parse(raw)
}

// UnmarshalText makes the value usable with encoding-aware decoders.
func (o *Value[T]) UnmarshalText(text []byte) error {
	return o.Parse(string(text))
}

// Parse decodes raw into the value. Blank input resets it to absent.
func (o *Value[T]) Parse(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*o = None[T]()
		return nil
	}

	var v T
	if err := parseInto(&v, raw); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func parseInto(dst any, raw string) error {
	switch p := dst.(type) {
	case *string:
		*p = raw
	case *int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		*p = n
	case *int32:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		*p = int32(n)
	case *int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		*p = n
	case *float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		*p = f
	case *bool:
		b, err := ParseBool(raw)
		if err != nil {
			return err
		}
		*p = b
	case *time.Time:
		t, err := ParseDate(raw)
		if err != nil {
			return err
		}
		*p = t
	case *decimal.Decimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid decimal %q", raw)
		}
		*p = d
	case encoding.TextUnmarshaler:
		return p.UnmarshalText([]byte(raw))
	default:
		return fmt.Errorf("unsupported optional type %T", dst)
	}
	return nil
}

// ParseBool accepts checkbox values ("on") as well as strconv's forms.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
	return b, nil
}

// ParseDate accepts date inputs and datetime-local inputs.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range []string{DateLayout, "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
