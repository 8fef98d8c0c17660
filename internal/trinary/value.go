package trinary

import (
	"fmt"
	"strings"
)

// Value is a three-valued truth value.
//
// The numeric encoding mirrors the 0 / 0.5 / 1 convention used by
// monitor observations: False=0, Unknown=1, True=2.
type Value uint8

const (
	False Value = iota
	Unknown
	True
)

// FromBool converts a Go bool to True or False.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Valid reports whether v is one of the three defined values.
func (v Value) Valid() bool {
	return v <= True
}

// IsTrue reports whether v is True. Unknown is not true.
func (v Value) IsTrue() bool {
	return v == True
}

// String returns "true", "false" or "unknown".
func (v Value) String() string {
	switch v {
	case True:
		return "true"
	case False:
		return "false"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("trinary(%d)", uint8(v))
	}
}

// Parse converts a textual truth value. Matching is case-insensitive.
func Parse(s string) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return True, nil
	case "false":
		return False, nil
	case "unknown":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("invalid trinary value %q: must be true, false or unknown", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Value) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid trinary value %d", uint8(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Value) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
