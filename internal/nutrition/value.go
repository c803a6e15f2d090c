package nutrition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UnresolvedText is how an unresolved value is rendered in every output format.
const UnresolvedText = "unresolved"

// Value is either a non-negative amount or the unresolved marker.
// The zero Value is unresolved, so a literal 0 on a label stays distinguishable
// from a nutrient that was never found.
type Value struct {
	amount   int
	resolved bool
}

// Unresolved marks a field for which no pattern produced a value.
var Unresolved = Value{}

// Amount returns a resolved value. Negative amounts are treated as unresolved.
func Amount(n int) Value {
	if n < 0 {
		return Unresolved
	}
	return Value{amount: n, resolved: true}
}

// Int returns the amount and whether the value is resolved.
func (v Value) Int() (int, bool) { return v.amount, v.resolved }

// IsResolved reports whether the value carries an amount.
func (v Value) IsResolved() bool { return v.resolved }

func (v Value) String() string {
	if !v.resolved {
		return UnresolvedText
	}
	return strconv.Itoa(v.amount)
}

// MarshalJSON renders a number, or the unresolved marker as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.resolved {
		return json.Marshal(UnresolvedText)
	}
	return []byte(strconv.Itoa(v.amount)), nil
}

// UnmarshalJSON accepts a non-negative integer, the unresolved marker, or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Unresolved
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != UnresolvedText {
			return fmt.Errorf("invalid nutrient value %q", s)
		}
		*v = Unresolved
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil || n < 0 {
		return fmt.Errorf("invalid nutrient value %s", data)
	}
	*v = Amount(n)
	return nil
}
