package nutrition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Record maps every nutrient field to its value. It is a value type; copies
// never share state, and all nine fields are always present.
type Record struct {
	values [fieldCount]Value
}

// Entry is one field/value pair of a record.
type Entry struct {
	Field Field
	Value Value
}

// NewRecord builds a record from the given values. Fields not present in the
// map are unresolved; unknown fields are ignored.
func NewRecord(values map[Field]Value) Record {
	var r Record
	for f, v := range values {
		if f.Valid() {
			r.values[f] = v
		}
	}
	return r
}

// Get returns the value of a field.
func (r Record) Get(f Field) Value {
	if !f.Valid() {
		return Unresolved
	}
	return r.values[f]
}

// Entries returns the record's pairs in field order.
func (r Record) Entries() []Entry {
	out := make([]Entry, fieldCount)
	for i := range fieldCount {
		out[i] = Entry{Field: Field(i), Value: r.values[i]}
	}
	return out
}

// ResolvedCount returns how many fields carry an amount.
func (r Record) ResolvedCount() int {
	n := 0
	for _, v := range r.values {
		if v.resolved {
			n++
		}
	}
	return n
}

// Unresolved returns the fields without a value, in field order.
func (r Record) Unresolved() []Field {
	var out []Field
	for i, v := range r.values {
		if !v.resolved {
			out = append(out, Field(i))
		}
	}
	return out
}

// MarshalJSON writes the fields as an object whose keys follow field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range fieldCount {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(fieldKeys[i])
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by field key. Missing keys stay unresolved.
func (r *Record) UnmarshalJSON(data []byte) error {
	raw := map[string]Value{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Record
	for k, v := range raw {
		f, err := ParseField(k)
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		out.values[f] = v
	}
	*r = out
	return nil
}

// MarshalYAML emits an ordered mapping so YAML output matches JSON ordering.
func (r Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i := range fieldCount {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: fieldKeys[i]}
		val := &yaml.Node{Kind: yaml.ScalarNode, Value: r.values[i].String()}
		if r.values[i].resolved {
			val.Tag = "!!int"
		} else {
			val.Tag = "!!str"
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}
