// Package nutrition turns recognized label text into a typed nutrient record.
package nutrition

import "log/slog"

// Parser resolves every field of a record from free text using an ordered
// rule table. A Parser is immutable and safe for concurrent use.
type Parser struct {
	table [fieldCount][]Rule
}

// NewParser builds a parser from table. Fields missing from table never resolve.
func NewParser(table Table) *Parser {
	p := &Parser{}
	for f, rs := range table {
		if !f.Valid() {
			continue
		}
		p.table[f] = append([]Rule(nil), rs...)
	}
	return p
}

var defaultParser = NewParser(defaultTable)

// Parse extracts all nutrient fields from text with the built-in rules.
func Parse(text string) Record { return defaultParser.Parse(text) }

// Parse extracts all nutrient fields from text.
func (p *Parser) Parse(text string) Record {
	var r Record
	for i := range fieldCount {
		r.values[i] = p.resolve(Field(i), text)
	}
	return r
}

// Resolve evaluates the rules of a single field.
func (p *Parser) Resolve(f Field, text string) Value {
	if !f.Valid() {
		return Unresolved
	}
	return p.resolve(f, text)
}

// resolve walks the field's rules in order; the first rule that both matches
// and coerces wins. A rule that panics leaves only its own field unresolved.
func (p *Parser) resolve(f Field, text string) (v Value) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("nutrient rule panicked", "field", f.Key(), "panic", r)
			v = Unresolved
		}
	}()

	for _, rl := range p.table[f] {
		m := rl.Pattern.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		coerce := rl.Coerce
		if coerce == nil {
			coerce = ParseInt
		}
		if n, ok := coerce(m[1]); ok {
			return Amount(n)
		}
	}
	return Unresolved
}
