package nutrition

import (
	"fmt"
	"strings"
)

// Field identifies a single nutrient on a label.
type Field int

// Nutrient fields in record order.
const (
	Sodium Field = iota
	Carbohydrate
	Sugar
	Fat
	TransFat
	SaturatedFat
	Cholesterol
	Protein
	Calories

	fieldCount = int(Calories) + 1
)

var fieldKeys = [fieldCount]string{
	"sodium",
	"carbohydrate",
	"sugar",
	"fat",
	"transFat",
	"saturatedFat",
	"cholesterol",
	"protein",
	"calories",
}

var fieldLabels = [fieldCount]string{
	"나트륨",
	"탄수화물",
	"당류",
	"지방",
	"트랜스지방",
	"포화지방",
	"콜레스테롤",
	"단백질",
	"열량",
}

var fieldUnits = [fieldCount]string{"mg", "g", "g", "g", "g", "g", "mg", "g", "kcal"}

// Fields returns every nutrient field in record order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Valid reports whether f is one of the known nutrient fields.
func (f Field) Valid() bool { return f >= 0 && int(f) < fieldCount }

// Key returns the stable machine key used in JSON and CSV output.
func (f Field) Key() string {
	if !f.Valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldKeys[f]
}

// Label returns the Korean label printed on domestic nutrition tables.
func (f Field) Label() string {
	if !f.Valid() {
		return ""
	}
	return fieldLabels[f]
}

// Unit returns the unit the label usually states the value in.
func (f Field) Unit() string {
	if !f.Valid() {
		return ""
	}
	return fieldUnits[f]
}

func (f Field) String() string { return f.Key() }

// ParseField resolves a field from its key or Korean label, ignoring case.
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	for i := range fieldCount {
		if strings.EqualFold(s, fieldKeys[i]) || s == fieldLabels[i] {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown nutrient field %q", s)
}
