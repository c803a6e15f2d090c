package nutrition

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRecord_MarshalJSONKeepsFieldOrder(t *testing.T) {
	rec := NewRecord(map[Field]Value{Sodium: Amount(250), Protein: Amount(15), TransFat: Amount(0)})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	want := `{"sodium":250,"carbohydrate":"unresolved","sugar":"unresolved","fat":"unresolved",` +
		`"transFat":0,"saturatedFat":"unresolved","cholesterol":"unresolved","protein":15,"calories":"unresolved"}`
	assert.Equal(t, want, string(data))
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"protein":15,"sodium":"unresolved","fat":null,"calories":0}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, Amount(15), rec.Get(Protein))
	assert.Equal(t, Amount(0), rec.Get(Calories))
	assert.Equal(t, Unresolved, rec.Get(Sodium))
	assert.Equal(t, Unresolved, rec.Get(Fat))
	assert.Equal(t, Unresolved, rec.Get(Sugar))
}

func TestRecord_UnmarshalJSONRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", `{"vitaminC":3}`},
		{"negative", `{"fat":-1}`},
		{"fraction", `{"fat":1.5}`},
		{"other string", `{"fat":"n/a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			assert.Error(t, json.Unmarshal([]byte(tt.data), &rec))
		})
	}
}

func TestRecord_MarshalYAML(t *testing.T) {
	rec := Parse("나트륨 250mg 단백질 15g")

	out, err := yaml.Marshal(rec)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "sodium: 250", lines[0])
	assert.Equal(t, "carbohydrate: unresolved", lines[1])
	assert.Equal(t, "protein: 15", lines[7])
	assert.Equal(t, "calories: unresolved", lines[8])
}

func TestRecord_EntriesAndCopies(t *testing.T) {
	rec := NewRecord(map[Field]Value{Fat: Amount(3), Field(99): Amount(1)})
	entries := rec.Entries()
	require.Len(t, entries, 9)
	for i, e := range entries {
		assert.Equal(t, Field(i), e.Field)
	}
	assert.Equal(t, Amount(3), entries[Fat].Value)

	cp := rec
	cp.values[Fat] = Amount(9)
	assert.Equal(t, Amount(3), rec.Get(Fat))
	assert.Equal(t, Unresolved, rec.Get(Field(99)))
}

func TestAmount_NegativeIsUnresolved(t *testing.T) {
	assert.Equal(t, Unresolved, Amount(-5))
	assert.Equal(t, "unresolved", Amount(-5).String())
	assert.Equal(t, "12", Amount(12).String())
}

func TestParseField(t *testing.T) {
	f, err := ParseField("TransFat")
	require.NoError(t, err)
	assert.Equal(t, TransFat, f)

	f, err = ParseField("단백질")
	require.NoError(t, err)
	assert.Equal(t, Protein, f)

	_, err = ParseField("fibre")
	assert.Error(t, err)

	assert.Equal(t, "mg", Sodium.Unit())
	assert.Equal(t, "kcal", Calories.Unit())
	assert.Equal(t, "field(12)", Field(12).Key())
}
