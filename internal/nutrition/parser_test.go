package nutrition

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SodiumAndProtein(t *testing.T) {
	rec := Parse("나트륨 250mg 단백질 15g")

	assert.Equal(t, Amount(250), rec.Get(Sodium))
	assert.Equal(t, Amount(15), rec.Get(Protein))
	for _, f := range []Field{Carbohydrate, Sugar, Fat, TransFat, SaturatedFat, Cholesterol, Calories} {
		assert.False(t, rec.Get(f).IsResolved(), "field %s should be unresolved", f)
	}
	assert.Equal(t, 2, rec.ResolvedCount())
}

func TestParse_RuleOrder(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field Field
		want  Value
	}{
		{"korean label beats abbreviation", "Na 999 나트륨 120", Sodium, Amount(120)},
		{"abbreviation used when alone", "Na: 85", Sodium, Amount(85)},
		{"sodium synonym", "소듐 40mg", Sodium, Amount(40)},
		{"sugar with unit before value", "당류 g 12", Sugar, Amount(12)},
		{"sugar plain", "당류 7g", Sugar, Amount(7)},
		{"carbohydrate english", "Carbohydrate: 30g", Carbohydrate, Amount(30)},
		{"english labels ignore case", "PROTEIN: 7", Protein, Amount(7)},
		{"fat english", "Fat 8g", Fat, Amount(8)},
		{"saturated english", "Saturated 3g", SaturatedFat, Amount(3)},
		{"cholesterol", "콜레스테롤 25mg", Cholesterol, Amount(25)},
		{"calories korean", "열량 250kcal", Calories, Amount(250)},
		{"calories energy", "Energy: 180", Calories, Amount(180)},
		{"calories kcal suffix", "1회 제공량 355 kcal", Calories, Amount(355)},
		{"colon separated", "단백질: 9g", Protein, Amount(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text).Get(tt.field))
		})
	}
}

func TestParse_ZeroIsNotUnresolved(t *testing.T) {
	rec := Parse("트랜스지방 0g")

	n, ok := rec.Get(TransFat).Int()
	require.True(t, ok)
	assert.Equal(t, 0, n)
	assert.Equal(t, Unresolved, rec.Get(Cholesterol))
	assert.NotEqual(t, rec.Get(TransFat), rec.Get(Cholesterol))
}

func TestParse_OverflowFallsThroughToNextRule(t *testing.T) {
	rec := Parse("나트륨 99999999999999999999999 소듐 40")
	assert.Equal(t, Amount(40), rec.Get(Sodium))
}

func TestParse_EmptyText(t *testing.T) {
	rec := Parse("")
	assert.Equal(t, 0, rec.ResolvedCount())
	assert.Len(t, rec.Unresolved(), len(Fields()))
}

func TestParser_CoerceRejectionMovesToNextRule(t *testing.T) {
	p := NewParser(Table{
		Protein: {
			{Pattern: regexp.MustCompile(`(?i)protein\s*(\d+)`), Coerce: func(string) (int, bool) { return 0, false }},
			{Pattern: regexp.MustCompile(`(?i)단백질\s*(\d+)`), Coerce: ParseInt},
		},
	})

	rec := p.Parse("protein 5 단백질 6")
	assert.Equal(t, Amount(6), rec.Get(Protein))
	assert.False(t, rec.Get(Sodium).IsResolved())
}

func TestParser_PanickingRuleOnlyAffectsItsField(t *testing.T) {
	p := NewParser(Table{
		Fat: {
			{Pattern: regexp.MustCompile(`지방\s*(\d+)`), Coerce: func(string) (int, bool) { panic("boom") }},
		},
		Sodium: DefaultRules(Sodium),
	})

	var rec Record
	require.NotPanics(t, func() { rec = p.Parse("지방 3 나트륨 110") })
	assert.Equal(t, Unresolved, rec.Get(Fat))
	assert.Equal(t, Amount(110), rec.Get(Sodium))
}

func TestParser_ResolveInvalidField(t *testing.T) {
	assert.Equal(t, Unresolved, defaultParser.Resolve(Field(42), "나트륨 1"))
	assert.Equal(t, Amount(1), defaultParser.Resolve(Sodium, "나트륨 1"))
}

func TestDefaultRules_ReturnsCopy(t *testing.T) {
	rs := DefaultRules(Sodium)
	require.Len(t, rs, 5)
	rs[0] = Rule{}

	assert.NotNil(t, DefaultRules(Sodium)[0].Pattern)
	assert.Equal(t, `(?i)나트륨\s*(\d+)`, DefaultRules(Sodium)[0].Pattern.String())
	assert.Equal(t, `(?i)Na[:\s]*(\d+)`, DefaultRules(Sodium)[4].Pattern.String())
}
