package nutrition

import (
	"regexp"
	"strconv"
)

// Rule is one pattern in a field's ordered rule list. Pattern must have a
// capture group; Coerce turns the captured text into an amount.
type Rule struct {
	Pattern *regexp.Regexp
	Coerce  func(string) (int, bool)
}

// Table maps each field to its rules, most specific first.
type Table map[Field][]Rule

// ParseInt coerces a captured digit run. Values that overflow int are rejected
// so evaluation moves on to the next rule.
func ParseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func rule(pattern string) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?i)` + pattern), Coerce: ParseInt}
}

func rules(patterns ...string) []Rule {
	out := make([]Rule, len(patterns))
	for i, p := range patterns {
		out[i] = rule(p)
	}
	return out
}

// Korean label variants come first, then English ones. Order is significant:
// the first rule that matches and coerces decides the field.
var defaultTable = Table{
	Sodium: rules(
		`나트륨\s*(\d+)`,
		`소듐\s*(\d+)`,
		`나트륨[:\s]*(\d+)`,
		`소듐[:\s]*(\d+)`,
		`Na[:\s]*(\d+)`,
	),
	Carbohydrate: rules(
		`탄수화물\s*(\d+)`,
		`당질\s*(\d+)`,
		`탄수화물[:\s]*(\d+)`,
		`당질[:\s]*(\d+)`,
		`Carbohydrate[:\s]*(\d+)`,
	),
	Sugar: rules(
		`당류\s*g\s*(\d+)`,
		`당류\s*(\d+)`,
		`당\s*g\s*(\d+)`,
		`당\s*(\d+)`,
		`당류[:\s]*(\d+)`,
		`당[:\s]*(\d+)`,
		`Sugar[:\s]*(\d+)`,
	),
	Fat: rules(
		`지방\s*(\d+)`,
		`지질\s*(\d+)`,
		`지방[:\s]*(\d+)`,
		`지질[:\s]*(\d+)`,
		`Fat[:\s]*(\d+)`,
	),
	TransFat: rules(
		`트랜스지방\s*(\d+)`,
		`트랜스\s*(\d+)`,
		`트랜스지방[:\s]*(\d+)`,
		`트랜스[:\s]*(\d+)`,
		`Trans[:\s]*(\d+)`,
	),
	SaturatedFat: rules(
		`포화지방\s*(\d+)`,
		`포화\s*(\d+)`,
		`포화지방[:\s]*(\d+)`,
		`포화[:\s]*(\d+)`,
		`Saturated[:\s]*(\d+)`,
		`포화지방\s*g\s*(\d+)`,
		`포화\s*g\s*(\d+)`,
	),
	Cholesterol: rules(
		`콜레스테롤\s*(\d+)`,
		`콜레스테롤[:\s]*(\d+)`,
		`Cholesterol[:\s]*(\d+)`,
	),
	Protein: rules(
		`단백질\s*(\d+)`,
		`단백질[:\s]*(\d+)`,
		`Protein[:\s]*(\d+)`,
		`단백질\s*g\s*(\d+)`,
		`단백질\s*%\s*(\d+)`,
	),
	Calories: rules(
		`열량\s*(\d+)`,
		`칼로리\s*(\d+)`,
		`에너지\s*(\d+)`,
		`열량[:\s]*(\d+)`,
		`칼로리[:\s]*(\d+)`,
		`에너지[:\s]*(\d+)`,
		`Calories[:\s]*(\d+)`,
		`Energy[:\s]*(\d+)`,
		`(\d+)\s*kcal`,
	),
}

// DefaultRules returns a copy of the built-in rule list for a field.
func DefaultRules(f Field) []Rule {
	src := defaultTable[f]
	out := make([]Rule, len(src))
	copy(out, src)
	return out
}
