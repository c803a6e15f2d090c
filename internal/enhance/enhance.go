// Package enhance repairs recognized label text around nutrient keywords.
package enhance

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// keywords are scanned in this order; later keywords see the text rewritten
// by earlier ones.
var keywords = []string{
	"영양성분", "영양정보", "nutrition", "nutrition facts",
	"칼로리", "calories", "kcal", "에너지", "energy",
	"단백질", "protein", "탄수화물", "carbohydrate", "carb",
	"지방", "fat", "나트륨", "sodium", "당류", "sugar",
	"포화지방", "saturated", "트랜스지방", "trans",
	"콜레스테롤", "cholesterol", "식이섬유", "fiber",
}

type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

var (
	numberPattern   = regexp.MustCompile(`[\d.]+`)
	keywordPatterns = compileKeywords(keywords)
)

func compileKeywords(words []string) []keywordPattern {
	out := make([]keywordPattern, len(words))
	for i, w := range words {
		out[i] = keywordPattern{
			keyword: w,
			re:      regexp.MustCompile(`(?i)` + regexp.QuoteMeta(w) + `\s*[\d.]+`),
		}
	}
	return out
}

// Keywords returns the nutrient keywords in scan order.
func Keywords() []string {
	return append([]string(nil), keywords...)
}

// Enhance consolidates the numbers following each nutrient keyword into the
// largest one and normalizes the span to "<keyword> <number>". It never fails:
// on any internal error the input is returned unchanged.
func Enhance(text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("text enhancement panicked, keeping original text", "panic", r)
			out = text
		}
	}()

	enhanced, err := rewrite(text)
	if err != nil {
		slog.Debug("text enhancement skipped", "error", err)
		return text
	}
	return enhanced
}

// rewrite applies every keyword pattern in turn. Matches are taken from the
// text as it stood before the keyword's pass; each match is then replaced
// everywhere in the running text.
func rewrite(text string) (string, error) {
	enhanced := text
	for _, kp := range keywordPatterns {
		snapshot := enhanced
		for _, span := range kp.re.FindAllString(snapshot, -1) {
			best, err := largestNumber(numberPattern.FindAllString(span, -1))
			if err != nil {
				return "", fmt.Errorf("keyword %q: %w", kp.keyword, err)
			}
			if best == "" {
				continue
			}
			enhanced = strings.ReplaceAll(enhanced, span, kp.keyword+" "+best)
		}
	}
	return enhanced, nil
}

// largestNumber returns the token with the greatest numeric value; the first
// one wins a tie. Tokens are compared as decimals whether or not they carry a
// fractional part.
func largestNumber(tokens []string) (string, error) {
	best := ""
	bestVal := 0.0
	for _, tok := range tokens {
		v, err := numericValue(tok)
		if err != nil {
			return "", err
		}
		if best == "" || v > bestVal {
			best, bestVal = tok, v
		}
	}
	return best, nil
}

func numericValue(tok string) (float64, error) {
	if strings.Contains(tok, ".") {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", tok)
		}
		return v, nil
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		// Digit runs beyond int64 still compare by magnitude.
		v, ferr := strconv.ParseFloat(tok, 64)
		if ferr != nil {
			return 0, fmt.Errorf("not a number: %q", tok)
		}
		return v, nil
	}
	return float64(n), nil
}
