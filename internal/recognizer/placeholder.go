package recognizer

import (
	"context"
	"strings"
)

// PlaceholderText is returned when no engine is configured. It is a fixed
// sample label so that downstream stages still produce a record.
const PlaceholderText = `영양정보 총 내용량 100g
열량 250kcal
나트륨 120mg 6%
탄수화물 30g 9%
당류 12g
지방 10g 19%
트랜스지방 0g
포화지방 3g 20%
콜레스테롤 15mg 5%
단백질 5g 9%`

// PlaceholderEngine returns PlaceholderText without looking at the image.
type PlaceholderEngine struct{}

func (PlaceholderEngine) Name() string { return EnginePlaceholder }

// Configured is always false so results are flagged as placeholders.
func (PlaceholderEngine) Configured() bool { return false }

func (PlaceholderEngine) Recognize(ctx context.Context, _ Payload) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return strings.Split(PlaceholderText, "\n"), nil
}
