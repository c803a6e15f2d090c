package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/nutrilabel/internal/nutrition"
	"github.com/MeKo-Tech/nutrilabel/internal/roi"
)

func sampleResult() *Result {
	box := roi.BoundingBox{X: 200, Y: 100, Width: 400, Height: 400}
	return &Result{
		Name:      "label.png",
		Success:   true,
		Nutrition: nutrition.NewRecord(map[nutrition.Field]nutrition.Value{nutrition.Sodium: nutrition.Amount(250), nutrition.Protein: nutrition.Amount(15)}),
		Text:      "나트륨 250mg 단백질 15g",
		Provenance: Provenance{
			ROIUsed:            true,
			ROISource:          SourceDetected,
			ROIBox:             &box,
			OriginalSize:       Size{Width: 800, Height: 600},
			RecognitionInvoked: true,
			Engine:             "clova",
		},
	}
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(sampleResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	nut := decoded["nutrition"].(map[string]any)
	assert.EqualValues(t, 250, nut["sodium"])
	assert.Equal(t, nutrition.UnresolvedText, nut["fat"])

	prov := decoded["provenance"].(map[string]any)
	assert.Equal(t, "detected", prov["roi_source"])
	assert.Equal(t, map[string]any{"x": 200.0, "y": 100.0, "width": 400.0, "height": 400.0}, prov["roi_bbox"])

	_, err = ToJSON(nil)
	assert.Error(t, err)
}

func TestToPlainText(t *testing.T) {
	out, err := ToPlainText(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, out, "label.png\n")
	assert.Contains(t, out, "나트륨 (sodium): 250 mg")
	assert.Contains(t, out, "지방 (fat): unresolved")
	assert.Contains(t, out, "roi: detected (200,100,400,400), engine: clova")
	assert.NotContains(t, out, "recognition failed")

	failed := sampleResult()
	failed.Success = false
	failed.Error = "HTTP 500"
	failed.Provenance.RecognitionPlaceholder = true
	out, err = ToPlainText(failed)
	require.NoError(t, err)
	assert.Contains(t, out, "(placeholder)")
	assert.Contains(t, out, "recognition failed: HTTP 500")
}

func TestToCSV(t *testing.T) {
	out, err := ToCSV(sampleResult(), sampleResult())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader(), rows[0])
	assert.Equal(t, []string{"label.png", "true", "detected", "clova", "false",
		"250", "unresolved", "unresolved", "unresolved", "unresolved", "unresolved", "unresolved", "15", "unresolved"}, rows[1])

	_, err = ToCSV(nil)
	assert.Error(t, err)
}

func TestToYAML(t *testing.T) {
	out, err := ToYAML(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, out, "sodium: 250")
	assert.Contains(t, out, "fat: unresolved")
	assert.Contains(t, out, "roi_source: detected")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "label.png", decoded["name"])
}

func TestFormat(t *testing.T) {
	for _, f := range Formats {
		out, err := Format(f, sampleResult())
		require.NoError(t, err, f)
		assert.NotEmpty(t, out, f)
	}

	list, err := Format("json", sampleResult(), sampleResult())
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(list), &decoded))
	assert.Len(t, decoded, 2)

	text, err := Format("TEXT", sampleResult(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(text, "label.png"))

	_, err = Format("xml", sampleResult())
	assert.Error(t, err)
}
