package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStageTimer(t *testing.T) {
	timer := NewStageTimer()

	time.Sleep(5 * time.Millisecond)
	d := timer.Mark("decode")
	assert.GreaterOrEqual(t, d, 5*time.Millisecond)

	timer.Skip("enhance")
	timer.Mark("parse")

	stages := timer.Stages()
	assert.Len(t, stages, 3)
	assert.Equal(t, "decode", stages[0].Stage)
	assert.Equal(t, d, timer.Get("decode"))
	assert.Zero(t, timer.Get("enhance"))
	assert.Zero(t, timer.Get("missing"))
	assert.GreaterOrEqual(t, timer.Total(), d)

	str := timer.String()
	assert.Contains(t, str, "decode=")
	assert.Contains(t, str, "enhance=0s")
}

func TestStageTimer_RepeatedStageSums(t *testing.T) {
	timer := NewStageTimer()
	time.Sleep(2 * time.Millisecond)
	a := timer.Mark("detect")
	time.Sleep(2 * time.Millisecond)
	b := timer.Mark("detect")
	assert.Equal(t, a+b, timer.Get("detect"))

	stages := timer.Stages()
	stages[0].Stage = "mutated"
	assert.Equal(t, "detect", timer.Stages()[0].Stage)
}
