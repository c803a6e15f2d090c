// Package common provides timing helpers shared by the pipeline and server.
package common

import (
	"fmt"
	"strings"
	"time"
)

// StageDuration is the time spent in one named stage.
type StageDuration struct {
	Stage    string
	Duration time.Duration
}

// StageTimer measures consecutive stages of a single request. It is not safe
// for concurrent use; each request owns its timer.
type StageTimer struct {
	start  time.Time
	last   time.Time
	stages []StageDuration
}

// NewStageTimer starts a timer at the current instant.
func NewStageTimer() *StageTimer {
	now := time.Now()
	return &StageTimer{start: now, last: now}
}

// Mark closes the running stage under the given name and returns its
// duration. The next stage starts immediately.
func (t *StageTimer) Mark(stage string) time.Duration {
	now := time.Now()
	d := now.Sub(t.last)
	t.last = now
	t.stages = append(t.stages, StageDuration{Stage: stage, Duration: d})
	return d
}

// Skip records a stage that did not run, so reports keep a stable shape.
func (t *StageTimer) Skip(stage string) {
	t.stages = append(t.stages, StageDuration{Stage: stage})
}

// Get returns the recorded duration of a stage, summed if it was marked
// more than once.
func (t *StageTimer) Get(stage string) time.Duration {
	var d time.Duration
	for _, s := range t.stages {
		if s.Stage == stage {
			d += s.Duration
		}
	}
	return d
}

// Stages returns a copy of the recorded stages in order.
func (t *StageTimer) Stages() []StageDuration {
	return append([]StageDuration(nil), t.stages...)
}

// Total returns the time since the timer was created.
func (t *StageTimer) Total() time.Duration {
	return time.Since(t.start)
}

func (t *StageTimer) String() string {
	parts := make([]string, 0, len(t.stages))
	for _, s := range t.stages {
		parts = append(parts, fmt.Sprintf("%s=%v", s.Stage, s.Duration.Round(time.Microsecond)))
	}
	return strings.Join(parts, " ")
}
