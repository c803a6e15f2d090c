package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Stage names reported to StageFunc, in pipeline order.
const (
	StageDecode    = "decode"
	StageDetect    = "detect"
	StageNormalize = "normalize"
	StageRecognize = "recognize"
	StageEnhance   = "enhance"
	StageParse     = "parse"
)

// Stages lists every stage in the order Process runs them.
var Stages = []string{StageDecode, StageDetect, StageNormalize, StageRecognize, StageEnhance, StageParse}

// StageFunc observes a single request. skipped is true when the stage did
// not run for this input (for example detection with ROI disabled).
type StageFunc func(stage string, elapsed time.Duration, skipped bool)

// ProgressCallback defines the interface for progress reporting during batch processing.
type ProgressCallback interface {
	// OnStart is called when processing begins with the total number of items.
	OnStart(total int)

	// OnProgress is called after each finished item.
	OnProgress(current, total int)

	// OnComplete is called when processing is finished.
	OnComplete()

	// OnError is called when an item fails.
	OnError(current int, err error)
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)              {}
func (NoOpProgressCallback) OnProgress(current, total int)  {}
func (NoOpProgressCallback) OnComplete()                    {}
func (NoOpProgressCallback) OnError(current int, err error) {}

// ConsoleProgressCallback prints a one-line progress bar.
type ConsoleProgressCallback struct {
	writer   io.Writer
	prefix   string
	width    int
	interval time.Duration

	mu        sync.Mutex
	started   time.Time
	lastDrawn time.Time
}

// NewConsoleProgressCallback creates a console progress reporter writing to
// w, or stderr when w is nil.
func NewConsoleProgressCallback(w io.Writer, prefix string) *ConsoleProgressCallback {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer:   w,
		prefix:   prefix,
		width:    30,
		interval: 100 * time.Millisecond,
	}
}

// WithWidth sets the progress bar width in cells.
func (c *ConsoleProgressCallback) WithWidth(width int) *ConsoleProgressCallback {
	if width > 0 {
		c.width = width
	}
	return c
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = time.Now()
	c.lastDrawn = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "%s0/%d labels\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if current < total && now.Sub(c.lastDrawn) < c.interval {
		return
	}
	c.lastDrawn = now
	_, _ = fmt.Fprint(c.writer, c.bar(current, total, now.Sub(c.started)))
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "\n%sdone in %v\n", c.prefix, time.Since(c.started).Round(time.Millisecond))
}

func (c *ConsoleProgressCallback) OnError(current int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "\n%slabel %d failed: %v\n", c.prefix, current, err)
}

func (c *ConsoleProgressCallback) bar(current, total int, elapsed time.Duration) string {
	if total <= 0 {
		return ""
	}
	filled := c.width * current / total
	line := fmt.Sprintf("\r%s[%s%s] %d/%d", c.prefix,
		strings.Repeat("#", filled), strings.Repeat(".", c.width-filled), current, total)
	if current > 0 && elapsed > 0 {
		rate := float64(current) / elapsed.Seconds()
		line += fmt.Sprintf(" %.1f/s", rate)
	}
	return line
}
