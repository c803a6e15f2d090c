package recognizer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeout bounds a single engine call.
const DefaultTimeout = 30 * time.Second

// Orchestrator invokes an engine exactly once per request and shapes its
// answer into a Result.
type Orchestrator struct {
	engine  Engine
	timeout time.Duration
}

// NewOrchestrator wraps engine. A nil engine, or one reporting itself
// unconfigured, is replaced by the placeholder at call time. A non-positive
// timeout selects DefaultTimeout.
func NewOrchestrator(engine Engine, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{engine: engine, timeout: timeout}
}

// Engine returns the wrapped engine, which may be nil.
func (o *Orchestrator) Engine() Engine { return o.engine }

// Configured reports whether the wrapped engine can make real calls.
func (o *Orchestrator) Configured() bool {
	if o.engine == nil {
		return false
	}
	if c, ok := o.engine.(Configurable); ok {
		return c.Configured()
	}
	return true
}

// EngineName returns the name of the engine that would serve a request.
func (o *Orchestrator) EngineName() string {
	if !o.Configured() {
		return EnginePlaceholder
	}
	return o.engine.Name()
}

// Recognize runs the engine on p. The returned error is non-nil only when
// ctx itself was cancelled; engine failures, including the per-call
// timeout, are reported in the Result.
func (o *Orchestrator) Recognize(ctx context.Context, p Payload) (Result, error) {
	start := time.Now()

	engine := o.engine
	placeholder := !o.Configured()
	if placeholder {
		slog.Warn("recognition engine not configured, using placeholder text")
		engine = PlaceholderEngine{}
	}

	res := Result{Engine: engine.Name(), Placeholder: placeholder}
	if len(p.Data) == 0 {
		res.Error = ErrEmptyPayload.Error()
		res.Duration = time.Since(start)
		return res, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	fragments, err := engine.Recognize(callCtx, p)
	res.Duration = time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			res.Error = "recognition timed out after " + o.timeout.String()
		} else {
			res.Error = err.Error()
		}
		slog.Error("text recognition failed", "engine", res.Engine, "error", err)
		return res, nil
	}

	cleaned := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if c := CleanText(f); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	res.Success = true
	res.Fragments = cleaned
	res.RawText = strings.TrimSpace(strings.Join(cleaned, " "))
	slog.Debug("text recognized", "engine", res.Engine, "fragments", len(cleaned), "duration", res.Duration)
	return res, nil
}
