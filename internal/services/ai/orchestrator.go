package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"lumina/internal/services/editor"
	"lumina/internal/services/notes"
	"lumina/internal/utils/sanitize"
)

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Target is the buffer an AI result is written into.
type Target interface {
	Buffer() editor.Buffer
	Apply(fn func(*editor.Buffer)) error
}

// Result describes what a Run did.
type Result struct {
	Task    Task   `json:"task" example:"SUMMARIZE"`
	Applied bool   `json:"applied" example:"true"`
	Skipped bool   `json:"skipped" example:"false"`
	Text    string `json:"text,omitempty" example:"A short summary"`
}

// Orchestrator runs one AI task at a time against the open editor buffer.
type Orchestrator struct {
	gen        Generator
	log        *slog.Logger
	metrics    *Metrics
	timeout    time.Duration
	processing atomic.Bool
}

// NewOrchestrator creates an orchestrator. metrics may be nil.
func NewOrchestrator(gen Generator, log *slog.Logger, metrics *Metrics, timeout time.Duration) *Orchestrator {
	return &Orchestrator{gen: gen, log: log, metrics: metrics, timeout: timeout}
}

// Processing reports whether a request is in flight.
func (o *Orchestrator) Processing() bool { return o.processing.Load() }

// Run executes task against target. Non-OCR tasks on empty content are
// skipped. Remote failures are logged; only OCR reports them, as
// ErrImageAnalysis. A target closed before the result arrives discards it.
func (o *Orchestrator) Run(ctx context.Context, task Task, target Target, img *Image) (Result, error) {
	res := Result{Task: task}

	buf := target.Buffer()
	if task != TaskOCR && buf.Content == "" {
		res.Skipped = true
		return res, nil
	}
	req, err := BuildRequest(task, buf, img)
	if err != nil {
		return res, err
	}

	if !o.processing.CompareAndSwap(false, true) {
		return res, ErrBusy
	}
	defer o.processing.Store(false)

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	started := time.Now()
	text, err := o.gen.Generate(ctx, req)
	o.metrics.observe(task, err, time.Since(started))
	if err != nil {
		o.log.Error(ErrGenerate.Error(), "error", err, "task", task)
		if task == TaskOCR {
			return res, ErrImageAnalysis
		}
		return res, nil
	}

	res.Text = text
	if err := target.Apply(func(b *editor.Buffer) { ApplyResult(task, b, text) }); err != nil {
		if errors.Is(err, editor.ErrSessionClosed) {
			o.log.Debug("discarding ai result for closed session", "task", task)
			return res, nil
		}
		return res, err
	}
	res.Applied = true
	return res, nil
}

// mergeTags strips markup from each suggested tag; tags are single words
// so nothing legitimate is lost.
func mergeTags(existing []string, raw string) []string {
	tokens := strings.Split(raw, ",")
	for i, t := range tokens {
		tokens[i] = sanitize.Line(t)
	}
	return notes.MergeTags(existing, notes.ParseTagList(strings.Join(tokens, ",")))
}
