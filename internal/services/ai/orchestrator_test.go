package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"lumina/internal/services/editor"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// bufferTarget is an in-memory Target.
type bufferTarget struct {
	mu     sync.Mutex
	buf    editor.Buffer
	closed bool
}

func (b *bufferTarget) Buffer() editor.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf
}

func (b *bufferTarget) Apply(fn func(*editor.Buffer)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return editor.ErrSessionClosed
	}
	fn(&b.buf)
	return nil
}

func TestOrchestrator_AppendsResult(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return len(r.Parts) == 1 && r.Parts[0].Text != ""
	})).Return("<b>Short</b> summary", nil).Once()

	reg := prometheus.NewRegistry()
	o := NewOrchestrator(gen, silentLogger, NewMetrics(reg), time.Second)
	target := &bufferTarget{buf: editor.Buffer{Title: "T", Content: "body"}}

	res, err := o.Run(context.Background(), TaskSummarize, target, nil)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, "body\n\n--- AI SUMMARIZE ---\n<b>Short</b> summary", target.Buffer().Content)
	assert.False(t, o.Processing())
	assert.Equal(t, 1.0, testutil.ToFloat64(o.metrics.requests.WithLabelValues("SUMMARIZE", "ok")))
	gen.AssertExpectations(t)
}

func TestOrchestrator_KeepsAngleBracketText(t *testing.T) {
	tests := []struct {
		name string
		task Task
		text string
		want string
	}{
		{"generics", TaskRefine, "Use List<String> in Java and Map<K, V>.", "note\n\n--- AI REFINE ---\nUse List<String> in Java and Map<K, V>."},
		{"comparison", TaskContinue, "Check if a<b and c>d holds.", "note\n\n--- AI CONTINUE ---\nCheck if a<b and c>d holds."},
		{"address", TaskSummarize, "Contact <john@example.com> for details.", "note\n\n--- AI SUMMARIZE ---\nContact <john@example.com> for details."},
		{"surrounding whitespace", TaskRefine, "  indented\n", "note\n\n--- AI REFINE ---\n  indented\n"},
		{"ocr", TaskOCR, "x < y", "note\nx < y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockGenerator{}
			gen.On("Generate", mock.Anything, mock.Anything).Return(tt.text, nil).Once()

			o := NewOrchestrator(gen, silentLogger, nil, 0)
			target := &bufferTarget{buf: editor.Buffer{Content: "note"}}

			var img *Image
			if tt.task == TaskOCR {
				img = &Image{MIMEType: "image/png", Data: []byte{1}}
			}
			res, err := o.Run(context.Background(), tt.task, target, img)
			require.NoError(t, err)
			assert.True(t, res.Applied)
			assert.Equal(t, tt.text, res.Text)
			assert.Equal(t, tt.want, target.Buffer().Content)
		})
	}
}

func TestOrchestrator_TagsDropMarkup(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("<b>Garden</b>, <i>tools</i>, ", nil)

	o := NewOrchestrator(gen, silentLogger, nil, 0)
	target := &bufferTarget{buf: editor.Buffer{Content: "x", Tags: []string{"home"}}}

	_, err := o.Run(context.Background(), TaskTags, target, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "garden", "tools"}, target.Buffer().Tags)
}

func TestOrchestrator_SkipsEmptyContent(t *testing.T) {
	gen := &MockGenerator{}
	o := NewOrchestrator(gen, silentLogger, nil, 0)

	for _, task := range []Task{TaskSummarize, TaskRefine, TaskTags, TaskContinue} {
		res, err := o.Run(context.Background(), task, &bufferTarget{}, nil)
		require.NoError(t, err)
		assert.True(t, res.Skipped, task)
	}
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestOrchestrator_TagsMerge(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("Work, Ideas, ", nil)

	o := NewOrchestrator(gen, silentLogger, nil, 0)
	target := &bufferTarget{buf: editor.Buffer{Content: "x", Tags: []string{"work"}}}

	_, err := o.Run(context.Background(), TaskTags, target, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "ideas"}, target.Buffer().Tags)
}

func TestOrchestrator_FailureSilentExceptOCR(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota"))

	reg := prometheus.NewRegistry()
	o := NewOrchestrator(gen, silentLogger, NewMetrics(reg), 0)
	target := &bufferTarget{buf: editor.Buffer{Content: "body"}}

	res, err := o.Run(context.Background(), TaskRefine, target, nil)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, "body", target.Buffer().Content)
	assert.False(t, o.Processing())

	_, err = o.Run(context.Background(), TaskOCR, target, &Image{MIMEType: "image/jpeg", Data: []byte{1}})
	assert.ErrorIs(t, err, ErrImageAnalysis)
	assert.False(t, o.Processing())
	assert.Equal(t, 2.0, testutil.ToFloat64(o.metrics.requests.WithLabelValues("REFINE", "error"))+
		testutil.ToFloat64(o.metrics.requests.WithLabelValues("OCR", "error")))
}

func TestOrchestrator_OCRRunsOnEmptyContent(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return len(r.Parts) == 2 && r.Parts[0].Inline != nil
	})).Return("scanned text", nil)

	o := NewOrchestrator(gen, silentLogger, nil, 0)
	target := &bufferTarget{}

	res, err := o.Run(context.Background(), TaskOCR, target, &Image{MIMEType: "image/jpeg", Data: []byte{1}})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, "scanned text", target.Buffer().Content)
}

func TestOrchestrator_DiscardsResultForClosedTarget(t *testing.T) {
	gen := &MockGenerator{}
	target := &bufferTarget{buf: editor.Buffer{Content: "body"}}
	gen.On("Generate", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		target.mu.Lock()
		target.closed = true
		target.mu.Unlock()
	}).Return("late", nil)

	o := NewOrchestrator(gen, silentLogger, nil, 0)
	res, err := o.Run(context.Background(), TaskContinue, target, nil)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, "body", target.buf.Content)
}

func TestOrchestrator_RejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return("ok", nil).Once()

	o := NewOrchestrator(gen, silentLogger, nil, 0)
	target := &bufferTarget{buf: editor.Buffer{Content: "body"}}

	done := make(chan error, 1)
	go func() {
		_, err := o.Run(context.Background(), TaskSummarize, target, nil)
		done <- err
	}()

	<-entered
	assert.True(t, o.Processing())
	_, err := o.Run(context.Background(), TaskRefine, target, nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, o.Processing())
}

func TestOrchestrator_AppliesTimeout(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return("ok", nil)

	o := NewOrchestrator(gen, silentLogger, nil, 5*time.Second)
	_, err := o.Run(context.Background(), TaskSummarize, &bufferTarget{buf: editor.Buffer{Content: "x"}}, nil)
	require.NoError(t, err)
	gen.AssertExpectations(t)
}
