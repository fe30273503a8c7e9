package editor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"lumina/cmd/server/ctxkeys"
	"lumina/internal/audio"
	"lumina/internal/logger"
	"lumina/internal/services/dictation"

	"github.com/gofiber/contrib/websocket"
)

const (
	defaultMicRate    = 48000
	dictationWriteTTL = 10 * time.Second
	frameQueue        = 16
)

// DictationMessage is pushed to the browser over /ws/dictation.
type DictationMessage struct {
	Type  string `json:"type" example:"transcript"`
	Text  string `json:"text,omitempty" example:"hello world"`
	State string `json:"state,omitempty" example:"listening"`
	Error string `json:"error,omitempty"`
}

// dictationControl is a text frame sent by the browser.
type dictationControl struct {
	Type string `json:"type"`
}

// DictationHandlers bridges a browser microphone to a dictation session.
type DictationHandlers struct {
	sessions      Sessions
	transport     dictation.Transport
	runs          *dictation.Registry
	frameSize     int
	maxSessionSec int
}

// NewDictationHandlers creates the /ws/dictation handler. Every run is
// tracked in runs so shutdown can stop it.
func NewDictationHandlers(sessions Sessions, transport dictation.Transport, runs *dictation.Registry, frameSize, maxSessionSec int) *DictationHandlers {
	if runs == nil {
		runs = dictation.NewRegistry()
	}
	return &DictationHandlers{
		sessions:      sessions,
		transport:     transport,
		runs:          runs,
		frameSize:     frameSize,
		maxSessionSec: maxSessionSec,
	}
}

// WSDictation streams binary frames of little-endian float32 samples into a
// realtime transcription session and appends the text to the open buffer.
// A {"type":"stop"} text frame or closing the socket ends the run.
func (h *DictationHandlers) WSDictation(c *websocket.Conn) {
	out := &dictationWriter{conn: c}
	log := logger.L().With("handler", "WSDictation")

	target, err := h.sessions.Active()
	if err != nil {
		out.send(DictationMessage{Type: "error", Error: "No note is open for editing"})
		return
	}

	parentCtx, ok := c.Locals(ctxkeys.ParentCtxKey).(context.Context)
	if !ok {
		parentCtx = context.Background()
	}

	src := &wsAudioSource{
		rate:   sampleRate(c),
		frames: make(chan []float32, frameQueue),
		closed: make(chan struct{}),
	}

	d := dictation.New(h.transport, log,
		dictation.WithStateHook(func(st dictation.State) {
			out.send(DictationMessage{Type: "state", State: string(st)})
		}),
		dictation.WithTranscriptHook(func(text string) {
			out.send(DictationMessage{Type: "transcript", Text: text})
		}),
	)

	if err := d.Start(parentCtx, src, target); err != nil {
		out.send(DictationMessage{Type: "error", Error: err.Error()})
		return
	}
	defer d.Stop()

	untrack, ok := h.runs.Track(d)
	defer untrack()
	if !ok {
		return
	}

	limit := time.AfterFunc(time.Duration(h.maxSessionSec)*time.Second, d.Stop)
	defer limit.Stop()

	// the run can end on its own (remote close, error); stop reading then
	done := d.Done()
	if done == nil {
		return
	}
	stopWatch := make(chan struct{})
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		select {
		case <-done:
			_ = c.SetReadDeadline(time.Now())
		case <-stopWatch:
		}
	}()

	h.readFrames(c, src, d, log)
	close(stopWatch)
	<-watched
}

func (h *DictationHandlers) readFrames(c *websocket.Conn, src *wsAudioSource, d *dictation.Session, log *slog.Logger) {
	framer := audio.NewFramer(h.frameSize)
	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		switch mt {
		case websocket.TextMessage:
			var ctl dictationControl
			if json.Unmarshal(data, &ctl) == nil && ctl.Type == "stop" {
				d.Stop()
				return
			}
		case websocket.BinaryMessage:
			samples, err := audio.DecodeFloat32LE(data)
			if err != nil {
				log.Warn("dropping malformed audio frame", "bytes", len(data), "error", err)
				continue
			}
			for _, frame := range framer.Push(samples) {
				if !src.push(frame) {
					return
				}
			}
		}
	}
}

func sampleRate(c *websocket.Conn) int {
	if q, ok := c.Locals(ctxkeys.QueryKey).(map[string]string); ok {
		if r, err := strconv.Atoi(q["rate"]); err == nil && r > 0 {
			return r
		}
	}
	return defaultMicRate
}

// wsAudioSource hands the browser stream to a dictation run. It can be
// opened once.
type wsAudioSource struct {
	rate   int
	frames chan []float32
	closed chan struct{}
	once   sync.Once
}

func (s *wsAudioSource) Open(context.Context) (dictation.AudioStream, error) {
	return s, nil
}

func (s *wsAudioSource) ReadFrame(ctx context.Context) ([]float32, error) {
	select {
	case f := <-s.frames:
		return f, nil
	case <-s.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *wsAudioSource) SampleRate() int { return s.rate }

func (s *wsAudioSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// push queues a frame, reporting false once the stream is closed.
func (s *wsAudioSource) push(frame []float32) bool {
	select {
	case s.frames <- frame:
		return true
	case <-s.closed:
		return false
	}
}

// dictationWriter serialises writes from the dictation goroutines.
type dictationWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *dictationWriter) send(msg DictationMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.SetWriteDeadline(time.Now().Add(dictationWriteTTL)); err != nil {
		return
	}
	if err := w.conn.WriteJSON(msg); err != nil {
		logger.L().Debug("dictation message not delivered", "type", msg.Type, "error", err)
	}
}
