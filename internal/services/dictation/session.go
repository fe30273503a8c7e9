package dictation

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lumina/internal/audio"
	"lumina/internal/services/editor"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// Option configures a Session.
type Option func(*Session)

// WithStateHook is called after every state change.
func WithStateHook(fn func(State)) Option {
	return func(s *Session) { s.onState = fn }
}

// WithTranscriptHook is called with every fragment applied to the buffer.
func WithTranscriptHook(fn func(string)) Option {
	return func(s *Session) { s.onTranscript = fn }
}

// Session drives one dictation run at a time.
type Session struct {
	mu    sync.Mutex
	state State
	run   *run

	transport    Transport
	log          *slog.Logger
	onState      func(State)
	onTranscript func(string)
}

type run struct {
	id      ulid.ULID
	stream  AudioStream
	conn    Conn
	live    atomic.Bool
	once    sync.Once
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time
}

// New creates an idle session using transport.
func New(transport Transport, log *slog.Logger, opts ...Option) *Session {
	s := &Session{state: StateIdle, transport: transport, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	if s.onState != nil {
		s.onState(st)
	}
}

// Start acquires the microphone, opens the realtime session and begins
// streaming. It returns once listening; the run continues in the
// background until Stop, ctx cancellation or an error.
func (s *Session) Start(ctx context.Context, src AudioSource, target Target) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	s.state = StateStarting
	s.mu.Unlock()
	if s.onState != nil {
		s.onState(StateStarting)
	}

	r := &run{
		id:      ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader),
		done:    make(chan struct{}),
		started: time.Now(),
	}
	log := s.log.With("dictation_id", r.id.String())

	stream, err := src.Open(ctx)
	if err != nil {
		log.Error(ErrMicrophone.Error(), "error", err)
		s.setState(StateIdle)
		return fmt.Errorf("%w: %v", ErrMicrophone, err)
	}
	r.stream = stream

	conn, err := s.transport.Dial(ctx)
	if err != nil {
		log.Error(ErrConnect.Error(), "error", err)
		_ = stream.Close()
		s.setState(StateIdle)
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}
	r.conn = conn
	r.live.Store(true)
	// the run outlives the call that started it
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel

	s.mu.Lock()
	s.run = r
	s.state = StateListening
	s.mu.Unlock()
	if s.onState != nil {
		s.onState(StateListening)
	}
	log.Info("dictation started", "sample_rate", stream.SampleRate())

	go s.serve(runCtx, r, target, log)
	return nil
}

func (s *Session) serve(ctx context.Context, r *run, target Target, log *slog.Logger) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer s.release(r)
		return s.produce(gctx, r)
	})
	g.Go(func() error {
		defer s.release(r)
		return s.consume(gctx, r, target)
	})

	err := g.Wait()
	r.cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("dictation ended with error", "error", err)
	}

	s.mu.Lock()
	if s.run == r {
		s.run = nil
	}
	s.mu.Unlock()

	s.setState(StateIdle)
	log.Info("dictation stopped", "duration", time.Since(r.started).String())
	close(r.done)
}

func (s *Session) produce(ctx context.Context, r *run) error {
	rs := audio.NewResampler(r.stream.SampleRate(), audio.TargetRate)
	for {
		frame, err := r.stream.ReadFrame(ctx)
		if err != nil {
			if !r.live.Load() || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !r.live.Load() {
			return nil
		}
		pcm := audio.EncodePCM16(rs.Process(frame))
		chunk := Chunk{MIMEType: audio.MIMEType, Data: base64.StdEncoding.EncodeToString(pcm)}
		if err := r.conn.Send(ctx, chunk); err != nil {
			if !r.live.Load() {
				return nil
			}
			return err
		}
	}
}

func (s *Session) consume(ctx context.Context, r *run, target Target) error {
	for {
		text, err := r.conn.Receive(ctx)
		if err != nil {
			if !r.live.Load() || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if text == "" {
			continue
		}
		if err := target.Apply(func(b *editor.Buffer) { AppendTranscript(b, text) }); err != nil {
			return err
		}
		if s.onTranscript != nil {
			s.onTranscript(text)
		}
	}
}

// release tears a run down exactly once: the live flag drops before the
// realtime session and the audio stream are closed.
func (s *Session) release(r *run) {
	r.once.Do(func() {
		r.live.Store(false)
		r.cancel()
		if err := r.conn.Close(); err != nil {
			s.log.Debug("closing realtime session", "error", err)
		}
		if err := r.stream.Close(); err != nil {
			s.log.Debug("releasing audio source", "error", err)
		}
	})
}

// Stop ends the current run and waits for it to wind down. It is safe to
// call at any time, any number of times.
func (s *Session) Stop() {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()
	if r == nil {
		return
	}
	s.release(r)
	<-r.done
}

// Done returns a channel closed when the current run ends, or nil when idle.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil
	}
	return s.run.done
}
