// Package dictation streams microphone audio to a realtime transcription
// session and appends the recognised text to the open editor buffer.
package dictation

import (
	"context"
	"errors"
	"unicode"
	"unicode/utf8"

	"lumina/internal/services/editor"
)

// State of a dictation session.
type State string

const (
	StateIdle      State = "idle"
	StateStarting  State = "starting"
	StateListening State = "listening"
)

// AudioSource hands out the microphone.
type AudioSource interface {
	Open(ctx context.Context) (AudioStream, error)
}

// AudioStream yields captured frames until closed.
type AudioStream interface {
	// ReadFrame blocks for the next frame of mono float32 samples.
	ReadFrame(ctx context.Context) ([]float32, error)
	SampleRate() int
	Close() error
}

// Chunk is one base64 encoded block of PCM audio.
type Chunk struct {
	MIMEType string
	Data     string
}

// Conn is an open realtime transcription session.
type Conn interface {
	Send(ctx context.Context, c Chunk) error
	// Receive blocks for the next input transcription fragment.
	// It returns io.EOF once the remote side closes the session.
	Receive(ctx context.Context) (string, error)
	Close() error
}

// Transport opens realtime sessions.
type Transport interface {
	Dial(ctx context.Context) (Conn, error)
}

// Target receives transcribed text.
type Target interface {
	Apply(fn func(*editor.Buffer)) error
}

var (
	// ErrAlreadyActive is returned by Start when a run is in progress.
	ErrAlreadyActive = errors.New("dictation already active")
	// ErrMicrophone is returned when the audio source cannot be opened.
	ErrMicrophone = errors.New("could not access microphone")
	// ErrConnect is returned when the realtime session cannot be opened.
	ErrConnect = errors.New("could not start transcription session")
)

// AppendTranscript appends text to the buffer content, separated by a
// single space unless the content is empty or already ends in whitespace.
func AppendTranscript(b *editor.Buffer, text string) {
	if text == "" {
		return
	}
	if b.Content != "" {
		last, _ := utf8.DecodeLastRuneInString(b.Content)
		if !unicode.IsSpace(last) {
			b.Content += " "
		}
	}
	b.Content += text
}
