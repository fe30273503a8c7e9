// Package audio converts captured microphone samples into the 16 kHz,
// 16-bit little-endian PCM the realtime transcription session expects.
package audio

import (
	"encoding/binary"
	"errors"
	"math"
)

// TargetRate is the sample rate sent to the realtime session.
const TargetRate = 16000

// MIMEType labels every chunk sent to the realtime session.
const MIMEType = "audio/pcm;rate=16000"

// ErrOddFrame is returned when a float32 payload is not a multiple of 4 bytes.
var ErrOddFrame = errors.New("audio frame length is not a multiple of 4")

// Resample converts one buffer from rate `from` to rate `to` by linear
// interpolation. Streams split into frames should use a Resampler so the
// interpolation phase carries across frame boundaries.
func Resample(samples []float32, from, to int) []float32 {
	return NewResampler(from, to).Process(samples)
}

// Resampler converts a stream frame by frame. It keeps the last input
// sample and the fractional read position between calls, so splitting the
// input differently yields the same output. Not safe for concurrent use.
type Resampler struct {
	step float64 // input samples per output sample
	pos  float64 // next read position; -1 addresses last
	last float32
}

// NewResampler creates a resampler from rate `from` to rate `to`.
// Non-positive rates produce no output.
func NewResampler(from, to int) *Resampler {
	if from <= 0 || to <= 0 {
		return &Resampler{}
	}
	return &Resampler{step: float64(from) / float64(to)}
}

// Process resamples the next frame of the stream.
func (r *Resampler) Process(in []float32) []float32 {
	if len(in) == 0 || r.step == 0 {
		return []float32{}
	}
	if r.step == 1 {
		return append([]float32(nil), in...)
	}

	at := func(i int) float32 {
		if i < 0 {
			return r.last
		}
		return in[i]
	}

	end := float64(len(in) - 1)
	out := make([]float32, 0, int((end-r.pos)/r.step)+1)
	for ; r.pos <= end; r.pos += r.step {
		idx := int(math.Floor(r.pos))
		frac := float32(r.pos - float64(idx))
		a := at(idx)
		if frac == 0 {
			out = append(out, a)
			continue
		}
		out = append(out, a+(at(idx+1)-a)*frac)
	}

	r.pos -= float64(len(in))
	r.last = in[len(in)-1]
	return out
}

// EncodePCM16 clamps samples to [-1, 1] and writes them as 16-bit
// little-endian integers.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7FFF)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// DecodeFloat32LE reads little-endian IEEE 754 float32 samples.
func DecodeFloat32LE(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, ErrOddFrame
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

// Framer regroups a sample stream into fixed-size frames.
type Framer struct {
	size int
	buf  []float32
}

// NewFramer returns a Framer emitting frames of size samples.
func NewFramer(size int) *Framer {
	if size <= 0 {
		size = 1
	}
	return &Framer{size: size}
}

// Push appends samples and returns every complete frame now available.
func (f *Framer) Push(samples []float32) [][]float32 {
	f.buf = append(f.buf, samples...)
	var frames [][]float32
	for len(f.buf) >= f.size {
		frame := make([]float32, f.size)
		copy(frame, f.buf[:f.size])
		frames = append(frames, frame)
		f.buf = f.buf[f.size:]
	}
	return frames
}

// Buffered reports the number of samples waiting for a full frame.
func (f *Framer) Buffered() int { return len(f.buf) }
