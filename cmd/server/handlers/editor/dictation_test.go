package editor

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"lumina/internal/services/dictation"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport replies with one transcript once audio has arrived.
type fakeTransport struct {
	reply string
	conns []*fakeConn
	mu    sync.Mutex
}

func (t *fakeTransport) Dial(context.Context) (dictation.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := &fakeConn{reply: t.reply, heard: make(chan struct{}), closed: make(chan struct{})}
	t.conns = append(t.conns, c)
	return c, nil
}

type fakeConn struct {
	reply     string
	heard     chan struct{}
	heardOnce sync.Once
	closed    chan struct{}
	closeOnce sync.Once
	sent      []dictation.Chunk
	mu        sync.Mutex
	replied   bool
}

func (c *fakeConn) Send(_ context.Context, ch dictation.Chunk) error {
	c.mu.Lock()
	c.sent = append(c.sent, ch)
	c.mu.Unlock()
	c.heardOnce.Do(func() { close(c.heard) })
	return nil
}

func (c *fakeConn) Receive(ctx context.Context) (string, error) {
	c.mu.Lock()
	replied := c.replied
	c.mu.Unlock()
	if !replied {
		select {
		case <-c.heard:
			c.mu.Lock()
			c.replied = true
			c.mu.Unlock()
			return c.reply, nil
		case <-c.closed:
			return "", io.EOF
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	select {
	case <-c.closed:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func serveDictation(t *testing.T, h *DictationHandlers) string {
	t.Helper()
	app := fiber.New()
	app.Get("/ws/dictation", websocket.New(h.WSDictation))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "ws://" + ln.Addr().String() + "/ws/dictation"
}

func dialDictation(t *testing.T, url string) *gorillaws.Conn {
	t.Helper()
	var conn *gorillaws.Conn
	require.Eventually(t, func() bool {
		c, _, err := gorillaws.DefaultDialer.Dial(url, nil)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 20*time.Millisecond)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func float32Frame(samples ...float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}
	return out
}

// readUntil returns the first message accepted by match.
func readUntil(t *testing.T, conn *gorillaws.Conn, match func(DictationMessage) bool) DictationMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg DictationMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestWSDictation_NoSession(t *testing.T) {
	f := newFixture(t, nil)
	h := NewDictationHandlers(f.mgr, &fakeTransport{}, nil, 4, 60)

	conn := dialDictation(t, serveDictation(t, h))
	msg := readUntil(t, conn, func(m DictationMessage) bool { return true })
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "No note is open for editing", msg.Error)
}

func TestWSDictation_TranscribesIntoBuffer(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t)
	s, err := f.mgr.Active()
	require.NoError(t, err)
	require.NoError(t, s.SetContent("Shopping:"))

	transport := &fakeTransport{reply: "milk and eggs"}
	h := NewDictationHandlers(f.mgr, transport, dictation.NewRegistry(), 4, 60)
	conn := dialDictation(t, serveDictation(t, h))

	readUntil(t, conn, func(m DictationMessage) bool {
		return m.Type == "state" && m.State == string(dictation.StateListening)
	})
	// a malformed frame is dropped, a full frame reaches the transport
	require.NoError(t, conn.WriteMessage(gorillaws.BinaryMessage, []byte{1, 2, 3}))
	require.NoError(t, conn.WriteMessage(gorillaws.BinaryMessage, float32Frame(0, 0.5, -0.5, 1)))

	msg := readUntil(t, conn, func(m DictationMessage) bool { return m.Type == "transcript" })
	assert.Equal(t, "milk and eggs", msg.Text)
	assert.Equal(t, "Shopping: milk and eggs", s.Buffer().Content)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "stop"}))
	readUntil(t, conn, func(m DictationMessage) bool {
		return m.Type == "state" && m.State == string(dictation.StateIdle)
	})

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.Len(t, transport.conns, 1)
	transport.conns[0].mu.Lock()
	defer transport.conns[0].mu.Unlock()
	require.NotEmpty(t, transport.conns[0].sent)
	assert.Equal(t, "audio/pcm;rate=16000", transport.conns[0].sent[0].MIMEType)
}

func TestWSDictation_StopAllEndsRun(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t)

	runs := dictation.NewRegistry()
	transport := &fakeTransport{reply: "unused"}
	h := NewDictationHandlers(f.mgr, transport, runs, 4, 60)
	conn := dialDictation(t, serveDictation(t, h))

	readUntil(t, conn, func(m DictationMessage) bool {
		return m.Type == "state" && m.State == string(dictation.StateListening)
	})
	require.Equal(t, 1, runs.Len())

	runs.StopAll()
	readUntil(t, conn, func(m DictationMessage) bool {
		return m.Type == "state" && m.State == string(dictation.StateIdle)
	})
	require.Eventually(t, func() bool { return runs.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.Len(t, transport.conns, 1)
	select {
	case <-transport.conns[0].closed:
	default:
		t.Fatal("realtime session left open")
	}
}
