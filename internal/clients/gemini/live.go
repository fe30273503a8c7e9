package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"lumina/internal/services/dictation"

	"github.com/gorilla/websocket"
)

const (
	liveWriteWait = 10 * time.Second
	liveSetupWait = 15 * time.Second
)

// ErrSetup is returned when the live session does not confirm setup.
var ErrSetup = errors.New("gemini live setup failed")

// LiveConfig configures a LiveDialer.
type LiveConfig struct {
	URL    string
	Model  string
	Key    KeySource
	Dialer *websocket.Dialer
}

// LiveDialer opens BidiGenerateContent sessions configured for input
// transcription. It implements dictation.Transport.
type LiveDialer struct {
	url    string
	model  string
	key    KeySource
	dialer *websocket.Dialer
}

// NewLiveDialer creates a dialer for the live endpoint.
func NewLiveDialer(cfg LiveConfig) *LiveDialer {
	if cfg.Dialer == nil {
		cfg.Dialer = &websocket.Dialer{HandshakeTimeout: liveSetupWait}
	}
	if cfg.Key == nil {
		cfg.Key = EnvKey("")
	}
	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &LiveDialer{url: cfg.URL, model: model, key: cfg.Key, dialer: cfg.Dialer}
}

type liveSetup struct {
	Setup struct {
		Model            string `json:"model"`
		GenerationConfig struct {
			ResponseModalities []string `json:"responseModalities"`
		} `json:"generationConfig"`
		InputAudioTranscription struct{} `json:"inputAudioTranscription"`
	} `json:"setup"`
}

type mediaChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type realtimeInput struct {
	RealtimeInput struct {
		MediaChunks []mediaChunk `json:"mediaChunks"`
	} `json:"realtimeInput"`
}

type serverMessage struct {
	SetupComplete *struct{} `json:"setupComplete,omitempty"`
	ServerContent *struct {
		InputTranscription *struct {
			Text string `json:"text"`
		} `json:"inputTranscription,omitempty"`
		TurnComplete bool `json:"turnComplete,omitempty"`
	} `json:"serverContent,omitempty"`
	GoAway *struct {
		TimeLeft string `json:"timeLeft"`
	} `json:"goAway,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// Dial connects, sends the setup message and waits for setupComplete.
func (d *LiveDialer) Dial(ctx context.Context) (dictation.Conn, error) {
	key := d.key()
	if key == "" {
		return nil, ErrNoAPIKey
	}

	u, err := url.Parse(d.url)
	if err != nil {
		return nil, fmt.Errorf("parse live url: %w", err)
	}
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()

	ws, _, err := d.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial live session: %w", err)
	}

	var setup liveSetup
	setup.Setup.Model = d.model
	setup.Setup.GenerationConfig.ResponseModalities = []string{"AUDIO"}

	_ = ws.SetWriteDeadline(time.Now().Add(liveWriteWait))
	if err := ws.WriteJSON(setup); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("send setup: %w", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(liveSetupWait))
	for {
		msg, err := readServerMessage(ws)
		if err != nil {
			_ = ws.Close()
			return nil, fmt.Errorf("%w: %v", ErrSetup, err)
		}
		if msg.Error != nil {
			_ = ws.Close()
			return nil, fmt.Errorf("%w: %v", ErrSetup, msg.Error)
		}
		if msg.SetupComplete != nil {
			break
		}
	}
	_ = ws.SetReadDeadline(time.Time{})

	return &liveConn{ws: ws}, nil
}

func readServerMessage(ws *websocket.Conn) (serverMessage, error) {
	var msg serverMessage
	// the service sends JSON in both text and binary frames
	_, data, err := ws.ReadMessage()
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("decode server message: %w", err)
	}
	return msg, nil
}

type liveConn struct {
	ws        *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (c *liveConn) Send(ctx context.Context, ch dictation.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var msg realtimeInput
	msg.RealtimeInput.MediaChunks = []mediaChunk{{MIMEType: ch.MIMEType, Data: ch.Data}}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return c.ws.WriteJSON(msg)
}

func (c *liveConn) Receive(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		msg, err := readServerMessage(c.ws)
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "", io.EOF
			}
			return "", err
		}
		switch {
		case msg.Error != nil:
			return "", msg.Error
		case msg.GoAway != nil:
			return "", io.EOF
		case msg.ServerContent != nil && msg.ServerContent.InputTranscription != nil:
			if t := msg.ServerContent.InputTranscription.Text; t != "" {
				return t, nil
			}
		}
	}
}

func (c *liveConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}
