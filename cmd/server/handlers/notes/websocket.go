package notes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"lumina/cmd/server/ctxkeys"
	"lumina/cmd/server/handlers/httperr"
	"lumina/internal/logger"
	"lumina/internal/services/notes"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const (
	// WSClosePolicyViolation represents WebSocket close code for policy violation
	WSClosePolicyViolation = 1008

	wsWriteTimeout     = 10 * time.Second
	wsPingInterval     = 25 * time.Second
	wsPingWriteTimeout = 5 * time.Second

	msgFailedToCloseWebSocketConnection = "failed to close WebSocket connection"
)

// Hub interface for WebSocket management
type Hub interface {
	Subscribe(connULID ulid.ULID) (*notes.Subscriber, func())
}

// WebSocketHandlers contains WebSocket-related handlers
type WebSocketHandlers struct {
	hub           Hub
	jwtSecret     string
	maxSessionSec int
}

// NewWebSocketHandlers creates new WebSocket handlers. An empty jwtSecret
// accepts connections without a token.
func NewWebSocketHandlers(hub Hub, jwtSecret string, maxSessionSec int) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub:           hub,
		jwtSecret:     jwtSecret,
		maxSessionSec: maxSessionSec,
	}
}

// WSUpgrade checks the upgrade request and the ?token= query before any
// websocket route runs.
func WSUpgrade(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			logger.L().Warn("websocket upgrade required", "handler", "WSUpgrade", "path", c.Path())
			return httperr.Status(fiber.StatusBadRequest, "WebSocket upgrade required")
		}

		if jwtSecret != "" {
			token := c.Query("token")
			if token == "" {
				logger.L().Warn("missing token in websocket upgrade", "handler", "WSUpgrade", "path", c.Path())
				return httperr.Status(fiber.StatusUnauthorized, "Missing token")
			}
			sub, err := ValidateToken(token, jwtSecret)
			if err != nil {
				logger.L().Warn("invalid token in websocket upgrade", "handler", "WSUpgrade", "path", c.Path(), "error", err)
				return httperr.Status(fiber.StatusUnauthorized, "Invalid token")
			}
			c.Locals(ctxkeys.SubjectKey, sub)
		}

		// Fiber's request-bound context, so websocket handlers get a real context.Context.
		c.Locals(ctxkeys.ParentCtxKey, c.UserContext())
		c.Locals(ctxkeys.QueryKey, c.Queries())

		logger.L().Info("WebSocket upgrade", "ip", c.IP(), "path", c.Path())
		return c.Next()
	}
}

// WSNotesStream handles WebSocket connections for real-time notes updates
func (h *WebSocketHandlers) WSNotesStream(c *websocket.Conn) {
	conn, parentCtx, err := h.initializeConnection(c)
	if err != nil {
		h.closeConnection(c)
		return
	}

	ctx, cancelCtx := context.WithCancel(parentCtx)
	defer cancelCtx()

	subscriber, cancel := h.hub.Subscribe(conn.connULID)
	defer cancel()

	logger.L().Info("WebSocket connection established", "conn_id", conn.connID)

	sessionTimer := h.startSessionTimer(c, conn, cancelCtx)
	defer sessionTimer.Stop()

	ping := startKeepAlive(c, conn)
	defer ping.Stop()

	go h.handleOutgoingMessages(ctx, c, conn, subscriber)

	handleIncomingMessages(c, conn.connID)

	logger.L().Info("WebSocket connection closed", "conn_id", conn.connID)
}

// wsConnection holds connection-specific data. Writes from the sender,
// keep-alive and timeout goroutines are serialised by mu.
type wsConnection struct {
	connULID ulid.ULID
	connID   string
	mu       sync.Mutex
}

func (w *wsConnection) write(c *websocket.Conn, timeout time.Duration, messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := c.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return c.WriteMessage(messageType, data)
}

func (w *wsConnection) writeJSON(c *websocket.Conn, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return c.WriteJSON(v)
}

// initializeConnection sets up the WebSocket connection
func (h *WebSocketHandlers) initializeConnection(c *websocket.Conn) (*wsConnection, context.Context, error) {
	parentCtx, ok := c.Locals(ctxkeys.ParentCtxKey).(context.Context)
	if !ok {
		logger.L().Error(ctxkeys.ParentCtxKey + " not found in WebSocket context")
		return nil, nil, errors.New(ctxkeys.ParentCtxKey + " not found")
	}

	connULID := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader)
	return &wsConnection{connULID: connULID, connID: connULID.String()}, parentCtx, nil
}

func (h *WebSocketHandlers) closeConnection(c *websocket.Conn) {
	if err := c.Close(); err != nil {
		logger.L().Error(msgFailedToCloseWebSocketConnection, "error", err)
	}
}

// startSessionTimer closes the connection once the session limit is reached.
func (h *WebSocketHandlers) startSessionTimer(c *websocket.Conn, conn *wsConnection, cancelCtx context.CancelFunc) *time.Timer {
	return time.AfterFunc(time.Duration(h.maxSessionSec)*time.Second, func() {
		logger.L().Info("WebSocket session timeout", "conn_id", conn.connID)
		err := conn.write(c, wsWriteTimeout, websocket.CloseMessage, websocket.FormatCloseMessage(WSClosePolicyViolation, "session timeout"))
		if err != nil {
			logger.L().Error("failed to send close message", "error", err, "conn_id", conn.connID)
		}
		h.closeConnection(c)
		cancelCtx()
	})
}

// startKeepAlive pings the client until a ping fails or the ticker stops.
func startKeepAlive(c *websocket.Conn, conn *wsConnection) *time.Ticker {
	ping := time.NewTicker(wsPingInterval)
	go func() {
		for range ping.C {
			if err := conn.write(c, wsPingWriteTimeout, websocket.PingMessage, nil); err != nil {
				logger.L().Warn("failed to write ping message", "error", err, "conn_id", conn.connID)
				return
			}
		}
	}()
	return ping
}

func (h *WebSocketHandlers) handleOutgoingMessages(ctx context.Context, c *websocket.Conn, conn *wsConnection, subscriber *notes.Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("panic in WebSocket sender", "error", r, "conn_id", conn.connID)
		}
	}()

	for {
		select {
		case event, ok := <-subscriber.Ch:
			if !ok {
				return
			}
			if err := conn.writeJSON(c, BuildEventMessage(event)); err != nil {
				logger.L().Error("failed to write WebSocket message", "error", err, "conn_id", conn.connID)
				return
			}
		case <-subscriber.Done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// BuildEventMessage builds the payload for an event. Deletions only carry the id.
func BuildEventMessage(event notes.NoteEvent) map[string]any {
	if event.Type == notes.EventDeleted && event.Note != nil {
		return map[string]any{
			"type": event.Type,
			"note": notes.DeletedNoteData{ID: event.Note.ID},
		}
	}
	return map[string]any{
		"type": event.Type,
		"note": event.Note,
	}
}

// handleIncomingMessages drains the client until it goes away.
func handleIncomingMessages(c *websocket.Conn, connID string) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.L().Error("WebSocket error", "error", err, "conn_id", connID)
			}
			return
		}
	}
}

// ValidateToken checks an HS256 token and returns its subject.
func ValidateToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}
