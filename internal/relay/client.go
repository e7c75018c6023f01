// ABOUTME: WebSocket client for the scrub relay
// ABOUTME: Handles the hello handshake, sends pointer input and routes relay events
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const handshakeTimeout = 5 * time.Second

// ErrNotConnected is returned when sending on a closed client
var ErrNotConnected = errors.New("not connected")

// ClientConfig holds client configuration
type ClientConfig struct {
	URL    string // ws://host:port/scrub
	Name   string
	Logger *zap.SugaredLogger
}

// ScrubEvent is a scrub/* message
type ScrubEvent struct {
	Type   string
	Update ScrubUpdate
}

// Client is a remote front end for a relay
type Client struct {
	config ClientConfig
	logger *zap.SugaredLogger
	conn   *websocket.Conn
	hello  ServerHello
	mu     sync.RWMutex

	// Message channels
	Segments  chan Segments
	Scrub     chan ScrubEvent
	WordAudio chan WordEvent
	Completed chan WordEvent
	Errors    chan ErrorPayload

	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a relay client
func NewClient(config ClientConfig) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		config:    config,
		logger:    logger,
		Segments:  make(chan Segments, 10),
		Scrub:     make(chan ScrubEvent, 100),
		WordAudio: make(chan WordEvent, 10),
		Completed: make(chan WordEvent, 10),
		Errors:    make(chan ErrorPayload, 10),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect dials the relay and performs the handshake
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Debugw("Connecting to relay", "url", c.config.URL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.config.URL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()
	return nil
}

func (c *Client) handshake() error {
	if err := c.send(TypeClientHello, ClientHello{Name: c.config.Name}); err != nil {
		return fmt.Errorf("failed to send %s: %w", TypeClientHello, err)
	}

	c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", TypeServerHello, err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", TypeServerHello, err)
	}
	switch msg.Type {
	case TypeServerHello:
	case TypeServerError:
		var e ErrorPayload
		decodePayload(msg.Payload, &e)
		return fmt.Errorf("relay refused: %s: %s", e.Error, e.Message)
	default:
		return fmt.Errorf("expected %s, got %s", TypeServerHello, msg.Type)
	}

	if err := decodePayload(msg.Payload, &c.hello); err != nil {
		return fmt.Errorf("failed to decode %s: %w", TypeServerHello, err)
	}
	c.logger.Infow("Connected to relay", "relay", c.hello.Name, "client_id", c.hello.ClientID)
	return nil
}

// Hello returns the relay's handshake reply
func (c *Client) Hello() ServerHello {
	return c.hello
}

func (c *Client) send(msgType string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	return c.conn.WriteJSON(Message{Type: msgType, Payload: payload})
}

func (c *Client) readMessages() {
	defer c.Close()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debugw("Relay read error", "error", err)
			}
			return
		}
		if messageType == websocket.TextMessage {
			c.handleMessage(data)
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Debugw("Failed to parse relay message", "error", err)
		return
	}

	switch msg.Type {
	case TypeSegments:
		var seg Segments
		if err := decodePayload(msg.Payload, &seg); err == nil {
			deliver(c.ctx, c.Segments, seg)
		}

	case TypeScrubStart, TypeScrubMove, TypeScrubEnd, TypeAutoAdvance:
		ev := ScrubEvent{Type: msg.Type}
		if msg.Payload != nil {
			decodePayload(msg.Payload, &ev.Update)
		}
		deliver(c.ctx, c.Scrub, ev)

	case TypeWordAudio, TypeComplete:
		var ev WordEvent
		if err := decodePayload(msg.Payload, &ev); err != nil {
			return
		}
		if msg.Type == TypeWordAudio {
			deliver(c.ctx, c.WordAudio, ev)
		} else {
			deliver(c.ctx, c.Completed, ev)
		}

	case TypeServerError:
		var e ErrorPayload
		if err := decodePayload(msg.Payload, &e); err == nil {
			deliver(c.ctx, c.Errors, e)
		}

	default:
		c.logger.Debugw("Unknown message type", "type", msg.Type)
	}
}

func deliver[T any](ctx context.Context, ch chan T, v T) {
	select {
	case ch <- v:
	case <-ctx.Done():
	}
}

// SelectWord asks the relay to load a word
func (c *Client) SelectWord(wordID string) error {
	return c.send(TypeWord, WordRequest{WordID: wordID})
}

// SetLayout reports the track geometry
func (c *Client) SetLayout(l LayoutUpdate) error {
	return c.send(TypeLayout, l)
}

// PointerDown sends a press at x
func (c *Client) PointerDown(id int64, x float64) error {
	return c.send(TypePointerDown, PointerEvent{PointerID: id, X: x})
}

// PointerMove sends a move to x
func (c *Client) PointerMove(id int64, x float64) error {
	return c.send(TypePointerMove, PointerEvent{PointerID: id, X: x})
}

// PointerUp sends a release at x
func (c *Client) PointerUp(id int64, x float64) error {
	return c.send(TypePointerUp, PointerEvent{PointerID: id, X: x})
}

// PointerCancel abandons the gesture
func (c *Client) PointerCancel(id int64) error {
	return c.send(TypePointerCancel, PointerEvent{PointerID: id})
}

// Done is closed once the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
		c.logger.Debugw("Relay connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
