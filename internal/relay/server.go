// ABOUTME: Websocket gesture relay
// ABOUTME: Runs one lesson per connected front end and streams scrub events back
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/slidesounds/slidesounds-go/internal/discovery"
	"github.com/slidesounds/slidesounds-go/internal/lesson"
	"github.com/slidesounds/slidesounds-go/pkg/blend"
	"github.com/slidesounds/slidesounds-go/pkg/scrub"
	"go.uber.org/zap"
)

const (
	sendBuffer    = 100
	pingInterval  = 30 * time.Second
	writeDeadline = 10 * time.Second
	helloTimeout  = 10 * time.Second
)

// LessonFactory builds a lesson for one connection
type LessonFactory func(events lesson.Events, geom scrub.Geometry) (*lesson.Lesson, error)

// Config holds relay configuration
type Config struct {
	Addr      string
	Name      string
	Advertise bool
	NewLesson LessonFactory
	Logger    *zap.SugaredLogger
}

// Server accepts scrub front ends
type Server struct {
	config   Config
	serverID string
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	clients   map[string]*client
	clientsMu sync.RWMutex

	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

type client struct {
	id     string
	name   string
	conn   *websocket.Conn
	lesson *lesson.Lesson
	layout *layout

	mu       sync.Mutex
	closed   bool
	sendChan chan interface{}
}

// layout is the client-reported track geometry. Anchors the client did not
// report fall back to the anchors sent with the word.
type layout struct {
	mu   sync.Mutex
	l    scrub.Layout
	word []float64
}

func (g *layout) Measure() scrub.Layout {
	g.mu.Lock()
	defer g.mu.Unlock()
	l := g.l
	anchors := g.l.Anchors
	if len(anchors) == 0 {
		anchors = g.word
	}
	l.Anchors = append([]float64(nil), anchors...)
	return l
}

func (g *layout) set(l scrub.Layout) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.l = l
}

func (g *layout) setWord(anchors []float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.word = anchors
	g.l.Anchors = nil
}

// New creates a relay
func New(config Config) (*Server, error) {
	if config.NewLesson == nil {
		return nil, errors.New("relay: lesson factory is required")
	}
	if config.Name == "" {
		config.Name = "SlideSounds"
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop().Sugar()
	}

	s := &Server{
		config:   config,
		serverID: uuid.NewString(),
		logger:   config.Logger,
		mux:      http.NewServeMux(),
		clients:  make(map[string]*client),
		upgrader: websocket.Upgrader{
			// Local network front ends are served from arbitrary origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc(discovery.RelayPath, s.handleWebSocket)
	return s, nil
}

// Handler returns the HTTP handler serving the relay
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Clients returns the number of connected front ends
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}

	httpServer := &http.Server{Handler: s.mux}
	s.logger.Infow("Relay listening", "addr", ln.Addr().String(), "path", discovery.RelayPath, "server_id", s.serverID)

	var mdnsManager *discovery.Manager
	if s.config.Advertise {
		_, portStr, _ := net.SplitHostPort(ln.Addr().String())
		port, _ := strconv.Atoi(portStr)
		mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        port,
			Logger:      s.logger,
		})
		if err := mdnsManager.Advertise(); err != nil {
			s.logger.Warnw("Failed to start mDNS advertisement", "error", err)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Infow("Relay shutting down")
	case err := <-errChan:
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if mdnsManager != nil {
		mdnsManager.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("HTTP server shutdown error", "error", err)
	}

	s.closeClients()
	s.wg.Wait()

	if serverErr != nil {
		return fmt.Errorf("relay failed: %w", serverErr)
	}
	return nil
}

// closeClients drops open connections so their handlers return
func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.conn.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	shutdown := s.isShutdown
	s.shutdownMu.RUnlock()
	if shutdown {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade error", "error", err)
		return
	}

	s.logger.Debugw("New WebSocket connection", "remote", r.RemoteAddr)
	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(helloTimeout))
	hello, err := readHello(conn)
	if err != nil {
		s.logger.Warnw("Bad handshake", "error", err)
		writeError(conn, "bad_hello", err.Error())
		return
	}
	conn.SetReadDeadline(time.Time{})

	c := &client{
		id:       uuid.NewString(),
		name:     hello.Name,
		conn:     conn,
		layout:   &layout{},
		sendChan: make(chan interface{}, sendBuffer),
	}

	l, err := s.config.NewLesson(s.eventsFor(c), c.layout)
	if err != nil {
		s.logger.Errorw("Failed to create lesson", "error", err)
		writeError(conn, "lesson_unavailable", err.Error())
		return
	}
	c.lesson = l

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	s.logger.Infow("Client connected", "client", c.name, "id", c.id)

	defer func() {
		c.lesson.Close()
		c.mu.Lock()
		c.closed = true
		close(c.sendChan)
		c.mu.Unlock()

		s.clientsMu.Lock()
		delete(s.clients, c.id)
		s.clientsMu.Unlock()
		s.logger.Infow("Client disconnected", "client", c.name, "id", c.id)
	}()

	s.send(c, TypeServerHello, ServerHello{
		ClientID: c.id,
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  ProtocolVersion,
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debugw("WebSocket read error", "client", c.id, "error", err)
			}
			return
		}
		s.handleClientMessage(c, data)
	}
}

func readHello(conn *websocket.Conn) (*ClientHello, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode hello: %w", err)
	}
	if msg.Type != TypeClientHello {
		return nil, fmt.Errorf("expected %s, got %s", TypeClientHello, msg.Type)
	}

	var hello ClientHello
	if err := decodePayload(msg.Payload, &hello); err != nil {
		return nil, fmt.Errorf("decode hello payload: %w", err)
	}
	if hello.Name == "" {
		hello.Name = "anonymous"
	}
	return &hello, nil
}

func writeError(conn *websocket.Conn, code, message string) {
	data, err := json.Marshal(Message{
		Type:    TypeServerError,
		Payload: ErrorPayload{Error: code, Message: message},
	})
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	conn.WriteMessage(websocket.TextMessage, data)
}

// eventsFor forwards lesson callbacks to the client
func (s *Server) eventsFor(c *client) lesson.Events {
	update := func(kind string) func(scrub.Update) {
		return func(u scrub.Update) {
			s.send(c, kind, ScrubUpdate{Zone: u.Zone, Ratio: u.Ratio})
		}
	}
	return lesson.Events{
		OnScrubStart:  func() { s.send(c, TypeScrubStart, nil) },
		OnScrubMove:   update(TypeScrubMove),
		OnScrubEnd:    update(TypeScrubEnd),
		OnAutoAdvance: update(TypeAutoAdvance),
		OnComplete: func(wordID string) {
			s.send(c, TypeComplete, WordEvent{WordID: wordID})
		},
		OnWordAudio: func(wordID string, source blend.Source) {
			s.send(c, TypeWordAudio, WordEvent{WordID: wordID, Source: string(source)})
		},
	}
}

func (s *Server) handleClientMessage(c *client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Debugw("Error unmarshaling message", "client", c.id, "error", err)
		return
	}

	ctrl := c.lesson.Controller()
	switch msg.Type {
	case TypeWord:
		var req WordRequest
		if err := decodePayload(msg.Payload, &req); err != nil || req.WordID == "" {
			s.send(c, TypeServerError, ErrorPayload{Error: "bad_request", Message: "word_id is required"})
			return
		}
		s.selectWord(c, req.WordID)

	case TypeLayout:
		var lu LayoutUpdate
		if err := decodePayload(msg.Payload, &lu); err != nil {
			s.send(c, TypeServerError, ErrorPayload{Error: "bad_request", Message: err.Error()})
			return
		}
		c.layout.set(scrub.Layout{Left: lu.Left, Width: lu.Width, Anchors: lu.Anchors})
		ctrl.Resize()

	case TypePointerDown, TypePointerMove, TypePointerUp, TypePointerCancel:
		var ev PointerEvent
		if err := decodePayload(msg.Payload, &ev); err != nil {
			s.logger.Debugw("Bad pointer event", "client", c.id, "error", err)
			return
		}
		p := scrub.Pointer{ID: ev.PointerID, X: ev.X}
		switch msg.Type {
		case TypePointerDown:
			ctrl.PointerDown(p)
		case TypePointerMove:
			ctrl.PointerMove(p)
		case TypePointerUp:
			ctrl.PointerUp(p)
		case TypePointerCancel:
			ctrl.PointerCancel(p)
		}

	default:
		s.logger.Debugw("Unknown message type", "client", c.id, "type", msg.Type)
	}
}

func (s *Server) selectWord(c *client, wordID string) {
	parsed, err := c.lesson.SetWord(wordID)
	ctrl := c.lesson.Controller()
	c.layout.setWord(scrub.InsetAnchors(parsed.Units))
	ctrl.Resize()
	s.send(c, TypeSegments, segmentsFor(wordID, parsed, ctrl.Anchors()))
	if err != nil {
		s.send(c, TypeServerError, ErrorPayload{Error: "not_playable", Message: err.Error()})
	}
}

// send queues a message without blocking. Messages after disconnect are
// dropped.
func (s *Server) send(c *client, msgType string, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.sendChan <- Message{Type: msgType, Payload: payload}:
	default:
		s.logger.Warnw("Client send buffer full, dropping message", "client", c.id, "type", msgType)
	}
}

func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Warnw("Error marshaling message", "error", err)
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debugw("Error writing message", "client", c.id, "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}
