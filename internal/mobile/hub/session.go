package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"portfolio-backend/internal/mobile/domain"
	"portfolio-backend/internal/mobile/repository"
	"portfolio-backend/pkg/bridge"
)

const (
	// maxMessageSize bounds a single frame from a native shell.
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
	maxGlobals     = 64
	maxGlobalLen   = 128

	helloTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	writeWait    = 10 * time.Second
)

// UserTokenSource resolves a push token for the user signed in on a session
type UserTokenSource func(ctx context.Context, userID string) (string, error)

// SessionConfig configures the bridge of every new session
type SessionConfig struct {
	Stores      repository.StoreFactory
	AuthTimeout time.Duration
	Tokens      UserTokenSource
}

// Session is one connected native shell. Its Bridge calls go out as call
// frames, and the callbacks the shell sends back are routed to Bridge.Invoke.
type Session struct {
	id           string
	conn         *websocket.Conn
	send         chan []byte
	bridge       *bridge.Bridge
	platformHint string
	globals      []string
	remoteAddr   string
	connectedAt  time.Time

	mu       sync.Mutex
	closed   bool
	userID   string
	lastAuth *domain.AuthEvent
}

// ReadHello waits for the hello frame that opens every bridge socket.
func ReadHello(conn *websocket.Conn) (domain.Frame, error) {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(helloTimeout)); err != nil {
		return domain.Frame{}, err
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		return domain.Frame{}, err
	}

	var hello domain.Frame
	if err := json.Unmarshal(data, &hello); err != nil {
		return domain.Frame{}, fmt.Errorf("%w: %v", domain.ErrInvalidHello, err)
	}
	if hello.Type != domain.FrameHello {
		return domain.Frame{}, fmt.Errorf("%w: got %q", domain.ErrInvalidHello, hello.Type)
	}
	return hello, nil
}

// NewSession builds a session and its bridge from the globals announced in hello.
// conn may be nil when the session is driven without a socket.
func NewSession(conn *websocket.Conn, hello domain.Frame, remoteAddr string, cfg SessionConfig) (*Session, error) {
	globals, err := validateGlobals(hello.Globals)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:           uuid.NewString(),
		conn:         conn,
		send:         make(chan []byte, sendBufferSize),
		platformHint: hello.PlatformHint,
		globals:      globals,
		remoteAddr:   remoteAddr,
		connectedAt:  time.Now(),
	}

	env := make(bridge.Globals, len(globals))
	for _, path := range globals {
		path := path
		env[path] = func(args ...any) error {
			return s.call(path, args)
		}
	}

	stores := cfg.Stores
	if stores == nil {
		stores = repository.NewMemoryStoreFactory()
	}
	opts := bridge.Options{
		Store:       stores(s.id),
		AuthTimeout: cfg.AuthTimeout,
	}
	if cfg.Tokens != nil {
		opts.TokenSource = bridge.TokenSourceFunc(func(ctx context.Context) (string, error) {
			userID := s.UserID()
			if userID == "" {
				return "", nil
			}
			return cfg.Tokens(ctx, userID)
		})
	}
	s.bridge = bridge.New(env, opts)

	if hint := bridge.ParsePlatform(hello.PlatformHint); hint != bridge.PlatformUnknown && hint != s.bridge.Platform() {
		log.Printf("[Mobile] Session %s announced %s but globals look like %s", s.id, hint, s.bridge.Platform())
	}
	return s, nil
}

func validateGlobals(globals []string) ([]string, error) {
	if len(globals) > maxGlobals {
		return nil, fmt.Errorf("%w: too many globals (%d)", domain.ErrInvalidHello, len(globals))
	}
	out := make([]string, 0, len(globals))
	for _, g := range globals {
		g = strings.TrimSpace(g)
		if g == "" || len(g) > maxGlobalLen {
			return nil, fmt.Errorf("%w: invalid global %q", domain.ErrInvalidHello, g)
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Session) ID() string { return s.id }

// Bridge returns the bridge bound to this session.
func (s *Session) Bridge() *bridge.Bridge { return s.bridge }

// UserID returns the verified user signed in on the shell, if any.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// RecordAuth stores the latest auth outcome. A verified login sets the session
// user; a logout or an unauthenticated status clears it.
func (s *Session) RecordAuth(event domain.AuthEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case event.Kind == domain.AuthLoginSuccess && event.Verified:
		s.userID = event.UserID
	case event.Kind == domain.AuthLogout,
		event.Kind == domain.AuthStatus && !event.Authenticated:
		s.userID = ""
	}
	s.lastAuth = &event
}

// Info snapshots the session for the control API.
func (s *Session) Info() domain.SessionInfo {
	s.mu.Lock()
	var lastAuth *domain.AuthEvent
	if s.lastAuth != nil {
		copied := *s.lastAuth
		lastAuth = &copied
	}
	s.mu.Unlock()

	return domain.SessionInfo{
		ID:              s.id,
		Platform:        string(s.bridge.Platform()),
		PlatformHint:    s.platformHint,
		Globals:         append([]string(nil), s.globals...),
		BridgeAvailable: s.bridge.IsAvailable(),
		AuthAvailable:   s.bridge.IsAuthBridgeAvailable(),
		RemoteAddr:      s.remoteAddr,
		ConnectedAt:     s.connectedAt,
		LastAuth:        lastAuth,
	}
}

// Welcome queues the frame acknowledging the hello.
func (s *Session) Welcome() error {
	return s.enqueue(domain.Frame{
		Type:          domain.FrameWelcome,
		SessionID:     s.id,
		Platform:      string(s.bridge.Platform()),
		AuthAvailable: s.bridge.IsAuthBridgeAvailable(),
	})
}

// call pushes a native entry point invocation to the shell.
func (s *Session) call(path string, args []any) error {
	raw := make([]json.RawMessage, 0, len(args))
	for _, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return fmt.Errorf("encode argument for %s: %w", path, err)
		}
		raw = append(raw, data)
	}
	return s.enqueue(domain.Frame{Type: domain.FrameCall, Name: path, Args: raw})
}

func (s *Session) sendError(message string) {
	if err := s.enqueue(domain.Frame{Type: domain.FrameError, Error: message}); err != nil {
		log.Printf("[Mobile] Session %s: dropping error frame: %v", s.id, err)
	}
}

func (s *Session) enqueue(frame domain.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	select {
	case s.send <- data:
		return nil
	default:
		return domain.ErrSendBufferFull
	}
}

// HandleFrame routes one frame received from the shell.
func (s *Session) HandleFrame(data []byte) {
	var frame domain.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.sendError("invalid frame: " + err.Error())
		return
	}

	switch frame.Type {
	case domain.FrameCallback:
		if err := s.bridge.Invoke(frame.Name, decodeArgs(frame.Args)...); err != nil {
			s.sendError(err.Error())
		}
	default:
		s.sendError("unexpected frame type: " + frame.Type)
	}
}

// decodeArgs turns JSON scalars into Go values and keeps objects and arrays
// as raw JSON, which the bridge reads as encoded strings.
func decodeArgs(raw []json.RawMessage) []any {
	args := make([]any, 0, len(raw))
	for _, r := range raw {
		var v any
		if err := json.Unmarshal(r, &v); err != nil {
			args = append(args, nil)
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			args = append(args, r)
		default:
			args = append(args, v)
		}
	}
	return args
}

// Run starts the write pump and blocks in the read pump until the socket closes.
func (s *Session) Run() {
	go s.writePump()
	s.readPump()
}

func (s *Session) readPump() {
	defer s.conn.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Mobile] Session %s read error: %v", s.id, err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.HandleFrame(data)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disposes the bridge and stops the write pump. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	s.mu.Unlock()

	s.bridge.Dispose()
}
