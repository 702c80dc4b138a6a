package ws

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tasksphere/internal/events"
	"tasksphere/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024

	// heartbeatMisses is how many silent intervals close the session.
	heartbeatMisses = 3
)

// Session is one authenticated client connection. The principal is frozen
// at handshake; only the subscription set changes afterwards.
type Session struct {
	hub       *Hub
	conn      *websocket.Conn
	id        string
	principal Principal

	mu            sync.Mutex
	subscriptions map[string]string // subscription id -> destination

	send      chan []byte
	drops     atomic.Int64
	closeOnce sync.Once
	closed    chan struct{}

	heartbeat     time.Duration
	dropThreshold int64
	logger        *zap.Logger
}

func newSession(hub *Hub, conn *websocket.Conn, principal Principal) *Session {
	return &Session{
		hub:           hub,
		conn:          conn,
		id:            uuid.New().String(),
		principal:     principal,
		subscriptions: make(map[string]string),
		send:          make(chan []byte, hub.sendQueueSize),
		closed:        make(chan struct{}),
		heartbeat:     hub.heartbeat,
		dropThreshold: int64(hub.dropThreshold),
		logger: zap.L().With(
			zap.String("component", "websocket"),
			zap.Int64("principal_id", principal.ID),
		),
	}
}

// ID returns the session identifier assigned at handshake.
func (s *Session) ID() string { return s.id }

// Principal returns the identity bound at handshake.
func (s *Session) Principal() Principal { return s.principal }

// Drops returns how many queued frames this session has shed.
func (s *Session) Drops() int64 { return s.drops.Load() }

// subscribe records a destination under a subscription id.
func (s *Session) subscribe(subID, destination string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[subID] = destination
}

func (s *Session) unsubscribe(subID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscriptions[subID]; !ok {
		return false
	}
	delete(s.subscriptions, subID)
	return true
}

// wants reports whether a delivery on destination should reach this
// session. Broadcast subscriptions may carry a `*` segment; user-addressed
// destinations additionally require a principal match.
func (s *Session) wants(destination string) bool {
	if pid, ok := destinationPrincipal(destination); ok && pid != s.principal.ID {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subscriptions {
		if sub == destination {
			return true
		}
		subChannel, okSub := ChannelFromDestination(sub)
		channel, okDst := ChannelFromDestination(destination)
		if okSub && okDst && events.MatchTopic(subChannel, channel) {
			return true
		}
	}
	return false
}

// enqueue places frame bytes on the bounded send queue, shedding the
// eldest entry when full. A session past its drop threshold is closed; it
// never blocks the caller.
func (s *Session) enqueue(data []byte) {
	for {
		select {
		case <-s.closed:
			return
		case s.send <- data:
			return
		default:
		}

		select {
		case <-s.send:
			metrics.TransportDropped.Inc()
			if s.drops.Add(1) == s.dropThreshold {
				s.logger.Warn("session past drop threshold, closing",
					zap.String("session_id", s.id),
					zap.Int64("drops", s.dropThreshold))
				s.close()
				return
			}
		default:
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

func (s *Session) readPump() {
	defer func() {
		s.hub.unregister <- s
		s.close()
	}()

	pongWait := s.heartbeat * heartbeatMisses
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error("websocket unexpected close", zap.String("session_id", s.id), zap.Error(err))
			}
			return
		}
		if len(message) == 0 {
			// Bare newline keepalive.
			s.conn.SetReadDeadline(time.Now().Add(pongWait))
			continue
		}

		frame, err := ParseFrame(message)
		if err != nil {
			s.sendError(fmt.Sprintf("malformed frame: %v", err))
			continue
		}
		if done := s.handleFrame(frame); done {
			return
		}
	}
}

// handleFrame processes one client command. It returns true when the
// session should terminate.
func (s *Session) handleFrame(frame Frame) bool {
	switch frame.Command {
	case CommandConnect:
		s.enqueue(NewFrame(CommandConnected, map[string]string{
			"version":    "1.2",
			"session":    s.id,
			"heart-beat": fmt.Sprintf("%d,%d", s.heartbeat.Milliseconds(), s.heartbeat.Milliseconds()),
		}, nil).Marshal())
		return false

	case CommandSubscribe:
		s.handleSubscribe(frame)
		return false

	case CommandUnsubscribe:
		subID := frame.Headers["id"]
		if subID == "" || !s.unsubscribe(subID) {
			s.sendError("unknown subscription id")
			return false
		}
		s.sendReceipt(frame)
		return false

	case CommandDisconnect:
		s.sendReceipt(frame)
		return true

	default:
		s.sendError(fmt.Sprintf("unsupported command %q", frame.Command))
		return false
	}
}

func (s *Session) handleSubscribe(frame Frame) {
	destination := frame.Headers["destination"]
	if destination == "" {
		s.sendError("subscribe requires a destination header")
		return
	}

	subID := frame.Headers["id"]
	if subID == "" {
		subID = uuid.New().String()
	}

	if pid, ok := destinationPrincipal(destination); ok {
		// Private inbox destinations need no policy check beyond identity.
		if pid != s.principal.ID {
			s.sendError(fmt.Sprintf("cannot subscribe to another principal's destination %s", destination))
			return
		}
		s.subscribe(subID, destination)
		s.sendReceipt(frame)
		return
	}

	channel, ok := ChannelFromDestination(destination)
	if !ok {
		s.sendError(fmt.Sprintf("invalid destination %s", destination))
		return
	}
	if !s.hub.authorizer.Authorize(s.hub.ctx, s.principal, channel) {
		s.logger.Warn("subscription refused",
			zap.String("session_id", s.id),
			zap.String("destination", destination))
		s.sendError(fmt.Sprintf("not authorized for %s", destination))
		return
	}

	s.subscribe(subID, destination)
	s.sendReceipt(frame)
}

func (s *Session) sendError(message string) {
	s.enqueue(NewFrame(CommandError, map[string]string{"message": message}, nil).Marshal())
}

func (s *Session) sendReceipt(frame Frame) {
	if receipt := frame.Headers["receipt"]; receipt != "" {
		s.enqueue(NewFrame(CommandReceipt, map[string]string{"receipt-id": receipt}, nil).Marshal())
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(s.heartbeat)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.closed:
			return

		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
