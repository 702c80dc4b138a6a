package ws

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tasksphere/internal/metrics"
)

// Hub maintains the set of active sessions and routes deliveries to those
// whose subscriptions match. A slow session sheds from its own queue and
// can never hold up the others.
type Hub struct {
	sessions   map[string]*Session
	register   chan *Session
	unregister chan *Session
	authorizer Authorizer

	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	wg       sync.WaitGroup

	heartbeat     time.Duration
	sendQueueSize int
	dropThreshold int

	logger *zap.Logger
}

type HubConfig struct {
	HeartbeatInterval time.Duration
	SendQueueSize     int
	DropThreshold     int
}

func NewHub(authorizer Authorizer, cfg HubConfig) *Hub {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 10 * time.Second
	}
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = 256
	}
	if cfg.DropThreshold <= 0 {
		cfg.DropThreshold = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		sessions:      make(map[string]*Session),
		register:      make(chan *Session, 256),
		unregister:    make(chan *Session, 256),
		authorizer:    authorizer,
		ctx:           ctx,
		cancel:        cancel,
		stopChan:      make(chan struct{}),
		heartbeat:     cfg.HeartbeatInterval,
		sendQueueSize: cfg.SendQueueSize,
		dropThreshold: cfg.DropThreshold,
		logger:        zap.L().With(zap.String("component", "websocket_hub")),
	}
}

// Run processes session registration until Stop is called.
func (h *Hub) Run() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case session := <-h.register:
				h.handleRegister(session)
			case session := <-h.unregister:
				h.handleUnregister(session)
			case <-h.stopChan:
				return
			}
		}
	}()
}

// Stop closes every session and halts the hub.
func (h *Hub) Stop() {
	close(h.stopChan)
	h.cancel()
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, session := range h.sessions {
		session.close()
	}
	h.sessions = make(map[string]*Session)
}

func (h *Hub) handleRegister(session *Session) {
	h.mu.Lock()
	h.sessions[session.id] = session
	h.mu.Unlock()

	metrics.SessionsActive.Inc()
	h.logger.Info("session connected",
		zap.String("session_id", session.id),
		zap.Int64("principal_id", session.principal.ID))

	go session.writePump()
	go session.readPump()
}

func (h *Hub) handleUnregister(session *Session) {
	h.mu.Lock()
	_, ok := h.sessions[session.id]
	if ok {
		delete(h.sessions, session.id)
	}
	h.mu.Unlock()

	if ok {
		session.close()
		metrics.SessionsActive.Dec()
		h.logger.Info("session disconnected",
			zap.String("session_id", session.id),
			zap.Int64("principal_id", session.principal.ID),
			zap.Int64("drops", session.Drops()))
	}
}

// Deliver fans body out to every session subscribed to destination. The
// body is enqueued as-is; the hub never inspects it.
func (h *Hub) Deliver(destination string, body []byte) {
	frame := NewFrame(CommandMessage, map[string]string{"destination": destination}, body).Marshal()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, session := range h.sessions {
		if session.wants(destination) {
			session.enqueue(frame)
		}
	}
}

// SessionCount reports the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
