package ws

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tasksphere/internal/metrics"
)

// Handler upgrades /ws requests into authenticated sessions.
type Handler struct {
	hub           *Hub
	authenticator Authenticator
	upgrader      websocket.Upgrader
	logger        *zap.Logger
}

func NewHandler(hub *Hub, authenticator Authenticator, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &Handler{
		hub:           hub,
		authenticator: authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin header.
				return origin == "" || allowed[origin]
			},
		},
		logger: zap.L().With(zap.String("component", "websocket_handler")),
	}
}

// Handle authenticates the handshake and upgrades the connection. No
// session exists until the credential resolves to a principal.
func (h *Handler) Handle(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		metrics.HandshakeRejected.Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	principal, err := h.authenticator.Authenticate(c.Request.Context(), token)
	if err != nil {
		metrics.HandshakeRejected.Inc()
		h.logger.Warn("handshake rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		metrics.HandshakeRejected.Inc()
		h.logger.Error("websocket upgrade failed", zap.Int64("principal_id", principal.ID), zap.Error(err))
		return
	}

	h.hub.register <- newSession(h.hub, conn, principal)
}

// extractToken pulls the credential from the Authorization header or the
// token query parameter. The header wins when both are present.
func (h *Handler) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}
