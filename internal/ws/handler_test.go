package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rejectAll struct{}

func (rejectAll) Authenticate(context.Context, string) (Principal, error) {
	return Principal{}, errors.New("invalid token")
}

type acceptAll struct{}

func (acceptAll) Authenticate(context.Context, string) (Principal, error) {
	return Principal{ID: 1}, nil
}

func requestContext(t *testing.T, target string, headers map[string]string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestExtractTokenHeaderWinsOverQuery(t *testing.T) {
	h := NewHandler(NewHub(allowAll{}, HubConfig{}), rejectAll{}, nil)

	c := requestContext(t, "/ws?token=from-query", map[string]string{
		"Authorization": "Bearer from-header",
	})
	assert.Equal(t, "from-header", h.extractToken(c))

	c = requestContext(t, "/ws?token=from-query", nil)
	assert.Equal(t, "from-query", h.extractToken(c))

	c = requestContext(t, "/ws?token=from-query", map[string]string{
		"Authorization": "Basic dXNlcjpwYXNz",
	})
	assert.Equal(t, "from-query", h.extractToken(c), "non-bearer header falls back to query")

	c = requestContext(t, "/ws", nil)
	assert.Empty(t, h.extractToken(c))
}

func TestHandleRejectsBeforeUpgrade(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewHub(allowAll{}, HubConfig{}), rejectAll{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ws", nil)
	h.Handle(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing token")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ws?token=bad", nil)
	h.Handle(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "invalid token")
}

func waitForSessions(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SessionCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sessions, have %d", n, hub.SessionCount())
}

func TestSessionClosedAfterMissedHeartbeats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	interval := 50 * time.Millisecond
	hub := NewHub(allowAll{}, HubConfig{HeartbeatInterval: interval})
	hub.Run()
	defer hub.Stop()

	engine := gin.New()
	engine.GET("/ws", NewHandler(hub, acceptAll{}, nil).Handle)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?token=ok", nil)
	require.NoError(t, err)
	defer conn.Close()

	waitForSessions(t, hub, 1)

	// A client that never reads never answers pings. The session survives
	// the first silent interval but must be gone once three have elapsed.
	time.Sleep(interval)
	assert.Equal(t, 1, hub.SessionCount())

	waitForSessions(t, hub, 0)
}
