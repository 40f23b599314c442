package handlers

import (
	"net/http"
	"strings"
	"time"

	"eudaimonia/auth"
	"eudaimonia/middleware"
	"eudaimonia/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// LiveHandler serves the live invalidation websocket.
type LiveHandler struct {
	mgr    *ws.Manager
	tokens *auth.TokenManager
	log    *zap.Logger
}

func NewLiveHandler(mgr *ws.Manager, tokens *auth.TokenManager, log *zap.Logger) *LiveHandler {
	return &LiveHandler{mgr: mgr, tokens: tokens, log: log}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// tokenFrom reads the access token from ?token= or a bearer header, since
// browsers cannot set headers on websocket upgrades.
func tokenFrom(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// HandleLiveWS upgrades to websocket and streams invalidation events until
// the client goes away.
// GET /ws?token=<access token>
func (h *LiveHandler) HandleLiveWS(c *gin.Context) {
	token := tokenFrom(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
		return
	}
	claims, err := h.tokens.Parse(token, auth.TypeAccess)
	if err != nil {
		h.log.Debug("live token rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": middleware.InvalidTokenMessage})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	id := h.mgr.Register(claims.UserID, conn)
	h.log.Debug("live client connected", zap.String("user_id", claims.UserID), zap.String("conn_id", id))

	done := make(chan struct{})
	defer func() {
		close(done)
		h.mgr.Unregister(id)
		h.log.Debug("live client disconnected", zap.String("user_id", claims.UserID), zap.String("conn_id", id))
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		h.mgr.Touch(id)
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go h.ping(conn, done)

	for {
		// Clients only send heartbeats; any frame counts as activity.
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("live read error", zap.String("conn_id", id), zap.Error(err))
			}
			return
		}
		h.mgr.Touch(id)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (h *LiveHandler) ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// Stats handles GET /api/live/stats
func (h *LiveHandler) Stats(c *gin.Context) {
	users := h.mgr.Users()
	c.JSON(http.StatusOK, gin.H{"connections": h.mgr.Count(), "users": len(users)})
}
