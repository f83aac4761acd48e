package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/MohdFaizan63/Resume-Builder/internal/auth"
	"github.com/MohdFaizan63/Resume-Builder/internal/notify"
)

const (
	wsAuthTimeout  = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsPongWait     = wsPingInterval + 10*time.Second
	wsWriteWait    = 5 * time.Second
)

var errWsAuth = errors.New("websocket auth rejected")

// WsHandler 把简历浏览通知实时推送给简历所有者。
// 客户端连接后须先发送 {"type":"auth","token":"<access token>"}。
type WsHandler struct {
	redisClient redis.UniversalClient
	authService *auth.AuthService
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

// NewWsHandler 构造 WebSocket 处理器。allowedOrigins 为空时只接受同源连接。
func NewWsHandler(redisClient redis.UniversalClient, authService *auth.AuthService, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	return &WsHandler{
		redisClient: redisClient,
		authService: authService,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if len(allowed) > 0 {
			return slices.Contains(allowed, origin)
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

type wsClientMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type wsServerMessage struct {
	Type  string        `json:"type"`
	Event *notify.Event `json:"event,omitempty"`
}

// HandleConnection 升级连接、完成鉴权，然后转发所有者频道上的事件直到任一方断开。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	log := h.logger.With(slog.String("client_ip", c.ClientIP()))

	userID, err := h.authenticate(conn)
	if err != nil {
		log.Info("websocket authentication failed", slog.Any("error", err))
		return
	}
	log = log.With(slog.Uint64("user_id", uint64(userID)))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// the reader only keeps the deadline fresh and notices disconnects
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.forwardEvents(ctx, conn, userID, log); err != nil {
		log.Info("websocket connection closed", slog.Any("error", err))
		return
	}
	log.Info("websocket connection closed")
}

// authenticate waits for the auth message and returns the access token's user.
func (h *WsHandler) authenticate(conn *websocket.Conn) (uint, error) {
	if err := conn.SetReadDeadline(time.Now().Add(wsAuthTimeout)); err != nil {
		return 0, err
	}

	var msg wsClientMessage
	if err := conn.ReadJSON(&msg); err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "auth required")
		return 0, fmt.Errorf("read auth message: %w", err)
	}
	if msg.Type != "auth" || msg.Token == "" {
		writeClose(conn, websocket.ClosePolicyViolation, "auth required")
		return 0, errWsAuth
	}

	claims, err := h.authService.ValidateToken(msg.Token)
	if err != nil || claims.TokenType != auth.TokenTypeAccess {
		writeClose(conn, websocket.ClosePolicyViolation, "unauthorized")
		return 0, errWsAuth
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func (h *WsHandler) forwardEvents(ctx context.Context, conn *websocket.Conn, userID uint, log *slog.Logger) error {
	channel := notify.Channel(userID)
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	// ready is sent once the subscription is live so no event is lost
	if err := writeJSON(conn, wsServerMessage{Type: "ready"}); err != nil {
		return fmt.Errorf("write ready: %w", err)
	}

	messages := pubsub.Channel()
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return errors.New("pubsub channel closed")
			}
			var event notify.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn("drop malformed notification", slog.Any("error", err))
				continue
			}
			if err := writeJSON(conn, wsServerMessage{Type: "event", Event: &event}); err != nil {
				return fmt.Errorf("write event: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteWait))
}
