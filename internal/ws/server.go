package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"store-admin-service/internal/auth"
)

type Server struct {
	Hub            *Hub
	Logger         *zap.Logger
	JWTSecret      string
	Heartbeat      time.Duration
	AllowedOrigins []string

	upgrader websocket.Upgrader
}

func New(hub *Hub, logger *zap.Logger, jwtSecret string, heartbeat time.Duration, allowedOrigins []string) *Server {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	s := &Server{
		Hub:            hub,
		Logger:         logger,
		JWTSecret:      jwtSecret,
		Heartbeat:      heartbeat,
		AllowedOrigins: allowedOrigins,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// checkOrigin allows any origin when no allow-list is configured.
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.AllowedOrigins) == 0 {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, allowed := range s.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func tokenFromQuery(r *http.Request) string {
	raw := strings.TrimSpace(r.URL.Query().Get("token"))
	if bearer := auth.ParseBearerToken(raw); bearer != "" {
		return bearer
	}
	return raw
}

// AdminOrdersWS streams order status changes to an authenticated dashboard.
func (s *Server) AdminOrdersWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if _, err := auth.VerifyAccessToken(tokenFromQuery(r), s.JWTSecret); err != nil {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}

	c := &client{conn: conn}
	unsubscribe := s.Hub.subscribe(c)
	defer unsubscribe()

	if err := c.writeJSON(message{Type: "ready"}); err != nil {
		return
	}

	pongWait := 2 * s.Heartbeat
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.Heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(time.Now().Add(10 * time.Second)); err != nil {
				return
			}
		}
	}
}
