package gateway

import (
	"net/http"
	"strings"

	"github.com/youth-club/core/internal/access"
	"github.com/youth-club/core/internal/models"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

// Authenticator resolves a session token to a caller.
type Authenticator func(token string) (access.Caller, error)

// SocketServer is the socket.io transport. Dashboard clients connect to the
// /dashboard namespace with ?token= or an Authorization header.
type SocketServer struct {
	sio    *socketio.Server
	hub    *Hub
	auth   Authenticator
	logger *zap.Logger
}

func NewSocketServer(hub *Hub, auth Authenticator, logger *zap.Logger) *SocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SocketServer{
		sio:    socketio.NewServer(nil, nil),
		hub:    hub,
		auth:   auth,
		logger: logger.Named("socketio"),
	}
	_ = s.sio.Of(namespaceDashboard, nil).On("connection", s.onConnection)
	return s
}

func (s *SocketServer) onConnection(args ...any) {
	if len(args) == 0 {
		return
	}
	sock, ok := args[0].(*socketio.Socket)
	if !ok {
		return
	}

	caller, err := s.auth(normalizeToken(extractToken(sock)))
	if err != nil || !caller.Authenticated() {
		_ = sock.Emit(eventMessage, map[string]string{"type": "auth_failed"})
		sock.Disconnect(true)
		return
	}

	client := &socketClient{sock: sock}
	if err := s.hub.Register(client); err != nil {
		sock.Disconnect(true)
		return
	}
	s.logger.Debug("dashboard connected", zap.String("sid", client.ID()), zap.String("user_id", caller.UserID))

	_ = sock.On("disconnect", func(_ ...any) {
		// The hub may be the one closing this socket; do not block its loop.
		go s.hub.Unregister(client.ID())
	})
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (s *SocketServer) Handler() http.Handler {
	return s.sio.ServeHandler(nil)
}

func (s *SocketServer) Close() {
	s.sio.Close(nil)
}

type socketClient struct {
	sock *socketio.Socket
}

func (c *socketClient) ID() string { return string(c.sock.Id()) }

func (c *socketClient) Send(e models.Event) error {
	if !c.sock.Connected() {
		return errSlowClient
	}
	return c.sock.Emit(eventMessage, e)
}

func (c *socketClient) Close() { c.sock.Disconnect(true) }

func extractToken(sock *socketio.Socket) string {
	handshake := sock.Handshake()
	if handshake == nil {
		return ""
	}
	if token := firstValueFromMultiMap(handshake.Query, "token"); token != "" {
		return token
	}
	if auth, ok := handshake.Auth.(map[string]any); ok {
		if token, _ := auth["token"].(string); token != "" {
			return token
		}
	}
	return firstValueFromMultiMap(handshake.Headers, "authorization")
}

func firstValueFromMultiMap(values map[string][]string, key string) string {
	for k, list := range values {
		if !strings.EqualFold(strings.TrimSpace(k), key) || len(list) == 0 {
			continue
		}
		if v := strings.TrimSpace(list[0]); v != "" {
			return v
		}
	}
	return ""
}

func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
