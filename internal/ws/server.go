// internal/ws/server.go
package ws

import (
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blattodea-games/roachpoker/internal/auth"
	"github.com/blattodea-games/roachpoker/internal/game"
	"github.com/blattodea-games/roachpoker/internal/realtime"
)

// maxInboundBytes bounds a single client frame. Commands are small; state
// only ever flows the other way.
const maxInboundBytes = 16 << 10

// Deps are the shared services a Server routes between.
type Deps struct {
	Tokens     *auth.TokenService
	Manager    *game.RoomManager
	Registry   *realtime.Registry
	Dispatcher *realtime.Dispatcher
	Monitor    *realtime.Monitor
	Origins    []string // origin patterns accepted during the handshake
	Log        *logrus.Logger
}

// Server is the websocket endpoint. Every accepted connection becomes a
// session: one reader goroutine owned by the HTTP handler and one writer
// goroutine draining the dispatcher queue.
type Server struct {
	deps Deps

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewServer builds the endpoint around its shared services.
func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	return &Server{
		deps:     d,
		sessions: make(map[uuid.UUID]*session),
	}
}

// ServeHTTP authenticates the handshake and runs the session until the
// connection drops. Identity comes from the player token; it is fixed for
// the life of the connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing player token", http.StatusUnauthorized)
		return
	}
	playerID, username, err := s.deps.Tokens.Verify(token)
	if err != nil {
		s.deps.Log.WithError(err).Warn("websocket handshake with invalid token")
		http.Error(w, "invalid player token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.deps.Origins,
	})
	if err != nil {
		s.deps.Log.WithError(err).Warn("websocket accept failed")
		return
	}
	conn.SetReadLimit(maxInboundBytes)

	sess := &session{
		srv:      s,
		connID:   uuid.New(),
		playerID: playerID,
		username: username,
		conn:     conn,
	}
	s.addSession(sess)
	defer s.removeSession(sess.connID)

	sess.run(r.Context())
}

// EvictConnection force-closes a session, typically because its heartbeats
// stopped. The close unblocks the session's read loop, which then runs the
// same cleanup as a voluntary disconnect.
func (s *Server) EvictConnection(connID uuid.UUID) {
	s.mu.Lock()
	sess, ok := s.sessions[connID]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.deps.Log.WithField("conn", connID).Info("evicting connection: heartbeat timeout")
	sess.conn.Close(websocket.StatusPolicyViolation, "heartbeat timeout")
}

func (s *Server) addSession(sess *session) {
	s.mu.Lock()
	s.sessions[sess.connID] = sess
	s.mu.Unlock()
}

func (s *Server) removeSession(connID uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, connID)
	s.mu.Unlock()
}

// bearerToken extracts the player token from the Authorization header or,
// for browser clients that cannot set headers on websocket dials, the
// token query parameter.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
