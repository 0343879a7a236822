// internal/handlers/handlers.go

// Package handlers is the REST surface around the room state machine:
// lobby CRUD, invite QR codes, and guest token minting. Mutating routes
// converge on the same RoomManager entrypoints the socket layer uses, so
// a room behaves identically no matter which door an action came through.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/blattodea-games/roachpoker/internal/auth"
	"github.com/blattodea-games/roachpoker/internal/game"
	"github.com/blattodea-games/roachpoker/internal/models"
)

const maxUsernameLen = 32

// Handlers carries the REST dependencies. PublicURL, when set, is the
// externally reachable base used in invite links; otherwise links are
// derived from the incoming request.
type Handlers struct {
	manager   *game.RoomManager
	tokens    *auth.TokenService
	publicURL string
	log       *logrus.Logger
}

func New(manager *game.RoomManager, tokens *auth.TokenService, publicURL string, log *logrus.Logger) *Handlers {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handlers{
		manager:   manager,
		tokens:    tokens,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		log:       log,
	}
}

// Router mounts every route. The websocket handler is mounted under /ws
// when provided so the whole HTTP surface shares one mux.
func (h *Handlers) Router(ws http.Handler) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", h.health)
	router.POST("/auth/guest", h.guestToken)

	router.POST("/rooms", h.authed(h.createRoom))
	router.GET("/rooms", h.authed(h.listRooms))
	router.GET("/rooms/:id", h.authed(h.getRoom))
	router.POST("/rooms/:id/join", h.authed(h.joinRoom))
	router.POST("/rooms/:id/start", h.authed(h.startRoom))
	router.GET("/rooms/:id/actions", h.authed(h.roomActions))
	router.GET("/rooms/:id/invite.png", h.invitePNG)

	if ws != nil {
		router.Handler(http.MethodGet, "/ws", ws)
	}
	return router
}

// authedHandle is an httprouter.Handle with the verified caller identity
// attached.
type authedHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, playerID uuid.UUID, username string)

// authed verifies the bearer token before invoking next.
func (h *Handlers) authed(next authedHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		playerID, username, err := h.tokens.Verify(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r, ps, playerID, username)
	}
}

// bearerToken pulls the JWT from the Authorization header or, failing
// that, the token query parameter.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warnf("encode response: %v", err)
	}
}

// writeError maps a room operation error to its wire code and HTTP status.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	code := game.ErrorCode(err)
	h.writeJSON(w, httpStatus(code), errorBody{ErrorCode: code, Message: err.Error()})
}

func httpStatus(code string) int {
	switch code {
	case game.CodeAccessDenied, game.CodePlayerNotInGame:
		return http.StatusForbidden
	case game.CodeRoomNotFound:
		return http.StatusNotFound
	case game.CodeGameNotActive, game.CodeNotYourTurn:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// decodeBody decodes a JSON request body into dst. An empty body is not an
// error; dst keeps its zero value.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type guestTokenRequest struct {
	Username string `json:"username"`
}

type guestTokenResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// guestToken mints a fresh identity. Clients hold the token for the
// lifetime of their session and present it on every REST call and the
// socket handshake.
func (h *Handlers) guestToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req guestTokenRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = "player"
	}
	if len(username) > maxUsernameLen {
		username = username[:maxUsernameLen]
	}

	user := models.User{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	token, err := h.tokens.Mint(user.ID, user.Username)
	if err != nil {
		h.log.Errorf("mint guest token: %v", err)
		http.Error(w, "token minting failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, guestTokenResponse{User: user, Token: token})
}
