// internal/handlers/rooms.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"github.com/blattodea-games/roachpoker/internal/cache"
	"github.com/blattodea-games/roachpoker/internal/game"
	"github.com/blattodea-games/roachpoker/internal/models"
)

const (
	inviteQRSize = 320

	defaultActionLimit = 100
	maxActionLimit     = 500
)

type createRoomResponse struct {
	Room game.RoomSummary `json:"room"`

	// JoinCode is only ever returned here; the server stores a hash.
	JoinCode string `json:"joinCode,omitempty"`
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params, playerID uuid.UUID, username string) {
	var cfg models.RoomConfig
	if err := decodeBody(r, &cfg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	room, joinCode, err := h.manager.CreateRoom(playerID, username, cfg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"room_id": room.ID,
		"host":    username,
		"private": joinCode != "",
	}).Info("room created")

	h.writeJSON(w, http.StatusCreated, createRoomResponse{
		Room:     room.Summary(),
		JoinCode: joinCode,
	})
}

func (h *Handlers) listRooms(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, _ uuid.UUID, _ string) {
	rooms := h.manager.Rooms()
	summaries := make([]game.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, room.Summary())
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": summaries})
}

// getRoom returns the caller's redacted snapshot. Non-participants get
// nothing, not even the room's existence beyond a 403.
func (h *Handlers) getRoom(w http.ResponseWriter, _ *http.Request, ps httprouter.Params, playerID uuid.UUID, _ string) {
	roomID, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	room, err := h.manager.GetRoom(roomID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view, err := room.StateFor(playerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

type joinRoomRequest struct {
	JoinCode string `json:"joinCode"`
}

type joinRoomResponse struct {
	Room        game.RoomSummary   `json:"room"`
	Participant models.Participant `json:"participant"`
}

// joinRoom seats the caller in the room. Seating grants socket membership;
// the client then binds a connection with the join_room socket command.
func (h *Handlers) joinRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params, playerID uuid.UUID, username string) {
	roomID, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	var req joinRoomRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	room, participant, err := h.manager.JoinRoom(roomID, playerID, username, req.JoinCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"room_id": roomID,
		"player":  username,
		"seat":    participant.Seat,
	}).Info("player joined room")

	h.writeJSON(w, http.StatusOK, joinRoomResponse{
		Room:        room.Summary(),
		Participant: *participant,
	})
}

func (h *Handlers) startRoom(w http.ResponseWriter, _ *http.Request, ps httprouter.Params, playerID uuid.UUID, _ string) {
	roomID, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	if err := h.manager.StartGame(roomID, playerID); err != nil {
		h.writeError(w, err)
		return
	}
	room, err := h.manager.GetRoom(roomID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, room.Summary())
}

type roomActionsResponse struct {
	RoomID  uuid.UUID                `json:"room_id"`
	Actions []cache.RoomActionRecord `json:"actions"`
}

// roomActions returns the room's recent action log from Redis, oldest
// first. Participants only.
func (h *Handlers) roomActions(w http.ResponseWriter, r *http.Request, ps httprouter.Params, playerID uuid.UUID, _ string) {
	roomID, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	room, err := h.manager.GetRoom(roomID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if _, err := room.StateFor(playerID); err != nil {
		h.writeError(w, err)
		return
	}
	if cache.Rdb == nil {
		http.Error(w, "action log not configured", http.StatusServiceUnavailable)
		return
	}

	limit := int64(defaultActionLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if parsed > maxActionLimit {
			parsed = maxActionLimit
		}
		limit = parsed
	}

	actions, err := cache.RecentRoomActions(r.Context(), roomID, limit)
	if err != nil {
		h.log.Errorf("read action log for room %s: %v", roomID, err)
		http.Error(w, "action log unavailable", http.StatusServiceUnavailable)
		return
	}
	h.writeJSON(w, http.StatusOK, roomActionsResponse{RoomID: roomID, Actions: actions})
}

// invitePNG renders a QR code for the room's join link. Unauthenticated:
// the link itself is what gets handed to the second player.
func (h *Handlers) invitePNG(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	if _, err := h.manager.GetRoom(roomID); err != nil {
		h.writeError(w, err)
		return
	}

	base := h.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
			scheme = fwd
		}
		base = scheme + "://" + r.Host
	}

	png, err := qrcode.Encode(base+"/join/"+roomID.String(), qrcode.Medium, inviteQRSize)
	if err != nil {
		h.log.Errorf("encode invite qr for room %s: %v", roomID, err)
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
