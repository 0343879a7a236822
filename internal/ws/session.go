// internal/ws/session.go
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blattodea-games/roachpoker/internal/game"
	"github.com/blattodea-games/roachpoker/internal/realtime"
)

// writeTimeout bounds a single frame write. A connection that cannot take
// a frame in this long is as good as gone; the liveness sweep will finish
// the job.
const writeTimeout = 10 * time.Second

// session is one authenticated websocket connection. The identity never
// changes after the handshake; room access is still checked per command by
// the membership registry.
type session struct {
	srv      *Server
	connID   uuid.UUID
	playerID uuid.UUID
	username string
	conn     *websocket.Conn
}

// run pumps the connection until it drops, then cleans up. The read loop
// runs on the caller's goroutine; writes get their own.
func (sess *session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outbound := sess.srv.deps.Dispatcher.Register(sess.connID)
	sess.srv.deps.Monitor.Track(sess.connID)

	go sess.writePump(ctx, outbound)

	sess.log().Info("websocket session opened")
	sess.readLoop(ctx)
	sess.teardown()
}

// writePump drains the dispatcher queue onto the wire. It exits when the
// queue closes (teardown) or a write fails, closing the connection so the
// read loop unblocks too.
func (sess *session) writePump(ctx context.Context, outbound <-chan []byte) {
	for frame := range outbound {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := sess.conn.Write(wctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			sess.conn.Close(websocket.StatusAbnormalClosure, "write failed")
			return
		}
	}
}

// readLoop decodes and routes client commands until the connection drops.
func (sess *session) readLoop(ctx context.Context) {
	for {
		_, data, err := sess.conn.Read(ctx)
		if err != nil {
			sess.log().WithField("reason", err.Error()).Debug("websocket read loop ended")
			return
		}
		var env realtime.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			sess.sendError("", fmt.Errorf("%w: malformed message envelope", game.ErrInvalidAction))
			continue
		}
		sess.route(env)
	}
}

// route dispatches one client command. Every rejection goes back to this
// connection only, as a structured error event.
func (sess *session) route(env realtime.Envelope) {
	switch env.Type {
	case MsgJoinRoom:
		var req joinRoomRequest
		if sess.decode(env, &req) {
			sess.handleJoinRoom(req)
		}
	case MsgLeaveRoom:
		var req leaveRoomRequest
		if sess.decode(env, &req) {
			sess.handleLeaveRoom(req)
		}
	case MsgStartGame:
		var req startGameRequest
		if sess.decode(env, &req) {
			sess.handleStartGame(req)
		}
	case MsgClaimCard:
		var req claimCardRequest
		if sess.decode(env, &req) {
			sess.handleClaimCard(req)
		}
	case MsgRespondToClaim:
		var req respondToClaimRequest
		if sess.decode(env, &req) {
			sess.handleRespondToClaim(req)
		}
	case MsgPassCard:
		var req passCardRequest
		if sess.decode(env, &req) {
			sess.handlePassCard(req)
		}
	case MsgGetGameState:
		var req getGameStateRequest
		if sess.decode(env, &req) {
			sess.handleGetGameState(req)
		}
	case MsgHeartbeat:
		var req heartbeatRequest
		if sess.decode(env, &req) {
			sess.handleHeartbeat(req)
		}
	case MsgRequestRecovery:
		var req recoveryRequest
		if sess.decode(env, &req) {
			sess.handleRecovery(req)
		}
	case MsgConfirmSync:
		var req confirmSyncRequest
		if sess.decode(env, &req) {
			sess.handleConfirmSync(req)
		}
	default:
		sess.sendError(env.Type, fmt.Errorf("%w: unknown message type %q", game.ErrInvalidAction, env.Type))
	}
}

// decode unmarshals the envelope data into dst. An empty data field decodes
// to the zero value; malformed data is reported to the sender.
func (sess *session) decode(env realtime.Envelope, dst interface{}) bool {
	if len(env.Data) == 0 {
		return true
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		sess.sendError(env.Type, fmt.Errorf("%w: malformed %s payload", game.ErrInvalidAction, env.Type))
		return false
	}
	return true
}

// handleJoinRoom binds this connection to a room the player already
// participates in. Membership is decided at the room layer; the registry
// only ever admits granted players.
func (sess *session) handleJoinRoom(req joinRoomRequest) {
	room, err := sess.srv.deps.Manager.GetRoom(req.RoomID)
	if err == nil {
		err = sess.srv.deps.Registry.Join(req.RoomID, sess.connID, sess.playerID)
	}
	if err == nil {
		err = room.HandleRejoin(sess.playerID)
	}
	if err != nil {
		sess.srv.deps.Dispatcher.ToConnection(sess.connID, game.EventRoomJoinFailed, game.RoomJoinFailedPayload{
			RoomID:    req.RoomID,
			ErrorCode: game.ErrorCode(err),
			Message:   err.Error(),
		})
		return
	}
	payload, err := room.JoinedPayloadFor(sess.playerID)
	if err != nil {
		sess.srv.deps.Dispatcher.ToConnection(sess.connID, game.EventRoomJoinFailed, game.RoomJoinFailedPayload{
			RoomID:    req.RoomID,
			ErrorCode: game.ErrorCode(err),
			Message:   err.Error(),
		})
		return
	}
	sess.srv.deps.Dispatcher.ToConnection(sess.connID, game.EventRoomJoined, payload)
}

// handleLeaveRoom is a voluntary departure: the seat is given up, not just
// the connection.
func (sess *session) handleLeaveRoom(req leaveRoomRequest) {
	if err := sess.srv.deps.Manager.LeaveRoom(req.RoomID, sess.playerID); err != nil {
		sess.sendError(MsgLeaveRoom, err)
		return
	}
	sess.srv.deps.Registry.Leave(req.RoomID, sess.connID)
	sess.srv.deps.Dispatcher.ToConnection(sess.connID, game.EventRoomLeft, game.RoomLeftPayload{RoomID: req.RoomID})
}

func (sess *session) handleStartGame(req startGameRequest) {
	if err := sess.srv.deps.Manager.StartGame(req.RoomID, sess.playerID); err != nil {
		sess.sendError(MsgStartGame, err)
	}
}

func (sess *session) handleClaimCard(req claimCardRequest) {
	room, err := sess.srv.deps.Manager.GetRoom(req.RoomID)
	if err == nil {
		err = room.HandleClaim(sess.playerID, req.CardID, req.ClaimedCreature, req.TargetPlayerID)
	}
	if err != nil {
		sess.sendError(MsgClaimCard, err)
	}
}

func (sess *session) handleRespondToClaim(req respondToClaimRequest) {
	room, err := sess.srv.deps.Manager.GetRoom(req.RoomID)
	if err == nil {
		err = room.HandleRespond(sess.playerID, req.RoundID, req.BelieveClaim)
	}
	if err != nil {
		sess.sendError(MsgRespondToClaim, err)
	}
}

func (sess *session) handlePassCard(req passCardRequest) {
	room, err := sess.srv.deps.Manager.GetRoom(req.RoomID)
	if err == nil {
		err = room.HandlePassBack(sess.playerID, req.RoundID, req.TargetPlayerID, req.NewClaim)
	}
	if err != nil {
		sess.sendError(MsgPassCard, err)
	}
}

// handleGetGameState snapshots the room for this player only. The reply
// never fans out; other participants asked for nothing.
func (sess *session) handleGetGameState(req getGameStateRequest) {
	room, err := sess.srv.deps.Manager.GetRoom(req.RoomID)
	if err != nil {
		sess.sendError(MsgGetGameState, err)
		return
	}
	view, err := room.StateFor(sess.playerID)
	if err != nil {
		sess.sendError(MsgGetGameState, err)
		return
	}
	sess.srv.deps.Dispatcher.ToConnection(sess.connID, game.EventGameStateUpdate, game.GameStateUpdatePayload{
		RoomID:    req.RoomID,
		GameState: view,
	})
}

// handleHeartbeat refreshes liveness and acks with the observed latency.
// An untracked connection is mid-eviction; there is no one to ack.
func (sess *session) handleHeartbeat(req heartbeatRequest) {
	latency, ok := sess.srv.deps.Monitor.RecordHeartbeat(sess.connID, req.Timestamp)
	if !ok {
		return
	}
	sess.srv.deps.Dispatcher.ToConnection(sess.connID, EventHeartbeatAck, heartbeatAck{
		ServerTimestamp: time.Now().UnixMilli(),
		LatencyMs:       latency,
	})
}

func (sess *session) handleRecovery(req recoveryRequest) {
	room, err := sess.srv.deps.Manager.GetRoom(req.RoomID)
	if err != nil {
		// Same reason as a non-participant request: a prober cannot tell a
		// missing room from someone else's room.
		sess.srv.deps.Dispatcher.ToConnection(sess.connID, game.EventRecoveryFailed, game.RecoveryFailedPayload{
			RoomID: req.RoomID,
			Reason: game.ErrRecoveryFailed.Error(),
		})
		return
	}
	var lostAt time.Time
	if req.ConnectionLostAt > 0 {
		lostAt = time.UnixMilli(req.ConnectionLostAt)
	}
	data, err := room.RequestRecovery(sess.playerID, req.LastKnownSessionVersion, lostAt)
	if err != nil {
		sess.srv.deps.Dispatcher.ToConnection(sess.connID, game.EventRecoveryFailed, game.RecoveryFailedPayload{
			RoomID: req.RoomID,
			Reason: err.Error(),
		})
		return
	}
	sess.srv.deps.Dispatcher.ToConnection(sess.connID, game.EventStateRecoveryData, game.StateRecoveryPayload{
		RoomID:                 req.RoomID,
		UpToDate:               data.UpToDate,
		SessionVersion:         data.SessionVersion,
		GameState:              data.View,
		MissedEventTypes:       data.MissedEventTypes,
		DisconnectedDurationMs: data.DisconnectedFor.Milliseconds(),
	})
}

// handleConfirmSync completes the recovery handshake. The resulting status
// broadcast is the acknowledgement.
func (sess *session) handleConfirmSync(req confirmSyncRequest) {
	room, err := sess.srv.deps.Manager.GetRoom(req.RoomID)
	if err == nil {
		err = room.ConfirmSync(sess.playerID, req.SessionVersion)
	}
	if err != nil {
		sess.sendError(MsgConfirmSync, err)
	}
}

// teardown runs exactly once, after the read loop ends for any reason:
// client close, network drop, or eviction. Rooms where this was the
// player's last live connection observe a disconnect; rooms where a newer
// connection took over do not.
func (sess *session) teardown() {
	s := sess.srv
	s.deps.Monitor.Untrack(sess.connID)
	for _, roomID := range s.deps.Registry.LeaveAll(sess.connID) {
		if _, still := s.deps.Registry.ConnForPlayer(roomID, sess.playerID); still {
			continue
		}
		if room, err := s.deps.Manager.GetRoom(roomID); err == nil {
			room.HandleDisconnect(sess.playerID)
		}
	}
	s.deps.Dispatcher.Unregister(sess.connID)
	sess.conn.Close(websocket.StatusNormalClosure, "")
	sess.log().Info("websocket session closed")
}

// sendError reports a rejected action to this connection only.
func (sess *session) sendError(action string, err error) {
	sess.srv.deps.Dispatcher.ToConnection(sess.connID, game.EventGameActionError, game.GameActionErrorPayload{
		ErrorCode:       game.ErrorCode(err),
		Message:         err.Error(),
		ActionAttempted: action,
	})
}

func (sess *session) log() *logrus.Entry {
	return sess.srv.deps.Log.WithFields(logrus.Fields{
		"conn":   sess.connID,
		"player": sess.playerID,
	})
}
