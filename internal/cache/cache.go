// Package cache publishes room action records to Redis for the
// historian pipeline. The client is optional: when Rdb is nil every
// publish is a no-op and callers must check before use.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. Nil when Redis is not configured.
var Rdb *redis.Client

// actionLogTTL bounds how long per-room action lists are retained.
const actionLogTTL = 24 * time.Hour

// RoomActionRecord captures a single room action for the action log.
type RoomActionRecord struct {
	RoomID        uuid.UUID              `json:"roomId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorPlayerID uuid.UUID              `json:"actorPlayerId"` // Nil for room-level events.
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // Unix millis.
}

// InitRedis connects the shared client. An empty addr leaves Rdb nil.
func InitRedis(ctx context.Context, addr, password string) error {
	if addr == "" {
		logrus.Info("redis addr not set, action log disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	Rdb = client
	logrus.Infof("connected to redis at %s", addr)
	return nil
}

// Close shuts down the shared client if one was initialized.
func Close() {
	if Rdb != nil {
		if err := Rdb.Close(); err != nil {
			logrus.Warnf("closing redis: %v", err)
		}
		Rdb = nil
	}
}

// actionListKey returns the Redis key holding a room's ordered action log.
func actionListKey(roomID uuid.UUID) string {
	return "room:" + roomID.String() + ":actions"
}

// PublishRoomAction appends a record to the room's action list and
// refreshes the list TTL.
func PublishRoomAction(ctx context.Context, rec RoomActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	key := actionListKey(rec.RoomID)
	pipe := Rdb.Pipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, actionLogTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish action: %w", err)
	}
	return nil
}

// RecentRoomActions returns up to limit most recent action records
// for a room, oldest first.
func RecentRoomActions(ctx context.Context, roomID uuid.UUID, limit int64) ([]RoomActionRecord, error) {
	if Rdb == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	raw, err := Rdb.LRange(ctx, actionListKey(roomID), -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read action log: %w", err)
	}
	records := make([]RoomActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec RoomActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			logrus.Warnf("skipping malformed action record for room %s: %v", roomID, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
