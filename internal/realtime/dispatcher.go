package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// sendQueueSize bounds each connection's outbound queue. A connection
// that cannot drain this many frames is considered dead.
const sendQueueSize = 256

// Dispatcher fans committed events out to connections. It relays
// bytes only: state is committed by the room before anything is
// enqueued here, so a slow or dead connection can delay its own view
// but never corrupt the room.
type Dispatcher struct {
	registry *Registry
	shards   [numShards]sinkShard
}

type sinkShard struct {
	mu    sync.Mutex
	sinks map[uuid.UUID]chan []byte
}

// NewDispatcher returns a Dispatcher resolving room membership
// through reg.
func NewDispatcher(reg *Registry) *Dispatcher {
	d := &Dispatcher{registry: reg}
	for i := range d.shards {
		d.shards[i].sinks = make(map[uuid.UUID]chan []byte)
	}
	return d
}

// Register creates the outbound queue for a connection. The caller
// owns draining it; the channel closes on Unregister.
func (d *Dispatcher) Register(connID uuid.UUID) <-chan []byte {
	ch := make(chan []byte, sendQueueSize)
	s := &d.shards[shardIdx(connID)]
	s.mu.Lock()
	if old, ok := s.sinks[connID]; ok {
		close(old)
	}
	s.sinks[connID] = ch
	s.mu.Unlock()
	return ch
}

// Unregister removes and closes a connection's queue. Idempotent.
func (d *Dispatcher) Unregister(connID uuid.UUID) {
	s := &d.shards[shardIdx(connID)]
	s.mu.Lock()
	if ch, ok := s.sinks[connID]; ok {
		delete(s.sinks, connID)
		close(ch)
	}
	s.mu.Unlock()
}

// enqueue hands a frame to one connection's queue without blocking.
// Frames to a full queue are dropped; the liveness monitor will evict
// the connection if it stays unresponsive.
func (d *Dispatcher) enqueue(connID uuid.UUID, frame []byte) bool {
	s := &d.shards[shardIdx(connID)]
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.sinks[connID]
	if !ok {
		return false
	}
	select {
	case ch <- frame:
		return true
	default:
		logrus.Warnf("send queue full for connection %s, dropping frame", connID)
		return false
	}
}

// ToRoom seals the event once and enqueues the same frame for every
// connection currently in the room.
func (d *Dispatcher) ToRoom(roomID uuid.UUID, eventType string, payload interface{}) {
	frame, err := Seal(eventType, payload)
	if err != nil {
		logrus.Errorf("sealing %s event for room %s: %v", eventType, roomID, err)
		return
	}
	for _, connID := range d.registry.MembersOf(roomID) {
		d.enqueue(connID, frame)
	}
}

// ToConnection sends one event to one connection. Returns false when
// the connection is unknown or its queue is full.
func (d *Dispatcher) ToConnection(connID uuid.UUID, eventType string, payload interface{}) bool {
	frame, err := Seal(eventType, payload)
	if err != nil {
		logrus.Errorf("sealing %s event for connection %s: %v", eventType, connID, err)
		return false
	}
	return d.enqueue(connID, frame)
}
