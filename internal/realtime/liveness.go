package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// futureSkew tolerates client clocks slightly ahead of the server when
// computing heartbeat latency.
const futureSkew = 5 * time.Second

// Monitor tracks last-seen times per connection and evicts connections
// whose heartbeats stop. Eviction invokes the onEvict callback, which
// is expected to run the same cleanup path as a voluntary disconnect.
type Monitor struct {
	clock    clockwork.Clock
	interval time.Duration
	timeout  time.Duration
	onEvict  func(connID uuid.UUID)

	shards [numShards]livenessShard
}

type livenessShard struct {
	mu       sync.Mutex
	lastSeen map[uuid.UUID]time.Time
}

// NewMonitor returns a Monitor sweeping every interval and evicting
// connections silent for longer than timeout.
func NewMonitor(clock clockwork.Clock, interval, timeout time.Duration, onEvict func(uuid.UUID)) *Monitor {
	m := &Monitor{
		clock:    clock,
		interval: interval,
		timeout:  timeout,
		onEvict:  onEvict,
	}
	for i := range m.shards {
		m.shards[i].lastSeen = make(map[uuid.UUID]time.Time)
	}
	return m
}

// Track starts liveness tracking for a connection.
func (m *Monitor) Track(connID uuid.UUID) {
	s := &m.shards[shardIdx(connID)]
	s.mu.Lock()
	s.lastSeen[connID] = m.clock.Now()
	s.mu.Unlock()
}

// Untrack stops tracking a connection. Called on any disconnect so an
// already-closed connection is never evicted twice.
func (m *Monitor) Untrack(connID uuid.UUID) {
	s := &m.shards[shardIdx(connID)]
	s.mu.Lock()
	delete(s.lastSeen, connID)
	s.mu.Unlock()
}

// RecordHeartbeat updates the connection's last-seen time and returns
// the observed latency in milliseconds: server time minus the client's
// declared send time, floored at zero. ok is false for untracked
// connections.
func (m *Monitor) RecordHeartbeat(connID uuid.UUID, clientSentMillis int64) (latencyMs int64, ok bool) {
	now := m.clock.Now()

	s := &m.shards[shardIdx(connID)]
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, tracked := s.lastSeen[connID]; !tracked {
		return 0, false
	}
	s.lastSeen[connID] = now

	if clientSentMillis > 0 {
		clientTime := time.UnixMilli(clientSentMillis)
		if clientTime.Before(now.Add(futureSkew)) {
			latency := now.Sub(clientTime)
			if latency < 0 {
				latency = 0
			}
			latencyMs = latency.Milliseconds()
		}
	}
	return latencyMs, true
}

// Tracked reports whether a connection is currently monitored.
func (m *Monitor) Tracked(connID uuid.UUID) bool {
	s := &m.shards[shardIdx(connID)]
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lastSeen[connID]
	return ok
}

// Run sweeps on a fixed interval until ctx is cancelled. Sweeps never
// block heartbeat recording for longer than one shard scan.
func (m *Monitor) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.sweep()
		}
	}
}

// sweep evicts every connection whose last heartbeat is older than the
// timeout. Victims are collected under the shard locks and the evict
// callback runs after all locks are released.
func (m *Monitor) sweep() {
	cutoff := m.clock.Now().Add(-m.timeout)
	var victims []uuid.UUID

	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for connID, seen := range s.lastSeen {
			if seen.Before(cutoff) {
				victims = append(victims, connID)
				delete(s.lastSeen, connID)
			}
		}
		s.mu.Unlock()
	}

	for _, connID := range victims {
		logrus.Infof("evicting connection %s: no heartbeat since timeout", connID)
		if m.onEvict != nil {
			m.onEvict(connID)
		}
	}
}
