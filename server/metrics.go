package server

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Metrics tracks hub-wide event counters for monitoring and debugging.
type Metrics struct {
	Events       int64
	Broadcasts   int64
	UnknownRoom  int64
	StaleTarget  int64
	InvalidGame  int64
	Malformed    int64
	BytesIn      int64
}

func (m *Metrics) IncEvents()         { atomic.AddInt64(&m.Events, 1) }
func (m *Metrics) IncBroadcasts()     { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *Metrics) IncUnknownRoom()    { atomic.AddInt64(&m.UnknownRoom, 1) }
func (m *Metrics) IncStaleTarget()    { atomic.AddInt64(&m.StaleTarget, 1) }
func (m *Metrics) IncInvalidGame()    { atomic.AddInt64(&m.InvalidGame, 1) }
func (m *Metrics) IncMalformed()      { atomic.AddInt64(&m.Malformed, 1) }
func (m *Metrics) AddBytesIn(n int64) { atomic.AddInt64(&m.BytesIn, n) }

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"events_in":          atomic.LoadInt64(&m.Events),
		"broadcasts":         atomic.LoadInt64(&m.Broadcasts),
		"unknown_room_drops": atomic.LoadInt64(&m.UnknownRoom),
		"stale_target_drops": atomic.LoadInt64(&m.StaleTarget),
		"invalid_game_drops": atomic.LoadInt64(&m.InvalidGame),
		"malformed_drops":    atomic.LoadInt64(&m.Malformed),
		"bytes_in":           atomic.LoadInt64(&m.BytesIn),
	}
}

// HandleMetrics reports hub counters and per-room occupancy.
// GET /metrics
func (h *Hub) HandleMetrics(c *gin.Context) {
	rooms := make(map[string]any)
	for _, id := range h.RoomIDs() {
		if room, ok := h.GetRoom(id); ok {
			rooms[id] = map[string]any{
				"members":  len(room.MemberIDs()),
				"elements": room.ElementCount(),
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"metrics": h.metrics.Snapshot(),
		"rooms":   rooms,
	})
}
