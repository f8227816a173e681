package client

import (
	"time"

	"drawtogether/schema"
)

// laserLifetime is how long a received laser stroke stays visible, measured
// from receipt. There is no server-side copy to reconcile against.
const laserLifetime = 2000 * time.Millisecond

type activeLaser struct {
	laser      schema.Laser
	receivedAt time.Time
}

// addLaser records a received stroke with its local expiry.
func (m *Mirror) addLaser(l schema.Laser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lasers = append(m.lasers, activeLaser{laser: l, receivedAt: m.now()})
}

// ActiveLasers prunes expired strokes and returns the live ones.
func (m *Mirror) ActiveLasers() []schema.Laser {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	kept := m.lasers[:0]
	for _, al := range m.lasers {
		if now.Sub(al.receivedAt) < laserLifetime {
			kept = append(kept, al)
		}
	}
	m.lasers = kept
	out := make([]schema.Laser, len(kept))
	for i, al := range kept {
		out[i] = al.laser
	}
	return out
}
