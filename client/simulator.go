package client

import (
	"errors"
	"sync"
	"time"

	"drawtogether/games"
	"drawtogether/schema"
)

// simulationTPS is the physics target rate; each step scales by measured
// elapsed time, so a missed frame advances the ball further instead of
// slowing play.
const simulationTPS = 60

var ErrNotAuthority = errors.New("client: not the authoritative simulator")

// pingpongAt fetches a pingpong element by id. Caller holds m.mu.
func (m *Mirror) pingpongAt(id string) (int, *schema.PingPong, error) {
	i := m.indexOfLocked(id, -1)
	if i < 0 || m.elements[i].Type != schema.TypeGame ||
		m.elements[i].Game == nil || m.elements[i].Game.PingPong == nil {
		return -1, nil, ErrElementNotFound
	}
	return i, m.elements[i].Game.PingPong, nil
}

// ClaimSide claims a paddle side for this participant, first-writer-wins,
// and pushes the claim. The assignment is permanent for the element's life.
func (m *Mirror) ClaimSide(id, side string) error {
	if side != "left" && side != "right" {
		return games.ErrUnknownSide
	}
	m.mu.Lock()
	i, g, err := m.pingpongAt(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if !games.ClaimSide(g, side, m.userID) {
		m.mu.Unlock()
		return games.ErrSideTaken
	}
	m.markLocalEditLocked()
	el := m.elements[i].Clone()
	m.mu.Unlock()
	return m.emitGameMove(i, el)
}

// MovePaddle drags this participant's paddle. The local copy updates every
// call; outbound pushes are coalesced per element at the paddle rate.
func (m *Mirror) MovePaddle(id, side string, y float64) error {
	if side != "left" && side != "right" {
		return games.ErrUnknownSide
	}
	m.mu.Lock()
	_, g, err := m.pingpongAt(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if !games.ClaimSide(g, side, m.userID) {
		m.mu.Unlock()
		return games.ErrSideTaken
	}
	paddle := &g.PaddleLeft
	if side == "right" {
		paddle = &g.PaddleRight
	}
	paddle.Y = y
	if paddle.Y < 0 {
		paddle.Y = 0
	}
	if paddle.Y > g.Height-paddle.Height {
		paddle.Y = g.Height - paddle.Height
	}
	m.markLocalEditLocked()
	th, ok := m.paddleThrottles[id]
	if !ok {
		elID := id
		th = NewThrottle(PaddleInterval, func() { m.pushGame(elID) })
		m.paddleThrottles[id] = th
	}
	m.mu.Unlock()
	th.Trigger()
	return nil
}

// pushGame emits the element's current local state, used by the paddle
// throttle's trailing edge.
func (m *Mirror) pushGame(id string) {
	m.mu.Lock()
	i := m.indexOfLocked(id, -1)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	el := m.elements[i].Clone()
	m.mu.Unlock()
	_ = m.emitGameMove(i, el)
}

// StartPingPong flips the game to running; only the authority may start it.
func (m *Mirror) StartPingPong(id string) error {
	m.mu.Lock()
	i, g, err := m.pingpongAt(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if !games.IsAuthority(g, m.userID) {
		m.mu.Unlock()
		return ErrNotAuthority
	}
	g.GameStarted = true
	g.Paused = false
	m.markLocalEditLocked()
	el := m.elements[i].Clone()
	m.mu.Unlock()
	return m.emitGameMove(i, el)
}

// Simulator runs ball physics for one pingpong element at a fixed timestep
// and pushes the full element after every step. Exactly one participant per
// element runs it: the connection holding playerLeft. Everyone else is a
// passive consumer of its pushes.
type Simulator struct {
	mirror    *Mirror
	elementID string

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSimulator prepares a simulator for the given element. Start fails if
// this mirror's participant does not hold the left seat.
func NewSimulator(m *Mirror, elementID string) *Simulator {
	return &Simulator{
		mirror:    m,
		elementID: elementID,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the physics loop. It returns once the loop is running.
func (s *Simulator) Start() error {
	m := s.mirror
	m.mu.Lock()
	_, g, err := m.pingpongAt(s.elementID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if !games.IsAuthority(g, m.userID) {
		m.mu.Unlock()
		return ErrNotAuthority
	}
	m.mu.Unlock()

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()
	go s.run()
	return nil
}

// Stop halts the loop; idempotent, and a no-op if Start never succeeded.
// The game element stays where it was, so other participants simply see it
// stop advancing.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.done
	}
}

func (s *Simulator) run() {
	defer close(s.done)
	ticker := time.NewTicker(time.Second / simulationTPS)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if finished := s.step(dt, now); finished {
				return
			}
		}
	}
}

// step advances the local element and pushes it. Returns true when the loop
// should end: element gone, authority lost to a newer sync, or game over.
func (s *Simulator) step(dt float64, now time.Time) bool {
	m := s.mirror
	m.mu.Lock()
	i, g, err := m.pingpongAt(s.elementID)
	if err != nil {
		m.mu.Unlock()
		return true
	}
	if !games.IsAuthority(g, m.userID) {
		m.mu.Unlock()
		return true
	}
	games.Step(g, dt, now.UnixMilli())
	m.markLocalEditLocked()
	finished := g.Winner != ""
	el := m.elements[i].Clone()
	m.mu.Unlock()

	_ = m.emitGameMove(i, el)
	return finished
}
