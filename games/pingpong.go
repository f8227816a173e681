package games

import (
	"errors"
	"math/rand"

	"drawtogether/schema"
)

var (
	ErrSideTaken      = errors.New("pingpong: side already claimed")
	ErrUnknownSide    = errors.New("pingpong: unknown side")
	ErrNotParticipant = errors.New("pingpong: sender holds no side")
)

const (
	// winningScore ends the game for the first side to reach it.
	winningScore = 5

	// referenceTPS is the simulation rate the ball velocities are tuned for;
	// Step scales by measured elapsed time so missed frames don't slow play.
	referenceTPS = 60

	defaultBallRadius   = 8
	defaultPaddleWidth  = 12
	defaultPaddleHeight = 70
	paddleInset         = 10
	serveSpeedX         = 4.0
	serveSpeedY         = 2.5
)

// NewPingPongElement creates a fresh ping-pong court element. Ball and
// paddle coordinates are local to the court rectangle.
func NewPingPongElement(x, y, width, height float64) schema.Element {
	g := &schema.PingPong{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		PaddleLeft: schema.Paddle{
			X:      paddleInset,
			Y:      height/2 - defaultPaddleHeight/2,
			Width:  defaultPaddleWidth,
			Height: defaultPaddleHeight,
		},
		PaddleRight: schema.Paddle{
			X:      width - paddleInset - defaultPaddleWidth,
			Y:      height/2 - defaultPaddleHeight/2,
			Width:  defaultPaddleWidth,
			Height: defaultPaddleHeight,
		},
	}
	resetBall(g)
	return schema.Element{
		ID:   schema.NewID(),
		Type: schema.TypeGame,
		Game: &schema.Game{GameType: schema.GamePingPong, PingPong: g},
	}
}

// ClaimSide assigns a side to connID with compare-and-set semantics: it
// succeeds only if the side is unowned or already owned by connID. The
// assignment is permanent for the life of the element.
func ClaimSide(g *schema.PingPong, side, connID string) bool {
	var seat *string
	switch side {
	case "left":
		seat = &g.PlayerLeft
	case "right":
		seat = &g.PlayerRight
	default:
		return false
	}
	if *seat == "" {
		*seat = connID
		return true
	}
	return *seat == connID
}

// IsAuthority reports whether connID is the sole physics simulator for g.
func IsAuthority(g *schema.PingPong, connID string) bool {
	return g.PlayerLeft != "" && g.PlayerLeft == connID
}

// Step advances ball physics by dt seconds, scaled to the 60 Hz reference
// rate. Only the authoritative connection may call it; observers merge the
// authority's pushes instead. now is stamped into LastUpdate.
func Step(g *schema.PingPong, dt float64, now int64) {
	g.LastUpdate = now
	if !g.GameStarted || g.Paused || g.Winner != "" {
		return
	}

	scale := dt * referenceTPS
	b := &g.Ball
	b.X += b.DX * scale
	b.Y += b.DY * scale

	// Top and bottom walls.
	if b.Y-b.Radius <= 0 {
		b.Y = b.Radius
		b.DY = -b.DY
	} else if b.Y+b.Radius >= g.Height {
		b.Y = g.Height - b.Radius
		b.DY = -b.DY
	}

	// Paddle rebounds. The vertical offset from the paddle center tilts the
	// return so players can aim.
	left := &g.PaddleLeft
	if b.DX < 0 && b.X-b.Radius <= left.X+left.Width &&
		b.X-b.Radius >= left.X &&
		b.Y >= left.Y && b.Y <= left.Y+left.Height {
		b.X = left.X + left.Width + b.Radius
		b.DX = -b.DX
		b.DY += (b.Y - (left.Y + left.Height/2)) / left.Height * 3
	}
	right := &g.PaddleRight
	if b.DX > 0 && b.X+b.Radius >= right.X &&
		b.X+b.Radius <= right.X+right.Width &&
		b.Y >= right.Y && b.Y <= right.Y+right.Height {
		b.X = right.X - b.Radius
		b.DX = -b.DX
		b.DY += (b.Y - (right.Y + right.Height/2)) / right.Height * 3
	}

	// Scoring edges.
	if b.X <= 0 {
		g.PaddleRight.Score++
		finishOrServe(g, "right")
	} else if b.X >= g.Width {
		g.PaddleLeft.Score++
		finishOrServe(g, "left")
	}
}

// finishOrServe ends the game at the winning score, otherwise re-serves.
func finishOrServe(g *schema.PingPong, scorer string) {
	score := g.PaddleRight.Score
	if scorer == "left" {
		score = g.PaddleLeft.Score
	}
	if score >= winningScore {
		g.Winner = scorer
		g.GameStarted = false
		return
	}
	resetBall(g)
}

// resetBall recenters the ball with a randomized serve; dx is never zero.
func resetBall(g *schema.PingPong) {
	b := &g.Ball
	b.Radius = defaultBallRadius
	b.X = g.Width / 2
	b.Y = g.Height / 2
	dir := 1.0
	if rand.Intn(2) == 0 {
		dir = -1.0
	}
	b.DX = dir * (serveSpeedX*0.75 + rand.Float64()*serveSpeedX*0.5)
	b.DY = (rand.Float64()*2 - 1) * serveSpeedY
}

// ValidatePingPong checks a proposed state push against the authority rules
// and returns the state to store. Seat claims follow CAS semantics; ball,
// score and outcome fields are writable only by the authoritative side; each
// paddle is writable only by its owner. Illegal field changes are reverted
// rather than failing the whole push, except for a sender holding no seat
// and claiming none, which is rejected outright.
func ValidatePingPong(old, next *schema.PingPong, sender string) (*schema.PingPong, error) {
	out := *next

	out.PlayerLeft = enforceSeat(old.PlayerLeft, next.PlayerLeft, sender)
	out.PlayerRight = enforceSeat(old.PlayerRight, next.PlayerRight, sender)

	if out.PlayerLeft != sender && out.PlayerRight != sender {
		return nil, ErrNotParticipant
	}

	if !IsAuthority(&out, sender) {
		// Ball physics, scores and game outcome are the left side's to write.
		out.Ball = old.Ball
		out.PaddleLeft = old.PaddleLeft
		out.PaddleRight.Score = old.PaddleRight.Score
		out.Winner = old.Winner
		out.GameStarted = old.GameStarted
		out.Paused = old.Paused
	} else if out.PlayerRight != sender {
		// Authority still may not drag the opponent's paddle.
		score := out.PaddleRight.Score
		out.PaddleRight = old.PaddleRight
		out.PaddleRight.Score = score
	}
	return &out, nil
}
