package schema

import "fmt"

// GameType discriminates the embedded game variants.
type GameType string

const (
	GameTicTacToe GameType = "tictactoe"
	GamePingPong  GameType = "pingpong"
)

// Game is the game element body, discriminated by GameType.
type Game struct {
	GameType  GameType   `json:"gameType"`
	TicTacToe *TicTacToe `json:"tictactoe,omitempty"`
	PingPong  *PingPong  `json:"pingpong,omitempty"`
}

// Validate checks that exactly the variant matching GameType is populated.
func (g *Game) Validate() error {
	if g == nil {
		return fmt.Errorf("game: nil body")
	}
	switch g.GameType {
	case GameTicTacToe:
		if g.TicTacToe == nil || g.PingPong != nil {
			return fmt.Errorf("game %q: variant does not match gameType", g.GameType)
		}
	case GamePingPong:
		if g.PingPong == nil || g.TicTacToe != nil {
			return fmt.Errorf("game %q: variant does not match gameType", g.GameType)
		}
	default:
		return fmt.Errorf("game: unknown gameType %q", g.GameType)
	}
	return nil
}

// Clone returns a deep copy.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	if g.TicTacToe != nil {
		t := *g.TicTacToe
		t.WinLine = append([]int(nil), g.TicTacToe.WinLine...)
		out.TicTacToe = &t
	}
	if g.PingPong != nil {
		p := *g.PingPong
		out.PingPong = &p
	}
	return &out
}

// TicTacToe is the placed tic-tac-toe board. Board cells hold "", "X" or "O".
// PlayerX and PlayerO are connection ids, claimed first-come-first-served.
type TicTacToe struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`

	Board         [9]string `json:"board"`
	CurrentPlayer string    `json:"currentPlayer"`
	Winner        string    `json:"winner,omitempty"` // X, O or Draw
	WinLine       []int     `json:"winLine,omitempty"`
	PlayerX       string    `json:"playerX,omitempty"`
	PlayerO       string    `json:"playerO,omitempty"`
}

// Ball is the pingpong ball state; mutated only by the authoritative side.
type Ball struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Radius float64 `json:"radius"`
}

// Paddle is one side's paddle and score.
type Paddle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Score  int     `json:"score"`
}

// PingPong is the placed ping-pong game. The connection holding PlayerLeft
// is the sole physics simulator; everyone else mirrors its state pushes.
type PingPong struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Ball        Ball   `json:"ball"`
	PaddleLeft  Paddle `json:"paddleLeft"`
	PaddleRight Paddle `json:"paddleRight"`

	PlayerLeft  string `json:"playerLeft,omitempty"`
	PlayerRight string `json:"playerRight,omitempty"`

	GameStarted bool   `json:"gameStarted"`
	Paused      bool   `json:"paused"`
	Winner      string `json:"winner,omitempty"` // left or right
	LastUpdate  int64  `json:"lastUpdate"`
}
