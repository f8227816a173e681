// Package games holds the rules of the embedded canvas games. It is pure
// state-transition logic: no networking, no timers, no storage.
package games

import (
	"errors"

	"drawtogether/schema"
)

var (
	ErrCellOccupied   = errors.New("tictactoe: cell already occupied")
	ErrCellOutOfRange = errors.New("tictactoe: cell out of range")
	ErrGameFinished   = errors.New("tictactoe: game already finished")
	ErrNotYourTurn    = errors.New("tictactoe: not this connection's turn")
	ErrMarkTaken      = errors.New("tictactoe: mark already claimed")
)

// winLines enumerates the eight winning triples.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// NewTicTacToeElement creates a fresh board element at the given position.
func NewTicTacToeElement(x, y, size float64) schema.Element {
	return schema.Element{
		ID:   schema.NewID(),
		Type: schema.TypeGame,
		Game: &schema.Game{
			GameType: schema.GameTicTacToe,
			TicTacToe: &schema.TicTacToe{
				X:             x,
				Y:             y,
				Size:          size,
				CurrentPlayer: "X",
			},
		},
	}
}

// ClaimMark assigns a mark's seat to connID with compare-and-set semantics:
// it succeeds only if the seat is free or already held by connID. Occupied
// seats are never reassigned.
func ClaimMark(g *schema.TicTacToe, mark, connID string) bool {
	var seat *string
	switch mark {
	case "X":
		seat = &g.PlayerX
	case "O":
		seat = &g.PlayerO
	default:
		return false
	}
	if *seat == "" {
		*seat = connID
		return true
	}
	return *seat == connID
}

// markOwner returns the connection holding the given mark's seat.
func markOwner(g *schema.TicTacToe, mark string) string {
	if mark == "X" {
		return g.PlayerX
	}
	return g.PlayerO
}

// ApplyMove places the current player's mark at cell on behalf of connID.
// The first connection to move for an unclaimed mark claims its seat.
func ApplyMove(g *schema.TicTacToe, cell int, connID string) error {
	if g.Winner != "" {
		return ErrGameFinished
	}
	if cell < 0 || cell >= len(g.Board) {
		return ErrCellOutOfRange
	}
	if g.Board[cell] != "" {
		return ErrCellOccupied
	}
	mark := g.CurrentPlayer
	if !ClaimMark(g, mark, connID) {
		return ErrNotYourTurn
	}
	if markOwner(g, mark) != connID {
		return ErrNotYourTurn
	}
	g.Board[cell] = mark
	if mark == "X" {
		g.CurrentPlayer = "O"
	} else {
		g.CurrentPlayer = "X"
	}
	updateOutcome(g)
	return nil
}

// Reset clears the board for a rematch, keeping both seats.
func Reset(g *schema.TicTacToe) {
	g.Board = [9]string{}
	g.Winner = ""
	g.WinLine = nil
	g.CurrentPlayer = "X"
}

// updateOutcome recomputes Winner and WinLine from the board.
func updateOutcome(g *schema.TicTacToe) {
	for _, line := range winLines {
		m := g.Board[line[0]]
		if m != "" && m == g.Board[line[1]] && m == g.Board[line[2]] {
			g.Winner = m
			g.WinLine = []int{line[0], line[1], line[2]}
			return
		}
	}
	for _, c := range g.Board {
		if c == "" {
			return
		}
	}
	g.Winner = "Draw"
	g.WinLine = nil
}

// ValidateTicTacToe checks that new is reachable from old by a legal action
// of sender: a seat claim, a single move, a reset, or a pure reposition.
// It returns the state to store, with any illegal seat changes reverted.
func ValidateTicTacToe(old, next *schema.TicTacToe, sender string) (*schema.TicTacToe, error) {
	out := *next
	out.WinLine = append([]int(nil), next.WinLine...)

	// Seats are first-come-first-served and never reassigned; a free seat may
	// only be claimed by the sender itself.
	out.PlayerX = enforceSeat(old.PlayerX, next.PlayerX, sender)
	out.PlayerO = enforceSeat(old.PlayerO, next.PlayerO, sender)

	if out.Board == old.Board {
		// Claim, reposition or no-op; carry the derived fields forward.
		out.Winner = old.Winner
		out.WinLine = append([]int(nil), old.WinLine...)
		out.CurrentPlayer = old.CurrentPlayer
		return &out, nil
	}

	if out.Board == ([9]string{}) {
		// Rematch.
		sim := *old
		sim.PlayerX, sim.PlayerO = out.PlayerX, out.PlayerO
		Reset(&sim)
		sim.X, sim.Y, sim.Size = out.X, out.Y, out.Size
		return &sim, nil
	}

	cell := -1
	for i := range out.Board {
		switch {
		case out.Board[i] == old.Board[i]:
		case old.Board[i] == "" && cell == -1:
			cell = i
		default:
			return nil, ErrCellOccupied
		}
	}
	if cell == -1 {
		return nil, ErrCellOccupied
	}

	sim := *old
	sim.PlayerX, sim.PlayerO = out.PlayerX, out.PlayerO
	sim.X, sim.Y, sim.Size = out.X, out.Y, out.Size
	if err := ApplyMove(&sim, cell, sender); err != nil {
		return nil, err
	}
	if sim.Board != out.Board {
		return nil, ErrNotYourTurn
	}
	return &sim, nil
}

// enforceSeat applies the CAS seat rule to a proposed seat value.
func enforceSeat(old, proposed, sender string) string {
	if old != "" {
		return old
	}
	if proposed == sender {
		return sender
	}
	return ""
}
