package games

import (
	"testing"

	"drawtogether/schema"
)

func TestNewTicTacToeElement(t *testing.T) {
	el := NewTicTacToeElement(100, 100, 300)
	if err := el.Validate(); err != nil {
		t.Fatalf("fresh element invalid: %v", err)
	}
	g := el.Game.TicTacToe
	if g.CurrentPlayer != "X" {
		t.Errorf("CurrentPlayer %q, want X", g.CurrentPlayer)
	}
	if g.X != 100 || g.Y != 100 || g.Size != 300 {
		t.Errorf("geometry %v/%v/%v, want 100/100/300", g.X, g.Y, g.Size)
	}
}

func TestFirstMoveClaimsSeatAndFlipsTurn(t *testing.T) {
	el := NewTicTacToeElement(100, 100, 300)
	g := el.Game.TicTacToe

	if err := ApplyMove(g, 4, "conn-a"); err != nil {
		t.Fatalf("center move rejected: %v", err)
	}
	if g.Board[4] != "X" {
		t.Errorf("board[4] = %q, want X", g.Board[4])
	}
	if g.CurrentPlayer != "O" {
		t.Errorf("CurrentPlayer %q, want O", g.CurrentPlayer)
	}
	if g.PlayerX != "conn-a" {
		t.Errorf("PlayerX %q, want conn-a", g.PlayerX)
	}
}

func TestOccupiedCellRejectedWithoutStateChange(t *testing.T) {
	el := NewTicTacToeElement(100, 100, 300)
	g := el.Game.TicTacToe
	if err := ApplyMove(g, 4, "conn-a"); err != nil {
		t.Fatal(err)
	}
	before := *g

	for _, conn := range []string{"conn-a", "conn-b"} {
		if err := ApplyMove(g, 4, conn); err != ErrCellOccupied {
			t.Errorf("move by %s on occupied cell: err = %v, want ErrCellOccupied", conn, err)
		}
	}
	if g.Board != before.Board || g.CurrentPlayer != before.CurrentPlayer {
		t.Error("rejected move changed state")
	}
}

func TestSeatsNeverReassigned(t *testing.T) {
	g := &schema.TicTacToe{CurrentPlayer: "X"}
	if !ClaimMark(g, "X", "conn-a") {
		t.Fatal("first claim should succeed")
	}
	if ClaimMark(g, "X", "conn-b") {
		t.Error("second claim of occupied seat should fail")
	}
	if !ClaimMark(g, "X", "conn-a") {
		t.Error("re-claim by the holder should succeed")
	}
	if g.PlayerX != "conn-a" {
		t.Errorf("PlayerX %q, want conn-a", g.PlayerX)
	}
}

func TestWrongTurnRejected(t *testing.T) {
	el := NewTicTacToeElement(0, 0, 300)
	g := el.Game.TicTacToe
	if err := ApplyMove(g, 0, "conn-a"); err != nil { // a claims X
		t.Fatal(err)
	}
	if err := ApplyMove(g, 1, "conn-b"); err != nil { // b claims O
		t.Fatal(err)
	}
	// It is X's turn; b holds O.
	if err := ApplyMove(g, 2, "conn-b"); err != ErrNotYourTurn {
		t.Errorf("err = %v, want ErrNotYourTurn", err)
	}
}

func TestWinnerAndWinLine(t *testing.T) {
	el := NewTicTacToeElement(0, 0, 300)
	g := el.Game.TicTacToe
	moves := []struct {
		cell int
		conn string
	}{
		{0, "a"}, {3, "b"}, {1, "a"}, {4, "b"}, {2, "a"},
	}
	for _, mv := range moves {
		if err := ApplyMove(g, mv.cell, mv.conn); err != nil {
			t.Fatalf("move %d by %s: %v", mv.cell, mv.conn, err)
		}
	}
	if g.Winner != "X" {
		t.Errorf("Winner %q, want X", g.Winner)
	}
	want := []int{0, 1, 2}
	if len(g.WinLine) != 3 || g.WinLine[0] != want[0] || g.WinLine[1] != want[1] || g.WinLine[2] != want[2] {
		t.Errorf("WinLine %v, want %v", g.WinLine, want)
	}
	if err := ApplyMove(g, 5, "b"); err != ErrGameFinished {
		t.Errorf("move after win: err = %v, want ErrGameFinished", err)
	}
}

func TestDraw(t *testing.T) {
	el := NewTicTacToeElement(0, 0, 300)
	g := el.Game.TicTacToe
	// X O X / X O O / O X X leaves no winner.
	order := []int{0, 1, 2, 4, 3, 5, 7, 6, 8}
	conns := map[string]string{"X": "a", "O": "b"}
	for _, cell := range order {
		if err := ApplyMove(g, cell, conns[g.CurrentPlayer]); err != nil {
			t.Fatalf("cell %d: %v", cell, err)
		}
	}
	if g.Winner != "Draw" {
		t.Errorf("Winner %q, want Draw", g.Winner)
	}
	if g.WinLine != nil {
		t.Errorf("WinLine %v, want nil", g.WinLine)
	}
}

func TestReset(t *testing.T) {
	el := NewTicTacToeElement(0, 0, 300)
	g := el.Game.TicTacToe
	_ = ApplyMove(g, 0, "a")
	_ = ApplyMove(g, 4, "b")
	Reset(g)
	if g.Board != ([9]string{}) || g.Winner != "" || g.CurrentPlayer != "X" {
		t.Error("Reset did not clear board state")
	}
	if g.PlayerX != "a" || g.PlayerO != "b" {
		t.Error("Reset should keep the seats")
	}
}

func TestValidateTicTacToeSingleMove(t *testing.T) {
	el := NewTicTacToeElement(0, 0, 300)
	old := el.Game.TicTacToe

	next := *old
	next.PlayerX = "conn-a"
	next.Board[4] = "X"
	next.CurrentPlayer = "O"

	got, err := ValidateTicTacToe(old, &next, "conn-a")
	if err != nil {
		t.Fatalf("legal move rejected: %v", err)
	}
	if got.Board[4] != "X" || got.CurrentPlayer != "O" || got.PlayerX != "conn-a" {
		t.Errorf("validated state %+v not the applied move", got)
	}
}

func TestValidateTicTacToeRejectsForgery(t *testing.T) {
	el := NewTicTacToeElement(0, 0, 300)
	old := el.Game.TicTacToe
	old.PlayerX = "conn-a"

	// Two cells filled in a single push.
	next := *old
	next.Board[0], next.Board[1] = "X", "X"
	if _, err := ValidateTicTacToe(old, &next, "conn-a"); err == nil {
		t.Error("two-cell push should be rejected")
	}

	// Overwriting an existing mark.
	old.Board[0] = "X"
	old.CurrentPlayer = "O"
	next = *old
	next.Board[0] = "O"
	if _, err := ValidateTicTacToe(old, &next, "conn-b"); err == nil {
		t.Error("mark overwrite should be rejected")
	}
}

func TestValidateTicTacToeSeatCAS(t *testing.T) {
	el := NewTicTacToeElement(0, 0, 300)
	old := el.Game.TicTacToe
	old.PlayerX = "conn-a"

	// conn-b pushes a state that steals X's seat but changes no cells.
	next := *old
	next.PlayerX = "conn-b"
	got, err := ValidateTicTacToe(old, &next, "conn-b")
	if err != nil {
		t.Fatalf("claim-only push rejected: %v", err)
	}
	if got.PlayerX != "conn-a" {
		t.Errorf("PlayerX %q after forged claim, want conn-a", got.PlayerX)
	}

	// A free seat may only be claimed by the sender itself.
	next = *old
	next.PlayerO = "someone-else"
	got, err = ValidateTicTacToe(old, &next, "conn-b")
	if err != nil {
		t.Fatal(err)
	}
	if got.PlayerO != "" {
		t.Errorf("PlayerO %q after third-party claim, want empty", got.PlayerO)
	}
}
