package schema

import "testing"

func lineElement(points ...Point) Element {
	return Element{
		ID:   NewID(),
		Type: TypeLine,
		Line: &Line{Color: "#000000", BrushSize: 3, Tool: "pen", Points: points},
	}
}

func TestElementValidate(t *testing.T) {
	el := lineElement(Point{X: 1, Y: 2})
	if err := el.Validate(); err != nil {
		t.Fatalf("valid line element rejected: %v", err)
	}

	el.Type = TypeText
	if err := el.Validate(); err == nil {
		t.Error("type/variant mismatch should be rejected")
	}

	el = Element{ID: NewID(), Type: "scribble"}
	el.Line = &Line{}
	if err := el.Validate(); err == nil {
		t.Error("unknown type should be rejected")
	}

	el = lineElement()
	el.Text = &Text{Content: "hi"}
	if err := el.Validate(); err == nil {
		t.Error("two variants set should be rejected")
	}

	el = Element{ID: NewID(), Type: TypeGame}
	if err := el.Validate(); err == nil {
		t.Error("game element without body should be rejected")
	}
}

func TestGameValidate(t *testing.T) {
	g := Game{GameType: GameTicTacToe, TicTacToe: &TicTacToe{}}
	if err := g.Validate(); err != nil {
		t.Fatalf("valid tictactoe rejected: %v", err)
	}
	g = Game{GameType: GamePingPong, TicTacToe: &TicTacToe{}}
	if err := g.Validate(); err == nil {
		t.Error("gameType/variant mismatch should be rejected")
	}
	g = Game{GameType: "chess"}
	if err := g.Validate(); err == nil {
		t.Error("unknown gameType should be rejected")
	}
}

func TestElementCloneIsDeep(t *testing.T) {
	el := lineElement(Point{X: 1, Y: 1}, Point{X: 2, Y: 2})
	cp := el.Clone()
	cp.Line.Points[0].X = 99
	if el.Line.Points[0].X == 99 {
		t.Error("clone shares point storage with original")
	}

	game := Element{
		ID:   NewID(),
		Type: TypeGame,
		Game: &Game{GameType: GamePingPong, PingPong: &PingPong{Width: 400}},
	}
	gcp := game.Clone()
	gcp.Game.PingPong.Ball.X = 42
	if game.Game.PingPong.Ball.X == 42 {
		t.Error("clone shares game state with original")
	}
}

func TestBackgroundValid(t *testing.T) {
	for _, bg := range []Background{BackgroundWhite, BackgroundDots, BackgroundGrid, BackgroundLines, BackgroundDark, BackgroundBlueprint} {
		if !bg.Valid() {
			t.Errorf("background %q should be valid", bg)
		}
	}
	if Background("plaid").Valid() {
		t.Error("unknown background should be invalid")
	}
	if DefaultBackground != BackgroundDots {
		t.Errorf("default background %q, want dots", DefaultBackground)
	}
}
