package server

import (
	"testing"

	"drawtogether/schema"
)

func testLine(points ...schema.Point) schema.Element {
	return schema.Element{
		ID:   schema.NewID(),
		Type: schema.TypeLine,
		Line: &schema.Line{Color: "#112233", BrushSize: 3, Tool: "pen", Points: points},
	}
}

func TestEnsureRoomLazyCreation(t *testing.T) {
	hub := NewHub()
	if _, ok := hub.GetRoom("fresh"); ok {
		t.Fatal("room should not exist before first join")
	}
	room := hub.EnsureRoom("fresh")
	if room == nil {
		t.Fatal("EnsureRoom returned nil")
	}
	if len(room.Elements()) != 0 {
		t.Error("new room should have no elements")
	}
	if len(room.Chat()) != 0 {
		t.Error("new room should have an empty chat")
	}
	if room.Background() != schema.BackgroundDots {
		t.Errorf("background %q, want dots", room.Background())
	}
	if again := hub.EnsureRoom("fresh"); again != room {
		t.Error("EnsureRoom should be idempotent")
	}
}

func TestAppendElementMonotonicIndex(t *testing.T) {
	room := NewRoom("r")
	for i := 0; i < 5; i++ {
		idx := room.AppendElement(testLine(schema.Point{X: float64(i)}))
		if idx != i {
			t.Errorf("append %d returned index %d", i, idx)
		}
		if room.ElementCount() != i+1 {
			t.Errorf("count %d after %d appends", room.ElementCount(), i+1)
		}
	}
}

func TestReplaceElementByIDAndIndex(t *testing.T) {
	room := NewRoom("r")
	a := testLine(schema.Point{X: 1})
	b := testLine(schema.Point{X: 2})
	room.AppendElement(a)
	room.AppendElement(b)

	repl := testLine(schema.Point{X: 9})
	repl.ID = a.ID
	pos, ok := room.ReplaceElement(a.ID, -1, repl)
	if !ok || pos != 0 {
		t.Fatalf("replace by id: pos=%d ok=%v", pos, ok)
	}
	if got := room.Elements()[0].Line.Points[0].X; got != 9 {
		t.Errorf("element 0 x=%v, want 9", got)
	}
	if room.Elements()[1].ID != b.ID {
		t.Error("replace shifted a neighbouring element")
	}

	// Unknown id falls back to the positional index.
	repl2 := testLine(schema.Point{X: 7})
	repl2.ID = "gone"
	pos, ok = room.ReplaceElement("gone", 1, repl2)
	if !ok || pos != 1 {
		t.Fatalf("replace by index: pos=%d ok=%v", pos, ok)
	}

	// Neither address resolves: no-op.
	if _, ok := room.ReplaceElement("nope", 99, repl2); ok {
		t.Error("replace with stale addresses should fail")
	}
	if room.ElementCount() != 2 {
		t.Error("failed replace changed the sequence")
	}
}

func TestReplaceAll(t *testing.T) {
	room := NewRoom("r")
	room.AppendElement(testLine(schema.Point{X: 1}))
	next := []schema.Element{testLine(), testLine(), testLine()}
	room.ReplaceAll(next)
	if room.ElementCount() != 3 {
		t.Errorf("count %d after ReplaceAll, want 3", room.ElementCount())
	}
	room.ReplaceAll(nil)
	if room.ElementCount() != 0 {
		t.Error("ReplaceAll(nil) should clear the sequence")
	}
}

func TestElementsReturnsCopy(t *testing.T) {
	room := NewRoom("r")
	room.AppendElement(testLine(schema.Point{X: 1}))
	snap := room.Elements()
	snap[0].Line.Points[0].X = 42
	if room.Elements()[0].Line.Points[0].X == 42 {
		t.Error("Elements leaked internal storage")
	}
}

func TestChatAndBackground(t *testing.T) {
	room := NewRoom("r")
	room.AppendChat(schema.ChatEntry{Text: "hi", SenderID: "a", Timestamp: 1})
	room.AppendChat(schema.ChatEntry{Text: "yo", SenderID: "b", Timestamp: 2})
	chat := room.Chat()
	if len(chat) != 2 || chat[0].Text != "hi" || chat[1].SenderID != "b" {
		t.Errorf("chat %+v not in append order", chat)
	}
	room.SetBackground(schema.BackgroundDark)
	if room.Background() != schema.BackgroundDark {
		t.Error("background not updated")
	}
}

func TestMembership(t *testing.T) {
	room := NewRoom("r")
	hub := NewHub()
	a := NewClient("a", nil, hub)
	b := NewClient("b", nil, hub)
	room.AddClient(a)
	room.AddClient(b)
	if len(room.MemberIDs()) != 2 {
		t.Fatalf("members %v, want 2", room.MemberIDs())
	}
	room.RemoveClient(a)
	if room.HasClient(a) || !room.HasClient(b) {
		t.Error("membership after removal is wrong")
	}
}
