package schema

import (
	"fmt"

	"github.com/google/uuid"
)

// ElementType discriminates the Element variants.
type ElementType string

const (
	TypeLine  ElementType = "line"
	TypeShape ElementType = "shape"
	TypeText  ElementType = "text"
	TypeImage ElementType = "image"
	TypeGame  ElementType = "game"
)

// Background is a room's canvas background setting.
type Background string

const (
	BackgroundWhite     Background = "white"
	BackgroundDots      Background = "dots"
	BackgroundGrid      Background = "grid"
	BackgroundLines     Background = "lines"
	BackgroundDark      Background = "dark"
	BackgroundBlueprint Background = "blueprint"
)

// DefaultBackground is the background of a freshly created room.
const DefaultBackground = BackgroundDots

// Valid reports whether b is one of the known backgrounds.
func (b Background) Valid() bool {
	switch b {
	case BackgroundWhite, BackgroundDots, BackgroundGrid, BackgroundLines,
		BackgroundDark, BackgroundBlueprint:
		return true
	}
	return false
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is one unit of canvas content. Type selects exactly one of the
// variant pointers; Validate enforces it.
type Element struct {
	ID   string      `json:"id"`
	Type ElementType `json:"type"`

	Line  *Line  `json:"line,omitempty"`
	Shape *Shape `json:"shape,omitempty"`
	Text  *Text  `json:"text,omitempty"`
	Image *Image `json:"image,omitempty"`
	Game  *Game  `json:"game,omitempty"`
}

// Line is a freehand stroke. Tool "shape-draft" marks a stroke awaiting
// shape recognition; the recognized Shape replaces it at the same position.
type Line struct {
	Color     string  `json:"color"`
	BrushSize float64 `json:"brushSize"`
	Tool      string  `json:"tool"` // pen, highlighter, marker, shape-draft
	Opacity   float64 `json:"opacity,omitempty"`
	Points    []Point `json:"points"`
}

// Shape is a recognized geometric shape. Only the geometry fields of the
// given ShapeType are meaningful.
type Shape struct {
	ShapeType string  `json:"shapeType"` // line, circle, ellipse, rectangle, square, triangle
	Color     string  `json:"color"`
	BrushSize float64 `json:"brushSize"`

	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	CX float64 `json:"cx,omitempty"`
	CY float64 `json:"cy,omitempty"`
	RX float64 `json:"rx,omitempty"`
	RY float64 `json:"ry,omitempty"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Points []Point `json:"points,omitempty"`
}

// Text is a placed text label.
type Text struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
	TextSize float64 `json:"textSize"`
}

// Image is a placed image, referenced by URL (typically the upload endpoint's
// result or an inline data URL).
type Image struct {
	Data   string  `json:"data"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewID returns a fresh stable element identifier.
func NewID() string {
	return uuid.NewString()
}

// Validate checks that exactly the variant matching Type is populated.
func (e *Element) Validate() error {
	var want, got int
	set := func(ok bool) {
		if ok {
			got++
		}
	}
	set(e.Line != nil)
	set(e.Shape != nil)
	set(e.Text != nil)
	set(e.Image != nil)
	set(e.Game != nil)

	want = 1
	if got != want {
		return fmt.Errorf("element %q: %d variants set, want %d", e.Type, got, want)
	}

	var match bool
	switch e.Type {
	case TypeLine:
		match = e.Line != nil
	case TypeShape:
		match = e.Shape != nil
	case TypeText:
		match = e.Text != nil
	case TypeImage:
		match = e.Image != nil
	case TypeGame:
		match = e.Game != nil
	default:
		return fmt.Errorf("element: unknown type %q", e.Type)
	}
	if !match {
		return fmt.Errorf("element %q: variant does not match type", e.Type)
	}
	if e.Type == TypeGame {
		return e.Game.Validate()
	}
	return nil
}

// Clone returns a deep copy, safe to store or mutate independently.
func (e Element) Clone() Element {
	out := e
	switch e.Type {
	case TypeLine:
		if e.Line != nil {
			l := *e.Line
			l.Points = append([]Point(nil), e.Line.Points...)
			out.Line = &l
		}
	case TypeShape:
		if e.Shape != nil {
			s := *e.Shape
			s.Points = append([]Point(nil), e.Shape.Points...)
			out.Shape = &s
		}
	case TypeText:
		if e.Text != nil {
			t := *e.Text
			out.Text = &t
		}
	case TypeImage:
		if e.Image != nil {
			i := *e.Image
			out.Image = &i
		}
	case TypeGame:
		if e.Game != nil {
			out.Game = e.Game.Clone()
		}
	}
	return out
}

// CloneElements deep-copies a whole element sequence.
func CloneElements(els []Element) []Element {
	if els == nil {
		return nil
	}
	out := make([]Element, len(els))
	for i, e := range els {
		out[i] = e.Clone()
	}
	return out
}
